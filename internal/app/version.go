package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build information, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "--version" || arg == "-V" {
			return true
		}
	}
	return false
}

// commit returns Commit, or the VCS revision recorded by the Go toolchain
// when no commit was set at link time.
func commit() string {
	if Commit != "none" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value[:min(len(s.Value), 8)]
		}
	}
	return Commit
}

// FormatVersion returns the one-line version string.
func FormatVersion() string {
	return fmt.Sprintf("fieldfmt %s (commit %s, built %s, %s %s/%s)",
		Version, commit(), BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// PrintVersion writes the version string to out.
func PrintVersion(out io.Writer) {
	fmt.Fprintln(out, FormatVersion())
}
