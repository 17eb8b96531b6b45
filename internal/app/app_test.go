package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var out, errOut bytes.Buffer
	app := New(append([]string{"fieldfmt", "--no-color"}, args...), &errOut, WithInput(strings.NewReader(stdin)))
	code := app.Run(context.Background(), &out)
	return runResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestPriceCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"argument", "", []string{"price", "-q", "1234567"}, "1 234 567\n"},
		{"several arguments", "", []string{"price", "-q", "1000", "25"}, "1 000\n25\n"},
		{"delimiter flag", "", []string{"price", "-q", "-d", ",", "1234567"}, "1,234,567\n"},
		{"stdin lines", "1234\n\n99999 RUB\n", []string{"price", "-q"}, "1 234\n99 999 RUB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, tt.args...)
			if res.code != apperrors.ExitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", res.code, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestPriceCommand_ShowsInput(t *testing.T) {
	res := run(t, "", "price", "1234")
	if res.stdout != "1234 → 1 234\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestPriceCommand_DelimiterFromEnv(t *testing.T) {
	t.Setenv("FIELDFMT_DELIMITER", "'")
	if res := run(t, "", "price", "-q", "1234"); res.stdout != "1'234\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
	if res := run(t, "", "price", "-q", "-d", ".", "1234"); res.stdout != "1.234\n" {
		t.Errorf("flag should win over env, stdout = %q", res.stdout)
	}
}

func TestBytesCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"bytes", "-q", "1536"}, "1.50 KB\n"},
		{"zero", []string{"bytes", "-q", "0"}, "0 B\n"},
		{"fraction", []string{"bytes", "-q", "-f", "0", "1536"}, "2 KB\n"},
		{"half even", []string{"bytes", "-q", "--rounding", "half-even", "1152"}, "1.12 KB\n"},
		{"exact uint64", []string{"bytes", "-q", "-f", "0", "18446744073709551615"}, "16 EB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			if res.code != apperrors.ExitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", res.code, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestBytesCommand_InvalidValues(t *testing.T) {
	res := run(t, "", "bytes", "-q", "--", "1024", "-5", "lots")
	if res.code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", res.code, apperrors.ExitErrorConfig)
	}
	if res.stdout != "1.00 KB\n" {
		t.Errorf("valid values should still print, stdout = %q", res.stdout)
	}
	for _, want := range []string{`"-5"`, `"lots"`} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("stderr should mention %s: %s", want, res.stderr)
		}
	}
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"fraction out of range", []string{"bytes", "-f", "21", "1"}},
		{"unknown rounding", []string{"bytes", "--rounding", "up", "1"}},
		{"unknown flag", []string{"price", "--bogus"}},
		{"unknown mode", []string{"defaults", "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			if res.code != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d (stderr %s)", res.code, apperrors.ExitErrorConfig, res.stderr)
			}
			if !strings.Contains(res.stderr, "Error:") {
				t.Errorf("stderr = %q", res.stderr)
			}
		})
	}
}

func TestDefaultsCommand(t *testing.T) {
	res := run(t, "", "defaults")
	if res.code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", res.code)
	}
	for _, want := range []string{`"card": {"creditCard":true}`, `"number": {"numeral":true`} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %s:\n%s", want, res.stdout)
		}
	}

	res = run(t, "", "defaults", "date")
	if strings.Contains(res.stdout, "card") || !strings.Contains(res.stdout, `"datePattern":["d","m","Y"]`) {
		t.Errorf("stdout = %s", res.stdout)
	}
}

const form = `<input id="tel" data-format-phone><input id="when" data-format-date><input type="checkbox" data-format-card>`

func TestMaskCommand_Stdin(t *testing.T) {
	res := run(t, form, "mask", "-q")
	if res.code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", res.code, res.stderr)
	}
	if n := strings.Count(res.stdout, "data-mask-id="); n != 2 {
		t.Errorf("masked %d fields, want 2:\n%s", n, res.stdout)
	}
	if !strings.Contains(res.stdout, `&#34;date&#34;:true`) {
		t.Errorf("date options missing:\n%s", res.stdout)
	}
}

func TestMaskCommand_SingleRule(t *testing.T) {
	res := run(t, form, "mask", "-q", "-m", "phone", "-s", "#tel",
		"--prefix", "+1", "--blocks", "1,3,3,4", "--delimiters", " ", "--delimiters", "-")
	if res.code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", res.code, res.stderr)
	}
	if n := strings.Count(res.stdout, "data-mask-id="); n != 1 {
		t.Errorf("masked %d fields, want 1", n)
	}
	want := `{&#34;numericOnly&#34;:true,&#34;prefix&#34;:&#34;+1&#34;,&#34;blocks&#34;:[1,3,3,4],&#34;delimiters&#34;:[&#34; &#34;,&#34;-&#34;]}`
	if !strings.Contains(res.stdout, want) {
		t.Errorf("stdout missing %s:\n%s", want, res.stdout)
	}
}

func TestMaskCommand_RuleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"mode without selector", []string{"mask", "-m", "card"}},
		{"unknown mode", []string{"mask", "-m", "price", "-s", "input"}},
		{"bad group style", []string{"mask", "-m", "number", "-s", "input", "--group-style", "million"}},
		{"rules with mode", []string{"mask", "--rules", "r.yaml", "-m", "card", "-s", "input"}},
		{"missing rules file", []string{"mask", "--rules", "does-not-exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, form, tt.args...)
			if res.code != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d (stderr %s)", res.code, apperrors.ExitErrorConfig, res.stderr)
			}
		})
	}
}

func TestMaskCommand_FilesAndOutDir(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")
	rules := filepath.Join(dir, "rules.yaml")
	outDir := filepath.Join(dir, "out")
	writeFile(t, a, form)
	writeFile(t, b, `<!DOCTYPE html><html><body><input class="qty"></body></html>`)
	writeFile(t, rules, "rules:\n  - selector: .qty\n    mode: number\n  - selector: '#tel'\n    mode: phone\n")

	res := run(t, "", "mask", "--rules", rules, "-o", outDir, "-j", "2", a, b)
	if res.code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", res.code, res.stderr)
	}
	if res.stdout != "" {
		t.Errorf("documents written to files should not be printed: %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "Mask Summary") {
		t.Errorf("summary missing from stderr:\n%s", res.stderr)
	}

	gotB, err := os.ReadFile(filepath.Join(outDir, "b.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gotB), "<html>") || !strings.Contains(string(gotB), `&#34;numeral&#34;:true`) {
		t.Errorf("b.html = %s", gotB)
	}
	gotA, err := os.ReadFile(filepath.Join(outDir, "a.html"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(gotA), "data-mask-id=") != 1 {
		t.Errorf("a.html = %s", gotA)
	}
}

func TestMaskCommand_MissingFileIsReported(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.html")
	writeFile(t, good, form)

	res := run(t, "", "mask", "-q", good, filepath.Join(dir, "missing.html"))
	if res.code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", res.code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(res.stdout, "data-mask-id=") {
		t.Errorf("the readable document should still be printed:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, "missing.html") {
		t.Errorf("stderr should name the missing file: %s", res.stderr)
	}
}

func TestReplCommand(t *testing.T) {
	res := run(t, "price 1234567\nexit\n", "repl", "-d", ",")
	if res.code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", res.code)
	}
	if !strings.Contains(res.stdout, "1,234,567") {
		t.Errorf("stdout = %s", res.stdout)
	}
}

func TestVersion(t *testing.T) {
	res := run(t, "", "--version")
	if res.code != apperrors.ExitSuccess || !strings.HasPrefix(res.stdout, "fieldfmt "+Version) {
		t.Errorf("code = %d, stdout = %q", res.code, res.stdout)
	}

	if !HasVersionFlag([]string{"mask", "-V"}) {
		t.Error("HasVersionFlag should find -V")
	}
	if HasVersionFlag([]string{"price", "--", "--version"}) {
		t.Error("HasVersionFlag should stop at --")
	}
	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.Contains(buf.String(), "commit "+commit()) {
		t.Errorf("PrintVersion = %q", buf.String())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
