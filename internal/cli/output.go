// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayValues], [DisplayDocuments], [DisplayMaskSummary].
//
//   - Format* functions return a formatted string without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatValueLine], [FormatExecutionDuration].
//
//   - Write* functions write data to files on the filesystem.
//     They handle file creation, directory setup, and error handling.
//     Examples: [WriteDocumentToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agbru/fieldfmt/internal/dom"
	"github.com/agbru/fieldfmt/internal/ui"
)

// stdinOutputName is the file name used for a document read from stdin.
const stdinOutputName = "stdin.html"

// FormatValueLine formats one converted value for interactive output.
func FormatValueLine(input, result string) string {
	return fmt.Sprintf("%s%s%s → %s%s%s",
		ui.ColorCyan(), input, ui.ColorReset(),
		ui.ColorGreen(), result, ui.ColorReset())
}

// DisplayValues writes one line per converted value. In quiet mode only the
// results are written, which keeps the output usable in pipelines.
func DisplayValues(out io.Writer, inputs, results []string, quiet bool) {
	for i, result := range results {
		if quiet || i >= len(inputs) {
			fmt.Fprintln(out, result)
			continue
		}
		fmt.Fprintln(out, FormatValueLine(inputs[i], result))
	}
}

// WriteDocumentToFile renders doc into outDir under the base name of source
// and returns the path written.
func WriteDocumentToFile(doc *dom.HTMLDocument, source, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	name := filepath.Base(source)
	if source == StdinName {
		name = stdinOutputName
	}
	path := filepath.Join(outDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := doc.Render(file); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to render %s: %w", source, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// DisplayDocuments writes the rendered documents of results in order. With
// more than one document each is preceded by an HTML comment naming its
// source. Documents that were written to files or failed to load are left
// out.
func DisplayDocuments(out io.Writer, results []DocumentResult) {
	withHeader := len(results) > 1
	for _, res := range results {
		if res.HTML == "" {
			continue
		}
		if withHeader {
			fmt.Fprintf(out, "<!-- %s -->\n", res.Path)
		}
		fmt.Fprintln(out, res.HTML)
	}
}
