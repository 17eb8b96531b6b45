package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agbru/fieldfmt/internal/config"
	"github.com/agbru/fieldfmt/internal/mask"
	"github.com/agbru/fieldfmt/internal/ui"
)

// PrintMaskConfig displays the rules and settings of a mask run.
func PrintMaskConfig(cfg config.AppConfig, rules []mask.Rule, documents int, out io.Writer) {
	fmt.Fprintf(out, "--- Mask Configuration ---\n")
	fmt.Fprintf(out, "Masking %s%d%s document(s) with %s%d%s worker(s).\n",
		ui.ColorMagenta(), documents, ui.ColorReset(), ui.ColorCyan(), cfg.Concurrency, ui.ColorReset())
	source := "built-in data-format rules"
	if cfg.RulesFile != "" {
		source = cfg.RulesFile
	}
	fmt.Fprintf(out, "Rules: %s%s%s\n", ui.ColorYellow(), source, ui.ColorReset())
	for _, r := range rules {
		fmt.Fprintf(out, "  %s%-8s%s %s\n", ui.ColorBlue(), r.Mode, ui.ColorReset(), r.Selector)
	}
}

// DisplayMaskSummary shows a per-document table and a boxed total.
func DisplayMaskSummary(results []DocumentResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Mask Summary ---\n")

	maxPathLen := len("Document")
	for _, res := range results {
		maxPathLen = max(maxPathLen, len(res.Path))
	}

	fmt.Fprintf(out, "%sDocument%s%s   %sApplied  Skipped  Failed%s   %sTime%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxPathLen-len("Document")),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())

	var applied, skipped, failed, broken int
	for _, res := range results {
		applied += res.Applied()
		skipped += res.Skipped()
		failed += res.Failed()

		status := fmt.Sprintf("%s✓%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			broken++
			status = fmt.Sprintf("%s✗ %v%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintf(out, "%s%s%s%s   %7d  %7d  %6d   %s%s%s  %s\n",
			ui.ColorBlue(), res.Path, ui.ColorReset(), padRight("", maxPathLen-len(res.Path)),
			res.Applied(), res.Skipped(), res.Failed(),
			ui.ColorYellow(), FormatExecutionDuration(res.Duration), ui.ColorReset(),
			status)
	}

	fmt.Fprintln(out, FormatSummaryBox(len(results), broken, applied, skipped, failed))
}

// FormatSummaryBox renders the batch totals as a lipgloss box.
func FormatSummaryBox(documents, broken, applied, skipped, failed int) string {
	s := ui.CurrentStyles()
	line := func(label string, value int, style func(...string) string) string {
		return s.Label.Render(fmt.Sprintf("%-10s", label)) + style(fmt.Sprint(value))
	}
	failStyle := s.Value.Render
	if failed > 0 || broken > 0 {
		failStyle = s.Error.Render
	}

	body := strings.Join([]string{
		s.Title.Render("Totals"),
		line("documents", documents, s.Value.Render),
		line("applied", applied, s.Success.Render),
		line("skipped", skipped, s.Warning.Render),
		line("failed", failed+broken, failStyle),
	}, "\n")
	return s.Box.Render(body)
}

// DisplayDefaults writes the default option set of each mode as indented
// JSON keyed by mode name, in mode order.
func DisplayDefaults(out io.Writer, modes []mask.Mode) error {
	fmt.Fprintln(out, "{")
	for i, m := range modes {
		b, err := json.Marshal(mask.Defaults(m))
		if err != nil {
			return err
		}
		sep := ","
		if i == len(modes)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  %q: %s%s\n", m.String(), b, sep)
	}
	fmt.Fprintln(out, "}")
	return nil
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}
