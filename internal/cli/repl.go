package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agbru/fieldfmt/internal/format"
	"github.com/agbru/fieldfmt/internal/mask"
	"github.com/agbru/fieldfmt/internal/metrics"
	"github.com/agbru/fieldfmt/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Delimiter separates digit groups of prices.
	Delimiter string
	// Fraction is the number of fraction digits of byte sizes.
	Fraction int
	// Rounding is the rounding mode of byte sizes.
	Rounding format.Rounding
}

// REPL is an interactive formatting session.
type REPL struct {
	config REPLConfig
	in     io.Reader
	out    io.Writer
}

// NewREPL creates a new REPL reading stdin and writing stdout.
func NewREPL(config REPLConfig) *REPL {
	return &REPL{
		config: config,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start begins the interactive session. It reads commands until the user
// exits or EOF is reached.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"fmt> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}
		atEOF := err != nil

		if input = strings.TrimSpace(input); input != "" {
			if !r.processCommand(input) {
				return
			}
		}
		if atEOF {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s── fieldfmt interactive mode ──%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sprice <text>%s      - Group the digits of text\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sbytes <n>%s         - Humanize a byte count\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sdelimiter <s>%s     - Set the price delimiter (\"\" for none)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sfraction <n>%s      - Set the byte fraction digits\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %srounding <mode>%s   - Set the byte rounding (half-away, half-even)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sdefaults <mode>%s   - Show the mask defaults of a mode\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s            - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s              - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s       - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "price", "p":
		r.cmdPrice(rest)
	case "bytes", "b":
		r.cmdBytes(rest)
	case "delimiter", "delim":
		r.cmdDelimiter(rest)
	case "fraction":
		r.cmdFraction(rest)
	case "rounding":
		r.cmdRounding(rest)
	case "defaults":
		r.cmdDefaults(rest)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		// A bare number is shown both ways.
		if n, err := strconv.ParseFloat(cmd, 64); err == nil && rest == "" {
			r.cmdPrice(cmd)
			r.showBytes(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}
	return true
}

func (r *REPL) cmdPrice(text string) {
	if text == "" {
		fmt.Fprintf(r.out, "%sUsage: price <text>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	fmt.Fprintln(r.out, FormatValueLine(text, format.Price(text, format.WithDelimiter(r.config.Delimiter))))
}

func (r *REPL) cmdBytes(arg string) {
	n, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sUsage: bytes <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	r.showBytes(n)
}

func (r *REPL) showBytes(n float64) {
	s, err := format.Bytes(n, format.WithFraction(r.config.Fraction), format.WithRounding(r.config.Rounding))
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintln(r.out, FormatValueLine(strconv.FormatFloat(n, 'f', -1, 64), s))
}

func (r *REPL) cmdDelimiter(arg string) {
	if unquoted, err := strconv.Unquote(arg); err == nil {
		arg = unquoted
	}
	r.config.Delimiter = arg
	fmt.Fprintf(r.out, "Delimiter set to: %s%q%s\n", ui.ColorGreen(), arg, ui.ColorReset())
}

func (r *REPL) cmdFraction(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n > 20 {
		fmt.Fprintf(r.out, "%sUsage: fraction <0-20>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	r.config.Fraction = n
	fmt.Fprintf(r.out, "Fraction digits set to: %s%d%s\n", ui.ColorGreen(), n, ui.ColorReset())
}

func (r *REPL) cmdRounding(arg string) {
	mode, err := format.ParseRounding(arg)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown rounding mode: %s%s\n", ui.ColorRed(), arg, ui.ColorReset())
		return
	}
	r.config.Rounding = mode
	fmt.Fprintf(r.out, "Rounding set to: %s%s%s\n", ui.ColorGreen(), mode, ui.ColorReset())
}

func (r *REPL) cmdDefaults(arg string) {
	modes := mask.Modes()
	if arg != "" {
		m, err := mask.ParseMode(arg)
		if err != nil {
			fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		modes = []mask.Mode{m}
	}
	if err := DisplayDefaults(r.out, modes); err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Delimiter:  %s%q%s\n", ui.ColorCyan(), r.config.Delimiter, ui.ColorReset())
	fmt.Fprintf(r.out, "  Fraction:   %s%d%s\n", ui.ColorCyan(), r.config.Fraction, ui.ColorReset())
	fmt.Fprintf(r.out, "  Rounding:   %s%s%s\n", ui.ColorCyan(), r.config.Rounding, ui.ColorReset())
	mem := metrics.NewMemoryCollector().Snapshot().Report(format.WithFraction(r.config.Fraction), format.WithRounding(r.config.Rounding))
	fmt.Fprintf(r.out, "  Heap:       %s%s%s in use, %s reserved\n", ui.ColorCyan(), mem.HeapAlloc, ui.ColorReset(), mem.HeapSys)
	fmt.Fprintln(r.out)
}
