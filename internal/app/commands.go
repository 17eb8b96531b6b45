package app

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/agbru/fieldfmt/internal/cli"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/format"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
	"github.com/agbru/fieldfmt/internal/server"
)

func (a *Application) priceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price [value...]",
		Short: "Group the digits of prices",
		Long: "Inserts a delimiter between groups of three digits of every digit run.\n" +
			"Values are read from the arguments, or one per line from stdin.",
		Example: "  fieldfmt price 1234567\n  echo '1000000 RUB' | fieldfmt price -d ,",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readValues(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			results := make([]string, len(inputs))
			for i, in := range inputs {
				results[i] = format.Price(in, format.WithDelimiter(a.Config.PriceDelimiter))
			}
			cli.DisplayValues(cmd.OutOrStdout(), inputs, results, a.Config.Quiet)
			return nil
		},
	}
	a.Config.RegisterPriceFlags(cmd.Flags())
	return cmd
}

func (a *Application) bytesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bytes [value...]",
		Short: "Humanize byte counts with binary units",
		Long: "Scales byte counts by powers of 1024 and prints them with a unit suffix.\n" +
			"Values are read from the arguments, or one per line from stdin.",
		Example: "  fieldfmt bytes 1536\n  fieldfmt bytes -f 0 --rounding half-even 1152",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readValues(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			opts := []format.BytesOption{
				format.WithFraction(a.Config.Fraction),
				format.WithRounding(a.Config.RoundingMode()),
			}

			var errs *multierror.Error
			var shown, results []string
			for _, in := range inputs {
				result, err := formatBytes(in, opts)
				if err != nil {
					a.logger.Debug("invalid byte count", logging.String("input", in), logging.Err(err))
					errs = multierror.Append(errs, apperrors.WrapError(err, "%q", in))
					continue
				}
				shown = append(shown, in)
				results = append(results, result)
			}
			cli.DisplayValues(cmd.OutOrStdout(), shown, results, a.Config.Quiet)
			return errs.ErrorOrNil()
		},
	}
	a.Config.RegisterBytesFlags(cmd.Flags())
	return cmd
}

// formatBytes formats one textual byte count. Integers are formatted exactly
// even beyond the float64 mantissa.
func formatBytes(in string, opts []format.BytesOption) (string, error) {
	if n, err := strconv.ParseUint(in, 10, 64); err == nil {
		return format.BytesUint(n, opts...), nil
	}
	n, err := strconv.ParseFloat(in, 64)
	if err != nil {
		return "", apperrors.ValidationError{Field: "bytes", Message: "not a number"}
	}
	return format.Bytes(n, opts...)
}

func (a *Application) defaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "defaults [mode]",
		Short:     "Print the default mask options of each mode as JSON",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: modeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := mask.Modes()
			if len(args) == 1 {
				m, err := mask.ParseMode(args[0])
				if err != nil {
					return err
				}
				modes = []mask.Mode{m}
			}
			return cli.DisplayDefaults(cmd.OutOrStdout(), modes)
		},
	}
}

func (a *Application) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formatting and masking HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.NewServer(a.Config, server.WithLogger(a.logger))
			if !a.Config.Quiet {
				cmd.PrintErrf("Listening on %s (Ctrl+C to stop)\n", a.Config.Addr)
			}
			return srv.Start(cmd.Context())
		},
	}
	a.Config.RegisterServeFlags(cmd.Flags())
	return cmd
}

func (a *Application) replCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive formatting session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repl := cli.NewREPL(cli.REPLConfig{
				Delimiter: a.Config.PriceDelimiter,
				Fraction:  a.Config.Fraction,
				Rounding:  a.Config.RoundingMode(),
			})
			repl.SetInput(cmd.InOrStdin())
			repl.SetOutput(cmd.OutOrStdout())
			repl.Start()
			return nil
		},
	}
	a.Config.RegisterPriceFlags(cmd.Flags())
	a.Config.RegisterBytesFlags(cmd.Flags())
	return cmd
}

// readValues returns args, or the non-blank lines of in when args is empty.
func readValues(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var values []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.WrapError(err, "failed to read stdin")
	}
	return values, nil
}

func modeNames() []string {
	names := make([]string, 0, len(mask.Modes()))
	for _, m := range mask.Modes() {
		names = append(names, m.String())
	}
	return names
}
