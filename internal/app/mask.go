package app

import (
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agbru/fieldfmt/internal/cli"
	"github.com/agbru/fieldfmt/internal/engine"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
)

// maskFlags holds the single-rule flags of the mask command.
type maskFlags struct {
	mode        string
	selector    string
	numericOnly bool
	prefix      string
	blocks      []int
	delimiter   string
	delimiters  []string
	datePattern []string
	timePattern []string
	groupStyle  string
}

func (f *maskFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.mode, "mode", "m", "", "mask mode (card, phone, date, time, number)")
	fs.StringVarP(&f.selector, "selector", "s", "", "CSS selector of the fields to mask")
	fs.BoolVar(&f.numericOnly, "numeric-only", false, "override numericOnly")
	fs.StringVar(&f.prefix, "prefix", "", "override prefix")
	fs.IntSliceVar(&f.blocks, "blocks", nil, "override blocks (comma-separated lengths)")
	fs.StringVar(&f.delimiter, "delimiter", "", "override delimiter")
	fs.StringArrayVar(&f.delimiters, "delimiters", nil, "override delimiters (repeat the flag per delimiter)")
	fs.StringSliceVar(&f.datePattern, "date-pattern", nil, "override datePattern (e.g. d,m,Y)")
	fs.StringSliceVar(&f.timePattern, "time-pattern", nil, "override timePattern (e.g. h,m,s)")
	fs.StringVar(&f.groupStyle, "group-style", "", "override numeralThousandsGroupStyle (thousand, lakh, wan, none)")
}

// singleRule reports whether the flags describe a rule of their own.
func (f *maskFlags) singleRule(fs *pflag.FlagSet) bool {
	return fs.Changed("mode") || fs.Changed("selector")
}

// rule builds the rule described by the flags. Only the override flags that
// were set on the command line are applied.
func (f *maskFlags) rule(fs *pflag.FlagSet) (mask.Rule, error) {
	if f.mode == "" || f.selector == "" {
		return mask.Rule{}, apperrors.ValidationError{Field: "mode", Message: "--mode and --selector must be given together"}
	}
	m, err := mask.ParseMode(f.mode)
	if err != nil {
		return mask.Rule{}, err
	}

	var o mask.Overrides
	if fs.Changed("numeric-only") {
		o.NumericOnly = &f.numericOnly
	}
	if fs.Changed("prefix") {
		o.Prefix = &f.prefix
	}
	if fs.Changed("blocks") {
		o.Blocks = append([]int{}, f.blocks...)
	}
	if fs.Changed("delimiter") {
		o.Delimiter = &f.delimiter
	}
	if fs.Changed("delimiters") {
		o.Delimiters = append([]string{}, f.delimiters...)
	}
	if fs.Changed("date-pattern") {
		o.DatePattern = append([]string{}, f.datePattern...)
	}
	if fs.Changed("time-pattern") {
		o.TimePattern = append([]string{}, f.timePattern...)
	}
	if fs.Changed("group-style") {
		g, err := mask.ParseGroupStyle(f.groupStyle)
		if err != nil {
			return mask.Rule{}, err
		}
		o.GroupStyle = &g
	}
	return mask.Rule{Selector: f.selector, Mode: m, Options: o}, nil
}

func (a *Application) maskCommand() *cobra.Command {
	var flags maskFlags
	cmd := &cobra.Command{
		Use:   "mask [file...]",
		Short: "Attach input masks to the form fields of HTML documents",
		Long: "Resolves the mask options of each rule and records them on the matching\n" +
			"text inputs as data-mask-id and data-mask-options attributes.\n\n" +
			"Rules come from --mode and --selector with override flags, from a YAML\n" +
			"--rules file, or default to the data-format-<mode> attribute rules.\n" +
			"Documents are read from the given files, or from stdin when none or \"-\" is given.",
		Example: "  fieldfmt mask form.html\n" +
			"  fieldfmt mask -m phone -s '#tel' --prefix +1 --blocks 1,3,3,4 form.html\n" +
			"  fieldfmt mask --rules rules.yaml -o out/ pages/*.html",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.maskRules(cmd.Flags(), &flags)
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths = []string{cli.StdinName}
			}
			return a.runMask(cmd, paths, rules)
		},
	}
	a.Config.RegisterMaskFlags(cmd.Flags())
	flags.register(cmd.Flags())
	return cmd
}

// maskRules returns the rules selected by the flags of the mask command. A
// rule given on the command line takes precedence over a rules file set in
// the environment; combining it with --rules is a configuration error.
func (a *Application) maskRules(fs *pflag.FlagSet, flags *maskFlags) ([]mask.Rule, error) {
	if fs.Changed("rules") && flags.singleRule(fs) {
		return nil, apperrors.NewConfigError("--rules and --mode cannot be used together")
	}
	if !flags.singleRule(fs) {
		return a.Config.LoadRules()
	}
	r, err := flags.rule(fs)
	if err != nil {
		return nil, err
	}
	return []mask.Rule{r}, nil
}

// runMask masks the documents of paths and reports the outcome. Rendered
// documents go to stdout unless an output directory is set; configuration,
// progress and the summary go to stderr.
func (a *Application) runMask(cmd *cobra.Command, paths []string, rules []mask.Rule) error {
	ctx, cancel := a.commandContext(cmd.Context())
	defer cancel()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if !a.Config.Quiet {
		cli.PrintMaskConfig(a.Config, rules, len(paths), errOut)
	}

	opts := cli.BatchOptions{
		Masker:      mask.NewMasker(engine.NewAttrEngine(), mask.WithLogger(a.logger)),
		Rules:       rules,
		OutDir:      a.Config.OutDir,
		Concurrency: a.Config.Concurrency,
		Logger:      a.logger,
		Stdin:       cmd.InOrStdin(),
	}

	var wg sync.WaitGroup
	var progress chan cli.DocumentResult
	if !a.Config.Quiet {
		progress = make(chan cli.DocumentResult, len(paths))
		opts.Progress = progress
		wg.Add(1)
		go cli.DisplayProgress(&wg, progress, len(paths), errOut)
	}

	results, err := cli.MaskFiles(ctx, paths, opts)
	if progress != nil {
		close(progress)
		wg.Wait()
	}

	if a.Config.OutDir == "" {
		cli.DisplayDocuments(out, results)
	}
	if !a.Config.Quiet {
		cli.DisplayMaskSummary(results, errOut)
	}
	if err != nil {
		a.logger.Debug("mask run finished with errors", logging.Err(err))
	}
	return err
}
