// Package app wires configuration, logging and the command tree of the
// fieldfmt binary.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agbru/fieldfmt/internal/config"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/ui"
)

// Application represents the fieldfmt application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	In        io.Reader

	args   []string
	logger logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithInput sets the reader used for standard input.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates an Application for the command line args, whose first element
// is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) *Application {
	app := &Application{
		Config:    config.DefaultAppConfig(),
		ErrWriter: errWriter,
		In:        os.Stdin,
		logger:    logging.Nop(),
	}
	if len(args) > 0 {
		app.args = args[1:]
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run executes the command selected by the arguments and returns the process
// exit code. SIGINT and SIGTERM cancel the running command.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	root := a.rootCommand()
	root.SetArgs(a.args)
	root.SetOut(out)
	root.SetErr(a.ErrWriter)
	root.SetIn(a.In)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		return apperrors.ExitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

func (a *Application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldfmt",
		Short:         "Format prices and byte sizes, and attach input masks to HTML form fields",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate(FormatVersion() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("%v", err)
	})
	a.Config.RegisterGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		a.priceCommand(),
		a.bytesCommand(),
		a.maskCommand(),
		a.defaultsCommand(),
		a.serveCommand(),
		a.replCommand(),
	)
	return root
}

// setup resolves the configuration of cmd and initializes the theme and the
// logger from it.
func (a *Application) setup(cmd *cobra.Command) error {
	if err := a.Config.Resolve(cmd.Flags()); err != nil {
		return err
	}
	ui.InitTheme(a.Config.NoColor)

	level := a.Config.Level()
	zerolog.SetGlobalLevel(level)
	console := zerolog.ConsoleWriter{Out: a.ErrWriter, NoColor: ui.GetCurrentTheme().Name == ui.NoColorTheme.Name, TimeFormat: time.Kitchen}
	a.logger = logging.NewZerologAdapter(zerolog.New(console).Level(level).With().Timestamp().Str("component", cmd.Name()).Logger())
	a.logger.Debug("configuration resolved",
		logging.String("command", cmd.CommandPath()),
		logging.Int("concurrency", a.Config.Concurrency))
	return nil
}

// commandContext bounds ctx with the configured timeout.
func (a *Application) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.Config.Timeout)
}
