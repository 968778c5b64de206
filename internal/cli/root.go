package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/tscale/internal/clock"
	"github.com/roach88/tscale/internal/config"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/logging"
)

// RootOptions holds global state shared by all commands. Config, Logger,
// Verbose and Format are filled in before any subcommand runs.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Config *config.Config
	Logger *slog.Logger

	// Clock supplies the current time for now and table import.
	// Nil means the system clock.
	Clock clock.Source

	viper  *viper.Viper
	closer io.Closer
}

// NewRootCommand creates the root command for the tscale CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tscale",
		Short: "tscale - TAI and UTC time scales",
		Long: `Convert and count between the TAI and UTC time scales.

UTC instants are written 2016-12-31T23:59:60Z and TAI instants as seconds
since 1958-01-01T00:00:00(TAI), e.g. 1861920036.000000000s(TAI).
Leap seconds come from the built-in table unless --table says otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags, bound into viper with TSCALE_* environment overrides
	opts.viper = config.Bind(cmd.PersistentFlags())

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewSubCommand(opts))
	cmd.AddCommand(NewNowCommand(opts))
	cmd.AddCommand(NewTableCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	opts := &RootOptions{}
	defer opts.Close()
	return run(newRootCommand(opts), os.Stderr)
}

// run executes cmd and maps its error to an exit code. ExitErrors have
// already been reported by the command; anything else is a usage error
// from cobra and is printed here.
func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}

// setup resolves configuration and logging for the executing command.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.viper)
	if err != nil {
		f := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
		return f.Fail(ErrCodeConfig, err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose

	logger, closer, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		f := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
		return f.Fail(ErrCodeConfig, fmt.Errorf("opening log file: %w", err))
	}
	o.Logger = logger
	o.closer = closer
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	return nil
}

// Close releases the log file, if any.
func (o *RootOptions) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// formatter returns an output formatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// rules resolves the configured leap-second table.
func (o *RootOptions) rules(ctx context.Context) (*leapsec.Table, string, error) {
	table, source, err := o.Config.Rules(ctx)
	if err != nil {
		return nil, "", err
	}
	o.Logger.Debug("leap-second table loaded",
		"source", source, "entries", table.Len(), "digest", table.Digest())
	return table, source, nil
}
