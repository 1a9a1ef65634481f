package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jottty/jottty/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jottty CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jottty",
		Short: "jottty - a daily journal on a datom store",
		Long: `A terminal journal. Notes are stored as entities built from
[op entity attribute value] datoms, one page per day.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $JOTTTY_CONFIG/config.toml or ~/.jottty/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides config and $JOTTTY_DB_PATH)")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewTransactCommand(opts))

	return cmd
}

// setup loads the config and installs the process logger.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = opts.formatter(cmd).Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	opts.Config = cfg

	// Configure logging based on verbose flag, then config.
	// Load has already validated the level.
	logLevel, _ := cfg.Level()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	opts.Logger = slog.New(handler)
	slog.SetDefault(opts.Logger)
	return nil
}

// formatter builds the OutputFormatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
