package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/config"
	"github.com/roach88/telescope/internal/ir"
	"github.com/roach88/telescope/internal/store"
)

// RootOptions holds global flags for all commands, and the settings
// resolved from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Timezone   string

	Config   config.Config
	Location *time.Location
	Logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the telescope CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "telescope",
		Short: "Telescope - inspect recorded application entries",
		Long: `Record, list and prune inspection entries in a SQLite store.

Entries are listed newest first and filtered with tag queries:
  status:403,method:POST        either tag
  status:403;method:POST        both tags
  status:403|created:2024-03    either segment
  created:>2024-01-01           created after the start of that day`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "timezone", "", "IANA time zone for dates (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewGuessCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))

	return cmd
}

// resolve validates global flags, loads the config file and applies flag
// overrides, then sets up logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Timezone != "" {
		cfg.Timezone = o.Timezone
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.Config = cfg
	o.Location = loc
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.Config.Database,
		store.WithLocation(o.Location),
		store.WithLogger(o.Logger),
	)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("using database", "path", o.Config.Database, "timezone", o.Location.String())
	return st, nil
}

// pageSize returns limit, or the configured page size when limit is unset.
func (o *RootOptions) pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	if o.Config.PageSize > 0 {
		return o.Config.PageSize
	}
	return ir.DefaultLimit
}
