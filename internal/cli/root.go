package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carvelab/satchel"
)

// Version is reported by --version.
const Version = "0.1.0"

// RootOptions holds the resolved global options for all commands. Database
// and Format start from flag defaults and are overlaid with config file
// values in PersistentPreRunE; explicitly set flags win.
type RootOptions struct {
	Database   string
	ConfigPath string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the satchel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "satchel",
		Short:   "Satchel - schema-light storage over a SQLite file",
		Long:    "Store, inspect and report on named values and lists in a single SQLite file.",
		Version: Version,
		// Errors are reported by the commands themselves (through their
		// OutputFormatter) or by Execute; cobra must not print them twice.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		workDir, err := os.Getwd()
		if err != nil {
			return WrapExitError(ExitCommandError, "resolving working directory", err)
		}

		cfg, sources, err := LoadConfig(workDir, opts.ConfigPath, os.Environ())
		if err != nil {
			return WrapExitError(ExitCommandError, "loading config", err)
		}

		// Flags the user actually set win over config files.
		if !cmd.PersistentFlags().Changed("db") {
			opts.Database = cfg.Database
		}
		if !cmd.PersistentFlags().Changed("format") && cfg.Format != "" {
			opts.Format = cfg.Format
		}

		if !isValidFormat(opts.Format) {
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		}

		if opts.Verbose {
			if sources.Global != "" {
				fmt.Fprintf(c.ErrOrStderr(), "config: %s\n", sources.Global)
			}
			if sources.Project != "" {
				fmt.Fprintf(c.ErrOrStderr(), "config: %s\n", sources.Project)
			}
		}
		return nil
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Database, "db", DefaultDatabase, "database file")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (JWCC)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))
	cmd.AddCommand(NewLsCommand(opts))
	cmd.AddCommand(NewLenCommand(opts))
	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	// ExitErrors were already reported through the command's formatter.
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitFailure
}

// formatter builds the per-command OutputFormatter bound to the command's
// writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openDatabase opens the configured database file, reporting failures
// through the formatter.
func openDatabase(opts *RootOptions, f *OutputFormatter) (*satchel.DB, error) {
	f.VerboseLog("database: %s", opts.Database)
	db, err := satchel.Open(opts.Database)
	if err != nil {
		msg := fmt.Sprintf("opening database %s: %v", opts.Database, err)
		_ = f.Error(ErrCodeDatabase, msg, nil)
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return db, nil
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
