package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report [file]",
		Short: "Render an HTML report of the database",
		Long: `Render a self-contained HTML report of everything in the database:
scalars, lists, and foreign tables, with truncation notes for oversized
tables. Without a file argument the HTML goes to stdout; with one it is
written atomically.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runReport(rootOpts, cmd, path)
		},
	}
}

func runReport(opts *RootOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	if path == "" {
		doc, err := db.HTMLReport()
		if err != nil {
			return reportError(f, "report", err)
		}
		if f.Format == "json" {
			return f.Success(map[string]string{"html": doc})
		}
		_, err = io.WriteString(f.Writer, doc)
		return err
	}

	if err := db.WriteHTMLReport(path); err != nil {
		// Snapshot errors keep their own codes; anything else here is the
		// file write failing.
		if code := errorCode(err); code != ErrCodeGeneric {
			return reportError(f, "report", err)
		}
		_ = f.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "report", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"file": path})
	}
	fmt.Fprintf(f.Writer, "OK: wrote report to %s\n", path)
	return nil
}
