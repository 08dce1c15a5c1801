package cli

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the database as YAML",
		Long: `Export every entry in the database as a YAML document.

The document covers scalars, lists, and foreign tables, keyed by name and
sorted. Without a file argument the document goes to stdout; with one it is
written atomically, so a crash cannot leave a torn file behind.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(rootOpts, cmd, path)
		},
	}
}

func runExport(opts *RootOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := db.AllData()
	if err != nil {
		return reportError(f, "export", err)
	}

	if path == "" {
		// To stdout: the document itself is the output. JSON mode wraps the
		// snapshot in the response envelope instead.
		if f.Format == "json" {
			return f.Success(data)
		}
		doc, err := yaml.Marshal(data)
		if err != nil {
			_ = f.Error(ErrCodeGeneric, fmt.Sprintf("encode YAML: %v", err), nil)
			return WrapExitError(ExitCommandError, "export", err)
		}
		_, err = f.Writer.Write(doc)
		return err
	}

	doc, err := yaml.Marshal(data)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, fmt.Sprintf("encode YAML: %v", err), nil)
		return WrapExitError(ExitCommandError, "export", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(doc)); err != nil {
		_ = f.Error(ErrCodeWriteFailed, fmt.Sprintf("write %s: %v", path, err), nil)
		return WrapExitError(ExitCommandError, "export", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]any{"file": path, "entries": len(data)})
	}
	fmt.Fprintf(f.Writer, "OK: exported %d entries to %s\n", len(data), path)
	return nil
}
