package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ls",
		Short:         "List all entry names",
		Long:          "List every name in the database: scalars, lists, and foreign tables, sorted.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(rootOpts, cmd)
		},
	}
}

func runLs(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	keys, err := db.Keys()
	if err != nil {
		return reportError(f, "ls", err)
	}

	if f.Format == "json" {
		return f.Success(keys)
	}
	for _, name := range keys {
		fmt.Fprintln(f.Writer, name)
	}
	return nil
}
