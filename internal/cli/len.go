package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLenCommand creates the len command.
func NewLenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "len <name>",
		Short:         "Print the length of a list",
		Long:          "Print the number of elements in the list stored under a name.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLen(rootOpts, cmd, args[0])
		},
	}
}

func runLen(opts *RootOptions, cmd *cobra.Command, name string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Len(name)
	if err != nil {
		return reportError(f, "len", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]any{"name": name, "length": n})
	}
	fmt.Fprintln(f.Writer, n)
	return nil
}
