package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name> <index>",
		Short: "Remove a list element by index",
		Long: `Remove the element at an index from the list stored under a name.

Later elements shift down to close the gap. Removing the last element leaves
the name absent.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runRemove(opts *RootOptions, cmd *cobra.Command, name, rawIndex string) error {
	f := opts.formatter(cmd)

	index, err := parseListIndex(rawIndex)
	if err != nil {
		return reportError(f, "remove", err)
	}

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RemoveAt(name, index); err != nil {
		return reportError(f, "remove", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]any{"name": name, "index": index})
	}
	fmt.Fprintf(f.Writer, "OK: removed %s[%d]\n", name, index)
	return nil
}
