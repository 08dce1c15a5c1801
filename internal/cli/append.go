package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "append <name> <value>",
		Short: "Append a value to a list",
		Long: `Append a value to the list stored under a name.

The value is parsed like set. If the name is absent, a one-element list is
created; if it holds a scalar, the scalar is replaced by the new list.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runAppend(opts *RootOptions, cmd *cobra.Command, name, literal string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Append(name, parseValue(literal)); err != nil {
		return reportError(f, "append", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"name": name})
	}
	fmt.Fprintf(f.Writer, "OK: appended to %s\n", name)
	return nil
}
