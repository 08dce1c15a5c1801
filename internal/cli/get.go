package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the value stored under a name",
		Long: `Print the value stored under a name.

Strings print raw; every other value prints as canonical JSON. Lists print
whole; use 'len' and the shell's 'at' for element access.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd, args[0])
		},
	}
}

func runGet(opts *RootOptions, cmd *cobra.Command, name string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	value, err := db.Get(name)
	if err != nil {
		return reportError(f, "get", err)
	}

	if f.Format == "json" {
		return f.Success(value)
	}
	fmt.Fprintln(f.Writer, formatValue(value))
	return nil
}
