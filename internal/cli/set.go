package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a value under a name",
		Long: `Store a value under a name.

The value is parsed as JSON first, falling back to a plain string:

  satchel set greeting hello        stores the string "hello"
  satchel set answer 42             stores the integer 42
  satchel set pi 3.14               stores the float 3.14
  satchel set tags '["a","b"]'      stores a list
  satchel set user '{"name":"Ada"}' stores a mapping

A JSON array becomes a list; anything else becomes a scalar. The previous
entry under the name, of either kind, is replaced.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runSet(opts *RootOptions, cmd *cobra.Command, name, literal string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Set(name, parseValue(literal)); err != nil {
		return reportError(f, "set", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"name": name})
	}
	fmt.Fprintf(f.Writer, "OK: set %s\n", name)
	return nil
}
