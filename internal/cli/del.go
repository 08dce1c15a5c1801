package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDelCommand creates the del command.
func NewDelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "del <name>",
		Short:         "Delete an entry",
		Long:          "Delete the entry stored under a name, whether scalar or list.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDel(rootOpts, cmd, args[0])
		},
	}
}

func runDel(opts *RootOptions, cmd *cobra.Command, name string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Delete(name); err != nil {
		return reportError(f, "del", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"name": name})
	}
	fmt.Fprintf(f.Writer, "OK: deleted %s\n", name)
	return nil
}
