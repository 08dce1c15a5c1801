// satchel is the command-line interface to satchel database files: get and
// set entries, import and export documents, render reports, or work
// interactively in a shell. Run 'satchel --help' for the command list.
package main

import (
	"os"

	"github.com/carvelab/satchel/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
