package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/carvelab/satchel"
)

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell on the database",
		Long: `Open an interactive shell on the database with line editing, history
(~/.satchel_history), and tab completion. Type 'help' inside the shell for
available commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	sh := &shell{db: db, out: cmd.OutOrStdout()}
	return sh.run()
}

// shell is the interactive command loop. Command handlers write to out so
// they can be driven without a terminal.
type shell struct {
	db  *satchel.DB
	out io.Writer
}

func (s *shell) run() error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(completeShellCommand)

	if f, err := os.Open(shellHistoryFile()); err == nil {
		term.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(s.out, "satchel shell - %s\n", s.db.Path())
	fmt.Fprintln(s.out, "Type 'help' for available commands.")
	fmt.Fprintln(s.out)

	for {
		input, err := term.Prompt("satchel> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(s.out, "\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		term.AppendHistory(input)

		if s.dispatch(input) {
			fmt.Fprintln(s.out, "Bye!")

			break
		}
	}

	saveShellHistory(term)

	return nil
}

// dispatch runs one shell command line and reports whether the shell
// should exit.
func (s *shell) dispatch(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		s.printHelp()

	case "get":
		s.cmdGet(args)

	case "set":
		s.cmdSet(args)

	case "del", "delete":
		s.cmdDel(args)

	case "ls", "list":
		s.cmdLs()

	case "len":
		s.cmdLen(args)

	case "at":
		s.cmdAt(args)

	case "setat":
		s.cmdSetAt(args)

	case "append":
		s.cmdAppend(args)

	case "remove":
		s.cmdRemove(args)

	case "report":
		s.cmdReport(args)

	case "clear", "cls":
		fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return false
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  get <name>                  Print the value stored under a name")
	fmt.Fprintln(s.out, "  set <name> <value>          Store a value (JSON first, string fallback)")
	fmt.Fprintln(s.out, "  del <name>                  Delete an entry")
	fmt.Fprintln(s.out, "  ls                          List all entry names")
	fmt.Fprintln(s.out, "  len <name>                  Print the length of a list")
	fmt.Fprintln(s.out, "  at <name> <index>           Print a list element")
	fmt.Fprintln(s.out, "  setat <name> <index> <value> Set a list element")
	fmt.Fprintln(s.out, "  append <name> <value>       Append to a list")
	fmt.Fprintln(s.out, "  remove <name> <index>       Remove a list element")
	fmt.Fprintln(s.out, "  report <file>               Write an HTML report")
	fmt.Fprintln(s.out, "  clear                       Clear the screen")
	fmt.Fprintln(s.out, "  help                        Show this help")
	fmt.Fprintln(s.out, "  exit / quit / q             Exit")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Values parse like the CLI: 42 is an integer, [1,2] a list, bare words")
	fmt.Fprintln(s.out, "are strings. Multi-word values are rejoined with single spaces.")
}

func (s *shell) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: get <name>")

		return
	}

	value, err := s.db.Get(args[0])
	if err != nil {
		if errors.Is(err, satchel.ErrNotFound) {
			fmt.Fprintln(s.out, "(not found)")

			return
		}

		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintln(s.out, formatValue(value))
}

func (s *shell) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: set <name> <value>")

		return
	}

	name := args[0]

	if err := s.db.Set(name, parseValue(strings.Join(args[1:], " "))); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: set %s\n", name)
}

func (s *shell) cmdDel(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: del <name>")

		return
	}

	if err := s.db.Delete(args[0]); err != nil {
		if errors.Is(err, satchel.ErrNotFound) {
			fmt.Fprintf(s.out, "OK: %s did not exist\n", args[0])

			return
		}

		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: deleted %s\n", args[0])
}

func (s *shell) cmdLs() {
	keys, err := s.db.Keys()
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	if len(keys) == 0 {
		fmt.Fprintln(s.out, "(empty)")

		return
	}

	for _, name := range keys {
		fmt.Fprintln(s.out, name)
	}
}

func (s *shell) cmdLen(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: len <name>")

		return
	}

	n, err := s.db.Len(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintln(s.out, n)
}

func (s *shell) cmdAt(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: at <name> <index>")

		return
	}

	index, err := parseListIndex(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	value, err := s.db.GetIndex(args[0], index)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintln(s.out, formatValue(value))
}

func (s *shell) cmdSetAt(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Usage: setat <name> <index> <value>")

		return
	}

	index, err := parseListIndex(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	if err := s.db.SetIndex(args[0], index, parseValue(strings.Join(args[2:], " "))); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: set %s[%d]\n", args[0], index)
}

func (s *shell) cmdAppend(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: append <name> <value>")

		return
	}

	name := args[0]

	if err := s.db.Append(name, parseValue(strings.Join(args[1:], " "))); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: appended to %s\n", name)
}

func (s *shell) cmdRemove(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: remove <name> <index>")

		return
	}

	index, err := parseListIndex(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	if err := s.db.RemoveAt(args[0], index); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: removed %s[%d]\n", args[0], index)
}

func (s *shell) cmdReport(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: report <file>")

		return
	}

	if err := s.db.WriteHTMLReport(args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)

		return
	}

	fmt.Fprintf(s.out, "OK: wrote report to %s\n", args[0])
}

var shellCommands = []string{
	"get", "set", "del", "delete", "ls", "list", "len",
	"at", "setat", "append", "remove", "report",
	"clear", "cls", "help", "exit", "quit", "q",
}

// completeShellCommand provides tab completion for command names.
func completeShellCommand(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".satchel_history")
}

func saveShellHistory(term *liner.State) {
	if path := shellHistoryFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			term.WriteHistory(f)
			f.Close()
		}
	}
}
