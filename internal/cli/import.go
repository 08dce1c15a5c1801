package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/carvelab/satchel/internal/codec"
	"github.com/carvelab/satchel/internal/schema"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from a YAML or JSON document",
		Long: `Import entries from a document into the database.

The document must be a mapping of names to values. Files ending in .json,
.jsonc, or .hujson are parsed as JSON with comments and trailing commas
allowed; anything else is parsed as YAML. Entries are written in name order
and merge over existing data, replacing entries name by name.

With --schema, the document is validated against a CUE schema first and
nothing is written unless every entry passes:

  satchel import --schema checks.cue data.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0], schemaPath)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "CUE schema file to validate against before writing")

	return cmd
}

func runImport(opts *RootOptions, cmd *cobra.Command, path, schemaPath string) error {
	f := opts.formatter(cmd)

	doc, err := readImportDocument(path)
	if err != nil {
		if os.IsNotExist(err) {
			_ = f.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "import", err)
		}
		_ = f.Error(ErrCodeParse, err.Error(), nil)
		return WrapExitError(ExitFailure, "import", err)
	}

	if schemaPath != "" {
		sch, err := schema.LoadFile(schemaPath)
		if err != nil {
			_ = f.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load schema", err)
		}
		if violations := sch.ValidateDocument(doc); len(violations) > 0 {
			return reportViolations(f, violations)
		}
	}

	db, err := openDatabase(opts, f)
	if err != nil {
		return err
	}
	defer db.Close()

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := db.Set(name, doc[name]); err != nil {
			return reportError(f, "import", err)
		}
	}

	if f.Format == "json" {
		return f.Success(map[string]any{"file": path, "entries": len(names)})
	}
	fmt.Fprintf(f.Writer, "OK: imported %d entries from %s\n", len(names), path)
	return nil
}

// readImportDocument reads and parses an import file. JSON-family extensions
// go through hujson (comments and trailing commas allowed) and the codec
// decoder, which keeps integers integral; everything else is YAML.
func readImportDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %v", path, err)
		}
		value, err := codec.Decode(string(std))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %v", path, err)
		}
		doc, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse %s: document root must be a mapping, got %T", path, value)
		}
		return doc, nil
	default:
		var value any
		if err := yaml.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("parse %s: %v", path, err)
		}
		if value == nil {
			return map[string]any{}, nil
		}
		doc, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse %s: document root must be a mapping, got %T", path, value)
		}
		return doc, nil
	}
}

// reportViolations prints every schema violation and returns the
// validation-failed exit error. Nothing has been written at this point.
func reportViolations(f *OutputFormatter, violations []schema.Violation) error {
	messages := make([]string, len(violations))
	for i, v := range violations {
		messages[i] = v.Error()
	}

	if f.Format == "json" {
		_ = f.Error(ErrCodeSchema, fmt.Sprintf("schema validation failed: %d violation(s)", len(violations)), messages)
	} else {
		for _, msg := range messages {
			_ = f.Error(ErrCodeSchema, msg, nil)
		}
	}

	err := fmt.Errorf("%d violation(s): %w", len(violations), schema.ErrSchemaViolation)
	return WrapExitError(ExitFailure, "import", err)
}
