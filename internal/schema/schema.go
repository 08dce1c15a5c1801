// Package schema validates incoming documents against a CUE schema before
// anything is written.
//
// A schema is a single CUE document whose top-level fields name entries and
// constrain their values:
//
//	name: string
//	age:  int & >=0
//	tags: [...string]
//
// Entries the schema does not mention always pass: a schema constrains only
// what it names.
package schema

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrSchemaViolation marks a value rejected by the schema. Callers match it
// with errors.Is; the concrete type is Violation.
var ErrSchemaViolation = errors.New("schema violation")

// Violation is one rejected entry: the name the constraint is bound to and
// the evaluator's explanation.
type Violation struct {
	Name   string
	Detail string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Name, v.Detail)
}

func (v Violation) Unwrap() error {
	return ErrSchemaViolation
}

// Schema is a compiled CUE document ready to validate values. Values must
// be checked through the Schema that compiled the constraints; cue.Value
// unification only works within one context.
type Schema struct {
	ctx  *cue.Context
	root cue.Value
}

// LoadFile reads and compiles the CUE schema at path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return LoadBytes(data, path)
}

// LoadBytes compiles a CUE schema from memory. filename is used in error
// positions only.
func LoadBytes(data []byte, filename string) (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(data, cue.Filename(filename))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", positioned(err))
	}
	return &Schema{ctx: ctx, root: root}, nil
}

// ValidateEntry checks value against the constraint the schema binds to
// name. Names the schema does not mention pass. A failure is a Violation
// wrapping ErrSchemaViolation.
func (s *Schema) ValidateEntry(name string, value any) error {
	constraint := s.root.LookupPath(cue.MakePath(cue.Str(name)))
	if !constraint.Exists() {
		return nil
	}

	encoded := s.ctx.Encode(value)
	if value == nil {
		encoded = s.ctx.CompileString("null")
	}
	if err := encoded.Err(); err != nil {
		return Violation{Name: name, Detail: detail(err)}
	}

	if err := constraint.Unify(encoded).Validate(cue.Concrete(true)); err != nil {
		return Violation{Name: name, Detail: detail(err)}
	}
	return nil
}

// ValidateDocument checks every entry of doc and collects all violations
// rather than stopping at the first, ordered by entry name.
func (s *Schema) ValidateDocument(doc map[string]any) []Violation {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []Violation
	for _, name := range names {
		err := s.ValidateEntry(name, doc[name])
		if err == nil {
			continue
		}
		var v Violation
		if errors.As(err, &v) {
			violations = append(violations, v)
		} else {
			violations = append(violations, Violation{Name: name, Detail: err.Error()})
		}
	}
	return violations
}

// detail flattens CUE's error list into one line, one clause per cause.
func detail(err error) string {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err.Error()
	}
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// positioned prefixes the first CUE error with its source position when one
// is known, so load failures point into the schema file.
func positioned(err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}
	first := list[0]
	if pos := first.Position(); pos.IsValid() {
		return fmt.Errorf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), first.Error())
	}
	return first
}
