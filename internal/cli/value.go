package cli

import (
	"fmt"
	"strconv"

	"github.com/carvelab/satchel/internal/codec"
)

// parseValue interprets a command-line value literal. JSON wins: 42 is an
// integer, 9.99 a float, true a boolean, null nothing, [1,2] a list,
// {"a":1} a mapping. Anything that is not valid JSON is taken as a plain
// string, so bare words need no quoting. To store a string that looks like
// a number, quote it: '"42"'.
func parseValue(s string) any {
	v, err := codec.Decode(s)
	if err != nil {
		return s
	}
	return v
}

// formatValue renders a value for text output: bare strings stay raw,
// everything else is canonical JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	text, err := codec.Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return text
}

// parseListIndex parses a list index argument.
func parseListIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: not an integer", s)
	}
	return i, nil
}
