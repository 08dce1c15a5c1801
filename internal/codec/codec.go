// Package codec implements the wire format for stored values.
//
// Values are encoded as JSON text suitable for a single TEXT column. The
// supported domain is {string, number, boolean, null, sequence, mapping with
// string keys}, recursively. Encoding is deterministic (mapping keys are
// emitted in sorted order) and reversible: integers and floats survive a
// round-trip as distinct types, which standard json.Marshal does not
// guarantee (it would collapse 2.0 into "2").
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedType is returned by Encode when a value (at any nesting
	// depth) falls outside the JSON-compatible domain. Nothing is written.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrCorruptData is returned by Decode when stored text is not a
	// well-formed encoding. No recovery is attempted.
	ErrCorruptData = errors.New("corrupt stored value")
)

// Encode converts a native value to its textual wire form.
//
// Accepted inputs: nil, bool, string, all integer widths (values beyond
// int64 range are rejected), float32/float64 (NaN and ±Inf are rejected),
// any slice or array except []byte, and string-keyed maps. Decoded output
// from Decode always re-encodes to the identical text.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Decode converts wire text back to a native value.
//
// Results use canonical forms: nil, bool, int64, float64, string, []any and
// map[string]any. A number without fraction or exponent decodes as int64;
// anything else decodes as float64.
func Decode(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	// A valid encoding is exactly one value
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrCorruptData)
	}

	return normalize(raw), nil
}

// IsSequence reports whether Encode would treat v as a sequence (and hence
// whether it belongs in the list store rather than the scalar store).
// []byte is not a sequence: like encoding/json, it is treated as an opaque
// unit, and the codec rejects it outright.
func IsSequence(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case []any:
		return true
	case []byte:
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		return encodeString(buf, val)
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int8:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int16:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return fmt.Errorf("%w: uint %d exceeds int64 range", ErrUnsupportedType, val)
		}
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
		return nil
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
		return nil
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
		return nil
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
		return nil
	case uint64:
		if val > math.MaxInt64 {
			return fmt.Errorf("%w: uint64 %d exceeds int64 range", ErrUnsupportedType, val)
		}
		buf.WriteString(strconv.FormatUint(val, 10))
		return nil
	case float32:
		return encodeFloat(buf, float64(val))
	case float64:
		return encodeFloat(buf, val)
	case []any:
		return encodeSequence(buf, reflect.ValueOf(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return encodeMapping(buf, keys, func(k string) any { return val[k] })
	case []byte:
		return fmt.Errorf("%w: []byte", ErrUnsupportedType)
	}

	// Fall back to reflection for typed slices, arrays and string-keyed maps
	// (e.g. []string, [3]int, map[string]int).
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
		}
		return encodeSequence(buf, rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key type %s", ErrUnsupportedType, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return encodeMapping(buf, keys, func(k string) any {
			return rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
		})
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// encodeString writes a JSON string without HTML escaping (< > & stay
// literal in the wire form).
func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	// json.Encoder adds a trailing newline, remove it
	b := buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
	return nil
}

// encodeFloat writes a float so that it decodes back as a float: integral
// values keep a ".0" suffix instead of collapsing into integer syntax.
func encodeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite float %v", ErrUnsupportedType, f)
	}

	out := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	buf.WriteString(out)
	return nil
}

func encodeSequence(buf *bytes.Buffer, rv reflect.Value) error {
	buf.WriteByte('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeMapping(buf *bytes.Buffer, keys []string, value func(string) any) error {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, value(k)); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// normalize rewrites decoder output into canonical forms: json.Number
// becomes int64 or float64, containers are normalized recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		return normalizeNumber(val)
	case []any:
		for i, elem := range val {
			val[i] = normalize(elem)
		}
		return val
	case map[string]any:
		for k, elem := range val {
			val[k] = normalize(elem)
		}
		return val
	default:
		return v
	}
}

func normalizeNumber(n json.Number) any {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	// Out-of-range integers and all fraction/exponent forms land here.
	// ParseFloat only fails with ErrRange on a well-formed JSON number, in
	// which case it returns the nearest representable value.
	f, _ := strconv.ParseFloat(n.String(), 64)
	return f
}
