package engine

import (
	"cmp"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05.000000"

// maxIndirections bounds pointer and driver.Valuer unwrapping.
const maxIndirections = 8

// Pair is one entry of an associative argument. A string key renders as
// `key` = value, a nil or integer key renders the bare value.
type Pair struct {
	Key   any
	Value any
}

// Assoc is an ordered associative argument for ?a placeholders. Entries are
// rendered in slice order.
type Assoc []Pair

// Named returns a pair rendered as `key` = value.
func Named(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// Positional returns a pair rendered as the bare value.
func Positional(value any) Pair {
	return Pair{Value: value}
}

func (e *Engine) format(ph placeholder, v any) (string, error) {
	switch ph.Tag {
	case TagInt:
		return e.formatInt(ph, v)
	case TagFloat:
		return e.formatFloat(ph, v)
	case TagArray:
		return e.formatArray(ph, v)
	case TagIdentifier:
		return e.formatIdentifier(ph, v)
	default:
		return e.formatScalar(ph, v)
	}
}

// resolve unwraps driver.Valuer implementations and pointers down to the
// value they stand for. Nil pointers resolve to nil.
func resolve(v any) (any, error) {
	for i := 0; i < maxIndirections; i++ {
		if v == nil {
			return nil, nil
		}
		rv := reflect.ValueOf(v)
		if valuer, ok := v.(driver.Valuer); ok {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, nil
			}
			val, err := valuer.Value()
			if err != nil {
				return nil, err
			}
			v = val
			continue
		}
		if rv.Kind() != reflect.Pointer {
			return v, nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		v = rv.Elem().Interface()
	}
	return nil, ErrUnsupportedValue
}

// formatScalar is the default rule: NULL, bare numbers, or a single-quoted
// literal. Quotes inside the literal are left alone unless the engine was
// built with WithStringEscaping.
func (e *Engine) formatScalar(ph placeholder, v any) (string, error) {
	if IsSkip(v) {
		return "", ph.fail(v, ErrNestedSkip)
	}
	v, err := resolve(v)
	if err != nil {
		return "", ph.fail(v, err)
	}

	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return e.literal(x), nil
	case []byte:
		return e.literal(string(x)), nil
	case bool:
		return boolLiteral(x), nil
	case time.Time:
		return e.quote(x.Format(timeLayout)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return floatLiteral(ph, v, rv.Float(), rv.Type().Bits())
	case reflect.String:
		return e.literal(rv.String()), nil
	case reflect.Bool:
		return boolLiteral(rv.Bool()), nil
	}

	if s, ok := v.(fmt.Stringer); ok {
		return e.literal(s.String()), nil
	}
	return "", ph.fail(v, ErrUnsupportedValue)
}

func (e *Engine) formatInt(ph placeholder, v any) (string, error) {
	v, err := resolve(v)
	if err != nil {
		return "", ph.fail(v, err)
	}
	if v == nil {
		return "NULL", nil
	}
	if b, ok := v.([]byte); ok {
		return intFromString(ph, v, string(b))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return truncate(ph, v, rv.Float())
	case reflect.Bool:
		return boolLiteral(rv.Bool()), nil
	case reflect.String:
		return intFromString(ph, v, rv.String())
	}
	return "", ph.fail(v, ErrUnsupportedValue)
}

func (e *Engine) formatFloat(ph placeholder, v any) (string, error) {
	v, err := resolve(v)
	if err != nil {
		return "", ph.fail(v, err)
	}
	if v == nil {
		return "NULL", nil
	}
	if b, ok := v.([]byte); ok {
		return floatFromString(ph, v, string(b))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return floatLiteral(ph, v, float64(rv.Int()), 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return floatLiteral(ph, v, float64(rv.Uint()), 64)
	case reflect.Float32, reflect.Float64:
		return floatLiteral(ph, v, rv.Float(), rv.Type().Bits())
	case reflect.Bool:
		return boolLiteral(rv.Bool()), nil
	case reflect.String:
		return floatFromString(ph, v, rv.String())
	}
	return "", ph.fail(v, ErrUnsupportedValue)
}

// formatArray renders lists as comma-separated values and associative
// arguments as comma-separated `key` = value assignments. Plain Go maps are
// rendered in sorted key order.
func (e *Engine) formatArray(ph placeholder, v any) (string, error) {
	v, err := resolve(v)
	if err != nil {
		return "", ph.fail(v, err)
	}

	var parts []string
	if assoc, ok := v.(Assoc); ok {
		parts = make([]string, 0, len(assoc))
		for _, p := range assoc {
			part, err := e.formatPair(ph, p.Key, p.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return strings.Join(parts, ", "), nil
	}

	if v == nil {
		return "", ph.fail(v, ErrUnsupportedValue)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts = make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			part, err := e.formatScalar(ph, rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
	case reflect.Map:
		keys, ok := sortedKeys(rv)
		if !ok {
			return "", ph.fail(v, ErrUnsupportedValue)
		}
		parts = make([]string, 0, len(keys))
		for _, k := range keys {
			part, err := e.formatPair(ph, k.Interface(), rv.MapIndex(k).Interface())
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
	default:
		return "", ph.fail(v, ErrUnsupportedValue)
	}
	return strings.Join(parts, ", "), nil
}

func (e *Engine) formatPair(ph placeholder, key, value any) (string, error) {
	val, err := e.formatScalar(ph, value)
	if err != nil {
		return "", err
	}
	if key == nil {
		return val, nil
	}

	rk := reflect.ValueOf(key)
	switch rk.Kind() {
	case reflect.String:
		return e.dialect.QuoteIdentifier(rk.String()) + " = " + val, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val, nil
	}
	return "", ph.fail(key, ErrUnsupportedValue)
}

func (e *Engine) formatIdentifier(ph placeholder, v any) (string, error) {
	v, err := resolve(v)
	if err != nil {
		return "", ph.fail(v, err)
	}
	if s, ok := identifierString(v); ok {
		return e.dialect.QuoteIdentifier(s), nil
	}

	if v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			parts := make([]string, rv.Len())
			for i := range parts {
				s, ok := identifierString(rv.Index(i).Interface())
				if !ok {
					return "", &IdentifierTypeError{Position: ph.Position, Value: v}
				}
				parts[i] = e.dialect.QuoteIdentifier(s)
			}
			return strings.Join(parts, ", "), nil
		}
	}
	return "", &IdentifierTypeError{Position: ph.Position, Value: v}
}

func identifierString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func (e *Engine) literal(s string) string {
	if isNumeric(s) {
		return s
	}
	return e.quote(s)
}

func (e *Engine) quote(s string) string {
	if e.escapeStrings {
		return e.dialect.QuoteString(s)
	}
	return "'" + s + "'"
}

func boolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func floatLiteral(ph placeholder, v any, f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ph.fail(v, ErrOutOfRange)
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}

// truncate converts f to an integer literal, rounding toward zero.
func truncate(ph placeholder, v any, f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ph.fail(v, ErrOutOfRange)
	}
	t := math.Trunc(f)
	if t < -(1<<63) || t >= 1<<63 {
		return "", ph.fail(v, ErrOutOfRange)
	}
	return strconv.FormatInt(int64(t), 10), nil
}

func intFromString(ph placeholder, v any, s string) (string, error) {
	if !isNumeric(s) {
		return "", ph.fail(v, ErrNotNumeric)
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", ph.fail(v, ErrOutOfRange)
	}
	return truncate(ph, v, f)
}

func floatFromString(ph placeholder, v any, s string) (string, error) {
	if !isNumeric(s) {
		return "", ph.fail(v, ErrNotNumeric)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", ph.fail(v, ErrOutOfRange)
	}
	return floatLiteral(ph, v, f, 64)
}

func sortedKeys(m reflect.Value) ([]reflect.Value, bool) {
	keys := m.MapKeys()
	switch m.Type().Key().Kind() {
	case reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	default:
		return nil, false
	}
	return keys, true
}
