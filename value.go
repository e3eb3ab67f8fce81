package launchargs

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-launchargs/layering"
)

// Args maps launch argument names to values. Values are strings, booleans,
// numbers, []any or map[string]any, nested arbitrarily.
type Args map[string]any

type deletionMarker struct{}

func (deletionMarker) String() string { return "<delete>" }

// Delete marks a key for removal when used as a value in Store.Modify. It
// never appears in resolved arguments.
var Delete any = deletionMarker{}

// IsDelete reports whether value is the deletion marker.
func IsDelete(value any) bool {
	_, ok := value.(deletionMarker)
	return ok
}

var (
	// ErrInvalidPatch indicates Store.Modify received something other than a
	// string keyed mapping.
	ErrInvalidPatch = errors.New("launchargs: patch must be a string keyed mapping")
	// ErrInvalidValue indicates a value outside the supported argument types.
	ErrInvalidValue = errors.New("launchargs: unsupported argument value")
	// ErrDeleteNotAllowed indicates a deletion marker where only plain values
	// are accepted (on-site and baseline arguments).
	ErrDeleteNotAllowed = errors.New("launchargs: deletion marker not allowed here")
)

// ValueError attaches the offending key to a value validation failure.
type ValueError struct {
	Key string
	Err error
}

func (e *ValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("launchargs: key %q: %v", e.Key, e.Err)
}

func (e *ValueError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Clone returns a deep copy of args. A nil map clones to nil.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	return Args(layering.Clone(map[string]any(a)))
}

// Keys returns the argument names sorted alphabetically.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeArgs validates every value in args and returns a detached copy
// holding only canonical shapes. When allowDelete is false a deletion marker
// is reported as ErrDeleteNotAllowed.
func NormalizeArgs(args map[string]any, allowDelete bool) (Args, error) {
	out := make(Args, len(args))
	for _, key := range sortedKeys(args) {
		value := args[key]
		if IsDelete(value) {
			if !allowDelete {
				return nil, &ValueError{Key: key, Err: ErrDeleteNotAllowed}
			}
			out[key] = Delete
			continue
		}
		normalized, err := Normalize(value)
		if err != nil {
			return nil, &ValueError{Key: key, Err: err}
		}
		out[key] = normalized
	}
	return out, nil
}

// Normalize converts value into one of the canonical argument shapes:
// string, bool, a Go number, json.Number, []any or map[string]any. Typed
// slices and string keyed maps are converted element by element and
// non-nil pointers are dereferenced. The result never aliases value.
func Normalize(value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidValue)
	}
	switch typed := value.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return typed, nil
	case deletionMarker:
		return nil, fmt.Errorf("%w: nested deletion marker", ErrInvalidValue)
	}
	return normalizeValue(reflect.ValueOf(value))
}

func normalizeValue(v reflect.Value) (any, error) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil", ErrInvalidValue)
		}
		return Normalize(v.Elem().Interface())
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32:
		return float32(v.Float()), nil
	case reflect.Float64:
		return v.Float(), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return []any{}, nil
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := Normalize(v.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrInvalidValue, v.Type().Key())
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			elem, err := Normalize(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, v.Type())
	}
}

// asStringMap converts any string keyed map into a plain map without
// validating its values. It reports false for nil and non-map inputs.
func asStringMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case Args:
		if typed == nil {
			return nil, false
		}
		return map[string]any(typed), true
	case map[string]any:
		if typed == nil {
			return nil, false
		}
		return typed, true
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String || v.IsNil() {
		return nil, false
	}
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
