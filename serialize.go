package launchargs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Serialize converts an argument value into the string handed to the launch
// mechanism. Booleans become "true"/"false", numbers their shortest decimal
// form and strings pass through unchanged. Sequences and mappings become
// compact JSON that parses back into an equivalent structure.
func Serialize(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case json.Number:
		return typed.String(), nil
	case int:
		return strconv.FormatInt(int64(typed), 10), nil
	case int8:
		return strconv.FormatInt(int64(typed), 10), nil
	case int16:
		return strconv.FormatInt(int64(typed), 10), nil
	case int32:
		return strconv.FormatInt(int64(typed), 10), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case uint:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(typed), 10), nil
	case uint64:
		return strconv.FormatUint(typed, 10), nil
	case float32:
		return formatFloat(float64(typed), 32), nil
	case float64:
		return formatFloat(typed, 64), nil
	case deletionMarker:
		return "", fmt.Errorf("%w: deletion marker cannot be serialized", ErrInvalidValue)
	case nil:
		return "", fmt.Errorf("%w: nil", ErrInvalidValue)
	}

	normalized, err := Normalize(value)
	if err != nil {
		return "", err
	}
	switch normalized.(type) {
	case []any, map[string]any:
		return marshalCompact(normalized)
	default:
		return Serialize(normalized)
	}
}

// SerializeArgs serializes every value in args, keyed by argument name.
func SerializeArgs(args Args) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, key := range args.Keys() {
		serialized, err := Serialize(args[key])
		if err != nil {
			return nil, &ValueError{Key: key, Err: err}
		}
		out[key] = serialized
	}
	return out, nil
}

func formatFloat(value float64, bitSize int) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	}
	// Same cutoffs as encoding/json so nested and top-level numbers agree.
	format := byte('f')
	if abs := math.Abs(value); abs != 0 {
		if bitSize == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bitSize == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	out := strconv.FormatFloat(value, format, -1, bitSize)
	if format == 'e' {
		// 1e-07 becomes 1e-7.
		if n := len(out); n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out = out[:n-2] + out[n-1:]
		}
	}
	return out
}

func marshalCompact(value any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", fmt.Errorf("launchargs: encode structured value: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
