package manifest

import (
	"encoding/json"
	"errors"
)

var errNotObject = errors.New("expected a JSON object")

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// decodeField decodes obj[key] into dst and reports whether the key was
// present. A value that does not fit T leaves dst untouched and appends key
// to invalid.
func decodeField[T any](obj map[string]json.RawMessage, key string, dst *T, invalid *[]string) bool {
	raw, ok := obj[key]
	if !ok {
		return false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		*invalid = append(*invalid, key)
		return true
	}
	*dst = v
	return true
}

// Falsy reports whether raw is null, false, zero or the empty string.
func Falsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
