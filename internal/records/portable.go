package records

import (
	"encoding/base64"
	"encoding/json"
)

// binaryKey marks a binary value inside JSON-like field trees.
const binaryKey = "@binary"

// ToPortable rewrites a field value so it survives JSON-like transports:
// []string becomes []any and []byte becomes {"@binary": base64}. Maps and
// lists are converted recursively; other values pass through unchanged.
func ToPortable(v any) any {
	switch val := v.(type) {
	case []byte:
		return map[string]any{binaryKey: base64.StdEncoding.EncodeToString(val)}
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, it := range val {
			out[i] = ToPortable(it)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, it := range val {
			out[k] = ToPortable(it)
		}
		return out
	default:
		return v
	}
}

// FromPortable reverses ToPortable. A map holding only a valid "@binary"
// string is restored to []byte.
func FromPortable(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, it := range val {
			out[i] = FromPortable(it)
		}
		return out
	case map[string]any:
		if enc, ok := val[binaryKey].(string); ok && len(val) == 1 {
			if b, err := base64.StdEncoding.DecodeString(enc); err == nil {
				return b
			}
		}
		out := make(map[string]any, len(val))
		for k, it := range val {
			out[k] = FromPortable(it)
		}
		return out
	default:
		return v
	}
}

// MarshalFields encodes a field map as portable JSON.
func MarshalFields(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	return json.Marshal(ToPortable(fields))
}

// UnmarshalFields decodes MarshalFields output.
func UnmarshalFields(data []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	out, _ := FromPortable(fields).(map[string]any)
	return out, nil
}
