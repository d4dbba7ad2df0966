package records

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTag trims t and applies NFC normalization, so visually equal
// emojis compare equal on every device.
func NormalizeTag(t string) string {
	return norm.NFC.String(strings.TrimSpace(t))
}

// SanitizeTags trims every tag, drops empty ones, applies NFC normalization
// and removes duplicates while keeping the first occurrence. The result is
// never nil.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// tagDecoder handles one wire shape of the tags field. ok=false means the
// shape did not match and the next decoder should be tried.
type tagDecoder func(v any) (tags []string, ok bool)

// tagDecoders are tried in order.
var tagDecoders = []tagDecoder{
	decodeStringList,
	decodeAnyList,
	decodeBinaryJSON,
	decodeString,
}

// DecodeTags normalizes the tags field whatever shape it arrived in: a string
// list, a single string (JSON list, comma separated, or one bare tag) or a
// binary JSON list. Unknown or malformed input yields an empty list.
func DecodeTags(v any) []string {
	for _, dec := range tagDecoders {
		if tags, ok := dec(v); ok {
			return SanitizeTags(tags)
		}
	}
	return []string{}
}

func decodeStringList(v any) ([]string, bool) {
	tags, ok := v.([]string)
	return tags, ok
}

func decodeAnyList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags, true
}

func decodeBinaryJSON(v any) ([]string, bool) {
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, true
	}
	return tags, true
}

func decodeString(v any) ([]string, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err != nil {
			return nil, true
		}
		return tags, true
	}
	if strings.Contains(s, ",") {
		return strings.Split(s, ","), true
	}
	return []string{s}, true
}
