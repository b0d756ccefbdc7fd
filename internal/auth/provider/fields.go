package provider

import (
	"strconv"

	"github.com/icebob/kantab-sub001/internal/auth"
)

// StringField reads the first present key from a raw profile as a string.
// Numeric ids (github) are rendered in decimal.
func StringField(raw auth.RawProfile, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

// NestedField reads a string at a dotted path, e.g. facebook's
// picture.data.url.
func NestedField(raw auth.RawProfile, path ...string) string {
	cur := map[string]any(raw)
	for i, key := range path {
		if i == len(path)-1 {
			s, _ := cur[key].(string)
			return s
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}
