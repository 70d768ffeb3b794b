package modules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Content is the untyped payload of a block as delivered by the CMS.
type Content map[string]any

// String returns the trimmed string at key. Numbers and booleans are formatted.
func (c Content) String(key string) string {
	return stringValue(c[key])
}

// StringOr returns String(key) or fallback when empty.
func (c Content) StringOr(key, fallback string) string {
	if v := c.String(key); v != "" {
		return v
	}
	return fallback
}

// Bool interprets key as a boolean.
func (c Content) Bool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Map returns the nested object at key.
func (c Content) Map(key string) Content {
	if m, ok := c[key].(map[string]any); ok {
		return Content(m)
	}
	return Content{}
}

// Items returns the list at key as Content values; non-object entries are skipped.
func (c Content) Items(key string) []Content {
	raw, ok := c[key].([]any)
	if !ok {
		return nil
	}
	items := make([]Content, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, Content(m))
		}
	}
	return items
}

// Strings returns the list at key as strings.
func (c Content) Strings(key string) []string {
	raw, ok := c[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JSON returns the compact JSON encoding, used by diagnostic blocks.
func (c Content) JSON() string {
	if c == nil {
		return "{}"
	}
	data, err := json.Marshal(map[string]any(c))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(c))
	}
	return string(data)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
