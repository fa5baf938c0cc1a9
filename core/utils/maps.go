package utils

import "strings"

// FirstString returns the first non-blank value among keys of m, trimmed.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

// Map returns m[key] as a map, or nil.
func Map(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

// Maps returns m[key] as a slice of maps, skipping non-map elements.
func Maps(m map[string]any, key string) []map[string]any {
	return ToMaps(m[key])
}

// ToMaps converts a decoded JSON array into its object elements.
func ToMaps(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
