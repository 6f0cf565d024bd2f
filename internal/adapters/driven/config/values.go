// Package config holds the value conversions shared by the config stores.
// Stores keep flat dot keys such as "retrieval.k"; values arrive as TOML
// decodes them, as Go literals, or as strings typed on the command line.
package config

import (
	"strconv"
	"strings"
)

// String returns val when it is a string.
func String(val any) string {
	s, _ := val.(string)
	return s
}

// Float converts numeric values and numeric strings.
// TOML decodes integers as int64 and floats as float64.
func Float(val any) float64 {
	switch v := val.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int truncates Float.
func Int(val any) int {
	return int(Float(val))
}

// Bool converts booleans and strings accepted by strconv.ParseBool.
func Bool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// StringSlice accepts TOML arrays and comma-separated strings.
func StringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
