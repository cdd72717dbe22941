package render

import (
	"maps"
	"slices"
	"strings"
)

// HiddenField is a hidden input emitted inside rendered forms, such as the
// mode a properties post should return to.
type HiddenField struct {
	Name  string
	Value string
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		if key := strings.TrimSpace(name); key != "" {
			clean[key] = value
		}
	}
	if len(clean) == 0 {
		return nil
	}

	result := make([]HiddenField, 0, len(clean))
	for _, name := range slices.Sorted(maps.Keys(clean)) {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
