package layer

import (
	"sort"
	"strconv"
	"strings"
)

// Separator splits the segments of a setting path.
const Separator = "."

// GetByPath retrieves a value from a nested map using a dot-separated path.
// A numeric segment indexes into a list.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, Separator) {
		switch node := current.(type) {
		case map[string]any:
			val, exists := node[part]
			if !exists {
				return nil, false
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Intermediate maps are created, replacing any non-map value in the way.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}

	parts := strings.Split(path, Separator)
	current := data

	// Walk to the parent of the final segment
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			// Missing or not a map: start a fresh level
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	// Set the leaf
	current[parts[len(parts)-1]] = value
}

// FlattenMap flattens a nested map into a single-level map with dot-separated keys.
// Lists are kept as leaf values.
func FlattenMap(data map[string]any) map[string]any {
	result := make(map[string]any)
	flattenMapRecursive(data, "", result)
	return result
}

func flattenMapRecursive(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + Separator + key
		}

		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			// Descend into non-empty maps
			flattenMapRecursive(nested, fullKey, result)
		} else {
			// Empty maps, lists and scalars are leaves
			result[fullKey] = CloneValue(val)
		}
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
