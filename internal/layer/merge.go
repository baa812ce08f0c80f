// Package layer implements the merge engine behind simpleconf.
//
// Configurations are plain nested maps. Merging folds them left to right:
// nested maps merge key by key, every other value (scalars, lists, nil) is
// replaced by the later source.
package layer

// Merge folds configs into a new map, later configs winning on conflicts.
// None of the inputs are modified and the result shares no maps or slices
// with them.
func Merge(configs ...map[string]any) map[string]any {
	if len(configs) == 0 {
		return make(map[string]any)
	}

	result := Clone(configs[0])
	if result == nil {
		result = make(map[string]any)
	}
	for _, cfg := range configs[1:] {
		result = DeepMerge(result, cfg)
	}
	return result
}

// DeepMerge recursively merges src into dst and returns dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
// src is never modified; values taken from it are copied.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			// New key, take a copy of src's value
			dst[key] = CloneValue(srcVal)
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			// Both sides are maps: merge key by key
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			// Scalars, lists and nil from src replace dst outright
			dst[key] = CloneValue(srcVal)
		}
	}

	return dst
}

// Clone creates a deep copy of a configuration map.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = CloneValue(val)
	}
	return dst
}

// CloneValue deep-copies maps and lists; other values are returned as is.
func CloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = CloneValue(val)
	}
	return dst
}
