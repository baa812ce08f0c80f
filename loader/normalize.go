package loader

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// normalizeHook lets a format convert its own scalar types before the
// generic rules run. It reports whether it handled v.
type normalizeHook func(v any) (any, bool)

// number is satisfied by both encoding/json.Number and go-json's Number.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// Normalize returns a deep copy of m restricted to the normalized value set:
// string, int64, float64, bool, nil, time.Time, []any and map[string]any.
// Integers of every kind widen to int64, float32 to float64, map keys are
// stringified and typed slices become []any. Anything else is rejected with
// a *ValueError.
func Normalize(m map[string]any) (map[string]any, error) {
	return normalizeMap(m, nil)
}

func normalizeMap(m map[string]any, hook normalizeHook) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		nv, err := normalizeValue(v, k, hook)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func normalizeValue(v any, path string, hook normalizeHook) (any, error) {
	if hook != nil {
		if nv, ok := hook(v); ok {
			return nv, nil
		}
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return val, nil
	case bool:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uintToInt(uint64(val), path)
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintToInt(val, path)
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case time.Time:
		return val, nil
	case []byte:
		return string(val), nil
	case number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, &ValueError{Path: path, Type: fmt.Sprintf("%T", v), Reason: err.Error()}
		}
		return f, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			nv, err := normalizeValue(item, joinPath(path, k), hook)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key := fmt.Sprint(k)
			nv, err := normalizeValue(item, joinPath(path, key), hook)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := normalizeValue(item, joinPath(path, strconv.Itoa(i)), hook)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}

	return normalizeReflect(reflect.ValueOf(v), path, hook)
}

// normalizeReflect handles named scalar types, typed maps and typed slices.
func normalizeReflect(rv reflect.Value, path string, hook normalizeHook) (any, error) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintToInt(rv.Uint(), path)
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			nv, err := normalizeValue(iter.Value().Interface(), joinPath(path, key), hook)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any(nil), nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			nv, err := normalizeValue(rv.Index(i).Interface(), joinPath(path, strconv.Itoa(i)), hook)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
	}

	return nil, &ValueError{Path: path, Type: rv.Type().String()}
}

func uintToInt(u uint64, path string) (any, error) {
	if u > math.MaxInt64 {
		return nil, &ValueError{Path: path, Type: "uint64", Reason: "overflows int64"}
	}
	return int64(u), nil
}
