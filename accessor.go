package simpleconf

import (
	"time"

	"github.com/dshills/simpleconf/internal/layer"
)

// lookup returns the raw value at key without copying it.
func (c *Config) lookup(key string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := layer.GetByPath(c.data, key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

// GetString returns the string value at key.
func (c *Config) GetString(key string) (string, error) {
	v, err := c.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns the integer value at key.
func (c *Config) GetInt(key string) (int64, error) {
	v, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, &TypeError{Key: key, Expected: "int", Actual: typeName(v)}
	}
	return i, nil
}

// GetFloat returns the number at key as a float64. Integers are widened.
func (c *Config) GetFloat(key string) (float64, error) {
	v, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Key: key, Expected: "float", Actual: typeName(v)}
	}
}

// GetBool returns the boolean value at key.
func (c *Config) GetBool(key string) (bool, error) {
	v, err := c.lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetTime returns the time value at key. Only TOML and YAML timestamps and
// Go time.Time values load as times; strings are not parsed.
func (c *Config) GetTime(key string) (time.Time, error) {
	v, err := c.lookup(key)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, &TypeError{Key: key, Expected: "time", Actual: typeName(v)}
	}
	return t, nil
}

// GetSlice returns a copy of the list at key.
func (c *Config) GetSlice(key string) ([]any, error) {
	v, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]any)
	if !ok {
		return nil, &TypeError{Key: key, Expected: "list", Actual: typeName(v)}
	}
	return layer.CloneValue(s).([]any), nil
}

// GetStringSlice returns the list at key, which must hold only strings.
func (c *Config) GetStringSlice(key string) ([]string, error) {
	v, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &TypeError{Key: key, Expected: "[]string", Actual: typeName(v)}
	}

	result := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &TypeError{Key: key, Expected: "[]string", Actual: "list containing " + typeName(item)}
		}
		result[i] = s
	}
	return result, nil
}

// GetMap returns a copy of the map at key.
func (c *Config) GetMap(key string) (map[string]any, error) {
	v, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &TypeError{Key: key, Expected: "map", Actual: typeName(v)}
	}
	return layer.Clone(m), nil
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int64:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Time:
		return "time"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
