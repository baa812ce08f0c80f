package loader

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// DictLoader loads an in-memory Go map.
type DictLoader struct {
	options
}

// NewDictLoader creates a dict loader.
func NewDictLoader(opts ...Option) *DictLoader {
	return &DictLoader{options: newOptions(opts)}
}

// Load returns a normalized deep copy of the map src.
func (l *DictLoader) Load(src any) (map[string]any, error) {
	var (
		config map[string]any
		err    error
	)

	switch v := src.(type) {
	case map[string]any:
		config, err = Normalize(v)
	case map[string]string:
		config = make(map[string]any, len(v))
		for k, s := range v {
			config[k] = s
		}
	case nil:
		config = make(map[string]any)
	default:
		if reflect.ValueOf(src).Kind() != reflect.Map {
			return nil, &SourceTypeError{Format: FormatDict, Type: fmt.Sprintf("%T", src)}
		}
		var nv any
		nv, err = normalizeValue(src, "", nil)
		if err == nil {
			config = nv.(map[string]any)
		}
	}
	if err != nil {
		return nil, newFormatError(FormatDict, Describe(src), err)
	}

	l.logger.Debug("loaded dict source", zap.Int("keys", len(config)))
	return config, nil
}
