package loader

import (
	"fmt"
	"reflect"

	"github.com/dshills/simpleconf/internal/layer"
	"go.uber.org/zap"
)

// MultiLoader loads a list of sources with one single-source loader and
// deep-merges the results in order, later sources winning.
type MultiLoader struct {
	format Format
	single Loader
	logger *zap.Logger
}

// NewMultiLoader creates the plural variant format over single.
func NewMultiLoader(format Format, single Loader, opts ...Option) *MultiLoader {
	o := newOptions(opts)
	return &MultiLoader{format: format, single: single, logger: o.logger}
}

// Load loads every element of the list src and merges them.
func (l *MultiLoader) Load(src any) (map[string]any, error) {
	items, err := l.items(src)
	if err != nil {
		return nil, err
	}

	configs := make([]map[string]any, 0, len(items))
	for i, item := range items {
		cfg, err := l.single.Load(Unwrap(item))
		if err != nil {
			return nil, fmt.Errorf("%s source #%d (%s): %w", l.format, i, Describe(item), err)
		}
		configs = append(configs, cfg)
	}

	l.logger.Debug("merged source list",
		zap.String("format", string(l.format)),
		zap.Int("sources", len(configs)),
	)
	return layer.Merge(configs...), nil
}

func (l *MultiLoader) items(src any) ([]any, error) {
	switch v := src.(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	case []byte:
		// raw text is a single document, not a list
		return nil, &SourceTypeError{Format: l.format, Type: "[]byte"}
	}

	rv := reflect.ValueOf(src)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &SourceTypeError{Format: l.format, Type: fmt.Sprintf("%T", src)}
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
