// Package loader turns configuration sources into normalized maps.
//
// A source is a Go map, a file path, raw text, a list of those, or a marker
// for the live process environment. Ext infers a Format from a source, a
// Registry maps the Format to a Loader, and the Loader reads and parses the
// source into a map[string]any whose values are limited to string, int64,
// float64, bool, nil, time.Time, []any and map[string]any.
//
// Parsing is delegated to third-party libraries. Each format has a primary
// parser and optional fallbacks, resolved once per process by Backends.
package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Loader reads one source into a normalized configuration map.
type Loader interface {
	Load(src any) (map[string]any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(src any) (map[string]any, error)

// Load calls f(src).
func (f LoaderFunc) Load(src any) (map[string]any, error) {
	return f(src)
}

// Source pins a value to an explicit format or to a caller-supplied Loader,
// bypassing extension sniffing.
type Source struct {
	// Value is the underlying source (path, map, raw text, list...).
	Value any
	// Format forces a format tag. Ignored when Loader is set.
	Format Format
	// Loader loads Value directly when non-nil.
	Loader Loader
}

// As tags value with an explicit format.
func As(format Format, value any) Source {
	return Source{Value: value, Format: format}
}

// Using loads value with a custom loader.
func Using(l Loader, value any) Source {
	return Source{Value: value, Loader: l}
}

// OSEnv marks the live process environment as a source.
// Only variables starting with Prefix are read; the prefix is stripped.
type OSEnv struct {
	Prefix string
}

// Unwrap returns the value wrapped by a Source, or src itself.
func Unwrap(src any) any {
	switch s := src.(type) {
	case Source:
		return s.Value
	case *Source:
		if s == nil {
			return nil
		}
		return s.Value
	default:
		return src
	}
}

// Describe returns a short human-readable identifier for a source,
// used in errors and logs.
func Describe(src any) string {
	switch v := Unwrap(src).(type) {
	case string:
		return v
	case []byte:
		return "<bytes>"
	case io.Reader:
		return "<reader>"
	case OSEnv:
		return "<osenv:" + v.Prefix + ">"
	case *OSEnv:
		return "<osenv:" + v.Prefix + ">"
	case map[string]any, map[string]string:
		return "<dict>"
	case []string:
		return fmt.Sprintf("<list of %d>", len(v))
	case []any:
		return fmt.Sprintf("<list of %d>", len(v))
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// Option configures loaders built by a Registry or a loader constructor.
type Option func(*options)

type options struct {
	fs       afero.Fs
	backends *Backends
	logger   *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		fs:       afero.NewOsFs(),
		backends: DefaultBackends(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFS sets the filesystem file sources are read from.
func WithFS(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithBackends sets the parser backends used by the text formats.
func WithBackends(b *Backends) Option {
	return func(o *options) {
		if b != nil {
			o.backends = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// textLoader is the shared part of every loader that parses text
// (a file, raw bytes or a reader) through a parser backend.
type textLoader struct {
	options
	format    Format
	primary   string
	fallbacks []string
}

// read returns the raw text of src and a name identifying it.
func (l *textLoader) read(src any) ([]byte, string, error) {
	switch v := src.(type) {
	case string:
		data, err := afero.ReadFile(l.fs, v)
		if err != nil {
			return nil, v, fmt.Errorf("reading config file %s: %w", v, err)
		}
		return data, v, nil
	case []byte:
		return v, "<bytes>", nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, "<reader>", fmt.Errorf("reading config: %w", err)
		}
		return data, "<reader>", nil
	default:
		return nil, Describe(src), &SourceTypeError{Format: l.format, Type: fmt.Sprintf("%T", src)}
	}
}

// parse resolves the backend and parses data into a normalized map.
func (l *textLoader) parse(name string, data []byte, hook normalizeHook) (map[string]any, error) {
	backend, parser, err := l.backends.Require(l.format, l.primary, l.fallbacks...)
	if err != nil {
		return nil, err
	}

	raw, err := parser(data)
	if err != nil {
		return nil, newFormatError(l.format, name, err)
	}

	config, err := normalizeMap(raw, hook)
	if err != nil {
		return nil, newFormatError(l.format, name, err)
	}

	l.logger.Debug("parsed config source",
		zap.String("format", string(l.format)),
		zap.String("source", name),
		zap.String("backend", backend),
		zap.Int("keys", len(config)),
	)
	return config, nil
}

// load reads and parses src.
func (l *textLoader) load(src any, hook normalizeHook) (map[string]any, error) {
	data, name, err := l.read(src)
	if err != nil {
		return nil, err
	}
	return l.parse(name, data, hook)
}

// baseName is filepath.Base without the "." result for empty paths.
func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
