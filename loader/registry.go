package loader

import (
	"sync"
)

// Registry maps format tags to loaders. Loaders are built on first use and
// cached; a Registry is safe for concurrent use.
type Registry struct {
	opts []Option

	mu      sync.Mutex
	loaders map[Format]Loader
}

// NewRegistry creates a registry whose loaders are built with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		loaders: make(map[Format]Loader),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, reading from the OS
// filesystem and parsing with DefaultBackends.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Get returns the loader for format. Unknown formats fail with an
// *UnsupportedFormatError.
func (r *Registry) Get(format Format) (Loader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loaders[format]; ok {
		return l, nil
	}

	l, err := r.build(format)
	if err != nil {
		return nil, err
	}
	r.loaders[format] = l
	return l, nil
}

// For returns the loader for src: the custom Loader of a Source unchanged,
// otherwise the loader of Ext(src).
func (r *Registry) For(src any) (Loader, error) {
	switch s := src.(type) {
	case Source:
		if s.Loader != nil {
			return s.Loader, nil
		}
	case *Source:
		if s != nil && s.Loader != nil {
			return s.Loader, nil
		}
	}

	l, err := r.Get(Ext(src))
	if err != nil {
		if ue, ok := err.(*UnsupportedFormatError); ok {
			ue.Source = Describe(src)
		}
		return nil, err
	}
	return l, nil
}

// Load resolves the loader for src and loads it.
func (r *Registry) Load(src any) (map[string]any, error) {
	l, err := r.For(src)
	if err != nil {
		return nil, err
	}
	return l.Load(Unwrap(src))
}

func (r *Registry) build(format Format) (Loader, error) {
	switch format {
	case FormatDict:
		return NewDictLoader(r.opts...), nil
	case FormatEnv:
		return NewEnvLoader(r.opts...), nil
	case FormatOSEnv:
		return NewOSEnvLoader(r.opts...), nil
	case FormatINI:
		return NewINILoader(r.opts...), nil
	case FormatJSON:
		return NewJSONLoader(r.opts...), nil
	case FormatTOML:
		return NewTOMLLoader(r.opts...), nil
	case FormatYAML:
		return NewYAMLLoader(r.opts...), nil
	case FormatDicts, FormatEnvs, FormatINIs, FormatJSONs, FormatTOMLs, FormatYAMLs:
		single, err := r.build(format.Singular())
		if err != nil {
			return nil, err
		}
		return NewMultiLoader(format, single, r.opts...), nil
	}
	return nil, &UnsupportedFormatError{Format: format}
}
