package simpleconf

import (
	"fmt"
	"sync"

	"github.com/dshills/simpleconf/internal/layer"
	"github.com/dshills/simpleconf/loader"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Config holds the merged result of a sequence of sources.
// It is safe for concurrent use. The zero value is an empty configuration
// using the default registry, the OS filesystem and no logging.
type Config struct {
	mu      sync.RWMutex
	data    map[string]any
	origins layer.Origins

	registry      *loader.Registry
	fs            afero.Fs
	logger        *zap.Logger
	ignoreMissing bool

	// readOnly marks views returned by Sub.
	readOnly bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithRegistry sets the registry that resolves sources to loaders.
func WithRegistry(r *loader.Registry) Option {
	return func(c *Config) {
		c.registry = r
	}
}

// WithFS sets the filesystem file sources are read from.
func WithFS(fs afero.Fs) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithIgnoreMissing skips file sources that don't exist instead of failing.
func WithIgnoreMissing(ignore bool) Option {
	return func(c *Config) {
		c.ignoreMissing = ignore
	}
}

// New creates an empty Config with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		data:    make(map[string]any),
		origins: make(layer.Origins),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		if c.fs == nil && c.logger == nil {
			c.registry = loader.Default()
		} else {
			c.registry = loader.NewRegistry(loader.WithFS(c.fs), loader.WithLogger(c.logger))
		}
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Load creates a Config from sources with default options.
func Load(sources ...any) (*Config, error) {
	c := New()
	if err := c.Load(sources...); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge deep-merges configs into a new map, later configs winning.
// The inputs are not modified.
func Merge(configs ...map[string]any) map[string]any {
	return layer.Merge(configs...)
}

// Load replaces the configuration with the merge of sources.
// On error the previous configuration is kept.
func (c *Config) Load(sources ...any) error {
	if c.readOnly {
		return ErrReadOnly
	}

	configs, names, err := c.loadAll(sources)
	if err != nil {
		return err
	}
	merged := layer.Merge(configs...)
	origins := make(layer.Origins)
	for i, cfg := range configs {
		origins.Track(names[i], cfg)
	}

	c.mu.Lock()
	c.data = merged
	c.origins = origins
	c.mu.Unlock()
	return nil
}

// Update merges sources over the current configuration.
// On error the current configuration is kept.
func (c *Config) Update(sources ...any) error {
	if c.readOnly {
		return ErrReadOnly
	}

	configs, names, err := c.loadAll(sources)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = layer.Merge(append([]map[string]any{c.data}, configs...)...)
	origins := c.origins.Clone()
	for i, cfg := range configs {
		origins.Track(names[i], cfg)
	}
	c.origins = origins
	return nil
}

// loadAll loads every present source, returning the configs and the
// source names in order.
func (c *Config) loadAll(sources []any) ([]map[string]any, []string, error) {
	configs := make([]map[string]any, 0, len(sources))
	names := make([]string, 0, len(sources))
	for i, src := range sources {
		src, ok := c.present(src)
		if !ok {
			c.log().Info("skipping missing config source",
				zap.Int("index", i),
				zap.String("source", loader.Describe(src)),
			)
			continue
		}

		cfg, err := c.loaders().Load(src)
		if err != nil {
			return nil, nil, err
		}
		c.log().Debug("loaded config source",
			zap.Int("index", i),
			zap.String("format", string(loader.Ext(src))),
			zap.String("source", loader.Describe(src)),
		)
		configs = append(configs, cfg)
		names = append(names, loader.Describe(src))
	}
	return configs, names, nil
}

func (c *Config) loaders() *loader.Registry {
	if c.registry == nil {
		return loader.Default()
	}
	return c.registry
}

func (c *Config) filesystem() afero.Fs {
	if c.fs == nil {
		return afero.NewOsFs()
	}
	return c.fs
}

func (c *Config) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Get returns a copy of the value at the dotted key path. Integer segments
// index into lists.
func (c *Config) Get(key string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := layer.GetByPath(c.data, key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return layer.CloneValue(v), nil
}

// Origin returns the name of the source that provided the leaf value at
// key: its path, or a placeholder such as "<dict>" or "<osenv:APP_>".
func (c *Config) Origin(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origins.Which(key)
}

// GetOr returns the value at key, or def if key doesn't exist.
func (c *Config) GetOr(key string, def any) any {
	v, err := c.Get(key)
	if err != nil {
		return def
	}
	return v
}

// Has reports whether key exists.
func (c *Config) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := layer.GetByPath(c.data, key)
	return ok
}

// Sub returns a read-only view of the nested map at key.
func (c *Config) Sub(key string) (*Config, error) {
	m, err := c.GetMap(key)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	origins := c.origins.Sub(key)
	c.mu.RUnlock()

	return c.derive(m, origins, true), nil
}

// derive returns a Config over data sharing c's options.
func (c *Config) derive(data map[string]any, origins layer.Origins, readOnly bool) *Config {
	return &Config{
		data:          data,
		origins:       origins,
		registry:      c.registry,
		fs:            c.fs,
		logger:        c.logger,
		ignoreMissing: c.ignoreMissing,
		readOnly:      readOnly,
	}
}

// All returns a deep copy of the whole configuration.
func (c *Config) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return make(map[string]any)
	}
	return layer.Clone(c.data)
}

// Keys returns the top-level keys, sorted.
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return layer.SortedKeys(c.data)
}

// Flatten returns the configuration as a single-level map keyed by dotted
// paths. Lists and empty maps are leaves.
func (c *Config) Flatten() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return layer.FlattenMap(c.data)
}

// Query evaluates a gjson path (for example "servers.#.host") against the
// JSON form of the configuration. Results carry JSON types: numbers are
// float64 and times RFC 3339 strings.
func (c *Config) Query(path string) (any, bool) {
	data, err := c.MarshalJSON()
	if err != nil {
		return nil, false
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// MarshalJSON implements json.Marshaler.
func (c *Config) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.data)
}

// Decode decodes the whole configuration into target, a pointer to a struct
// or map. Struct fields are matched by their `conf` tag, or by name
// case-insensitively.
func (c *Config) Decode(target any) error {
	return decode("", c.All(), target)
}

// DecodeKey decodes the value at key into target.
func (c *Config) DecodeKey(key string, target any) error {
	v, err := c.Get(key)
	if err != nil {
		return err
	}
	return decode(key, v, target)
}

func decode(key string, input, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "conf",
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		if key == "" {
			return fmt.Errorf("decoding config: %w", err)
		}
		return fmt.Errorf("decoding config key %s: %w", key, err)
	}
	return nil
}

// present filters out missing files when ignoreMissing is set. It reports
// false when nothing of src is left to load.
func (c *Config) present(src any) (any, bool) {
	if !c.ignoreMissing {
		return src, true
	}

	switch v := src.(type) {
	case string:
		return v, c.exists(v)
	case []string:
		kept := make([]string, 0, len(v))
		for _, path := range v {
			if c.exists(path) {
				kept = append(kept, path)
			}
		}
		return kept, len(kept) > 0 || len(v) == 0
	case []any:
		kept := make([]any, 0, len(v))
		for _, item := range v {
			if item, ok := c.present(item); ok {
				kept = append(kept, item)
			}
		}
		return kept, len(kept) > 0 || len(v) == 0
	case loader.Source:
		value, ok := c.present(v.Value)
		v.Value = value
		return v, ok
	case *loader.Source:
		if v == nil {
			return src, true
		}
		s := *v
		value, ok := c.present(s.Value)
		s.Value = value
		return s, ok
	default:
		return src, true
	}
}

// exists reports whether path names an existing file. Environment markers
// ("PREFIX.osenv") are not files and always exist.
func (c *Config) exists(path string) bool {
	if loader.ExtOfPath(path) == loader.FormatOSEnv {
		return true
	}
	ok, err := afero.Exists(c.filesystem(), path)
	return err != nil || ok
}
