package simpleconf

import (
	"fmt"

	"github.com/dshills/simpleconf/internal/layer"
	"go.uber.org/zap"
)

// DefaultProfile is the base every profile is layered over by Use.
const DefaultProfile = "default"

// Profiles is a pool of named configurations: every top-level key whose
// value is a map is a profile.
//
//	[default]
//	host = "localhost"
//
//	[production]
//	host = "db.internal"
type Profiles struct {
	parent  *Config
	pool    map[string]any
	origins layer.Origins
}

// LoadProfiles loads sources with default options and returns their
// profiles.
func LoadProfiles(sources ...any) (*Profiles, error) {
	c, err := Load(sources...)
	if err != nil {
		return nil, err
	}
	return c.Profiles(), nil
}

// Profiles returns the profiles of the current configuration. Later loads
// into c do not affect the returned pool.
func (c *Config) Profiles() *Profiles {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Profiles{
		parent:  c,
		pool:    layer.Clone(c.data),
		origins: c.origins.Clone(),
	}
}

// Names returns the profile names, sorted.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.pool))
	for _, name := range layer.SortedKeys(p.pool) {
		if _, ok := p.pool[name].(map[string]any); ok {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether a profile named name exists.
func (p *Profiles) Has(name string) bool {
	_, ok := p.pool[name].(map[string]any)
	return ok
}

// Use returns the profile name merged over the default profile.
func (p *Profiles) Use(name string) (*Config, error) {
	return p.UseWithBase(name, DefaultProfile)
}

// UseWithBase returns the profile name merged over the profile base. A
// missing base is treated as empty; an empty base disables layering.
func (p *Profiles) UseWithBase(name, base string) (*Config, error) {
	profile, ok := p.pool[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	var merged map[string]any
	if baseMap, ok := p.pool[base].(map[string]any); ok && base != "" && base != name {
		merged = layer.Merge(baseMap, profile)
	} else {
		merged = layer.Clone(profile)
	}

	profileOrigins := p.origins.Sub(name)
	baseOrigins := p.origins.Sub(base)
	origins := make(layer.Origins)
	for k := range layer.FlattenMap(merged) {
		if src, ok := profileOrigins[k]; ok {
			origins[k] = src
		} else if src, ok := baseOrigins[k]; ok {
			origins[k] = src
		}
	}

	p.parent.log().Debug("using config profile",
		zap.String("profile", name),
		zap.String("base", base),
	)
	return p.parent.derive(merged, origins, false), nil
}
