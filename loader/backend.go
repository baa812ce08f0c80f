package loader

import (
	"sort"
	"sync"
)

// Names of the parser backends compiled into this package.
const (
	BackendGoJSON         = "github.com/goccy/go-json"
	BackendStdJSON        = "encoding/json"
	BackendGoTOML         = "github.com/pelletier/go-toml/v2"
	BackendBurntSushiTOML = "github.com/BurntSushi/toml"
	BackendYAMLv3         = "gopkg.in/yaml.v3"
	BackendKoanfYAML      = "github.com/knadh/koanf/parsers/yaml"
	BackendINI            = "gopkg.in/ini.v1"
	BackendGodotenv       = "github.com/joho/godotenv"
	BackendGotenv         = "github.com/subosito/gotenv"
)

// Parser decodes raw text into a (not yet normalized) map.
type Parser func(data []byte) (map[string]any, error)

// Backends is a table of named parsers. For each format it resolves the
// first available parser among a primary and its fallbacks, once, and
// remembers the choice.
type Backends struct {
	mu       sync.Mutex
	parsers  map[string]Parser
	resolved map[Format]resolvedBackend
}

type resolvedBackend struct {
	name   string
	parser Parser
}

// NewBackends creates an empty backend table.
func NewBackends() *Backends {
	return &Backends{
		parsers:  make(map[string]Parser),
		resolved: make(map[Format]resolvedBackend),
	}
}

var defaultBackends = NewBackends()

// DefaultBackends returns the process-wide table holding every parser
// compiled into this package.
func DefaultBackends() *Backends {
	return defaultBackends
}

// Register makes a parser available under name. Registering a name twice
// replaces the parser; formats already resolved keep their choice.
func (b *Backends) Register(name string, p Parser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parsers[name] = p
}

// Available reports whether a parser is registered under name.
func (b *Backends) Available(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.parsers[name]
	return ok
}

// Names returns the registered parser names, sorted.
func (b *Backends) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.parsers))
	for name := range b.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require returns the parser for format: the cached choice if the format
// was resolved before, otherwise the first of primary and fallbacks that is
// registered. It fails with an *ImportMissingError naming all candidates
// when none is.
func (b *Backends) Require(format Format, primary string, fallbacks ...string) (string, Parser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r, ok := b.resolved[format]; ok {
		return r.name, r.parser, nil
	}

	for _, name := range append([]string{primary}, fallbacks...) {
		if p, ok := b.parsers[name]; ok {
			b.resolved[format] = resolvedBackend{name: name, parser: p}
			return name, p, nil
		}
	}

	return "", nil, &ImportMissingError{
		Format:    format,
		Primary:   primary,
		Fallbacks: append([]string(nil), fallbacks...),
	}
}

// Resolved returns the backend name chosen for format, if resolved.
func (b *Backends) Resolved(format Format) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.resolved[format]
	return r.name, ok
}
