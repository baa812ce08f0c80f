package loader

import (
	"fmt"

	"gopkg.in/ini.v1"
)

func init() {
	defaultBackends.Register(BackendINI, parseINI)
}

// INILoader loads INI files. Each section becomes a top-level key holding a
// map of its keys; keys before the first section land in "DEFAULT". Values
// stay strings. Duplicate sections and duplicate keys are errors.
type INILoader struct {
	textLoader
}

// NewINILoader creates an INI loader.
func NewINILoader(opts ...Option) *INILoader {
	return &INILoader{textLoader{
		options: newOptions(opts),
		format:  FormatINI,
		primary: BackendINI,
	}}
}

// Load reads and parses the INI source src (path, []byte or io.Reader).
func (l *INILoader) Load(src any) (map[string]any, error) {
	return l.load(src, nil)
}

func parseINI(data []byte) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:               true,
		AllowDuplicateShadowValues: true,
		AllowNonUniqueSections:     true,
	}, data)
	if err != nil {
		return nil, err
	}

	config := make(map[string]any)
	for _, section := range f.Sections() {
		name := section.Name()
		if _, dup := config[name]; dup {
			return nil, fmt.Errorf("section %q already exists", name)
		}

		keys := section.Keys()
		if name == ini.DefaultSection && len(keys) == 0 {
			continue
		}

		values := make(map[string]any, len(keys))
		for _, key := range keys {
			if len(key.ValueWithShadows()) > 1 {
				return nil, fmt.Errorf("option %q in section %q already exists", key.Name(), name)
			}
			values[key.Name()] = key.Value()
		}
		config[name] = values
	}
	return config, nil
}
