package loader

import (
	"errors"
	"time"

	burntsushi "github.com/BurntSushi/toml"
	"github.com/pelletier/go-toml/v2"
)

func init() {
	defaultBackends.Register(BackendGoTOML, parseGoTOML)
	defaultBackends.Register(BackendBurntSushiTOML, parseBurntSushiTOML)
}

// TOMLLoader loads TOML documents. Integers load as int64, floats as
// float64, offset date-times as time.Time. Local dates and date-times
// become time.Time in UTC and local times their "15:04:05" string.
type TOMLLoader struct {
	textLoader
}

// NewTOMLLoader creates a TOML loader.
func NewTOMLLoader(opts ...Option) *TOMLLoader {
	return &TOMLLoader{textLoader{
		options:   newOptions(opts),
		format:    FormatTOML,
		primary:   BackendGoTOML,
		fallbacks: []string{BackendBurntSushiTOML},
	}}
}

// Load reads and parses the TOML source src (path, []byte or io.Reader).
func (l *TOMLLoader) Load(src any) (map[string]any, error) {
	return l.load(src, tomlScalar)
}

// tomlScalar maps go-toml's local date/time types onto the normalized set.
func tomlScalar(v any) (any, bool) {
	switch t := v.(type) {
	case toml.LocalDate:
		return t.AsTime(time.UTC), true
	case toml.LocalDateTime:
		return t.AsTime(time.UTC), true
	case toml.LocalTime:
		return t.String(), true
	}
	return nil, false
}

func parseGoTOML(data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}

func parseBurntSushiTOML(data []byte) (map[string]any, error) {
	config := make(map[string]any)
	if err := burntsushi.Unmarshal(data, &config); err != nil {
		var pe burntsushi.ParseError
		if errors.As(err, &pe) {
			return nil, &positionError{line: pe.Position.Line, err: err}
		}
		return nil, err
	}
	return config, nil
}
