package loader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"go.uber.org/zap"
)

// OSEnvLoader loads the live process environment. The source is an OSEnv
// value or a "PREFIX.osenv" path naming the variable prefix. Variables
// without the prefix are ignored and the prefix is stripped from the rest.
// The environment is read at call time. Names that differ only in case
// resolve as in EnvLoader: the upper-case spelling wins.
type OSEnvLoader struct {
	options
}

// NewOSEnvLoader creates an osenv loader.
func NewOSEnvLoader(opts ...Option) *OSEnvLoader {
	return &OSEnvLoader{options: newOptions(opts)}
}

// Load snapshots the environment variables selected by src.
func (l *OSEnvLoader) Load(src any) (map[string]any, error) {
	var prefix string
	switch v := src.(type) {
	case OSEnv:
		prefix = v.Prefix
	case *OSEnv:
		if v != nil {
			prefix = v.Prefix
		}
	case string:
		prefix = osenvPrefix(v)
	case nil:
	default:
		return nil, &SourceTypeError{Format: FormatOSEnv, Type: fmt.Sprintf("%T", src)}
	}

	// NUL cannot occur in a variable name, so keys are never split.
	provider := env.Provider(prefix, "\x00", func(key string) string {
		return strings.TrimPrefix(key, prefix)
	})
	pairs, err := provider.Read()
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	config, err := normalizeEnv(pairs)
	if err != nil {
		return nil, newFormatError(FormatOSEnv, Describe(src), err)
	}

	l.logger.Debug("loaded process environment",
		zap.String("prefix", prefix),
		zap.Int("keys", len(config)),
	)
	return config, nil
}
