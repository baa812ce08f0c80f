package loader

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func init() {
	defaultBackends.Register(BackendGodotenv, parseGodotenv)
	defaultBackends.Register(BackendGotenv, parseGotenv)
}

var (
	intPattern   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern = regexp.MustCompile(`^[+-]?(([0-9]+\.[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+)$`)
)

// EnvLoader loads environment-style key/value pairs: a map of strings,
// a dotenv file path, or dotenv text. Keys are upper-cased and values go
// through ParseValue. The result is always flat. When two keys differ only
// in case, the one that sorts first in byte order wins, so an upper-case
// spelling takes precedence over a lower-case one.
type EnvLoader struct {
	textLoader
}

// NewEnvLoader creates an env loader.
func NewEnvLoader(opts ...Option) *EnvLoader {
	return &EnvLoader{textLoader{
		options:   newOptions(opts),
		format:    FormatEnv,
		primary:   BackendGodotenv,
		fallbacks: []string{BackendGotenv},
	}}
}

// Load reads src as environment-style pairs.
func (l *EnvLoader) Load(src any) (map[string]any, error) {
	switch v := src.(type) {
	case map[string]string:
		pairs := make(map[string]any, len(v))
		for k, s := range v {
			pairs[k] = s
		}
		return l.normalize(Describe(src), pairs)
	case map[string]any:
		return l.normalize(Describe(src), v)
	case nil:
		return make(map[string]any), nil
	}

	data, name, err := l.read(src)
	if err != nil {
		return nil, err
	}
	backend, parser, err := l.backends.Require(l.format, l.primary, l.fallbacks...)
	if err != nil {
		return nil, err
	}
	pairs, err := parser(data)
	if err != nil {
		return nil, newFormatError(l.format, name, err)
	}
	l.logger.Debug("parsed dotenv source",
		zap.String("source", name),
		zap.String("backend", backend),
	)
	return l.normalize(name, pairs)
}

func (l *EnvLoader) normalize(name string, pairs map[string]any) (map[string]any, error) {
	config, err := normalizeEnv(pairs)
	if err != nil {
		return nil, newFormatError(l.format, name, err)
	}
	return config, nil
}

// normalizeEnv upper-cases keys and infers scalar types from string values.
// Nested values are rejected. Keys are visited in sorted order and the first
// spelling of a case-folded key is kept.
func normalizeEnv(pairs map[string]any) (map[string]any, error) {
	config := make(map[string]any, len(pairs))
	for _, k := range slices.Sorted(maps.Keys(pairs)) {
		v := pairs[k]
		key := strings.ToUpper(k)
		if _, seen := config[key]; seen {
			continue
		}
		switch val := v.(type) {
		case string:
			config[key] = ParseValue(val)
		default:
			nv, err := normalizeValue(val, key, nil)
			if err != nil {
				return nil, err
			}
			switch nv.(type) {
			case map[string]any, []any:
				return nil, &ValueError{Path: key, Type: fmt.Sprintf("%T", v), Reason: "env sources are flat"}
			}
			config[key] = nv
		}
	}
	return config, nil
}

// ParseValue infers a scalar from an environment string:
// "true"/"false" in any case become bools, decimal integers that fit in
// int64 become int64, decimal floats with a dot or an exponent become
// float64, and everything else stays a string.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	if intPattern.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}

	if floatPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

func parseGodotenv(data []byte) (map[string]any, error) {
	env, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, err
	}
	return stringsToAny(env), nil
}

func parseGotenv(data []byte) (map[string]any, error) {
	env, err := gotenv.StrictParse(io.Reader(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	return stringsToAny(env), nil
}

func stringsToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
