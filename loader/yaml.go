package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"gopkg.in/yaml.v3"
)

func init() {
	defaultBackends.Register(BackendYAMLv3, parseYAMLv3)
	defaultBackends.Register(BackendKoanfYAML, parseKoanfYAML)
}

// errTrailingDocument is returned when a stream holds more than one document.
var errTrailingDocument = errors.New("unexpected document after the first")

// YAMLLoader loads YAML documents whose top level is a mapping. Documents
// decode only into maps, lists and scalars; tags never construct objects.
// An empty document loads as an empty map; a stream with more than one
// document is an error.
type YAMLLoader struct {
	textLoader
}

// NewYAMLLoader creates a YAML loader.
func NewYAMLLoader(opts ...Option) *YAMLLoader {
	return &YAMLLoader{textLoader{
		options:   newOptions(opts),
		format:    FormatYAML,
		primary:   BackendYAMLv3,
		fallbacks: []string{BackendKoanfYAML},
	}}
}

// Load reads and parses the YAML source src (path, []byte or io.Reader).
func (l *YAMLLoader) Load(src any) (map[string]any, error) {
	return l.load(src, nil)
}

func parseYAMLv3(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return make(map[string]any), nil
		}
		return nil, err
	}
	if err := singleDocument(dec); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case nil:
		return make(map[string]any), nil
	case map[string]any:
		return v, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("top-level value must be a mapping, got %T", doc)
	}
}

// parseKoanfYAML runs the koanf parser, which only reads the first
// document, after checking the stream holds no more than one.
func parseKoanfYAML(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node yaml.Node
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return make(map[string]any), nil
		}
		return nil, err
	}
	if err := singleDocument(dec); err != nil {
		return nil, err
	}
	out, err := kyaml.Parser().Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

func singleDocument(dec *yaml.Decoder) error {
	var next yaml.Node
	switch err := dec.Decode(&next); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingDocument
	}
}
