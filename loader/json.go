package loader

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

func init() {
	defaultBackends.Register(BackendGoJSON, parseGoJSON)
	defaultBackends.Register(BackendStdJSON, parseStdJSON)
}

// JSONLoader loads JSON documents whose top-level value is an object.
// Integral numbers load as int64, others as float64.
type JSONLoader struct {
	textLoader
}

// NewJSONLoader creates a JSON loader.
func NewJSONLoader(opts ...Option) *JSONLoader {
	return &JSONLoader{textLoader{
		options:   newOptions(opts),
		format:    FormatJSON,
		primary:   BackendGoJSON,
		fallbacks: []string{BackendStdJSON},
	}}
}

// Load reads and parses the JSON source src (path, []byte or io.Reader).
func (l *JSONLoader) Load(src any) (map[string]any, error) {
	return l.load(src, nil)
}

// errTrailingData is returned when a document holds more than one value.
var errTrailingData = errors.New("unexpected data after top-level value")

func parseGoJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return jsonObject(doc)
}

func parseStdJSON(data []byte) (map[string]any, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return jsonObject(doc)
}

func jsonObject(doc any) (map[string]any, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %T", doc)
	}
	return m, nil
}
