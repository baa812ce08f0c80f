package main

import (
	"fmt"
	"os"

	"github.com/dshills/simpleconf/internal/layer"
	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputFlat = "flat"
)

// render writes v in the selected output format.
func (a *app) render(v any) error {
	switch a.output {
	case outputJSON, outputFlat:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		data = pretty.Pretty(data)
		if a.colorize() {
			data = pretty.Color(data, nil)
		}
		_, err = a.out.Write(data)
		return err
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = a.out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
}

// renderFlat writes one "key = json-value" line per leaf.
func (a *app) renderFlat(flat map[string]any) error {
	for _, k := range layer.SortedKeys(flat) {
		data, err := json.Marshal(flat[k])
		if err != nil {
			return fmt.Errorf("encoding %s: %w", k, err)
		}
		if _, err := fmt.Fprintf(a.out, "%s = %s\n", k, data); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) colorize() bool {
	switch a.color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := a.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
