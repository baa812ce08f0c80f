package loader

import (
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// Format is a canonical format tag. A trailing "s" denotes the plural
// variant that loads a list of sources of the singular format.
type Format string

// The closed set of formats known to a Registry.
const (
	FormatDict  Format = "dict"
	FormatDicts Format = "dicts"
	FormatEnv   Format = "env"
	FormatEnvs  Format = "envs"
	FormatINI   Format = "ini"
	FormatINIs  Format = "inis"
	FormatJSON  Format = "json"
	FormatJSONs Format = "jsons"
	FormatOSEnv Format = "osenv"
	FormatTOML  Format = "toml"
	FormatTOMLs Format = "tomls"
	FormatYAML  Format = "yaml"
	FormatYAMLs Format = "yamls"
)

// FormatCustom is reported by Ext for a Source carrying its own Loader.
const FormatCustom Format = "custom"

var pluralOf = map[Format]Format{
	FormatDict: FormatDicts,
	FormatEnv:  FormatEnvs,
	FormatINI:  FormatINIs,
	FormatJSON: FormatJSONs,
	FormatTOML: FormatTOMLs,
	FormatYAML: FormatYAMLs,
}

// Formats returns the closed set of supported format tags, sorted.
func Formats() []Format {
	out := []Format{FormatOSEnv}
	for single, plural := range pluralOf {
		out = append(out, single, plural)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Plural returns the list variant of f.
func (f Format) Plural() Format {
	if p, ok := pluralOf[f]; ok {
		return p
	}
	if f == "" {
		return ""
	}
	return f + "s"
}

// Singular returns the single-source variant of a plural format, or f itself.
func (f Format) Singular() Format {
	for single, plural := range pluralOf {
		if plural == f {
			return single
		}
	}
	return f
}

// IsPlural reports whether f is one of the list variants.
func (f Format) IsPlural() bool {
	return f.Singular() != f
}

// Ext infers the format tag of a source. It never fails: a source it cannot
// classify yields its raw suffix or "", which a Registry then rejects.
//
// Maps are "dict". Paths are classified by suffix: ini, rc, cfg, conf and
// config are "ini"; yml is "yaml"; any other suffix passes through lower-cased.
// A path without a suffix whose name ends in "rc" is "ini". Lists take the
// plural of their first element's format.
func Ext(src any) Format {
	switch v := src.(type) {
	case Source:
		return extOfSource(v)
	case *Source:
		if v == nil {
			return ""
		}
		return extOfSource(*v)
	case OSEnv, *OSEnv:
		return FormatOSEnv
	case map[string]any, map[string]string:
		return FormatDict
	case []map[string]any, []map[string]string:
		return FormatDicts
	case string:
		return ExtOfPath(v)
	case []string:
		if len(v) == 0 {
			return ""
		}
		return Ext(v[0]).Plural()
	case []any:
		if len(v) == 0 {
			return ""
		}
		return Ext(v[0]).Plural()
	case []byte, nil:
		return ""
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Map:
		return FormatDict
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return ""
		}
		return Ext(rv.Index(0).Interface()).Plural()
	}
	return ""
}

func extOfSource(s Source) Format {
	if s.Loader != nil {
		return FormatCustom
	}
	if s.Format != "" {
		return s.Format
	}
	return Ext(s.Value)
}

// ExtOfPath classifies a file path by its suffix.
func ExtOfPath(path string) Format {
	name := baseName(path)
	out := suffix(name)
	if out == "" && strings.HasSuffix(strings.ToLower(name), "rc") {
		out = "rc"
	}

	switch out {
	case "ini", "rc", "cfg", "conf", "config":
		return FormatINI
	case "yml":
		return FormatYAML
	}
	return Format(out)
}

// suffix returns the lower-cased text after the last dot of name. A leading
// dot (".bashrc") or a trailing dot does not start a suffix.
func suffix(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// osenvPrefix extracts the variable prefix from a "PREFIX.osenv" path.
func osenvPrefix(path string) string {
	name := filepath.Base(path)
	if i := strings.LastIndex(name, "."); i >= 0 && strings.EqualFold(name[i+1:], string(FormatOSEnv)) {
		return name[:i]
	}
	return name
}
