package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtOfPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"settings.ini", FormatINI},
		{"settings.cfg", FormatINI},
		{"/etc/app/app.conf", FormatINI},
		{"app.config", FormatINI},
		{"x.rc", FormatINI},
		{".rc", FormatINI},
		{"/home/u/.bashrc", FormatINI},
		{"npmrc", FormatINI},
		{"APPRC", FormatINI},
		{"config.yml", FormatYAML},
		{"config.yaml", FormatYAML},
		{"CONFIG.YML", FormatYAML},
		{"data.json", FormatJSON},
		{"pyproject.toml", FormatTOML},
		{"local.env", FormatEnv},
		{"APP_.osenv", FormatOSEnv},
		{"archive.tar.gz", Format("gz")},
		{"config.xyz", Format("xyz")},
		{"Makefile", Format("")},
		{"trailing.", Format("")},
		{".hidden", Format("")},
		{"", Format("")},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtOfPath(tt.path))
		})
	}
}

func TestExt(t *testing.T) {
	custom := LoaderFunc(func(any) (map[string]any, error) { return nil, nil })

	tests := []struct {
		name string
		src  any
		want Format
	}{
		{"dict", map[string]any{"a": 1}, FormatDict},
		{"string dict", map[string]string{"a": "1"}, FormatDict},
		{"typed map", map[string]int{"a": 1}, FormatDict},
		{"dicts", []map[string]any{{"a": 1}}, FormatDicts},
		{"path", "a.toml", FormatTOML},
		{"paths", []string{"a.yml", "b.yaml"}, FormatYAMLs},
		{"mixed list", []any{"a.json", map[string]any{}}, FormatJSONs},
		{"list of dicts as any", []any{map[string]any{}}, FormatDicts},
		{"empty list", []string{}, Format("")},
		{"osenv", OSEnv{Prefix: "APP_"}, FormatOSEnv},
		{"osenv pointer", &OSEnv{}, FormatOSEnv},
		{"raw bytes", []byte("a = 1"), Format("")},
		{"nil", nil, Format("")},
		{"tagged", As(FormatTOML, []byte("a = 1")), FormatTOML},
		{"tagged pointer", &Source{Value: "x.json"}, FormatJSON},
		{"untagged source", Source{Value: "x.ini"}, FormatINI},
		{"custom", Using(custom, "x"), FormatCustom},
		{"unknown type", 42, Format("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ext(tt.src))
		})
	}
}

func TestFormat_PluralSingular(t *testing.T) {
	assert.Equal(t, FormatTOMLs, FormatTOML.Plural())
	assert.Equal(t, FormatTOML, FormatTOMLs.Singular())
	assert.Equal(t, FormatOSEnv, FormatOSEnv.Singular())
	assert.Equal(t, Format("osenvs"), FormatOSEnv.Plural())
	assert.Equal(t, Format(""), Format("").Plural())
	assert.True(t, FormatDicts.IsPlural())
	assert.False(t, FormatDict.IsPlural())
	assert.False(t, FormatOSEnv.IsPlural())
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{
		FormatDict, FormatDicts, FormatEnv, FormatEnvs, FormatINI, FormatINIs,
		FormatJSON, FormatJSONs, FormatOSEnv, FormatTOML, FormatTOMLs, FormatYAML, FormatYAMLs,
	}, Formats())
}

func TestOSEnvPrefix(t *testing.T) {
	assert.Equal(t, "APP_", osenvPrefix("APP_.osenv"))
	assert.Equal(t, "APP_", osenvPrefix("/any/dir/APP_.OSENV"))
	assert.Equal(t, "", osenvPrefix(".osenv"))
}
