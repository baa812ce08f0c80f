package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestApp(t *testing.T, files map[string]string) (*app, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	out := &bytes.Buffer{}
	return &app{
		fs:     fs,
		stdin:  strings.NewReader(""),
		out:    out,
		errOut: &bytes.Buffer{},
		logger: zap.NewNop(),
	}, out
}

func execute(a *app, args ...string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

var fixtures = map[string]string{
	"/conf/base.toml": "[server]\nhost = \"localhost\"\nport = 8080\n",
	"/conf/prod.yaml": "server:\n  host: prod.internal\ntags: [a, b]\n",
	"/conf/extra.lua": "return { server = { workers = 4 } }",
	"/conf/profiles.json": `{
  "default": {"db": {"host": "localhost", "pool": 4}},
  "prod": {"db": {"host": "db.internal"}}
}`,
}

func TestShow_JSON(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "--color", "never", "/conf/base.toml", "/conf/prod.yaml", "/conf/extra.lua"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"server": map[string]any{"host": "prod.internal", "port": float64(8080), "workers": float64(4)},
		"tags":   []any{"a", "b"},
	}, got)
}

func TestShow_YAML(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "-o", "yaml", "/conf/base.toml"))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"server": map[string]any{"host": "localhost", "port": 8080},
	}, got)
}

func TestShow_Flat(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "-o", "flat", "/conf/base.toml", "/conf/prod.yaml"))

	assert.Equal(t, `server.host = "prod.internal"
server.port = 8080
tags = ["a","b"]
`, out.String())
}

func TestShow_Color(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "--color", "always", "/conf/base.toml"))
	assert.Contains(t, out.String(), "\x1b[")
}

func TestShow_Profile(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "--color", "never", "--profile", "prod", "/conf/profiles.json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"db": map[string]any{"host": "db.internal", "pool": float64(4)},
	}, got)

	a, _ = newTestApp(t, fixtures)
	err := execute(a, "show", "--profile", "staging", "/conf/profiles.json")
	assert.ErrorContains(t, err, "profile not found")
}

func TestShow_Errors(t *testing.T) {
	a, _ := newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "show", "/conf/missing.toml"), "missing.toml")

	a, _ = newTestApp(t, fixtures)
	assert.NoError(t, execute(a, "show", "--ignore-missing", "/conf/missing.toml", "/conf/base.toml"))

	a, _ = newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "show", "/conf/notes.xyz"), "xyz")

	a, _ = newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "show", "-"), "--stdin-format")

	a, _ = newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "show", "-o", "xml", "/conf/base.toml"), "xml")
}

func TestShow_Stdin(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	a.stdin = strings.NewReader("NAME=app\nPORT=80\n")
	require.NoError(t, execute(a, "show", "--color", "never", "--stdin-format", "env", "-"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{"NAME": "app", "PORT": float64(80)}, got)
}

func TestShow_Env(t *testing.T) {
	t.Setenv("SCCLI_MODE", "fast")

	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "--color", "never", "env:SCCLI_"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{"MODE": "fast"}, got)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"string", []string{"get", "server.host", "/conf/base.toml"}, "localhost\n"},
		{"number", []string{"get", "server.port", "/conf/base.toml"}, "8080\n"},
		{"list item", []string{"get", "tags.1", "/conf/prod.yaml"}, "b\n"},
		{"default", []string{"get", "server.tls", "--default", "off", "/conf/base.toml"}, "off\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t, fixtures)
			require.NoError(t, execute(a, tt.args...))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestGet_Missing(t *testing.T) {
	a, _ := newTestApp(t, fixtures)
	err := execute(a, "get", "server.tls", "/conf/base.toml")
	assert.ErrorContains(t, err, "server.tls")

	a, _ = newTestApp(t, fixtures)
	assert.Error(t, execute(a, "get"))
}

func TestKeys(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "keys", "/conf/base.toml", "/conf/prod.yaml"))
	assert.Equal(t, "server.host\nserver.port\ntags\n", out.String())

	a, out = newTestApp(t, fixtures)
	require.NoError(t, execute(a, "keys", "--top", "/conf/base.toml", "/conf/prod.yaml"))
	assert.Equal(t, "server\ntags\n", out.String())
}

func TestFormats(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "formats"))

	for _, want := range []string{"dict", "yamls", "osenv", "backends:", "gopkg.in/ini.v1"} {
		assert.Contains(t, out.String(), want)
	}
}

var errShortWrite = errors.New("short write")

// failingWriter accepts limit bytes and fails every write after that.
type failingWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		return 0, errShortWrite
	}
	return w.buf.Write(p)
}

func TestFormats_WriteError(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "formats"))
	full := out.String()
	formatsEnd := strings.Index(full, "\nbackends:")
	backendsStart := strings.Index(full, "  ")
	require.Positive(t, formatsEnd)
	require.Greater(t, backendsStart, formatsEnd)

	for name, limit := range map[string]int{
		"format list":     0,
		"backends header": formatsEnd,
		"backend names":   backendsStart,
	} {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestApp(t, fixtures)
			w := &failingWriter{limit: limit}
			a.out = w
			err := execute(a, "formats")
			assert.ErrorIs(t, err, errShortWrite)
			assert.Equal(t, full[:limit], w.buf.String())
		})
	}
}

func TestVersion(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "version"))
	assert.True(t, strings.HasPrefix(out.String(), "simpleconf dev"))
}

func TestOrigin(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "origin", "server.port", "/conf/base.toml", "/conf/prod.yaml"))
	assert.Equal(t, "/conf/base.toml\n", out.String())

	a, out = newTestApp(t, fixtures)
	require.NoError(t, execute(a, "origin", "server.host", "/conf/base.toml", "/conf/prod.yaml"))
	assert.Equal(t, "/conf/prod.yaml\n", out.String())

	a, _ = newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "origin", "server", "/conf/base.toml"), "server")
}

func TestShow_SetOverrides(t *testing.T) {
	a, out := newTestApp(t, fixtures)
	require.NoError(t, execute(a, "show", "-o", "flat",
		"--set", "server.port=9090",
		"--set", "server.tls=true",
		"--set", "name=edge",
		"/conf/base.toml"))

	assert.Equal(t, `name = "edge"
server.host = "localhost"
server.port = 9090
server.tls = true
`, out.String())

	a, _ = newTestApp(t, fixtures)
	assert.ErrorContains(t, execute(a, "show", "--set", "novalue", "/conf/base.toml"), "key=value")
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"a.b=1", "a.c=x", "d=", "e=1.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": int64(1), "c": "x"},
		"d": "",
		"e": 1.5,
	}, got)

	_, err = parseOverrides([]string{"=1"})
	assert.Error(t, err)
}
