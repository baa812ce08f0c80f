package loader

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoader_Load(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/conf/app.json", []byte(`{
  "name": "app",
  "port": 8080,
  "ratio": 0.5,
  "big": 9007199254740993,
  "enabled": true,
  "none": null,
  "hosts": ["a", "b"],
  "db": {"pool": {"size": 4}}
}`), 0o644))

	out, err := NewJSONLoader(WithFS(fs)).Load("/conf/app.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":    "app",
		"port":    int64(8080),
		"ratio":   0.5,
		"big":     int64(9007199254740993),
		"enabled": true,
		"none":    nil,
		"hosts":   []any{"a", "b"},
		"db":      map[string]any{"pool": map[string]any{"size": int64(4)}},
	}, out)
}

func TestJSONLoader_Reader(t *testing.T) {
	out, err := NewJSONLoader().Load(strings.NewReader(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1)}, out)
}

func TestJSONLoader_Malformed(t *testing.T) {
	for _, backend := range []string{BackendGoJSON, BackendStdJSON} {
		b := NewBackends()
		b.Register(backend, map[string]Parser{
			BackendGoJSON:  parseGoJSON,
			BackendStdJSON: parseStdJSON,
		}[backend])
		l := NewJSONLoader(WithBackends(b))

		for name, data := range map[string]string{
			"syntax":       `{"a": 1,}`,
			"truncated":    `{"a": `,
			"empty":        ``,
			"array":        `[1, 2]`,
			"scalar":       `"text"`,
			"trailing doc": `{"a": 1} {"b": 2}`,
		} {
			t.Run(backend+"/"+name, func(t *testing.T) {
				out, err := l.Load([]byte(data))
				assert.Nil(t, out)
				assert.ErrorIs(t, err, ErrFormat)
			})
		}
	}
}

func TestJSONLoader_FallbackMatchesPrimary(t *testing.T) {
	doc := []byte(`{"a": {"b": [1, 2.5, "x"]}}`)

	primary := NewBackends()
	primary.Register(BackendGoJSON, parseGoJSON)
	fallback := NewBackends()
	fallback.Register(BackendStdJSON, parseStdJSON)

	want, err := NewJSONLoader(WithBackends(primary)).Load(doc)
	require.NoError(t, err)
	got, err := NewJSONLoader(WithBackends(fallback)).Load(doc)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJSONLoader_FileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{`), 0o644))

	_, err := NewJSONLoader(WithFS(fs)).Load("/bad.json")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "/bad.json", fe.Source)

	_, err = NewJSONLoader(WithFS(fs)).Load("/missing.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFormat)

	_, err = NewJSONLoader().Load(12)
	assert.ErrorIs(t, err, ErrInvalidSource)
}
