package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictLoader_Load(t *testing.T) {
	src := map[string]any{
		"server": map[string]any{"port": 8080, "tls": false},
		"tags":   []string{"a"},
	}

	out, err := NewDictLoader().Load(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"server": map[string]any{"port": int64(8080), "tls": false},
		"tags":   []any{"a"},
	}, out)

	out["server"].(map[string]any)["port"] = 1
	assert.Equal(t, 8080, src["server"].(map[string]any)["port"])
}

func TestDictLoader_StringMapAndTypedMap(t *testing.T) {
	out, err := NewDictLoader().Load(map[string]string{"a": "1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1"}, out)

	out, err = NewDictLoader().Load(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1)}, out)

	out, err = NewDictLoader().Load(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDictLoader_Errors(t *testing.T) {
	_, err := NewDictLoader().Load("not a map")
	assert.ErrorIs(t, err, ErrInvalidSource)

	out, err := NewDictLoader().Load(map[string]any{"bad": struct{}{}})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrFormat)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FormatDict, fe.Format)
	assert.Equal(t, "<dict>", fe.Source)
}
