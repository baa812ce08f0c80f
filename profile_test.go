package simpleconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles(t *testing.T) {
	p, err := LoadProfiles(map[string]any{
		"default": map[string]any{"host": "localhost", "port": 5432, "pool": map[string]any{"size": 4}},
		"staging": map[string]any{"host": "staging.internal"},
		"prod":    map[string]any{"host": "db.internal", "pool": map[string]any{"size": 32}},
		"version": 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "prod", "staging"}, p.Names())
	assert.True(t, p.Has("prod"))
	assert.False(t, p.Has("version"))

	prod, err := p.Use("prod")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"host": "db.internal",
		"port": int64(5432),
		"pool": map[string]any{"size": int64(32)},
	}, prod.All())

	def, err := p.Use("default")
	require.NoError(t, err)
	assert.Equal(t, "localhost", def.GetOr("host", nil))

	bare, err := p.UseWithBase("staging", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"host": "staging.internal"}, bare.All())

	layered, err := p.UseWithBase("staging", "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(32), layered.GetOr("pool.size", nil))

	_, err = p.Use("nope")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = p.Use("version")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfiles_MissingDefault(t *testing.T) {
	cfg, err := Load(map[string]any{"dev": map[string]any{"debug": true}})
	require.NoError(t, err)

	dev, err := cfg.Profiles().Use("dev")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"debug": true}, dev.All())

	require.NoError(t, dev.Update(map[string]any{"extra": 1}))
	assert.False(t, cfg.Has("extra"))
}

func TestProfiles_Origin(t *testing.T) {
	fs := newTestFS(t, map[string]string{
		"/default.toml": "[default]\nhost = \"localhost\"\nport = 1\n",
		"/prod.json":    `{"prod": {"host": "db.internal"}}`,
	})

	cfg := New(WithFS(fs))
	require.NoError(t, cfg.Load("/default.toml", "/prod.json"))

	prod, err := cfg.Profiles().Use("prod")
	require.NoError(t, err)

	name, ok := prod.Origin("host")
	require.True(t, ok)
	assert.Equal(t, "/prod.json", name)
	name, ok = prod.Origin("port")
	require.True(t, ok)
	assert.Equal(t, "/default.toml", name)
}
