// Package lua loads configuration written as a Lua chunk returning a table.
//
// The chunk runs in a gopher-lua state with only the base, table, string and
// math libraries. Functions that load further code (dofile, loadfile, load,
// loadstring, require) are removed, and execution is bounded by a timeout.
//
// Lua is not one of the built-in formats; pass the loader explicitly:
//
//	cfg, err := simpleconf.Load(
//		"defaults.toml",
//		loader.Using(lua.New(), "overrides.lua"),
//	)
package lua
