// Package simpleconf aggregates configuration from many sources into one
// nested map with dotted-path access.
//
// Sources are loaded in order and deep-merged, later sources winning:
//
//	cfg, err := simpleconf.Load(
//		map[string]any{"server": map[string]any{"port": 8080}},
//		"config.toml",
//		[]string{"base.yaml", "local.yaml"},
//		"APP_.osenv",
//	)
//	port, err := cfg.GetInt("server.port")
//
// A source is a Go map, a file path whose suffix names its format, a list of
// either, a loader.OSEnv marker for the process environment, or a
// loader.Source pinning a value to a format or a custom loader. See package
// loader for the formats and how values are typed.
package simpleconf
