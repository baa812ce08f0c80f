package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/simpleconf"
	"github.com/dshills/simpleconf/internal/layer"
	"github.com/dshills/simpleconf/internal/logger"
	"github.com/dshills/simpleconf/loader"
	"github.com/dshills/simpleconf/loader/lua"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// envSourcePrefix marks a command-line source naming the process
// environment, as in "env:APP_".
const envSourcePrefix = "env:"

type app struct {
	fs     afero.Fs
	stdin  io.Reader
	out    io.Writer
	errOut io.Writer

	// logger overrides the logger built from the verbosity flag.
	logger *zap.Logger

	verbose       int
	ignoreMissing bool
	stdinFormat   string
	output        string
	color         string
	profile       string
	base          string
	overrides     []string
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "simpleconf",
		Short: "Load, merge and inspect configuration sources",
		Long: `simpleconf loads configuration sources in order and deep-merges them,
later sources winning.

A source is a file path (format taken from its suffix: .ini .cfg .conf .config
.json .toml .yaml .yml .env .lua, or a name ending in rc), "env:PREFIX" for the
process environment variables starting with PREFIX, or "-" for standard input
(requires --stdin-format).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.CountVarP(&a.verbose, "verbose", "v", "Log loading steps to stderr (repeat for debug)")
	flags.BoolVar(&a.ignoreMissing, "ignore-missing", false, "Skip file sources that don't exist")
	flags.StringVar(&a.stdinFormat, "stdin-format", "", "Format of the \"-\" source (json, yaml, toml, ini, env, lua)")
	flags.StringVarP(&a.output, "output", "o", "json", "Output format (json, yaml, flat)")
	flags.StringVar(&a.color, "color", "auto", "Colorize JSON output (auto, always, never)")
	flags.StringVar(&a.profile, "profile", "", "Select a profile of the merged configuration")
	flags.StringVar(&a.base, "profile-base", simpleconf.DefaultProfile, "Profile the selected profile is layered over")
	flags.StringArrayVar(&a.overrides, "set", nil, "Override a value after all sources, as key=value (repeatable)")

	root.AddCommand(
		a.showCmd(),
		a.getCmd(),
		a.keysCmd(),
		a.originCmd(),
		a.formatsCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [sources...]",
		Short: "Print the merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(args)
			if err != nil {
				return err
			}
			if a.output == outputFlat {
				return a.renderFlat(cfg.Flatten())
			}
			return a.render(cfg.All())
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	var def string

	cmd := &cobra.Command{
		Use:   "get KEY [sources...]",
		Short: "Print the value at a dotted key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(args[1:])
			if err != nil {
				return err
			}

			v, err := cfg.Get(args[0])
			if err != nil {
				if !cmd.Flags().Changed("default") {
					return err
				}
				v = def
			}
			if s, ok := v.(string); ok {
				_, err := fmt.Fprintln(a.out, s)
				return err
			}
			return a.render(v)
		},
	}
	cmd.Flags().StringVar(&def, "default", "", "Value printed when the key doesn't exist")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	var top bool

	cmd := &cobra.Command{
		Use:   "keys [sources...]",
		Short: "List the keys of the merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(args)
			if err != nil {
				return err
			}

			keys := cfg.Keys()
			if !top {
				keys = layer.SortedKeys(cfg.Flatten())
			}
			for _, k := range keys {
				if _, err := fmt.Fprintln(a.out, k); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&top, "top", false, "List only top-level keys")
	return cmd
}

func (a *app) originCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "origin KEY [sources...]",
		Short: "Print which source provided the value at a dotted key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(args[1:])
			if err != nil {
				return err
			}
			name, ok := cfg.Origin(args[0])
			if !ok {
				return fmt.Errorf("no source provides a value at %q", args[0])
			}
			_, err = fmt.Fprintln(a.out, name)
			return err
		},
	}
}

func (a *app) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported formats and parser backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := loader.DefaultBackends()
			for _, f := range loader.Formats() {
				line := string(f)
				if name, ok := backends.Resolved(f); ok {
					line += "\t" + name
				}
				if _, err := fmt.Fprintln(a.out, line); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(a.out, "\nbackends:\n"); err != nil {
				return err
			}
			for _, name := range backends.Names() {
				if _, err := fmt.Fprintf(a.out, "  %s\n", name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "simpleconf %s (%s)\n", version, commit)
			return err
		},
	}
}

// load merges the command-line sources, applying the profile flags.
func (a *app) load(args []string) (*simpleconf.Config, error) {
	log, err := a.newLogger()
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Sync() }()

	sources := make([]any, 0, len(args))
	for _, arg := range args {
		src, err := a.source(arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(a.overrides) > 0 {
		overrides, err := parseOverrides(a.overrides)
		if err != nil {
			return nil, err
		}
		sources = append(sources, overrides)
	}

	cfg := simpleconf.New(
		simpleconf.WithFS(a.fs),
		simpleconf.WithLogger(log),
		simpleconf.WithIgnoreMissing(a.ignoreMissing),
	)
	if err := cfg.Load(sources...); err != nil {
		return nil, err
	}

	if a.profile == "" {
		return cfg, nil
	}
	return cfg.Profiles().UseWithBase(a.profile, a.base)
}

// source converts one command-line argument into a source value.
func (a *app) source(arg string) (any, error) {
	switch {
	case arg == "-":
		if a.stdinFormat == "" {
			return nil, fmt.Errorf("reading standard input requires --stdin-format")
		}
		if a.stdinFormat == string(lua.Format) {
			return loader.Using(lua.New(lua.WithFS(a.fs)), a.stdin), nil
		}
		return loader.As(loader.Format(a.stdinFormat), a.stdin), nil
	case strings.HasPrefix(arg, envSourcePrefix):
		return loader.OSEnv{Prefix: strings.TrimPrefix(arg, envSourcePrefix)}, nil
	case loader.ExtOfPath(arg) == lua.Format:
		return loader.Using(lua.New(lua.WithFS(a.fs)), arg), nil
	default:
		return arg, nil
	}
}

// parseOverrides turns "key.path=value" pairs into a nested map. Values are
// typed like environment variables.
func parseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		layer.SetByPath(out, key, loader.ParseValue(value))
	}
	return out, nil
}

func (a *app) newLogger() (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	return logger.New(logger.Config{Level: logger.Verbosity(a.verbose)})
}
