package lua

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/dshills/simpleconf/loader"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Format tags errors raised by this loader.
const Format loader.Format = "lua"

// DefaultTimeout bounds the execution of one chunk.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotTable is returned when the chunk does not return a table.
	ErrNotTable = errors.New("chunk must return a table")

	// ErrCycle is returned when a returned table references itself.
	ErrCycle = errors.New("table contains a reference cycle")
)

// Loader evaluates Lua configuration chunks. A Loader holds no Lua state
// between calls and is safe for concurrent use.
type Loader struct {
	fs      afero.Fs
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the filesystem chunk files are read from.
func WithFS(fs afero.Fs) Option {
	return func(l *Loader) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTimeout sets the maximum execution time of a chunk.
// Zero or negative disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// New creates a Lua loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		fs:      afero.NewOsFs(),
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the chunk src (a file path, []byte or io.Reader) and converts
// the table it returns. Tables with keys 1..n become lists, other tables
// maps with string keys.
func (l *Loader) Load(src any) (map[string]any, error) {
	code, name, err := l.read(src)
	if err != nil {
		return nil, err
	}

	config, err := l.eval(code, name)
	if err != nil {
		return nil, formatError(name, err)
	}

	l.logger.Debug("evaluated lua config",
		zap.String("source", name),
		zap.Int("keys", len(config)),
	)
	return config, nil
}

func (l *Loader) read(src any) ([]byte, string, error) {
	switch v := src.(type) {
	case string:
		data, err := afero.ReadFile(l.fs, v)
		if err != nil {
			return nil, v, fmt.Errorf("reading config file %s: %w", v, err)
		}
		return data, v, nil
	case []byte:
		return v, "<bytes>", nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, "<reader>", fmt.Errorf("reading config: %w", err)
		}
		return data, "<reader>", nil
	default:
		return nil, loader.Describe(src), &loader.SourceTypeError{Format: Format, Type: fmt.Sprintf("%T", src)}
	}
}

func (l *Loader) eval(code []byte, name string) (config map[string]any, err error) {
	L := newState()
	defer L.Close()

	if l.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		L.SetContext(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := L.Load(bytes.NewReader(code), name)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, err
	}

	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotTable, ret.Type())
	}

	value, err := convertTable(tbl, "", make(map[*lua.LTable]bool))
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w with named keys, got a list", ErrNotTable)
	}
}

// newState opens a state restricted to the safe standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func convertValue(lv lua.LValue, path string, visited map[*lua.LTable]bool) (any, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(v), nil
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return convertNumber(float64(v)), nil
	case *lua.LTable:
		return convertTable(v, path, visited)
	default:
		return nil, &loader.ValueError{Path: path, Type: "lua " + lv.Type().String()}
	}
}

func convertNumber(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return f
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return f
	}
	return int64(f)
}

func convertTable(t *lua.LTable, path string, visited map[*lua.LTable]bool) (any, error) {
	if visited[t] {
		return nil, fmt.Errorf("%w at %q", ErrCycle, path)
	}
	visited[t] = true
	defer delete(visited, t)

	if n, ok := arrayLen(t); ok {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			v, err := convertValue(t.RawGetInt(i), joinPath(path, strconv.Itoa(i-1)), visited)
			if err != nil {
				return nil, err
			}
			out[i-1] = v
		}
		return out, nil
	}

	out := make(map[string]any)
	var err error
	t.ForEach(func(k, lv lua.LValue) {
		if err != nil {
			return
		}
		key := keyString(k)
		out[key], err = convertValue(lv, joinPath(path, key), visited)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// arrayLen reports whether t holds exactly the keys 1..n, n > 0.
func arrayLen(t *lua.LTable) (int, bool) {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok {
			isArray = false
			return
		}
		n := int(kn)
		if float64(n) != float64(kn) || n <= 0 {
			isArray = false
			return
		}
		if n > maxN {
			maxN = n
		}
	})
	if !isArray || maxN == 0 || count != maxN {
		return 0, false
	}
	return maxN, true
}

func keyString(k lua.LValue) string {
	switch kv := k.(type) {
	case lua.LString:
		return string(kv)
	case lua.LNumber:
		return fmt.Sprint(convertNumber(float64(kv)))
	default:
		return k.String()
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func formatError(name string, err error) *loader.FormatError {
	return &loader.FormatError{
		Format:  Format,
		Source:  name,
		Message: err.Error(),
		Err:     err,
	}
}
