package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultCallStackSize   = 200
	defaultRegistryMaxSize = 1024 * 256
	maxRepBytes            = 16 << 20
)

// TableScraper backs the scrape_table helper.
type TableScraper interface {
	FirstTable(ctx context.Context, url string) (*frame.Frame, error)
}

type Options struct {
	Timeout         time.Duration
	CallStackSize   int
	RegistryMaxSize int
	Scraper         TableScraper
	Logger          *slog.Logger
}

// Executor runs analysis scripts in a fresh, restricted Lua state.
type Executor struct {
	opts Options
}

func New(opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CallStackSize <= 0 {
		opts.CallStackSize = defaultCallStackSize
	}
	if opts.RegistryMaxSize <= 0 {
		opts.RegistryMaxSize = defaultRegistryMaxSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{opts: opts}
}

// Execute runs code with bindings as globals and returns the value of the
// global "result" (or the chunk's first return value) converted to Go.
func (e *Executor) Execute(ctx context.Context, code string, bindings []ingest.Binding) (out any, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	L, err := newState(e.opts)
	if err != nil {
		return nil, err
	}
	defer L.Close()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("lua: %v", r)
		}
	}()

	e.installHelpers(ctx, L)
	for _, b := range bindings {
		L.SetGlobal(b.Name, bindingValue(L, b))
	}
	L.SetContext(ctx)

	fn, err := L.LoadString(code)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("execution stopped: %w", ctxErr)
		}
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)

	v := L.GetGlobal("result")
	if v == lua.LNil {
		v = ret
	}
	if v == lua.LNil {
		return analysis.NoResultPlaceholder, nil
	}
	return toGo(v)
}

var removedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "module",
	"collectgarbage", "newproxy", "getfenv", "setfenv", "_printregs",
}

var osAllowed = []string{"clock", "date", "difftime", "time"}

func newState(opts Options) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       opts.CallStackSize,
		RegistryMaxSize:     opts.RegistryMaxSize,
		IncludeGoStackTrace: false,
	})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.OsLibName, lua.OpenOs},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua lib %q: %w", lib.name, err)
		}
	}

	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	full, _ := L.GetGlobal(lua.OsLibName).(*lua.LTable)
	safe := L.NewTable()
	if full != nil {
		for _, name := range osAllowed {
			safe.RawSetString(name, full.RawGetString(name))
		}
	}
	L.SetGlobal(lua.OsLibName, safe)

	// string.rep tanpa batas bisa menghabiskan memori sebelum timeout
	if str, ok := L.GetGlobal(lua.StringLibName).(*lua.LTable); ok {
		str.RawSetString("rep", L.NewFunction(strRep))
	}

	registerFrame(L)
	registerChart(L)
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = lua.LVAsString(L.ToStringMeta(L.Get(i + 1)))
		}
		opts.Logger.Debug("lua print", "out", strings.Join(parts, "\t"))
		return 0
	}))
	L.SetGlobal("plot_base64", L.NewFunction(plotBase64))
	L.SetGlobal("scrape_table", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("scrape_table is not available")
		return 0
	}))
	return L, nil
}

func strRep(L *lua.LState) int {
	s := L.CheckString(1)
	n := L.CheckInt(2)
	if n <= 0 || s == "" {
		L.Push(lua.LString(""))
		return 1
	}
	if int64(len(s))*int64(n) > maxRepBytes {
		L.RaiseError("string.rep result exceeds %d bytes", maxRepBytes)
		return 0
	}
	L.Push(lua.LString(strings.Repeat(s, n)))
	return 1
}

func (e *Executor) installHelpers(ctx context.Context, L *lua.LState) {
	if e.opts.Scraper == nil {
		return
	}
	L.SetGlobal("scrape_table", L.NewFunction(func(L *lua.LState) int {
		f, err := e.opts.Scraper.FirstTable(ctx, L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(pushFrame(L, f))
		return 1
	}))
}

func bindingValue(L *lua.LState, b ingest.Binding) lua.LValue {
	switch v := b.Value.(type) {
	case *frame.Frame:
		return pushFrame(L, v)
	case string:
		return lua.LString(v)
	}
	return lua.LNil
}

// ReservedNames lists every global a script sees before bindings are added.
func ReservedNames() []string {
	L, err := newState(Options{Logger: slog.Default(), CallStackSize: defaultCallStackSize, RegistryMaxSize: defaultRegistryMaxSize})
	if err != nil {
		return nil
	}
	defer L.Close()

	var names []string
	L.G.Global.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			names = append(names, string(s))
		}
	})
	names = append(names, "result")
	sort.Strings(names)
	return names
}
