package sandbox

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/chart"
)

const maxDepth = 64

var errTooDeep = errors.New("result is nested too deeply or contains a cycle")

// toGo converts a Lua value into something encoding/json can marshal.
func toGo(v lua.LValue) (any, error) {
	return convert(v, 0)
}

func convert(v lua.LValue, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	switch lv := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(lv), nil
	case lua.LNumber:
		f := float64(lv)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return f, nil
	case lua.LString:
		return string(lv), nil
	case *lua.LTable:
		return convertTable(lv, depth)
	case *lua.LUserData:
		switch u := lv.Value.(type) {
		case *frame.Frame:
			return finiteRecords(u.Records()), nil
		case *chart.Figure:
			return u.DataURI(chart.PNG)
		}
	}
	return nil, fmt.Errorf("cannot return a %s as result", v.Type().String())
}

// finiteRecords replaces NaN and ±Inf cells with nil so the result stays valid JSON.
func finiteRecords(recs []map[string]any) []map[string]any {
	for _, rec := range recs {
		for k, v := range rec {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				rec[k] = nil
			}
		}
	}
	return recs
}

func convertTable(t *lua.LTable, depth int) (any, error) {
	n := t.MaxN()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if count == n {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			v, err := convert(t.RawGetInt(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i-1] = v
		}
		return out, nil
	}

	out := make(map[string]any, count)
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		var gv any
		if gv, err = convert(v, depth+1); err == nil {
			out[keyString(k)] = gv
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func keyString(k lua.LValue) string {
	if n, ok := k.(lua.LNumber); ok {
		return strconv.FormatFloat(float64(n), 'f', -1, 64)
	}
	return k.String()
}

// toLua converts a frame cell or other Go scalar into a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case float64:
		return lua.LNumber(x)
	case int:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case []any:
		t := L.CreateTable(len(x), 0)
		for i, e := range x {
			t.RawSetInt(i+1, toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(x))
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}

// fromLua converts a scalar Lua argument into a Go value for frame operations.
func fromLua(v lua.LValue) any {
	switch lv := v.(type) {
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	case lua.LBool:
		return bool(lv)
	}
	return nil
}

func checkStrings(L *lua.LState, n int) []string {
	t := L.CheckTable(n)
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		out = append(out, lua.LVAsString(L.ToStringMeta(t.RawGetInt(i))))
	}
	return out
}

func checkFloats(L *lua.LState, n int) []float64 {
	t := L.CheckTable(n)
	out := make([]float64, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		v := t.RawGetInt(i)
		num, ok := v.(lua.LNumber)
		if !ok {
			if s, isStr := v.(lua.LString); isStr {
				if f, err := strconv.ParseFloat(string(s), 64); err == nil {
					out = append(out, f)
					continue
				}
			}
			L.ArgError(n, fmt.Sprintf("element %d is not a number", i))
		}
		out = append(out, float64(num))
	}
	return out
}
