package sandbox

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
)

const frameTypeName = "frame"

func registerFrame(L *lua.LState) {
	mt := L.NewTypeMetatable(frameTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), frameMethods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkFrame(L, 1).String()))
		return 1
	}))
	L.SetField(mt, "__len", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(checkFrame(L, 1).NRows()))
		return 1
	}))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new":          frameNew,
		"from_records": frameFromRecords,
	})
	L.SetGlobal(frameTypeName, mod)
}

func pushFrame(L *lua.LState, f *frame.Frame) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = f
	L.SetMetatable(ud, L.GetTypeMetatable(frameTypeName))
	return ud
}

func checkFrame(L *lua.LState, n int) *frame.Frame {
	ud := L.CheckUserData(n)
	if f, ok := ud.Value.(*frame.Frame); ok {
		return f
	}
	L.ArgError(n, "frame expected")
	return nil
}

func column(L *lua.LState, f *frame.Frame, name string) *frame.Series {
	c, err := f.Column(name)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	return c
}

func raiseIf(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

var frameMethods = map[string]lua.LGFunction{
	"shape": func(L *lua.LState) int {
		rows, cols := checkFrame(L, 1).Shape()
		L.Push(lua.LNumber(rows))
		L.Push(lua.LNumber(cols))
		return 2
	},
	"nrows": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkFrame(L, 1).NRows()))
		return 1
	},
	"ncols": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkFrame(L, 1).NCols()))
		return 1
	},
	"columns": func(L *lua.LState) int {
		names := checkFrame(L, 1).Columns()
		t := L.CreateTable(len(names), 0)
		for i, n := range names {
			t.RawSetInt(i+1, lua.LString(n))
		}
		L.Push(t)
		return 1
	},
	// column: sel kosong jadi NaN (angka) atau "" (teks) supaya ipairs tidak berhenti.
	"column": func(L *lua.LState) int {
		c := column(L, checkFrame(L, 1), L.CheckString(2))
		t := L.CreateTable(c.Len(), 0)
		for i := 0; i < c.Len(); i++ {
			switch {
			case c.Kind == frame.KindNumber && c.Null[i]:
				t.RawSetInt(i+1, lua.LNumber(math.NaN()))
			case c.Kind == frame.KindNumber:
				t.RawSetInt(i+1, lua.LNumber(c.Nums[i]))
			default:
				t.RawSetInt(i+1, lua.LString(c.String(i)))
			}
		}
		L.Push(t)
		return 1
	},
	"row": func(L *lua.LState) int {
		f := checkFrame(L, 1)
		i := L.CheckInt(2)
		if i < 1 || i > f.NRows() {
			L.ArgError(2, "row index out of range")
		}
		L.Push(toLua(L, f.Row(i-1)))
		return 1
	},
	"rows": func(L *lua.LState) int {
		recs := checkFrame(L, 1).Records()
		t := L.CreateTable(len(recs), 0)
		for i, r := range recs {
			t.RawSetInt(i+1, toLua(L, r))
		}
		L.Push(t)
		return 1
	},
	"head": func(L *lua.LState) int {
		L.Push(pushFrame(L, checkFrame(L, 1).Head(L.OptInt(2, 5))))
		return 1
	},
	"tail": func(L *lua.LState) int {
		L.Push(pushFrame(L, checkFrame(L, 1).Tail(L.OptInt(2, 5))))
		return 1
	},
	"select": func(L *lua.LState) int {
		f := checkFrame(L, 1)
		var names []string
		if L.Get(2).Type() == lua.LTTable {
			names = checkStrings(L, 2)
		} else {
			for i := 2; i <= L.GetTop(); i++ {
				names = append(names, L.CheckString(i))
			}
		}
		out, err := f.Select(names...)
		raiseIf(L, err)
		L.Push(pushFrame(L, out))
		return 1
	},
	"filter": func(L *lua.LState) int {
		out, err := checkFrame(L, 1).Filter(L.CheckString(2), L.CheckString(3), fromLua(L.CheckAny(4)))
		raiseIf(L, err)
		L.Push(pushFrame(L, out))
		return 1
	},
	"sort": func(L *lua.LState) int {
		out, err := checkFrame(L, 1).Sort(L.CheckString(2), L.OptBool(3, false))
		raiseIf(L, err)
		L.Push(pushFrame(L, out))
		return 1
	},
	"group_by": func(L *lua.LState) int {
		out, err := checkFrame(L, 1).GroupBy(L.CheckString(2), L.OptString(3, frame.AggCount), L.OptString(4, ""))
		raiseIf(L, err)
		L.Push(pushFrame(L, out))
		return 1
	},
	"sum":    aggregate(frame.AggSum),
	"mean":   aggregate(frame.AggMean),
	"median": aggregate(frame.AggMedian),
	"min":    aggregate(frame.AggMin),
	"max":    aggregate(frame.AggMax),
	"std":    aggregate(frame.AggStd),
	"count":  aggregate(frame.AggCount),
	"unique": func(L *lua.LState) int {
		vals, err := checkFrame(L, 1).Unique(L.CheckString(2))
		raiseIf(L, err)
		L.Push(toLua(L, vals))
		return 1
	},
	// value_counts -> { {value=..., count=...}, ... } terurut dari yang paling sering
	"value_counts": func(L *lua.LState) int {
		counts, err := checkFrame(L, 1).ValueCounts(L.CheckString(2))
		raiseIf(L, err)
		t := L.CreateTable(len(counts), 0)
		for i, c := range counts {
			e := L.CreateTable(0, 2)
			e.RawSetString("value", toLua(L, c.Value))
			e.RawSetString("count", lua.LNumber(c.N))
			t.RawSetInt(i+1, e)
		}
		L.Push(t)
		return 1
	},
	"corr": func(L *lua.LState) int {
		r, err := checkFrame(L, 1).Corr(L.CheckString(2), L.CheckString(3))
		raiseIf(L, err)
		L.Push(lua.LNumber(r))
		return 1
	},
	"describe": func(L *lua.LState) int {
		L.Push(pushFrame(L, checkFrame(L, 1).Describe()))
		return 1
	},
}

func aggregate(agg string) lua.LGFunction {
	return func(L *lua.LState) int {
		v, err := checkFrame(L, 1).Aggregate(L.CheckString(2), agg)
		raiseIf(L, err)
		L.Push(lua.LNumber(v))
		return 1
	}
}

// frame.new({"a", "b"}, {{1, "x"}, {2, "y"}})
func frameNew(L *lua.LState) int {
	cols := checkStrings(L, 1)
	rowsTbl := L.OptTable(2, L.NewTable())
	rows := make([][]any, 0, rowsTbl.Len())
	for i := 1; i <= rowsTbl.Len(); i++ {
		rt, ok := rowsTbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(2, "rows must be tables")
		}
		row := make([]any, 0, rt.MaxN())
		for j := 1; j <= rt.MaxN(); j++ {
			row = append(row, fromLua(rt.RawGetInt(j)))
		}
		rows = append(rows, row)
	}
	f, err := frame.New(cols, rows)
	raiseIf(L, err)
	L.Push(pushFrame(L, f))
	return 1
}

// frame.from_records({{name="a", v=1}, ...}); kolom diurutkan berdasarkan nama.
func frameFromRecords(L *lua.LState) int {
	t := L.CheckTable(1)
	recs := make([]map[string]any, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		rt, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(1, "records must be tables")
		}
		rec := map[string]any{}
		rt.ForEach(func(k, v lua.LValue) {
			rec[keyString(k)] = fromLua(v)
		})
		recs = append(recs, rec)
	}
	L.Push(pushFrame(L, frame.FromRecords(recs)))
	return 1
}
