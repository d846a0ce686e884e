package sandbox

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/bryanwahyu/automaton-analyst/internal/infra/chart"
)

const figureTypeName = "figure"

func registerChart(L *lua.LState) {
	mt := L.NewTypeMetatable(figureTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("figure<" + string(checkFigure(L, 1).Kind) + ">"))
		return 1
	}))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"bar":     categorical(chart.KindBar),
		"pie":     categorical(chart.KindPie),
		"line":    xy(chart.KindLine),
		"scatter": xy(chart.KindScatter),
	})
	L.SetGlobal("chart", mod)
}

func categorical(kind chart.Kind) lua.LGFunction {
	return func(L *lua.LState) int {
		fig, err := chart.NewCategorical(kind, checkStrings(L, 1), checkFloats(L, 2), chartOptions(L, 3))
		raiseIf(L, err)
		L.Push(pushFigure(L, fig))
		return 1
	}
}

func xy(kind chart.Kind) lua.LGFunction {
	return func(L *lua.LState) int {
		fig, err := chart.NewXY(kind, checkFloats(L, 1), checkFloats(L, 2), chartOptions(L, 3))
		raiseIf(L, err)
		L.Push(pushFigure(L, fig))
		return 1
	}
}

func chartOptions(L *lua.LState, n int) chart.Options {
	t := L.OptTable(n, nil)
	if t == nil {
		return chart.Options{}
	}
	str := func(key string) string { return lua.LVAsString(t.RawGetString(key)) }
	num := func(key string) int {
		if v, ok := t.RawGetString(key).(lua.LNumber); ok {
			return int(v)
		}
		return 0
	}
	return chart.Options{
		Title:      str("title"),
		XLabel:     str("xlabel"),
		YLabel:     str("ylabel"),
		Width:      num("width"),
		Height:     num("height"),
		Regression: lua.LVAsBool(t.RawGetString("regression")),
	}
}

func pushFigure(L *lua.LState, fig *chart.Figure) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = fig
	L.SetMetatable(ud, L.GetTypeMetatable(figureTypeName))
	return ud
}

func checkFigure(L *lua.LState, n int) *chart.Figure {
	ud := L.CheckUserData(n)
	if fig, ok := ud.Value.(*chart.Figure); ok {
		return fig
	}
	L.ArgError(n, "figure expected")
	return nil
}

// plot_base64(fig [, "png" | "svg"])
func plotBase64(L *lua.LState) int {
	fig := checkFigure(L, 1)
	uri, err := fig.DataURI(chart.Format(L.OptString(2, string(chart.PNG))))
	raiseIf(L, err)
	L.Push(lua.LString(uri))
	return 1
}
