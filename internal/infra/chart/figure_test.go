package chart

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeURI(t *testing.T, uri, prefix string) []byte {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, prefix), uri[:min(len(uri), 40)])
	raw, err := base64.StdEncoding.DecodeString(strings.SplitN(uri, ",", 2)[1])
	require.NoError(t, err)
	return raw
}

func TestBarChartPNG(t *testing.T) {
	fig, err := NewCategorical(KindBar, []string{"a", "b", "c"}, []float64{3, 5, 2}, Options{Title: "counts"})
	require.NoError(t, err)

	uri, err := fig.DataURI("")
	require.NoError(t, err)
	raw := decodeURI(t, uri, "data:image/png;base64,")

	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, defaultWidth, cfg.Width)
	assert.Equal(t, defaultHeight, cfg.Height)
}

func TestScatterWithRegressionSVG(t *testing.T) {
	fig, err := NewXY(KindScatter, []float64{1, 2, 3, 4}, []float64{2, 4.1, 5.9, 8.2}, Options{Regression: true, Width: 400, Height: 300})
	require.NoError(t, err)

	uri, err := fig.DataURI(SVG)
	require.NoError(t, err)
	raw := decodeURI(t, uri, "data:image/svg+xml;base64,")
	assert.Contains(t, string(raw), "<svg")
}

func TestPieAndLine(t *testing.T) {
	pie, err := NewCategorical(KindPie, []string{"x", "y"}, []float64{1, 3}, Options{})
	require.NoError(t, err)
	_, err = pie.DataURI(PNG)
	require.NoError(t, err)

	line, err := NewXY(KindLine, []float64{1, 2, 3}, []float64{1, 4, 9}, Options{XLabel: "x", YLabel: "y"})
	require.NoError(t, err)
	_, err = line.DataURI(PNG)
	require.NoError(t, err)
}

func TestFigureValidation(t *testing.T) {
	_, err := NewCategorical(KindBar, []string{"a"}, []float64{1, 2}, Options{})
	assert.Error(t, err)
	_, err = NewXY(KindLine, nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoData)

	fig, err := NewCategorical(KindBar, []string{"a"}, []float64{1}, Options{})
	require.NoError(t, err)
	_, err = fig.DataURI("gif")
	assert.Error(t, err)
}

func TestDegenerateFiguresStillRender(t *testing.T) {
	bars := map[string][]float64{
		"single":   {1},
		"equal":    {5, 5},
		"zeros":    {0, 0},
		"negative": {-3, -3},
	}
	for name, vals := range bars {
		labels := make([]string, len(vals))
		for i := range labels {
			labels[i] = string(rune('a' + i))
		}
		fig, err := NewCategorical(KindBar, labels, vals, Options{})
		require.NoError(t, err, name)
		uri, err := fig.DataURI(PNG)
		require.NoError(t, err, name)
		decodeURI(t, uri, "data:image/png;base64,")
	}

	line, err := NewXY(KindLine, []float64{1}, []float64{3}, Options{})
	require.NoError(t, err)
	_, err = line.DataURI(PNG)
	require.NoError(t, err)

	scatter, err := NewXY(KindScatter, []float64{1, 1}, []float64{2, 3}, Options{Regression: true})
	require.NoError(t, err)
	_, err = scatter.DataURI(SVG)
	require.NoError(t, err)

	flat, err := NewXY(KindLine, []float64{0, 1, 2}, []float64{0, 0, 0}, Options{})
	require.NoError(t, err)
	_, err = flat.DataURI(PNG)
	require.NoError(t, err)
}

func TestFigureSizeIsClamped(t *testing.T) {
	fig := &Figure{Kind: KindBar, Labels: []string{"a"}, Values: []float64{1}, Options: Options{Width: 100000, Height: 50000}}
	w, h := fig.size()
	assert.Equal(t, maxDimension, w)
	assert.Equal(t, maxDimension, h)

	fig.Width, fig.Height = 320, 0
	w, h = fig.size()
	assert.Equal(t, 320, w)
	assert.Equal(t, defaultHeight, h)
}

func TestBarRange(t *testing.T) {
	r := barRange([]float64{3, 5, 2})
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 5.0, r.Max)

	r = barRange([]float64{0, 0})
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	assert.Nil(t, flatRange([]float64{1, 2}))
	r = flatRange([]float64{10})
	assert.Equal(t, 9.0, r.Min)
	assert.Equal(t, 11.0, r.Max)
}
