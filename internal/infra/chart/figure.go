package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Kind is the chart type of a Figure.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindPie     Kind = "pie"
)

// Format is the encoded image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
	maxDimension  = 4096
)

var ErrNoData = errors.New("chart has no data")

// Options holds the optional figure settings.
type Options struct {
	Title      string
	XLabel     string
	YLabel     string
	Width      int
	Height     int
	Regression bool
}

// Figure is a chart waiting to be rendered.
// Bar and pie charts use Labels + Values; line and scatter use X + Values.
type Figure struct {
	Kind   Kind
	Labels []string
	X      []float64
	Values []float64
	Options
}

// NewCategorical builds a bar or pie figure.
func NewCategorical(kind Kind, labels []string, values []float64, opts Options) (*Figure, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("labels and values differ in length (%d vs %d)", len(labels), len(values))
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	return &Figure{Kind: kind, Labels: labels, Values: values, Options: opts}, nil
}

// NewXY builds a line or scatter figure.
func NewXY(kind Kind, xs, ys []float64, opts Options) (*Figure, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y differ in length (%d vs %d)", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, ErrNoData
	}
	return &Figure{Kind: kind, X: xs, Values: ys, Options: opts}, nil
}

func (f *Figure) size() (int, int) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return min(w, maxDimension), min(h, maxDimension)
}

// Render writes the figure in the given format.
func (f *Figure) Render(w io.Writer, format Format) error {
	rp := gochart.PNG
	if format == SVG {
		rp = gochart.SVG
	}
	width, height := f.size()

	switch f.Kind {
	case KindBar:
		c := gochart.BarChart{
			Title:    f.Title,
			Width:    width,
			Height:   height,
			BarWidth: barWidth(width, len(f.Values)),
			Bars:     values(f.Labels, f.Values),
			YAxis:    gochart.YAxis{Name: f.YLabel, Range: barRange(f.Values)},
		}
		return c.Render(rp, w)
	case KindPie:
		c := gochart.PieChart{
			Title:  f.Title,
			Width:  width,
			Height: height,
			Values: values(f.Labels, f.Values),
		}
		return c.Render(rp, w)
	case KindLine, KindScatter:
		main := gochart.ContinuousSeries{
			Name:    f.YLabel,
			XValues: f.X,
			YValues: f.Values,
		}
		if f.Kind == KindScatter {
			main.Style = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 5}
		}
		series := []gochart.Series{main}
		// regression needs at least two distinct x values
		if lo, hi := extent(f.X); f.Regression && hi > lo {
			series = append(series, &gochart.LinearRegressionSeries{
				Name:        "regression",
				InnerSeries: main,
				Style: gochart.Style{
					StrokeColor:     drawing.ColorRed,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			})
		}
		xa := gochart.XAxis{Name: f.XLabel}
		if r := flatRange(f.X); r != nil {
			xa.Range = r
		}
		ya := gochart.YAxis{Name: f.YLabel}
		if r := flatRange(f.Values); r != nil {
			ya.Range = r
		}
		c := gochart.Chart{
			Title:  f.Title,
			Width:  width,
			Height: height,
			XAxis:  xa,
			YAxis:  ya,
			Series: series,
		}
		return c.Render(rp, w)
	}
	return fmt.Errorf("unsupported chart kind %q", f.Kind)
}

// DataURI renders the figure and returns it as a base64 data URI.
func (f *Figure) DataURI(format Format) (string, error) {
	format = Format(strings.ToLower(string(format)))
	mime := "image/png"
	switch format {
	case "", PNG:
		format = PNG
	case SVG:
		mime = "image/svg+xml"
	default:
		return "", fmt.Errorf("unsupported image format %q", format)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, format); err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func values(labels []string, vals []float64) []gochart.Value {
	out := make([]gochart.Value, len(vals))
	for i, v := range vals {
		out[i] = gochart.Value{Label: labels[i], Value: v}
	}
	return out
}

func barWidth(width, n int) int {
	bw := width / (2 * n)
	if bw > 60 {
		bw = 60
	}
	if bw < 5 {
		bw = 5
	}
	return bw
}

// extent returns the min and max of the finite values, or 0, 0 when there are none.
func extent(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// barRange anchors bars at zero; go-chart rejects a range with zero width.
func barRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := extent(vals)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// flatRange pads a single-valued axis, nil when the data already has a spread.
func flatRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := extent(vals)
	if hi > lo {
		return nil
	}
	pad := math.Abs(lo) / 10
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
