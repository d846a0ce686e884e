package frame

import (
	"fmt"
	"math"
	"sort"
)

// Aggregations understood by Aggregate and GroupBy.
const (
	AggSum    = "sum"
	AggMean   = "mean"
	AggMedian = "median"
	AggMin    = "min"
	AggMax    = "max"
	AggStd    = "std"
	AggCount  = "count"
)

// Aggregate reduces a column to a single number. Missing cells are skipped.
// Every aggregation except count needs a numeric column.
func (f *Frame) Aggregate(col, agg string) (float64, error) {
	c, err := f.Column(col)
	if err != nil {
		return 0, err
	}
	return reduce(c, seq(0, f.rows), agg)
}

func reduce(c *Series, idx []int, agg string) (float64, error) {
	if agg == AggCount {
		n := 0
		for _, i := range idx {
			if !c.Null[i] {
				n++
			}
		}
		return float64(n), nil
	}
	if c.Kind != KindNumber {
		return 0, fmt.Errorf("column %q is not numeric", c.Name)
	}
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		if !c.Null[i] {
			vals = append(vals, c.Nums[i])
		}
	}

	switch agg {
	case AggSum:
		return sum(vals), nil
	case AggMean:
		if len(vals) == 0 {
			return math.NaN(), nil
		}
		return sum(vals) / float64(len(vals)), nil
	case AggMedian:
		return median(vals), nil
	case AggMin, AggMax:
		if len(vals) == 0 {
			return math.NaN(), nil
		}
		out := vals[0]
		for _, v := range vals[1:] {
			if (agg == AggMin && v < out) || (agg == AggMax && v > out) {
				out = v
			}
		}
		return out, nil
	case AggStd:
		return stddev(vals), nil
	}
	return 0, fmt.Errorf("unsupported aggregation %q", agg)
}

// GroupBy groups rows by key and reduces valueCol in each group with agg.
// The result has two columns, key and valueCol (or "count" when valueCol is
// empty), ordered by key ascending.
func (f *Frame) GroupBy(key, agg, valueCol string) (*Frame, error) {
	k, err := f.Column(key)
	if err != nil {
		return nil, err
	}
	v := k
	outName := valueCol
	if valueCol == "" {
		if agg != AggCount {
			return nil, fmt.Errorf("aggregation %q needs a value column", agg)
		}
		outName = AggCount
	} else if v, err = f.Column(valueCol); err != nil {
		return nil, err
	}

	groups := map[string][]int{}
	first := map[string]int{}
	order := []string{}
	for i := 0; i < f.rows; i++ {
		if k.Null[i] {
			continue
		}
		g := k.String(i)
		if _, ok := groups[g]; !ok {
			order = append(order, g)
			first[g] = i
		}
		groups[g] = append(groups[g], i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		if k.Kind == KindNumber {
			return k.Nums[first[order[a]]] < k.Nums[first[order[b]]]
		}
		return order[a] < order[b]
	})

	keys := &Series{Name: k.Name, Kind: k.Kind, Null: make([]bool, len(order))}
	vals := &Series{Name: outName, Kind: KindNumber, Nums: make([]float64, len(order)), Null: make([]bool, len(order))}
	if k.Kind == KindNumber {
		keys.Nums = make([]float64, len(order))
	} else {
		keys.Strs = make([]string, len(order))
	}
	for j, g := range order {
		if k.Kind == KindNumber {
			keys.Nums[j] = k.Nums[first[g]]
		} else {
			keys.Strs[j] = g
		}
		r, err := reduce(v, groups[g], agg)
		if err != nil {
			return nil, err
		}
		vals.Nums[j] = r
		vals.Null[j] = math.IsNaN(r)
	}
	if outName == keys.Name {
		vals.Name = agg
	}
	return newFrame([]*Series{keys, vals}), nil
}

// Corr returns the Pearson correlation of two numeric columns over rows where
// both cells are present.
func (f *Frame) Corr(a, b string) (float64, error) {
	ca, err := f.Column(a)
	if err != nil {
		return 0, err
	}
	cb, err := f.Column(b)
	if err != nil {
		return 0, err
	}
	if ca.Kind != KindNumber || cb.Kind != KindNumber {
		return 0, fmt.Errorf("corr needs numeric columns")
	}
	var xs, ys []float64
	for i := 0; i < f.rows; i++ {
		if ca.Null[i] || cb.Null[i] {
			continue
		}
		xs = append(xs, ca.Nums[i])
		ys = append(ys, cb.Nums[i])
	}
	if len(xs) < 2 {
		return math.NaN(), nil
	}
	mx, my := sum(xs)/float64(len(xs)), sum(ys)/float64(len(ys))
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN(), nil
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

// Describe summarises every numeric column: count, mean, std, min, median, max.
// The first column, "stat", names the statistic of each row.
func (f *Frame) Describe() *Frame {
	stats := []string{AggCount, AggMean, AggStd, AggMin, AggMedian, AggMax}
	cols := []*Series{{Name: "stat", Kind: KindText, Strs: stats, Null: make([]bool, len(stats))}}
	all := seq(0, f.rows)
	for _, c := range f.cols {
		if c.Kind != KindNumber {
			continue
		}
		s := &Series{Name: c.Name, Kind: KindNumber, Nums: make([]float64, len(stats)), Null: make([]bool, len(stats))}
		for j, st := range stats {
			v, _ := reduce(c, all, st)
			s.Nums[j] = v
			s.Null[j] = math.IsNaN(v)
		}
		cols = append(cols, s)
	}
	return newFrame(cols)
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := sum(vals) / float64(len(vals))
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
