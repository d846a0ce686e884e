package frame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.rows {
		n = f.rows
	}
	return f.take(seq(0, n))
}

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.rows {
		n = f.rows
	}
	return f.take(seq(f.rows-n, f.rows))
}

// Select keeps the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, 0, len(names))
	for _, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	out := newFrame(cols)
	out.rows = f.rows
	return out, nil
}

// Filter keeps the rows whose cell in col satisfies op against value.
// Supported ops: == ~= != > >= < <= contains. Missing cells never match.
func (f *Frame) Filter(col, op string, value any) (*Frame, error) {
	c, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	match, err := predicate(c, op, value)
	if err != nil {
		return nil, err
	}
	idx := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		if !c.Null[i] && match(i) {
			idx = append(idx, i)
		}
	}
	return f.take(idx), nil
}

func predicate(c *Series, op string, value any) (func(int) bool, error) {
	if op == "contains" {
		needle := scalarString(value)
		return func(i int) bool { return strings.Contains(c.String(i), needle) }, nil
	}

	var cmp func(i int) int
	if num, ok := asNumber(value); ok && c.Kind == KindNumber {
		cmp = func(i int) int { return compareFloat(c.Nums[i], num) }
	} else {
		s := scalarString(value)
		cmp = func(i int) int { return strings.Compare(c.String(i), s) }
	}

	switch op {
	case "==":
		return func(i int) bool { return cmp(i) == 0 }, nil
	case "~=", "!=":
		return func(i int) bool { return cmp(i) != 0 }, nil
	case ">":
		return func(i int) bool { return cmp(i) > 0 }, nil
	case ">=":
		return func(i int) bool { return cmp(i) >= 0 }, nil
	case "<":
		return func(i int) bool { return cmp(i) < 0 }, nil
	case "<=":
		return func(i int) bool { return cmp(i) <= 0 }, nil
	}
	return nil, fmt.Errorf("unsupported filter operator %q", op)
}

// Sort orders rows by col. The sort is stable and missing cells go last.
func (f *Frame) Sort(col string, desc bool) (*Frame, error) {
	c, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	idx := seq(0, f.rows)
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if c.Null[i] || c.Null[j] {
			return !c.Null[i] && c.Null[j]
		}
		var r int
		if c.Kind == KindNumber {
			r = compareFloat(c.Nums[i], c.Nums[j])
		} else {
			r = strings.Compare(c.Strs[i], c.Strs[j])
		}
		if desc {
			return r > 0
		}
		return r < 0
	})
	return f.take(idx), nil
}

// Unique returns the distinct non-missing values of col in first-seen order.
func (f *Frame) Unique(col string) ([]any, error) {
	c, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []any{}
	for i := 0; i < f.rows; i++ {
		if c.Null[i] {
			continue
		}
		k := c.String(i)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c.Value(i))
	}
	return out, nil
}

// Count pairs a value with how often it occurs.
type Count struct {
	Value any
	N     int
}

// ValueCounts counts each distinct non-missing value, most frequent first.
func (f *Frame) ValueCounts(col string) ([]Count, error) {
	c, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	pos := map[string]int{}
	out := []Count{}
	for i := 0; i < f.rows; i++ {
		if c.Null[i] {
			continue
		}
		k := c.String(i)
		if p, ok := pos[k]; ok {
			out[p].N++
			continue
		}
		pos[k] = len(out)
		out = append(out, Count{Value: c.Value(i), N: 1})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].N > out[b].N })
	return out, nil
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return n, err == nil
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
