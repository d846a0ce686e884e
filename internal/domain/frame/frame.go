package frame

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownColumn is returned when an operation names a column the frame does not have.
var ErrUnknownColumn = errors.New("unknown column")

// ColumnKind tells whether a column holds numbers or text.
type ColumnKind string

const (
	KindNumber ColumnKind = "number"
	KindText   ColumnKind = "text"
)

// Series is one named column. Exactly one of Nums or Strs is populated,
// depending on Kind. Null marks missing cells.
type Series struct {
	Name string
	Kind ColumnKind
	Nums []float64
	Strs []string
	Null []bool
}

// Len returns the number of cells.
func (s *Series) Len() int { return len(s.Null) }

// Value returns the cell at i as float64, string or nil.
func (s *Series) Value(i int) any {
	if s.Null[i] {
		return nil
	}
	if s.Kind == KindNumber {
		return s.Nums[i]
	}
	return s.Strs[i]
}

// String returns the cell at i formatted as text ("" when missing).
func (s *Series) String(i int) string {
	if s.Null[i] {
		return ""
	}
	if s.Kind == KindNumber {
		return formatNumber(s.Nums[i])
	}
	return s.Strs[i]
}

// Floats returns the non-missing numeric values of the series.
func (s *Series) Floats() []float64 {
	if s.Kind != KindNumber {
		return nil
	}
	out := make([]float64, 0, len(s.Nums))
	for i, v := range s.Nums {
		if !s.Null[i] {
			out = append(out, v)
		}
	}
	return out
}

func (s *Series) take(idx []int) *Series {
	out := &Series{Name: s.Name, Kind: s.Kind, Null: make([]bool, len(idx))}
	if s.Kind == KindNumber {
		out.Nums = make([]float64, len(idx))
	} else {
		out.Strs = make([]string, len(idx))
	}
	for j, i := range idx {
		out.Null[j] = s.Null[i]
		if s.Kind == KindNumber {
			out.Nums[j] = s.Nums[i]
		} else {
			out.Strs[j] = s.Strs[i]
		}
	}
	return out
}

// Frame is an in-memory table with named, typed columns of equal length.
type Frame struct {
	cols  []*Series
	index map[string]int
	rows  int
}

func newFrame(cols []*Series) *Frame {
	f := &Frame{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		f.index[c.Name] = i
	}
	if len(cols) > 0 {
		f.rows = cols[0].Len()
	}
	return f
}

// NRows returns the number of rows.
func (f *Frame) NRows() int { return f.rows }

// NCols returns the number of columns.
func (f *Frame) NCols() int { return len(f.cols) }

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) { return f.rows, len(f.cols) }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name.
func (f *Frame) Column(name string) (*Series, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return f.cols[i], nil
}

// Row returns row i as a column-name keyed map; missing cells are nil.
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		row[c.Name] = c.Value(i)
	}
	return row
}

// Records returns every row, in order.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.rows)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}

// String renders a short preview, used by print() in scripts.
func (f *Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %dx%d [%s]", f.rows, len(f.cols), strings.Join(f.Columns(), ", "))
	return b.String()
}

func (f *Frame) take(idx []int) *Frame {
	cols := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(idx)
	}
	out := newFrame(cols)
	out.rows = len(idx)
	return out
}

// FromStrings builds a frame from a header and raw text rows, inferring a
// numeric kind for every column whose non-missing cells all parse as numbers.
// Short rows are padded with missing cells; extra cells are dropped.
func FromStrings(header []string, rows [][]string) *Frame {
	names := uniqueNames(header)
	cols := make([]*Series, len(names))
	for j, name := range names {
		raw := make([]string, len(rows))
		null := make([]bool, len(rows))
		numeric := true
		seen := false
		for i, row := range rows {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if isMissing(cell) {
				null[i] = true
				continue
			}
			raw[i] = cell
			seen = true
			if _, ok := parseNumber(cell); !ok {
				numeric = false
			}
		}
		s := &Series{Name: name, Null: null}
		if numeric && seen {
			s.Kind = KindNumber
			s.Nums = make([]float64, len(rows))
			for i, cell := range raw {
				if !null[i] {
					s.Nums[i], _ = parseNumber(cell)
				}
			}
		} else {
			s.Kind = KindText
			s.Strs = raw
		}
		cols[j] = s
	}
	f := newFrame(cols)
	f.rows = len(rows)
	return f
}

// New builds a frame from column names and rows of arbitrary scalar values.
func New(columns []string, rows [][]any) (*Frame, error) {
	text := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected at most %d", i+1, len(row), len(columns))
		}
		text[i] = make([]string, len(columns))
		for j, v := range row {
			text[i][j] = scalarString(v)
		}
	}
	return FromStrings(columns, text), nil
}

// FromRecords builds a frame from maps. Columns are the union of keys, sorted.
func FromRecords(records []map[string]any) *Frame {
	set := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for k := range set {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = make([]string, len(columns))
		for j, c := range columns {
			rows[i][j] = scalarString(r[c])
		}
	}
	return FromStrings(columns, rows)
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatNumber(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "NaN": true, "nan": true,
	"null": true, "NULL": true, "None": true, "#N/A": true,
}

func isMissing(cell string) bool { return missingTokens[cell] }

func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// uniqueNames fills blank headers and de-duplicates repeated ones ("a", "a.1").
// A generated suffix never collides with a name that appears in the header.
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	original := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
		original[name] = true
	}

	used := make(map[string]bool, len(names))
	next := map[string]int{}
	for i, name := range names {
		if !used[name] {
			used[name] = true
			continue
		}
		k := next[name]
		for {
			k++
			cand := fmt.Sprintf("%s.%d", name, k)
			if !used[cand] && !original[cand] {
				names[i] = cand
				break
			}
		}
		next[name] = k
		used[names[i]] = true
	}
	return names
}
