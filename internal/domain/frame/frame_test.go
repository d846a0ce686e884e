package frame

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salaries = `name,department,salary
Alice,eng,50000
Bob,eng,60000
Carol,sales,70000
Dan,sales,55000
Eve,ops,65000
`

func mustRead(t *testing.T, s string) *Frame {
	t.Helper()
	f, err := ReadCSV(strings.NewReader(s))
	require.NoError(t, err)
	return f
}

func TestReadCSVInfersKinds(t *testing.T) {
	f := mustRead(t, salaries)

	rows, cols := f.Shape()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"name", "department", "salary"}, f.Columns())

	salary, err := f.Column("salary")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, salary.Kind)

	name, err := f.Column("name")
	require.NoError(t, err)
	assert.Equal(t, KindText, name.Kind)
}

func TestReadCSVMissingAndPadding(t *testing.T) {
	f := mustRead(t, "\xef\xbb\xbfa,b,a\n1,,x\n2\n")

	assert.Equal(t, []string{"a", "b", "a.1"}, f.Columns())
	assert.Equal(t, map[string]any{"a": 2.0, "b": nil, "a.1": nil}, f.Row(1))
}

func TestDuplicateHeadersStayReachable(t *testing.T) {
	f := mustRead(t, "a,a,a.1\n1,2,3\n")

	assert.Equal(t, []string{"a", "a.2", "a.1"}, f.Columns())
	for name, want := range map[string]float64{"a": 1, "a.2": 2, "a.1": 3} {
		c, err := f.Column(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, c.Value(0), name)
	}
}

func TestReadCSVRejectsMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("a,b\n\"1,2\n"))
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	f := mustRead(t, salaries)

	cases := map[string]float64{
		AggSum:    300000,
		AggMean:   60000,
		AggMedian: 60000,
		AggMin:    50000,
		AggMax:    70000,
		AggCount:  5,
	}
	for agg, want := range cases {
		got, err := f.Aggregate("salary", agg)
		require.NoError(t, err, agg)
		assert.InDelta(t, want, got, 1e-9, agg)
	}

	std, err := f.Aggregate("salary", AggStd)
	require.NoError(t, err)
	assert.InDelta(t, 7905.694, std, 1e-3)

	_, err = f.Aggregate("name", AggMean)
	assert.Error(t, err)
	_, err = f.Aggregate("nope", AggMean)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFilterSortHead(t *testing.T) {
	f := mustRead(t, salaries)

	high, err := f.Filter("salary", ">=", 60000.0)
	require.NoError(t, err)
	assert.Equal(t, 3, high.NRows())

	eng, err := f.Filter("department", "==", "eng")
	require.NoError(t, err)
	assert.Equal(t, 2, eng.NRows())

	withA, err := f.Filter("name", "contains", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, withA.NRows())

	_, err = f.Filter("salary", "<>", 1.0)
	assert.Error(t, err)

	sorted, err := f.Sort("salary", true)
	require.NoError(t, err)
	top := sorted.Head(2).Records()
	assert.Equal(t, "Carol", top[0]["name"])
	assert.Equal(t, "Eve", top[1]["name"])
	assert.Equal(t, "Eve", f.Tail(1).Row(0)["name"])
}

func TestGroupBy(t *testing.T) {
	f := mustRead(t, salaries)

	g, err := f.GroupBy("department", AggMean, "salary")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"department": "eng", "salary": 55000.0},
		{"department": "ops", "salary": 65000.0},
		{"department": "sales", "salary": 62500.0},
	}, g.Records())

	counts, err := f.GroupBy("department", AggCount, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"department", "count"}, counts.Columns())
}

func TestValueCountsUniqueCorr(t *testing.T) {
	f := mustRead(t, "x,y,c\n1,2,a\n2,4,b\n3,6,a\n")

	vc, err := f.ValueCounts("c")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Value: "a", N: 2}, {Value: "b", N: 1}}, vc)

	u, err := f.Unique("c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, u)

	r, err := f.Corr("x", "y")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestDescribe(t *testing.T) {
	d := mustRead(t, salaries).Describe()
	assert.Equal(t, []string{"stat", "salary"}, d.Columns())
	assert.Equal(t, 6, d.NRows())
	assert.Equal(t, 60000.0, d.Row(1)["salary"])
}

func TestFromRecordsAndNew(t *testing.T) {
	f := FromRecords([]map[string]any{{"b": 1.0, "a": "x"}, {"a": "y"}})
	assert.Equal(t, []string{"a", "b"}, f.Columns())
	assert.Nil(t, f.Row(1)["b"])

	g, err := New([]string{"k", "v"}, [][]any{{"a", 1}, {"b", 2.5}})
	require.NoError(t, err)
	v, err := g.Aggregate("v", AggSum)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = New([]string{"k"}, [][]any{{"a", 1}})
	assert.Error(t, err)
}

func TestMeanOfEmptyIsNaN(t *testing.T) {
	f := mustRead(t, "v\n")
	m, err := f.Aggregate("v", AggCount)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	g := FromStrings([]string{"v"}, [][]string{{"1"}})
	empty, err := g.Filter("v", ">", 5.0)
	require.NoError(t, err)
	mean, err := empty.Aggregate("v", AggMean)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mean))
}
