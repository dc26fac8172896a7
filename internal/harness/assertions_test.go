package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

func sampleReport() *Report {
	return &Report{
		Rows: []RowReport{
			{Path: "/a", Results: []OperandResult{
				{Name: "title", Expr: "[title]", Result: qom.Scalar{Value: ir.String("Hi")}},
				{Name: "tags", Expr: "LENGTH([tags])", Result: qom.NewVector(ir.Long(1), ir.Long(3))},
				{Name: "missing", Expr: "[missing]", Result: qom.Null{}},
			}},
		},
		Constraints: []ConstraintReport{{Name: "short", Expr: "LENGTH([title]) < 3", Paths: []string{"/a"}}},
		Orders:      []OrderReport{{Name: "byTitle", Exprs: []string{"[title] ASC"}, Paths: []string{"/a"}}},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleReport(), []Assertion{
		{Type: AssertResult, Operand: "title", Path: "/a", Kind: "scalar", Values: []string{"Hi"}, ValueType: "string"},
		{Type: AssertResult, Operand: "tags", Path: "/a", Kind: "vector", Values: []string{"1", "3"}, ValueType: "Long"},
		{Type: AssertResult, Operand: "tags", Path: "/a", Kind: "vector"},
		{Type: AssertResult, Operand: "missing", Path: "/a", Kind: "null"},
		{Type: AssertMatches, Constraint: "short", Paths: []string{"/a"}},
		{Type: AssertOrder, Order: "byTitle", Paths: []string{"/a"}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"unknown row", Assertion{Type: AssertResult, Operand: "title", Path: "/b", Kind: "scalar"}, "no such row"},
		{"unknown operand", Assertion{Type: AssertResult, Operand: "nope", Path: "/a", Kind: "scalar"}, "operand not declared"},
		{"wrong kind", Assertion{Type: AssertResult, Operand: "missing", Path: "/a", Kind: "scalar"}, "Actual: null"},
		{"wrong values", Assertion{Type: AssertResult, Operand: "tags", Path: "/a", Kind: "vector", Values: []string{"1"}}, `vector ["1" "3"]`},
		{"wrong type", Assertion{Type: AssertResult, Operand: "title", Path: "/a", Kind: "scalar", ValueType: "Name"}, "values of type Name"},
		{"wrong matches", Assertion{Type: AssertMatches, Constraint: "short", Paths: []string{}}, `Actual: ["/a"]`},
		{"unknown constraint", Assertion{Type: AssertMatches, Constraint: "long"}, "constraint not declared"},
		{"wrong order", Assertion{Type: AssertOrder, Order: "byTitle", Paths: []string{"/b"}}, `Expected: ["/b"]`},
		{"unknown order", Assertion{Type: AssertOrder, Order: "byScore", Paths: []string{"/a"}}, "order not declared"},
		{"unknown type", Assertion{Type: "final_state"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleReport(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
			assert.Contains(t, errs[0], "assertion 0")
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertOrder, Subject: "byTitle", Expected: "x", Actual: "y"}
	assert.Equal(t, "Assertion failed: order byTitle\n  Expected: x\n  Actual: y\n", err.Error())
}

func TestReport_Canonical(t *testing.T) {
	data, err := ir.MarshalCanonical(sampleReport().Canonical())
	require.NoError(t, err)
	assert.Equal(t,
		`{"constraints":[{"expr":"LENGTH([title]) < 3","name":"short","paths":["/a"]}],`+
			`"orders":[{"exprs":["[title] ASC"],"name":"byTitle","paths":["/a"]}],`+
			`"rows":[{"path":"/a","results":[`+
			`{"expr":"[title]","name":"title","result":{"kind":"scalar","value":{"type":"String","value":"Hi"}}},`+
			`{"expr":"LENGTH([tags])","name":"tags","result":{"kind":"vector","values":[{"type":"Long","value":"1"},{"type":"Long","value":"3"}]}},`+
			`{"expr":"[missing]","name":"missing","result":{"kind":"null"}}]}]}`,
		string(data))
}

func TestReport_Lookup(t *testing.T) {
	r := sampleReport()
	row, ok := r.Row("/a")
	require.True(t, ok)
	res, ok := row.Operand("tags")
	require.True(t, ok)
	assert.Equal(t, "LENGTH([tags])", res.Expr)

	_, ok = r.Row("/z")
	assert.False(t, ok)
	_, ok = row.Operand("z")
	assert.False(t, ok)
}
