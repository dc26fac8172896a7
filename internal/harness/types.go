package harness

import (
	"github.com/roach88/qom/internal/qom"
)

// Report is everything a scenario evaluation produced, in a fixed order:
// rows by path, and operands, constraints and orders by name.
type Report struct {
	Rows        []RowReport        `json:"rows"`
	Constraints []ConstraintReport `json:"constraints"`
	Orders      []OrderReport      `json:"orders"`
}

// RowReport holds the results of every operand for one row.
type RowReport struct {
	Path    string          `json:"path"`
	Results []OperandResult `json:"results"`
}

// OperandResult is one operand's result for one row.
type OperandResult struct {
	Name   string     `json:"name"`
	Expr   string     `json:"expr"`
	Result qom.Result `json:"-"`
}

// ConstraintReport lists the paths of the rows a constraint matched.
type ConstraintReport struct {
	Name  string   `json:"name"`
	Expr  string   `json:"expr"`
	Paths []string `json:"paths"`
}

// OrderReport lists row paths in the order an ordering produced.
type OrderReport struct {
	Name  string   `json:"name"`
	Exprs []string `json:"exprs"`
	Paths []string `json:"paths"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Report is the evaluation the assertions were checked against.
	Report *Report

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult(report *Report) *Result {
	return &Result{Pass: true, Report: report, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Row returns the report row for path.
func (r *Report) Row(path string) (RowReport, bool) {
	for _, row := range r.Rows {
		if row.Path == path {
			return row, true
		}
	}
	return RowReport{}, false
}

// Operand returns the named result of a row.
func (r RowReport) Operand(name string) (OperandResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return OperandResult{}, false
}

// Canonical returns the report as a map for ir.MarshalCanonical.
func (r *Report) Canonical() map[string]any {
	rows := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		results := make([]any, len(row.Results))
		for j, res := range row.Results {
			results[j] = map[string]any{
				"name":   res.Name,
				"expr":   res.Expr,
				"result": qom.CanonicalResult(res.Result),
			}
		}
		rows[i] = map[string]any{"path": row.Path, "results": results}
	}

	constraints := make([]any, len(r.Constraints))
	for i, c := range r.Constraints {
		constraints[i] = map[string]any{"name": c.Name, "expr": c.Expr, "paths": stringList(c.Paths)}
	}

	orders := make([]any, len(r.Orders))
	for i, o := range r.Orders {
		orders[i] = map[string]any{"name": o.Name, "exprs": stringList(o.Exprs), "paths": stringList(o.Paths)}
	}

	return map[string]any{
		"rows":        rows,
		"constraints": constraints,
		"orders":      orders,
	}
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
