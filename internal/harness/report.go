package harness

import (
	"context"
	"fmt"

	"github.com/roach88/qom/internal/compiler"
	"github.com/roach88/qom/internal/constraint"
	"github.com/roach88/qom/internal/qom"
)

// BuildReport evaluates every operand on every row, then applies each
// constraint and ordering to the full row set. Rows must bind selector.
// The first ValueSource error aborts the report and is returned as is.
func BuildReport(ctx context.Context, defs *compiler.Definitions, src qom.ValueSource, rows []qom.Row, selector string) (*Report, error) {
	report := &Report{
		Rows:        make([]RowReport, 0, len(rows)),
		Constraints: make([]ConstraintReport, 0, len(defs.Constraints)),
		Orders:      make([]OrderReport, 0, len(defs.Orderings)),
	}

	for _, row := range rows {
		path, err := rowPath(row, selector)
		if err != nil {
			return nil, err
		}
		rr := RowReport{Path: path, Results: make([]OperandResult, 0, len(defs.Operands))}
		for _, named := range defs.Operands {
			res, err := qom.Evaluate(ctx, named.Operand, src, row)
			if err != nil {
				return nil, err
			}
			rr.Results = append(rr.Results, OperandResult{Name: named.Name, Expr: named.Operand.String(), Result: res})
		}
		report.Rows = append(report.Rows, rr)
	}

	for _, named := range defs.Constraints {
		matched, err := constraint.Filter(ctx, src, rows, named.Comparison)
		if err != nil {
			return nil, err
		}
		paths, err := rowPaths(matched, selector)
		if err != nil {
			return nil, err
		}
		report.Constraints = append(report.Constraints, ConstraintReport{
			Name:  named.Name,
			Expr:  named.Comparison.String(),
			Paths: paths,
		})
	}

	for _, named := range defs.Orderings {
		sorted, err := constraint.Sort(ctx, src, rows, named.Orderings...)
		if err != nil {
			return nil, err
		}
		paths, err := rowPaths(sorted, selector)
		if err != nil {
			return nil, err
		}
		exprs := make([]string, len(named.Orderings))
		for i, o := range named.Orderings {
			exprs[i] = o.String()
		}
		report.Orders = append(report.Orders, OrderReport{Name: named.Name, Exprs: exprs, Paths: paths})
	}

	return report, nil
}

func rowPath(row qom.Row, selector string) (string, error) {
	c, err := row.Resolve(selector)
	if err != nil {
		return "", fmt.Errorf("report row: %w", err)
	}
	return c.Node.Path, nil
}

func rowPaths(rows []qom.Row, selector string) ([]string, error) {
	paths := make([]string, len(rows))
	for i, row := range rows {
		p, err := rowPath(row, selector)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}
