package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/qom/internal/harness"
	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// renderReport writes the human-readable form of a report.
func renderReport(w io.Writer, report *harness.Report) {
	for _, row := range report.Rows {
		fmt.Fprintln(w, row.Path)
		for _, res := range row.Results {
			fmt.Fprintf(w, "  %s = %s  %s\n", res.Name, renderResult(res.Result), dimText(res.Expr))
		}
	}

	if len(report.Constraints) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Constraints:")
		for _, c := range report.Constraints {
			fmt.Fprintf(w, "  %s: %s -> %d row(s)\n", c.Name, c.Expr, len(c.Paths))
			for _, p := range c.Paths {
				fmt.Fprintf(w, "    %s\n", p)
			}
		}
	}

	if len(report.Orders) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Orders:")
		for _, o := range report.Orders {
			fmt.Fprintf(w, "  %s: %s\n", o.Name, strings.Join(o.Exprs, ", "))
			for _, p := range o.Paths {
				fmt.Fprintf(w, "    %s\n", p)
			}
		}
	}
}

// renderResult renders NULL, a single value, or a bracketed list.
func renderResult(r qom.Result) string {
	switch res := r.(type) {
	case qom.Scalar:
		return renderValue(res.Value)
	case qom.Vector:
		parts := make([]string, len(res.Values))
		for i, v := range res.Values {
			parts[i] = renderValue(v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "NULL"
	}
}

// renderValue quotes everything but numbers and booleans.
func renderValue(v ir.Value) string {
	switch v.(type) {
	case ir.Long, ir.Double, ir.Boolean:
		return v.String()
	}
	return "'" + v.String() + "'"
}
