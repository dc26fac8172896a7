package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qom/internal/qom"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Operand, constraint or order the assertion is about
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Subject)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against report and returns
// the failure messages. An empty slice means all assertions held.
func EvaluateAssertions(report *Report, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertResult:
			err = assertResult(report, a)
		case AssertMatches:
			err = assertMatches(report, a)
		case AssertOrder:
			err = assertOrder(report, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func assertResult(report *Report, a Assertion) error {
	row, ok := report.Row(a.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertResult,
			Subject:  a.Operand,
			Expected: "row " + a.Path,
			Actual:   "no such row in report",
		}
	}
	res, ok := row.Operand(a.Operand)
	if !ok {
		return &AssertionError{
			Type:     AssertResult,
			Subject:  a.Operand,
			Expected: "operand " + a.Operand,
			Actual:   "operand not declared",
		}
	}

	actual := describeResult(res.Result)
	if string(res.Result.Kind()) != a.Kind {
		return &AssertionError{Type: AssertResult, Subject: a.Operand + " @ " + a.Path, Expected: a.Kind, Actual: actual}
	}

	values := qom.Values(res.Result)
	if a.Values != nil {
		got := make([]string, len(values))
		for i, v := range values {
			got[i] = v.String()
		}
		if !slices.Equal(got, a.Values) {
			return &AssertionError{
				Type:     AssertResult,
				Subject:  a.Operand + " @ " + a.Path,
				Expected: fmt.Sprintf("%s %q", a.Kind, a.Values),
				Actual:   actual,
			}
		}
	}

	if a.ValueType != "" {
		for _, v := range values {
			if !strings.EqualFold(v.Type().String(), a.ValueType) {
				return &AssertionError{
					Type:     AssertResult,
					Subject:  a.Operand + " @ " + a.Path,
					Expected: "values of type " + a.ValueType,
					Actual:   actual,
				}
			}
		}
	}
	return nil
}

func assertMatches(report *Report, a Assertion) error {
	for _, c := range report.Constraints {
		if c.Name != a.Constraint {
			continue
		}
		if !slices.Equal(c.Paths, a.Paths) {
			return &AssertionError{
				Type:     AssertMatches,
				Subject:  a.Constraint,
				Expected: fmt.Sprintf("%q", a.Paths),
				Actual:   fmt.Sprintf("%q", c.Paths),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertMatches,
		Subject:  a.Constraint,
		Expected: "constraint " + a.Constraint,
		Actual:   "constraint not declared",
	}
}

func assertOrder(report *Report, a Assertion) error {
	for _, o := range report.Orders {
		if o.Name != a.Order {
			continue
		}
		if !slices.Equal(o.Paths, a.Paths) {
			return &AssertionError{
				Type:     AssertOrder,
				Subject:  a.Order,
				Expected: fmt.Sprintf("%q", a.Paths),
				Actual:   fmt.Sprintf("%q", o.Paths),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertOrder,
		Subject:  a.Order,
		Expected: "order " + a.Order,
		Actual:   "order not declared",
	}
}

// describeResult renders a result for failure messages, e.g. scalar "5"
// or vector ["1" "2"].
func describeResult(r qom.Result) string {
	switch res := r.(type) {
	case qom.Scalar:
		return fmt.Sprintf("scalar %q (%s)", res.Value.String(), res.Value.Type())
	case qom.Vector:
		parts := make([]string, len(res.Values))
		for i, v := range res.Values {
			parts[i] = v.String()
		}
		return fmt.Sprintf("vector %q", parts)
	default:
		return "null"
	}
}
