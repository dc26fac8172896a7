package qom

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/qom/internal/ir"
)

// ValueSource is the read-only repository capability operands evaluate
// against.
//
// Implementations must be safe for concurrent reads if operand trees are
// evaluated from several goroutines. The context is passed through from
// the caller untouched; cancellation and timeouts are the source's concern.
type ValueSource interface {
	// GetValue returns the named property of node: Null if absent,
	// Scalar if single-valued, Vector in stored order if multi-valued.
	// The returned Vector must not alias storage the source mutates.
	GetValue(ctx context.Context, node ir.NodeRef, property string) (Result, error)

	// LengthOf returns the repository length metric of a single value.
	LengthOf(v ir.Value) int64
}

// Candidate is the node a selector is bound to, with its full-text score.
type Candidate struct {
	Node  ir.NodeRef
	Score float64
}

// Row binds selector names to candidates for one evaluation.
//
// The empty selector name refers to the query's only selector. A named
// selector must be bound by the row.
type Row map[string]Candidate

// SingleRow binds node to the default selector.
func SingleRow(node ir.NodeRef) Row {
	return Row{"": Candidate{Node: node}}
}

// Resolve returns the candidate bound to selector.
func (r Row) Resolve(selector string) (Candidate, error) {
	if c, ok := r[selector]; ok {
		return c, nil
	}
	if selector == "" && len(r) == 1 {
		for _, c := range r {
			return c, nil
		}
	}
	if len(r) == 0 {
		return Candidate{}, &Error{Code: ErrCodeUnknownSelector, Message: "row binds no selector"}
	}
	if selector == "" {
		return Candidate{}, &Error{
			Code:    ErrCodeUnknownSelector,
			Message: "default selector is ambiguous, row binds " + selectorList(r),
		}
	}
	return Candidate{}, &Error{
		Code:    ErrCodeUnknownSelector,
		Message: "selector " + selector + " is not bound, row binds " + selectorList(r),
	}
}

func selectorList(r Row) string {
	names := make([]string, 0, len(r))
	for name := range r {
		if name == "" {
			name = "(default)"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Evaluate evaluates op against the candidates in row, reading properties
// through src.
//
// Evaluate is pure with respect to the operand tree: it keeps no state
// between calls, and repeated calls against unchanged repository data
// return equal results. Errors from src are returned unchanged.
func Evaluate(ctx context.Context, op DynamicOperand, src ValueSource, row Row) (Result, error) {
	if isNilOperand(op) {
		return nil, invalidArgument("evaluate", "operand is required")
	}

	switch o := op.(type) {
	case *PropertyValue:
		return evalPropertyValue(ctx, o, src, row)
	case *Length:
		return evalLength(ctx, o, src, row)
	case *NodeName:
		c, err := row.Resolve(o.selector)
		if err != nil {
			return nil, err
		}
		return Scalar{Value: ir.Name(c.Node.Name())}, nil
	case *NodeLocalName:
		c, err := row.Resolve(o.selector)
		if err != nil {
			return nil, err
		}
		return Scalar{Value: ir.String(c.Node.LocalName())}, nil
	case *FullTextSearchScore:
		c, err := row.Resolve(o.selector)
		if err != nil {
			return nil, err
		}
		return Scalar{Value: ir.Double(c.Score)}, nil
	case *LowerCase:
		return evalCase(ctx, o.operand, src, row, KindLowerCase, cases.Lower(language.Und))
	case *UpperCase:
		return evalCase(ctx, o.operand, src, row, KindUpperCase, cases.Upper(language.Und))
	default:
		return nil, &Error{Code: ErrCodeUnsupportedOperand, Message: "unsupported operand type"}
	}
}

func evalPropertyValue(ctx context.Context, p *PropertyValue, src ValueSource, row Row) (Result, error) {
	if p.property == "" {
		return nil, invalidArgument(string(KindPropertyValue), "property name is required")
	}
	if src == nil {
		return nil, invalidArgument(string(KindPropertyValue), "value source is required")
	}
	c, err := row.Resolve(p.selector)
	if err != nil {
		return nil, err
	}

	res, err := src.GetValue(ctx, c.Node, p.property)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return Null{}, nil
	}
	return res, nil
}

// evalLength maps each value of the wrapped property to its length.
//
//	Null          → Null
//	Scalar(v)     → Scalar(len(v))
//	Vector(v1..n) → Vector(len(v1)..len(vn))
func evalLength(ctx context.Context, l *Length, src ValueSource, row Row) (Result, error) {
	if l.propertyValue == nil {
		return nil, invalidArgument(string(KindLength), "property value is required")
	}
	res, err := evalPropertyValue(ctx, l.propertyValue, src, row)
	if err != nil {
		return nil, err
	}
	if _, isNull := res.(Null); isNull {
		return Null{}, nil
	}
	return mapResult(res, func(v ir.Value) ir.Value {
		return ir.Long(src.LengthOf(v))
	}), nil
}

// evalCase maps the canonical string form of each value through caser.
// A new Caser is built per call because Casers are not safe for concurrent use.
func evalCase(ctx context.Context, inner DynamicOperand, src ValueSource, row Row, kind OperandKind, caser cases.Caser) (Result, error) {
	if isNilOperand(inner) {
		return nil, invalidArgument(string(kind), "operand is required")
	}
	res, err := Evaluate(ctx, inner, src, row)
	if err != nil {
		return nil, err
	}
	return mapResult(res, func(v ir.Value) ir.Value {
		return ir.String(caser.String(v.String()))
	}), nil
}
