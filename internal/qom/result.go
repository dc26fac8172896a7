package qom

import (
	"github.com/roach88/qom/internal/ir"
)

// ResultKind names the shape of an evaluation result.
type ResultKind string

const (
	KindNull   ResultKind = "null"
	KindScalar ResultKind = "scalar"
	KindVector ResultKind = "vector"
)

// Result is the outcome of evaluating a dynamic operand against one row.
//
// This is a sealed interface - only Null, Scalar and Vector implement it.
type Result interface {
	result() // Marker method - seals interface to this package

	// Kind reports which of the three shapes the result has.
	Kind() ResultKind
}

// Null is the result of evaluating an operand whose value is absent.
type Null struct{}

func (Null) result() {}

// Kind returns KindNull.
func (Null) Kind() ResultKind { return KindNull }

// Scalar is a single value.
type Scalar struct {
	Value ir.Value
}

func (Scalar) result() {}

// Kind returns KindScalar.
func (Scalar) Kind() ResultKind { return KindScalar }

// Vector holds the values of a multi-valued property in stored order.
// An empty Vector is a multi-valued property with no values, not Null.
type Vector struct {
	Values []ir.Value
}

func (Vector) result() {}

// Kind returns KindVector.
func (Vector) Kind() ResultKind { return KindVector }

// NewVector copies values into a new Vector.
func NewVector(values ...ir.Value) Vector {
	return Vector{Values: append([]ir.Value(nil), values...)}
}

// PropertyResult converts a stored property into a result: a Vector for a
// multi-valued property, a Scalar otherwise. Values are copied.
func PropertyResult(p ir.Property) Result {
	if p.Multiple {
		return NewVector(p.Values...)
	}
	if len(p.Values) == 0 {
		return Null{}
	}
	return Scalar{Value: p.Values[0]}
}

// Values flattens a result: nil for Null, one element for Scalar, the
// elements of a Vector otherwise.
func Values(r Result) []ir.Value {
	switch res := r.(type) {
	case Scalar:
		return []ir.Value{res.Value}
	case Vector:
		return res.Values
	default:
		return nil
	}
}

// ResultEqual reports whether two results have the same shape and values.
func ResultEqual(a, b Result) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	av, bv := Values(a), Values(b)
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if !ir.Equal(av[i], bv[i]) {
			return false
		}
	}
	return true
}

// mapResult applies fn to every value of r, keeping shape, order and
// cardinality. Null stays Null.
func mapResult(r Result, fn func(ir.Value) ir.Value) Result {
	switch res := r.(type) {
	case Scalar:
		return Scalar{Value: fn(res.Value)}
	case Vector:
		out := make([]ir.Value, len(res.Values))
		for i, v := range res.Values {
			out[i] = fn(v)
		}
		return Vector{Values: out}
	default:
		return Null{}
	}
}

// CanonicalResult returns the canonical map form of a result, suitable for
// ir.MarshalCanonical.
func CanonicalResult(r Result) map[string]any {
	switch res := r.(type) {
	case Scalar:
		return map[string]any{"kind": string(KindScalar), "value": res.Value}
	case Vector:
		values := res.Values
		if values == nil {
			values = []ir.Value{}
		}
		return map[string]any{"kind": string(KindVector), "values": values}
	default:
		return map[string]any{"kind": string(KindNull)}
	}
}
