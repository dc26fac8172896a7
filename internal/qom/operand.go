package qom

import (
	"context"
	"fmt"
	"strings"
)

// OperandKind names a dynamic operand variant. It is also the "kind" tag of
// the JSON encoding.
type OperandKind string

const (
	KindPropertyValue       OperandKind = "property_value"
	KindLength              OperandKind = "length"
	KindNodeName            OperandKind = "node_name"
	KindNodeLocalName       OperandKind = "node_local_name"
	KindFullTextSearchScore OperandKind = "full_text_search_score"
	KindLowerCase           OperandKind = "lower_case"
	KindUpperCase           OperandKind = "upper_case"
)

// DynamicOperand is an expression that evaluates against the node bound to
// a selector.
//
// This is a sealed interface - only types in this package implement it.
// The marker method prevents external implementations so Evaluate can
// handle every kind exhaustively.
//
// Operand kinds:
//   - PropertyValue: the value(s) of a named property
//   - Length: the length(s) of a PropertyValue
//   - NodeName, NodeLocalName: the bound node's name
//   - FullTextSearchScore: the bound node's full-text score
//   - LowerCase, UpperCase: case-mapped values of another operand
type DynamicOperand interface {
	dynamicOperand() // Marker method - seals interface to this package

	// Kind returns the variant tag.
	Kind() OperandKind

	// String renders the operand in JCR-SQL2 notation.
	String() string

	// Evaluate evaluates the operand against row. It is shorthand for
	// the package level Evaluate.
	Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error)
}

// PropertyValue evaluates to the value of a property of the bound node.
//
// Semantics:
//   - property absent: Null
//   - single-valued: Scalar(value)
//   - multi-valued: Vector(values) in stored order
type PropertyValue struct {
	selector string
	property string
}

// NewPropertyValue creates a PropertyValue for property on the node bound
// to selector. An empty selector means the query's only selector.
func NewPropertyValue(selector, property string) (*PropertyValue, error) {
	if strings.TrimSpace(property) == "" {
		return nil, invalidArgument(string(KindPropertyValue), "property name is required")
	}
	return &PropertyValue{selector: selector, property: property}, nil
}

func (*PropertyValue) dynamicOperand() {}

// Kind returns KindPropertyValue.
func (*PropertyValue) Kind() OperandKind { return KindPropertyValue }

// SelectorName returns the selector name, or "" for the default selector.
func (p *PropertyValue) SelectorName() string { return p.selector }

// PropertyName returns the property name; never empty.
func (p *PropertyValue) PropertyName() string { return p.property }

func (p *PropertyValue) String() string {
	if p.selector == "" {
		return fmt.Sprintf("[%s]", p.property)
	}
	return fmt.Sprintf("[%s].[%s]", p.selector, p.property)
}

// Evaluate evaluates the operand against row.
func (p *PropertyValue) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, p, src, row)
}

// Length evaluates to the length, or lengths if multi-valued, of a property.
//
// The length of a value is what the ValueSource reports through LengthOf.
// If the property value evaluates to Null, Length also evaluates to Null.
type Length struct {
	propertyValue *PropertyValue
}

// NewLength creates a Length over pv. pv is required.
func NewLength(pv *PropertyValue) (*Length, error) {
	if pv == nil {
		return nil, invalidArgument(string(KindLength), "property value is required")
	}
	return &Length{propertyValue: pv}, nil
}

func (*Length) dynamicOperand() {}

// Kind returns KindLength.
func (*Length) Kind() OperandKind { return KindLength }

// PropertyValue returns the wrapped property value; never nil.
func (l *Length) PropertyValue() *PropertyValue { return l.propertyValue }

func (l *Length) String() string {
	return fmt.Sprintf("LENGTH(%s)", l.propertyValue)
}

// Evaluate evaluates the operand against row.
func (l *Length) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, l, src, row)
}

// NodeName evaluates to the qualified name of the bound node as a Name value.
type NodeName struct {
	selector string
}

// NewNodeName creates a NodeName for selector ("" for the default selector).
func NewNodeName(selector string) *NodeName {
	return &NodeName{selector: selector}
}

func (*NodeName) dynamicOperand() {}

// Kind returns KindNodeName.
func (*NodeName) Kind() OperandKind { return KindNodeName }

// SelectorName returns the selector name.
func (n *NodeName) SelectorName() string { return n.selector }

func (n *NodeName) String() string { return fmt.Sprintf("NAME(%s)", selectorRef(n.selector)) }

// Evaluate evaluates the operand against row.
func (n *NodeName) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, n, src, row)
}

// NodeLocalName evaluates to the bound node's name without its namespace
// prefix, as a String value.
type NodeLocalName struct {
	selector string
}

// NewNodeLocalName creates a NodeLocalName for selector.
func NewNodeLocalName(selector string) *NodeLocalName {
	return &NodeLocalName{selector: selector}
}

func (*NodeLocalName) dynamicOperand() {}

// Kind returns KindNodeLocalName.
func (*NodeLocalName) Kind() OperandKind { return KindNodeLocalName }

// SelectorName returns the selector name.
func (n *NodeLocalName) SelectorName() string { return n.selector }

func (n *NodeLocalName) String() string {
	return fmt.Sprintf("LOCALNAME(%s)", selectorRef(n.selector))
}

// Evaluate evaluates the operand against row.
func (n *NodeLocalName) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, n, src, row)
}

// FullTextSearchScore evaluates to the full-text score of the bound node
// as a Double value.
type FullTextSearchScore struct {
	selector string
}

// NewFullTextSearchScore creates a FullTextSearchScore for selector.
func NewFullTextSearchScore(selector string) *FullTextSearchScore {
	return &FullTextSearchScore{selector: selector}
}

func (*FullTextSearchScore) dynamicOperand() {}

// Kind returns KindFullTextSearchScore.
func (*FullTextSearchScore) Kind() OperandKind { return KindFullTextSearchScore }

// SelectorName returns the selector name.
func (f *FullTextSearchScore) SelectorName() string { return f.selector }

func (f *FullTextSearchScore) String() string {
	return fmt.Sprintf("SCORE(%s)", selectorRef(f.selector))
}

// Evaluate evaluates the operand against row.
func (f *FullTextSearchScore) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, f, src, row)
}

// LowerCase evaluates to the lower-cased string form of another operand.
type LowerCase struct {
	operand DynamicOperand
}

// NewLowerCase creates a LowerCase over op. op is required.
func NewLowerCase(op DynamicOperand) (*LowerCase, error) {
	if isNilOperand(op) {
		return nil, invalidArgument(string(KindLowerCase), "operand is required")
	}
	return &LowerCase{operand: op}, nil
}

func (*LowerCase) dynamicOperand() {}

// Kind returns KindLowerCase.
func (*LowerCase) Kind() OperandKind { return KindLowerCase }

// Operand returns the wrapped operand; never nil.
func (l *LowerCase) Operand() DynamicOperand { return l.operand }

func (l *LowerCase) String() string { return fmt.Sprintf("LOWER(%s)", l.operand) }

// Evaluate evaluates the operand against row.
func (l *LowerCase) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, l, src, row)
}

// UpperCase evaluates to the upper-cased string form of another operand.
type UpperCase struct {
	operand DynamicOperand
}

// NewUpperCase creates an UpperCase over op. op is required.
func NewUpperCase(op DynamicOperand) (*UpperCase, error) {
	if isNilOperand(op) {
		return nil, invalidArgument(string(KindUpperCase), "operand is required")
	}
	return &UpperCase{operand: op}, nil
}

func (*UpperCase) dynamicOperand() {}

// Kind returns KindUpperCase.
func (*UpperCase) Kind() OperandKind { return KindUpperCase }

// Operand returns the wrapped operand; never nil.
func (u *UpperCase) Operand() DynamicOperand { return u.operand }

func (u *UpperCase) String() string { return fmt.Sprintf("UPPER(%s)", u.operand) }

// Evaluate evaluates the operand against row.
func (u *UpperCase) Evaluate(ctx context.Context, src ValueSource, row Row) (Result, error) {
	return Evaluate(ctx, u, src, row)
}

// selectorRef renders a selector argument; the default selector renders empty.
func selectorRef(selector string) string {
	if selector == "" {
		return ""
	}
	return "[" + selector + "]"
}

// isNilOperand catches both a nil interface and a typed nil pointer.
func isNilOperand(op DynamicOperand) bool {
	switch o := op.(type) {
	case nil:
		return true
	case *PropertyValue:
		return o == nil
	case *Length:
		return o == nil
	case *NodeName:
		return o == nil
	case *NodeLocalName:
		return o == nil
	case *FullTextSearchScore:
		return o == nil
	case *LowerCase:
		return o == nil
	case *UpperCase:
		return o == nil
	default:
		return false
	}
}
