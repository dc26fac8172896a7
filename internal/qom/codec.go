package qom

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/qom/internal/ir"
)

// operandJSON is the wire form of an operand tree.
//
//	{"kind":"length","operand":{"kind":"property_value","selector":"s","property":"title"}}
type operandJSON struct {
	Kind     OperandKind  `json:"kind"`
	Selector string       `json:"selector,omitempty"`
	Property string       `json:"property,omitempty"`
	Operand  *operandJSON `json:"operand,omitempty"`
}

// MarshalOperand encodes an operand tree as JSON.
func MarshalOperand(op DynamicOperand) ([]byte, error) {
	node, err := encodeOperand(op)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// UnmarshalOperand decodes an operand tree. Decoding goes through the
// constructors, so an invalid tree fails with an invalid argument error.
func UnmarshalOperand(data []byte) (DynamicOperand, error) {
	var node operandJSON
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode operand: %w", err)
	}
	return decodeOperand(&node)
}

func encodeOperand(op DynamicOperand) (*operandJSON, error) {
	if isNilOperand(op) {
		return nil, invalidArgument("encode", "operand is required")
	}

	switch o := op.(type) {
	case *PropertyValue:
		return &operandJSON{Kind: KindPropertyValue, Selector: o.selector, Property: o.property}, nil
	case *Length:
		if o.propertyValue == nil {
			return nil, invalidArgument(string(KindLength), "property value is required")
		}
		inner, err := encodeOperand(o.propertyValue)
		if err != nil {
			return nil, err
		}
		return &operandJSON{Kind: KindLength, Operand: inner}, nil
	case *NodeName:
		return &operandJSON{Kind: KindNodeName, Selector: o.selector}, nil
	case *NodeLocalName:
		return &operandJSON{Kind: KindNodeLocalName, Selector: o.selector}, nil
	case *FullTextSearchScore:
		return &operandJSON{Kind: KindFullTextSearchScore, Selector: o.selector}, nil
	case *LowerCase:
		inner, err := encodeOperand(o.operand)
		if err != nil {
			return nil, err
		}
		return &operandJSON{Kind: KindLowerCase, Operand: inner}, nil
	case *UpperCase:
		inner, err := encodeOperand(o.operand)
		if err != nil {
			return nil, err
		}
		return &operandJSON{Kind: KindUpperCase, Operand: inner}, nil
	default:
		return nil, &Error{Code: ErrCodeUnsupportedOperand, Op: "encode", Message: fmt.Sprintf("unsupported operand type %T", op)}
	}
}

func decodeOperand(node *operandJSON) (DynamicOperand, error) {
	if node == nil {
		return nil, invalidArgument("decode", "operand is required")
	}

	switch node.Kind {
	case KindPropertyValue:
		return NewPropertyValue(node.Selector, node.Property)
	case KindLength:
		inner, err := decodeOperand(node.Operand)
		if err != nil {
			return nil, err
		}
		pv, ok := inner.(*PropertyValue)
		if !ok {
			return nil, invalidArgument(string(KindLength), "operand must be a property value, got %s", inner.Kind())
		}
		return NewLength(pv)
	case KindNodeName:
		return NewNodeName(node.Selector), nil
	case KindNodeLocalName:
		return NewNodeLocalName(node.Selector), nil
	case KindFullTextSearchScore:
		return NewFullTextSearchScore(node.Selector), nil
	case KindLowerCase:
		inner, err := decodeOperand(node.Operand)
		if err != nil {
			return nil, err
		}
		return NewLowerCase(inner)
	case KindUpperCase:
		inner, err := decodeOperand(node.Operand)
		if err != nil {
			return nil, err
		}
		return NewUpperCase(inner)
	default:
		return nil, &Error{Code: ErrCodeUnsupportedOperand, Op: "decode", Message: fmt.Sprintf("unknown operand kind %q", node.Kind)}
	}
}

// canonical converts the wire form into the map shape ir.MarshalCanonical
// accepts.
func (n *operandJSON) canonical() map[string]any {
	m := map[string]any{"kind": string(n.Kind)}
	if n.Selector != "" {
		m["selector"] = n.Selector
	}
	if n.Property != "" {
		m["property"] = n.Property
	}
	if n.Operand != nil {
		m["operand"] = n.Operand.canonical()
	}
	return m
}

// Fingerprint returns a stable content hash of an operand tree. Two trees
// have the same fingerprint exactly when they encode identically.
func Fingerprint(op DynamicOperand) (string, error) {
	node, err := encodeOperand(op)
	if err != nil {
		return "", err
	}
	return ir.Fingerprint(ir.DomainOperand, node.canonical())
}
