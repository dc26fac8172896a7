package constraint

import (
	"fmt"
	"strings"
)

// Operator is a comparison operator between an operand and a literal.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLike               Operator = "LIKE"
)

// ParseOperator parses an operator token. LIKE is case-insensitive and
// "!=" is accepted as an alias for "<>".
func ParseOperator(s string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "=":
		return OpEqual, nil
	case "<>", "!=":
		return OpNotEqual, nil
	case "<":
		return OpLessThan, nil
	case "<=":
		return OpLessThanOrEqual, nil
	case ">":
		return OpGreaterThan, nil
	case ">=":
		return OpGreaterThanOrEqual, nil
	case "LIKE":
		return OpLike, nil
	default:
		return "", fmt.Errorf("unknown operator %q", s)
	}
}

// Valid reports whether o is one of the defined operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual,
		OpGreaterThan, OpGreaterThanOrEqual, OpLike:
		return true
	}
	return false
}

// holds reports whether the three-way comparison result c satisfies o.
// LIKE is handled separately by the caller.
func (o Operator) holds(c int) bool {
	switch o {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLessThan:
		return c < 0
	case OpLessThanOrEqual:
		return c <= 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterThanOrEqual:
		return c >= 0
	}
	return false
}
