package constraint

import (
	"context"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// Comparison constrains an operand against a literal value.
type Comparison struct {
	operand  qom.DynamicOperand
	operator Operator
	literal  ir.Value
}

// NewComparison creates a Comparison. All three arguments are required.
func NewComparison(operand qom.DynamicOperand, operator Operator, literal ir.Value) (*Comparison, error) {
	if operand == nil {
		return nil, invalid("operand is required")
	}
	if !operator.Valid() {
		return nil, invalid("unknown operator %q", string(operator))
	}
	if literal == nil {
		return nil, invalid("literal is required")
	}
	return &Comparison{operand: operand, operator: operator, literal: literal}, nil
}

// Operand returns the compared operand.
func (c *Comparison) Operand() qom.DynamicOperand { return c.operand }

// Operator returns the comparison operator.
func (c *Comparison) Operator() Operator { return c.operator }

// Literal returns the right-hand side value.
func (c *Comparison) Literal() ir.Value { return c.literal }

func (c *Comparison) String() string {
	return c.operand.String() + " " + string(c.operator) + " " + quoteLiteral(c.literal)
}

// Match evaluates the operand for row and tests the result against the
// literal. Errors from the operand are returned unchanged.
func (c *Comparison) Match(ctx context.Context, src qom.ValueSource, row qom.Row) (bool, error) {
	res, err := qom.Evaluate(ctx, c.operand, src, row)
	if err != nil {
		return false, err
	}
	for _, v := range qom.Values(res) {
		if c.test(v) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Comparison) test(v ir.Value) bool {
	if c.operator == OpLike {
		return likeMatch(v.String(), c.literal.String())
	}
	return c.operator.holds(CompareValues(v, c.literal))
}

func quoteLiteral(v ir.Value) string {
	switch v.(type) {
	case ir.Long, ir.Double, ir.Boolean:
		return v.String()
	}
	return "'" + v.String() + "'"
}
