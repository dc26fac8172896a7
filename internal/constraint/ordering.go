package constraint

import (
	"context"
	"slices"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// Ordering sorts rows by the value of an operand.
type Ordering struct {
	Operand    qom.DynamicOperand
	Descending bool
}

func (o Ordering) String() string {
	if o.Descending {
		return o.Operand.String() + " DESC"
	}
	return o.Operand.String() + " ASC"
}

// SortKey returns the value rows are ordered by: nil for Null and for an
// empty Vector, the first element of a non-empty Vector.
func SortKey(res qom.Result) ir.Value {
	values := qom.Values(res)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// Sort returns rows ordered by orderings, earlier orderings taking
// precedence. Nil keys sort first ascending and last descending. The sort
// is stable and the input slice is not modified.
func Sort(ctx context.Context, src qom.ValueSource, rows []qom.Row, orderings ...Ordering) ([]qom.Row, error) {
	for _, o := range orderings {
		if o.Operand == nil {
			return nil, invalid("ordering operand is required")
		}
	}

	type keyed struct {
		row  qom.Row
		keys []ir.Value
	}

	items := make([]keyed, len(rows))
	for i, row := range rows {
		keys := make([]ir.Value, len(orderings))
		for j, o := range orderings {
			res, err := qom.Evaluate(ctx, o.Operand, src, row)
			if err != nil {
				return nil, err
			}
			keys[j] = SortKey(res)
		}
		items[i] = keyed{row: row, keys: keys}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		for j, o := range orderings {
			c := compareKeys(a.keys[j], b.keys[j])
			if o.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	sorted := make([]qom.Row, len(items))
	for i, it := range items {
		sorted[i] = it.row
	}
	return sorted, nil
}

func compareKeys(a, b ir.Value) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return CompareValues(a, b)
}
