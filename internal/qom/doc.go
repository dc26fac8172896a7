// Package qom provides the dynamic operands of the query object model.
//
// A dynamic operand is an expression node that, given a candidate node bound
// by a selector, evaluates to zero or more values. Constraints and orderings
// hold dynamic operands and compare or sort on their results; they are not
// part of this package.
//
// ARCHITECTURE:
//
//	[query builder] → DynamicOperand tree → Evaluate(row) → Result
//	                                      ↓
//	                               ValueSource (repository)
//
// The operand layer performs no I/O of its own. Property reads go through
// the ValueSource capability, and the length metric is whatever that
// capability reports for a single value.
//
// SEALED INTERFACES:
//
// DynamicOperand and Result are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so the single
// Evaluate type switch covers every operand kind:
//
//	switch op := operand.(type) {
//	case *PropertyValue:
//	case *Length:
//	case *NodeName:
//	case *NodeLocalName:
//	case *FullTextSearchScore:
//	case *LowerCase:
//	case *UpperCase:
//	}
//
// RESULTS:
//
// Every evaluation yields one of:
//   - Null: the value is absent (never an error)
//   - Scalar: one value
//   - Vector: the ordered values of a multi-valued property
//
// Null propagates through every wrapping operand. A ValueSource error is
// returned to the caller unchanged; the operand layer never retries,
// wraps or reinterprets it.
//
// IMMUTABILITY:
//
// Operands are built through constructors that validate their arguments
// and keep their fields unexported. A tree never changes after
// construction, so one tree may be evaluated from many goroutines at once,
// provided the ValueSource is itself safe for concurrent reads.
package qom
