// Package constraint applies dynamic operands the way a query engine does:
// comparing them with literals, ordering rows by them, and filtering
// candidate rows.
//
// The package only consumes qom.Evaluate. It never inspects an operand's
// variant, so every operand kind works in every position.
//
// MULTI-VALUED SEMANTICS:
//
// A Vector result matches a comparison when any of its elements does. A
// Null result never matches, not even for <>. For ordering, a Vector is
// keyed by its first element and an empty Vector sorts like Null.
//
// CONCURRENCY:
//
// Filter evaluates rows in parallel with a bounded errgroup. Results keep
// the input order. The first ValueSource error cancels the remaining work
// and is returned unchanged.
package constraint
