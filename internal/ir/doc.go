// Package ir provides the foundation types for the query object model.
//
// This package contains the repository value model only. All other internal
// packages import ir; ir imports nothing internal. This keeps the value layer
// free of circular dependencies with the operand and storage layers.
//
// Key design constraints:
//   - Value is a sealed interface; only the property types below implement it
//   - Every value has one canonical string form (String method)
//   - The length metric (Length) is defined once, here, for every type
//   - Strings are NFC normalized before they are measured or hashed
package ir
