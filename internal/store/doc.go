// Package store provides a SQLite-backed repository for operand evaluation.
//
// Nodes, properties and property values live in three tables. Values are
// stored as their canonical string form next to the property type, and are
// parsed back with ir.ParseValue on read.
//
// # Ordering
//
//   - Properties keep their stored order via properties.pos
//   - Multi-valued properties keep value order via property_values.idx
//   - Nodes are listed ORDER BY path ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Property rows cascade with their node
//
// Store implements repository.Repository, so it can serve as the
// ValueSource for qom.Evaluate.
package store
