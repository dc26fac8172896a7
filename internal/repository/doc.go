// Package repository holds repository content for operand evaluation.
//
// Memory is an in-process ValueSource guarded by a RWMutex. LoadFixture
// reads node content from YAML so the same content can be evaluated in
// memory or imported into one of the durable stores.
//
// Every store in this module satisfies Repository, which is what the CLI
// programs against.
package repository
