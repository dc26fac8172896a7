// Package kvstore provides a Badger-backed repository for operand
// evaluation.
//
// Key layout (one byte prefix, then the key body):
//
//	0x01 nodeID                -> node record (path)
//	0x02 nodeID name           -> property record (type, values)
//	0x03 path                  -> nodeID (unique path index)
//
// Node IDs are the 16 raw UUID bytes, so every property of a node shares
// the 17-byte prefix 0x02+nodeID and can be scanned with one iterator.
// A property read is a single Get.
package kvstore
