package ir

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Length returns the repository length metric of a single value.
//
// Binary values measure their byte count. Every other type measures the
// number of Unicode code points in the NFC normalized canonical string
// form, so "é" written as one or two code points has length 1 either way.
//
// Length(nil) is -1, matching the repository convention for "no value".
func Length(v Value) int64 {
	switch val := v.(type) {
	case nil:
		return -1
	case Binary:
		return int64(len(val))
	default:
		return int64(utf8.RuneCountInString(norm.NFC.String(v.String())))
	}
}

// Lengths returns the length of each value, preserving order.
func Lengths(values []Value) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = Length(v)
	}
	return out
}
