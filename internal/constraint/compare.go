package constraint

import (
	"cmp"
	"strings"
	"time"

	"github.com/roach88/qom/internal/ir"
)

// CompareValues orders two values. Numeric values (Long, Double) compare
// numerically, two Dates compare chronologically, two Booleans compare
// false before true. Everything else compares by canonical string form.
func CompareValues(a, b ir.Value) int {
	switch av := a.(type) {
	case ir.Long:
		switch bv := b.(type) {
		case ir.Long:
			return cmp.Compare(av, bv)
		case ir.Double:
			return cmp.Compare(float64(av), float64(bv))
		}
	case ir.Double:
		switch bv := b.(type) {
		case ir.Long:
			return cmp.Compare(float64(av), float64(bv))
		case ir.Double:
			return cmp.Compare(av, bv)
		}
	case ir.Date:
		if bv, ok := b.(ir.Date); ok {
			return time.Time(av).Compare(time.Time(bv))
		}
	case ir.Boolean:
		if bv, ok := b.(ir.Boolean); ok {
			switch {
			case av == bv:
				return 0
			case !bool(av):
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(a.String(), b.String())
}

// likeMatch reports whether s matches a LIKE pattern, where % matches any
// run of characters, _ matches exactly one, and \ escapes the next
// character. Matching is by code point.
func likeMatch(s, pattern string) bool {
	str := []rune(s)
	pat := []rune(pattern)

	// Iterative wildcard matching with single-star backtracking.
	si, pi := 0, 0
	starPi, starSi := -1, 0
	for si < len(str) {
		if pi < len(pat) {
			switch pat[pi] {
			case '%':
				starPi, starSi = pi, si
				pi++
				continue
			case '_':
				si++
				pi++
				continue
			case '\\':
				// A trailing backslash escapes nothing and matches itself.
				if pi+1 == len(pat) {
					if str[si] == '\\' {
						si++
						pi++
						continue
					}
				} else if pat[pi+1] == str[si] {
					si++
					pi += 2
					continue
				}
			default:
				if pat[pi] == str[si] {
					si++
					pi++
					continue
				}
			}
		}
		if starPi < 0 {
			return false
		}
		starSi++
		si = starSi
		pi = starPi + 1
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}
