// Package literal decodes WAT numeric and string literal text.
//
// Integers keep sign and magnitude separately so each instruction applies
// its own range rule:
//
//	i, _ := literal.ParseInt("-0x8000_0000")
//	bits, _ := i.Bits32() // 0x80000000
//
// Floats cover decimal, hex (0x1.8p3), inf and the four NaN forms.
// Nothing here wraps or truncates: out-of-range values are
// malformed_literal errors.
package literal
