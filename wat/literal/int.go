package literal

import (
	"math"
	"math/bits"
	"strings"
)

// Int is a decoded integer literal. The magnitude and sign are kept apart so
// that callers can apply the range rule of the width they need.
type Int struct {
	Mag      uint64
	Signed   bool // an explicit '+' or '-' was written
	Negative bool
	Hex      bool
}

// ParseUnsigned decodes an UNSIGNED literal: decimal or 0x-hex digits with
// single '_' separators between digits.
func ParseUnsigned(s string) (uint64, error) {
	if s == "" {
		return 0, malformed(s, "empty integer")
	}
	if s[0] == '+' || s[0] == '-' {
		return 0, malformed(s, "unexpected sign on unsigned integer")
	}
	i, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	return i.Mag, nil
}

// ParseInt decodes a SIGNED or UNSIGNED literal.
func ParseInt(s string) (Int, error) {
	var out Int
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		out.Signed = true
		out.Negative = body[0] == '-'
		body = body[1:]
	}

	base := uint64(10)
	if strings.HasPrefix(body, "0x") {
		out.Hex = true
		base = 16
		body = body[2:]
	}

	n, ok := digitRun(body, out.Hex)
	if !ok || n != len(body) {
		return Int{}, malformed(s, "malformed integer")
	}

	var mag uint64
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '_' {
			continue
		}
		hi, lo := bits.Mul64(mag, base)
		if hi != 0 {
			return Int{}, malformed(s, "integer overflows 64 bits")
		}
		sum, carry := bits.Add64(lo, uint64(digitValue(c)), 0)
		if carry != 0 {
			return Int{}, malformed(s, "integer overflows 64 bits")
		}
		mag = sum
	}
	out.Mag = mag
	return out, nil
}

// Uint32 returns the value as an unsigned 32-bit index. Signed forms are rejected.
func (i Int) Uint32() (uint32, error) {
	if i.Signed {
		return 0, malformed(i.String(), "index must be unsigned")
	}
	if i.Mag > math.MaxUint32 {
		return 0, malformed(i.String(), "value does not fit in 32 bits")
	}
	return uint32(i.Mag), nil
}

// Bits32 returns the two's complement bit pattern of an i32 literal.
// Accepted range is [-2^31, 2^32-1].
func (i Int) Bits32() (uint32, error) {
	if i.Negative {
		if i.Mag > 1<<31 {
			return 0, malformed(i.String(), "value out of i32 range")
		}
		return uint32(-int64(i.Mag)), nil
	}
	if i.Mag > math.MaxUint32 {
		return 0, malformed(i.String(), "value out of i32 range")
	}
	return uint32(i.Mag), nil
}

// Bits64 returns the two's complement bit pattern of an i64 literal.
// Accepted range is [-2^63, 2^64-1].
func (i Int) Bits64() (uint64, error) {
	if i.Negative {
		if i.Mag > 1<<63 {
			return 0, malformed(i.String(), "value out of i64 range")
		}
		return -i.Mag, nil
	}
	return i.Mag, nil
}

// BitsN returns the bit pattern of a literal that must fit in width bits
// (8 or 16), signed or unsigned.
func (i Int) BitsN(width uint) (uint64, error) {
	limit := uint64(1) << width
	if i.Negative {
		if i.Mag > limit/2 {
			return 0, malformed(i.String(), "value out of range")
		}
		return (-i.Mag) & (limit - 1), nil
	}
	if i.Mag >= limit {
		return 0, malformed(i.String(), "value out of range")
	}
	return i.Mag, nil
}

func (i Int) String() string {
	var b strings.Builder
	if i.Negative {
		b.WriteByte('-')
	} else if i.Signed {
		b.WriteByte('+')
	}
	if i.Hex {
		b.WriteString("0x")
		b.WriteString(formatUint(i.Mag, 16))
	} else {
		b.WriteString(formatUint(i.Mag, 10))
	}
	return b.String()
}

func formatUint(v uint64, base uint64) string {
	if v == 0 {
		return "0"
	}
	const digits = "0123456789abcdef"
	var buf [20]byte
	n := len(buf)
	for v > 0 {
		n--
		buf[n] = digits[v%base]
		v /= base
	}
	return string(buf[n:])
}

// digitRun returns the length of the longest prefix of s matching
// [0-9]+(_?[0-9]+)* (hex digits when hex is set).
func digitRun(s string, hex bool) (int, bool) {
	isDigit := isDecDigit
	if hex {
		isDigit = isHexDigit
	}
	if s == "" || !isDigit(s[0]) {
		return 0, false
	}
	i := 1
	for i < len(s) {
		switch {
		case isDigit(s[i]):
			i++
		case s[i] == '_' && i+1 < len(s) && isDigit(s[i+1]):
			i += 2
		default:
			return i, true
		}
	}
	return i, true
}

func isDecDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func digitValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
