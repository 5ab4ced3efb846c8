package literal

import (
	"math"
	"strconv"
	"strings"
)

// NaNKind tags the NaN form of a float literal.
type NaNKind uint8

const (
	NotNaN        NaNKind = iota
	NaNDefault            // nan
	NaNArithmetic         // nan:arithmetic
	NaNCanonical          // nan:canonical
	NaNPayload            // nan:0x...
)

func (k NaNKind) String() string {
	switch k {
	case NaNDefault:
		return "nan"
	case NaNArithmetic:
		return "nan:arithmetic"
	case NaNCanonical:
		return "nan:canonical"
	case NaNPayload:
		return "nan:payload"
	}
	return "number"
}

// Float is a decoded float literal. Finite values keep their digits so they
// can be rounded once for the target width.
type Float struct {
	Negative bool
	Signed   bool
	Hex      bool
	Inf      bool
	NaN      NaNKind
	Payload  uint64
	digits   string
}

// IsNaN reports whether the literal is any NaN form.
func (f Float) IsNaN() bool {
	return f.NaN != NotNaN
}

// ParseFloat decodes a FLOAT literal: an optional sign followed by a decimal
// float, a hex float, inf, or a NaN form. Integer literals are valid floats.
func ParseFloat(s string) (Float, error) {
	var out Float
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		out.Signed = true
		out.Negative = body[0] == '-'
		body = body[1:]
	}

	switch {
	case body == "inf":
		out.Inf = true
		return out, nil
	case body == "nan":
		out.NaN = NaNDefault
		return out, nil
	case strings.HasPrefix(body, "nan:"):
		return parseNaN(s, body[4:], out)
	case strings.HasPrefix(body, "0x"):
		out.Hex = true
		if !scanFloat(body[2:], true) {
			return Float{}, malformed(s, "malformed hex float")
		}
		mant := strings.ReplaceAll(body, "_", "")
		if !strings.ContainsAny(mant, "pP") {
			mant += "p0"
		}
		out.digits = mant
	default:
		if !scanFloat(body, false) {
			return Float{}, malformed(s, "malformed float")
		}
		out.digits = strings.ReplaceAll(body, "_", "")
	}

	// Reject values that round to infinity even at 64 bits.
	if _, err := strconv.ParseFloat(out.digits, 64); err != nil {
		return Float{}, malformed(s, "float constant out of range")
	}
	return out, nil
}

func parseNaN(src, tail string, out Float) (Float, error) {
	switch tail {
	case "arithmetic":
		out.NaN = NaNArithmetic
		return out, nil
	case "canonical":
		out.NaN = NaNCanonical
		return out, nil
	}
	if !strings.HasPrefix(tail, "0x") {
		return Float{}, malformed(src, "malformed NaN form")
	}
	n, ok := digitRun(tail[2:], true)
	if !ok || n != len(tail)-2 {
		return Float{}, malformed(src, "malformed NaN payload")
	}
	i, err := ParseInt(tail)
	if err != nil {
		return Float{}, err
	}
	if i.Mag == 0 {
		return Float{}, malformed(src, "NaN payload must be non-zero")
	}
	out.NaN = NaNPayload
	out.Payload = i.Mag
	return out, nil
}

// Bits32 returns the IEEE-754 single precision bit pattern.
func (f Float) Bits32() (uint32, error) {
	var sign uint32
	if f.Negative {
		sign = 1 << 31
	}
	switch {
	case f.Inf:
		return sign | 0x7f800000, nil
	case f.NaN == NaNPayload:
		if f.Payload >= 1<<23 {
			return 0, malformed(f.String(), "NaN payload out of f32 range")
		}
		return sign | 0x7f800000 | uint32(f.Payload), nil
	case f.IsNaN():
		return sign | 0x7fc00000, nil
	}
	v, err := strconv.ParseFloat(f.digits, 32)
	if err != nil {
		return 0, malformed(f.String(), "float constant out of f32 range")
	}
	bits := math.Float32bits(float32(v))
	if f.Negative {
		bits |= sign
	}
	return bits, nil
}

// Bits64 returns the IEEE-754 double precision bit pattern.
func (f Float) Bits64() (uint64, error) {
	var sign uint64
	if f.Negative {
		sign = 1 << 63
	}
	switch {
	case f.Inf:
		return sign | 0x7ff0000000000000, nil
	case f.NaN == NaNPayload:
		if f.Payload >= 1<<52 {
			return 0, malformed(f.String(), "NaN payload out of f64 range")
		}
		return sign | 0x7ff0000000000000 | f.Payload, nil
	case f.IsNaN():
		return sign | 0x7ff8000000000000, nil
	}
	v, err := strconv.ParseFloat(f.digits, 64)
	if err != nil {
		return 0, malformed(f.String(), "float constant out of f64 range")
	}
	return math.Float64bits(v) | sign, nil
}

// Float64 returns the value as a float64. NaN forms lose their tag.
func (f Float) Float64() float64 {
	bits, err := f.Bits64()
	if err != nil {
		return math.NaN()
	}
	return math.Float64frombits(bits)
}

func (f Float) String() string {
	var b strings.Builder
	if f.Negative {
		b.WriteByte('-')
	} else if f.Signed {
		b.WriteByte('+')
	}
	switch {
	case f.Inf:
		b.WriteString("inf")
	case f.NaN == NaNPayload:
		b.WriteString("nan:0x")
		b.WriteString(formatUint(f.Payload, 16))
	case f.IsNaN():
		b.WriteString(f.NaN.String())
	default:
		b.WriteString(f.digits)
	}
	return b.String()
}

// scanFloat checks the magnitude of a decimal or hex float (without the 0x
// prefix): digits, optional '.' with optional digits, optional exponent.
func scanFloat(s string, hex bool) bool {
	n, ok := digitRun(s, hex)
	if !ok {
		return false
	}
	s = s[n:]
	if s != "" && s[0] == '.' {
		s = s[1:]
		if n, ok := digitRun(s, hex); ok {
			s = s[n:]
		}
	}
	if s == "" {
		return true
	}
	exp := s[0]
	if (hex && exp != 'p' && exp != 'P') || (!hex && exp != 'e' && exp != 'E') {
		return false
	}
	s = s[1:]
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	n, ok = digitRun(s, false)
	return ok && n == len(s)
}

// IsNumber reports whether s is an integer or float literal.
func IsNumber(s string) bool {
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}
	switch {
	case body == "inf" || body == "nan":
		return true
	case strings.HasPrefix(body, "nan:"):
		tail := body[4:]
		if tail == "arithmetic" || tail == "canonical" {
			return true
		}
		if !strings.HasPrefix(tail, "0x") {
			return false
		}
		n, ok := digitRun(tail[2:], true)
		return ok && n == len(tail)-2
	case strings.HasPrefix(body, "0x"):
		return scanFloat(body[2:], true)
	}
	return scanFloat(body, false)
}

// IsInt reports whether s is a SIGNED or UNSIGNED integer literal.
func IsInt(s string) bool {
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}
	hex := strings.HasPrefix(body, "0x")
	if hex {
		body = body[2:]
	}
	n, ok := digitRun(body, hex)
	return ok && n == len(body)
}
