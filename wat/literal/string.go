package literal

import (
	"unicode/utf8"

	"github.com/wippyai/wat-syntax/errors"
)

// DecodeString decodes a quoted string token (quotes included) into its bytes.
// Escapes: \t \n \r \" \' \\, \XX hex bytes, \u{X...} code points, and a
// backslash-newline line continuation which contributes nothing.
func DecodeString(text string) ([]byte, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return nil, malformed(text, "string must be quoted")
	}
	s := text[1 : len(text)-1]
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+1 >= len(s) {
			return nil, malformed(text, "dangling escape")
		}
		next := s[i+1]
		switch {
		case i+2 < len(s) && isHexDigit(next) && isHexDigit(s[i+2]):
			out = append(out, digitValue(next)<<4|digitValue(s[i+2]))
			i += 2
		case isHexDigit(next):
			return nil, malformed(text, "hex escape needs two digits")
		case next == 'u':
			r, n, err := unicodeEscape(text, s[i+2:])
			if err != nil {
				return nil, err
			}
			out = utf8.AppendRune(out, r)
			i += 1 + n
		case next == '\n':
			i++
		case next == '\r' && i+2 < len(s) && s[i+2] == '\n':
			i += 2
		default:
			out = append(out, simpleEscape(next))
			i++
		}
	}
	return out, nil
}

// DecodeName decodes a string that must hold valid UTF-8, as import and
// export names do.
func DecodeName(text string) (string, error) {
	b, err := DecodeString(text)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed(text, "name is not valid UTF-8")
	}
	return string(b), nil
}

// unicodeEscape decodes "{hex+}" at the start of s and returns the rune and
// the number of bytes consumed.
func unicodeEscape(src, s string) (rune, int, error) {
	if s == "" || s[0] != '{' {
		return 0, 0, malformed(src, `\u must be followed by {`)
	}
	n, ok := digitRun(s[1:], true)
	if !ok || 1+n >= len(s) || s[1+n] != '}' {
		return 0, 0, malformed(src, "malformed unicode escape")
	}
	var v uint64
	for i := 1; i <= n; i++ {
		if s[i] == '_' {
			continue
		}
		v = v<<4 | uint64(digitValue(s[i]))
		if v > utf8.MaxRune {
			return 0, 0, malformed(src, "unicode escape out of range")
		}
	}
	if v >= 0xD800 && v < 0xE000 {
		return 0, 0, malformed(src, "unicode escape is a surrogate")
	}
	return rune(v), n + 2, nil
}

func simpleEscape(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	}
	return c
}

func malformed(text, detail string) error {
	return errors.MalformedLiteral(errors.Span{}, text, detail)
}
