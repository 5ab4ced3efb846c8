package token

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/literal"
)

type Kind uint8

const (
	EOF Kind = iota
	LParen
	RParen
	Keyword
	ID
	String
	Number
	Reserved
	LineComment
	BlockComment
	Annotation
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Keyword:
		return "keyword"
	case ID:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	case Reserved:
		return "reserved token"
	case LineComment:
		return "line comment"
	case BlockComment:
		return "block comment"
	case Annotation:
		return "annotation"
	}
	return "unknown"
}

// Trivia reports whether tokens of this kind carry no grammar meaning.
func (k Kind) Trivia() bool {
	return k == LineComment || k == BlockComment || k == Annotation
}

// Token is a classified slice of the source. Start and End are byte offsets.
type Token struct {
	Text  string
	Start int
	End   int
	Kind  Kind
}

func (t Token) Span() errors.Span {
	return errors.Span{Start: t.Start, End: t.End}
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Kind == Keyword && t.Text == kw
}

// AnnotationName returns the name of an annotation token, without "(@".
func (t Token) AnnotationName() string {
	if t.Kind != Annotation || len(t.Text) < 2 {
		return ""
	}
	name := t.Text[2:]
	n := 0
	for n < len(name) && isIDChar(name[n]) {
		n++
	}
	return name[:n]
}

// Lexer produces tokens on demand. It never backtracks on its own, and Reset
// restarts it at any byte offset.
type Lexer struct {
	src string
	pos int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Offset returns the byte offset of the next unread byte.
func (l *Lexer) Offset() int {
	return l.pos
}

// Reset moves the lexer to offset, clamped to the source bounds.
func (l *Lexer) Reset(offset int) {
	l.pos = max(0, min(offset, len(l.src)))
}

// Next returns the next token, including comment and annotation tokens.
// After an error the lexer has already moved past the offending input, so
// calling Next again continues the scan. At the end it keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if start >= len(l.src) {
		return Token{Kind: EOF, Start: start, End: start}, nil
	}

	c := l.src[start]
	switch {
	case c == '(':
		if start+1 < len(l.src) {
			switch l.src[start+1] {
			case ';':
				end, ok := skipBlockComment(l.src, start)
				l.pos = end
				if !ok {
					return Token{}, errors.Lex(errors.Span{Start: start, End: start + 2}, "unterminated block comment")
				}
				return l.token(BlockComment, start), nil
			case '@':
				return l.annotation(start)
			}
		}
		l.pos++
		return l.token(LParen, start), nil
	case c == ')':
		l.pos++
		return l.token(RParen, start), nil
	case c == ';':
		if start+1 < len(l.src) && l.src[start+1] == ';' {
			l.pos = lineEnd(l.src, start)
			return l.token(LineComment, start), nil
		}
		l.pos++
		return l.token(Reserved, start), nil
	case c == '"':
		end, err := scanString(l.src, start)
		l.pos = end
		if err != nil {
			return Token{}, err
		}
		return l.token(String, start), nil
	case c == ',' || c == '[' || c == ']' || c == '{' || c == '}':
		l.pos++
		return l.token(Reserved, start), nil
	case isIDChar(c):
		l.pos = atomEnd(l.src, start)
		return l.token(classify(l.src[start:l.pos]), start), nil
	}

	_, size := utf8.DecodeRuneInString(l.src[start:])
	l.pos += size
	return Token{}, errors.New(errors.PhaseLex, errors.KindLex).
		At(start, l.pos).
		Token(l.src[start:l.pos]).
		Detail("invalid character").
		Build()
}

// All yields every token up to, but not including, EOF.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if err == nil && tok.Kind == EOF {
				return
			}
			if !yield(tok, err) {
				return
			}
		}
	}
}

// Tokenize lexes the whole input. Tokens around lexical errors are still
// returned; all errors are combined into the second result.
func Tokenize(src string) ([]Token, error) {
	var (
		tokens []Token
		errs   error
	)
	for tok, err := range NewLexer(src).All() {
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, errs
}

func (l *Lexer) token(kind Kind, start int) Token {
	return Token{Kind: kind, Text: l.src[start:l.pos], Start: start, End: l.pos}
}

// annotation lexes "(@name part* )". Parts are nested groups, strings,
// comments, and atoms; the body is kept as raw text.
func (l *Lexer) annotation(start int) (Token, error) {
	open := errors.Span{Start: start, End: start + 2}
	nameEnd := atomEnd(l.src, start+2)
	if nameEnd == start+2 {
		l.pos = start + 2
		return Token{}, errors.Lex(open, "annotation requires a name")
	}
	end, err := scanGroup(l.src, nameEnd, open)
	l.pos = end
	if err != nil {
		return Token{}, err
	}
	return l.token(Annotation, start), nil
}

// scanGroup consumes annotation parts from pos up to and including the
// closing paren of the group opened at open. Nesting is tracked with a
// counter rather than recursion.
func scanGroup(src string, pos int, open errors.Span) (int, error) {
	depth := 1
	for pos < len(src) {
		c := src[pos]
		switch {
		case isSpace(src, pos) > 0:
			pos += isSpace(src, pos)
		case c == ')':
			pos++
			depth--
			if depth == 0 {
				return pos, nil
			}
		case c == '(' && pos+1 < len(src) && src[pos+1] == ';':
			end, ok := skipBlockComment(src, pos)
			if !ok {
				return end, errors.Lex(errors.Span{Start: pos, End: pos + 2}, "unterminated block comment")
			}
			pos = end
		case c == '(':
			pos++
			depth++
		case c == ';' && pos+1 < len(src) && src[pos+1] == ';':
			pos = lineEnd(src, pos)
		case c == '"':
			end, err := scanString(src, pos)
			if err != nil {
				return end, err
			}
			pos = end
		case isIDChar(c):
			pos = atomEnd(src, pos)
		case c == ',' || c == ';' || c == '[' || c == ']' || c == '{' || c == '}':
			pos++
		default:
			_, size := utf8.DecodeRuneInString(src[pos:])
			return len(src), errors.Lex(errors.Span{Start: pos, End: pos + size}, "invalid character in annotation")
		}
	}
	return len(src), errors.Lex(open, "unterminated annotation")
}

// skipBlockComment returns the offset after the "(; ... ;)" starting at
// start, honoring nesting. ok is false if the input ends first.
func skipBlockComment(src string, start int) (int, bool) {
	depth := 0
	i := start
	for i+1 < len(src) {
		switch {
		case src[i] == '(' && src[i+1] == ';':
			depth++
			i += 2
		case src[i] == ';' && src[i+1] == ')':
			depth--
			i += 2
			if depth == 0 {
				return i, true
			}
		default:
			i++
		}
	}
	return len(src), false
}

// scanString returns the offset after the string literal at start.
// Escape validity is checked here so bad strings never reach the parser.
func scanString(src string, start int) (int, error) {
	var firstErr error
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '"':
			return i + 1, firstErr
		case '\n':
			return i, errors.Lex(errors.Span{Start: start, End: start + 1}, "unterminated string")
		case '\\':
			n, ok := escapeLen(src[i:])
			if !ok && firstErr == nil {
				firstErr = errors.Lex(errors.Span{Start: i, End: i + max(n, 1)}, "invalid escape sequence")
			}
			i += max(n, 1)
		default:
			i++
		}
	}
	return len(src), errors.Lex(errors.Span{Start: start, End: start + 1}, "unterminated string")
}

// escapeLen measures the escape sequence at the start of s (s[0] is '\').
func escapeLen(s string) (int, bool) {
	if len(s) < 2 {
		return 1, false
	}
	c := s[1]
	switch {
	case isHex(c):
		if len(s) > 2 && isHex(s[2]) {
			return 3, true
		}
		return 2, false
	case c == 'u':
		if len(s) < 3 || s[2] != '{' {
			return 2, false
		}
		j := 3
		var cp uint32
		for j < len(s) && isHex(s[j]) {
			if cp <= unicode.MaxRune {
				cp = cp<<4 | uint32(hexVal(s[j]))
			}
			j++
		}
		if j == 3 || j >= len(s) || s[j] != '}' {
			return j, false
		}
		if cp > unicode.MaxRune || (cp >= 0xD800 && cp <= 0xDFFF) {
			return j + 1, false
		}
		return j + 1, true
	case c == '\r':
		if len(s) > 2 && s[2] == '\n' {
			return 3, true
		}
		return 2, true
	case c == '\n':
		return 2, true
	}
	_, size := utf8.DecodeRuneInString(s[1:])
	return 1 + size, true
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		n := isSpace(l.src, l.pos)
		if n == 0 {
			return
		}
		l.pos += n
	}
}

// isSpace returns the byte length of the whitespace character at pos, or 0.
func isSpace(src string, pos int) int {
	switch src[pos] {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return 1
	case 0xC2, 0xE2, 0xEF:
		for _, ws := range unicodeSpaces {
			if strings.HasPrefix(src[pos:], ws) {
				return len(ws)
			}
		}
	}
	return 0
}

var unicodeSpaces = []string{"\u00a0", "\u200b", "\u2060", "\ufeff"}

func lineEnd(src string, start int) int {
	if i := strings.IndexByte(src[start:], '\n'); i >= 0 {
		return start + i
	}
	return len(src)
}

func atomEnd(src string, start int) int {
	i := start
	for i < len(src) && isIDChar(src[i]) {
		i++
	}
	return i
}

func classify(text string) Kind {
	switch {
	case len(text) > 1 && text[0] == '$':
		return ID
	case literal.IsNumber(text):
		return Number
	case text[0] >= 'a' && text[0] <= 'z':
		return Keyword
	}
	return Reserved
}

var idChars = func() (t [256]bool) {
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for _, c := range "!#$%&'*+-./:<=>?@\\^_`|~" {
		t[c] = true
	}
	return t
}()

func isIDChar(c byte) bool {
	return idChars[c]
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
