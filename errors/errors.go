package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLex     Phase = "lex"     // tokenization
	PhaseLiteral Phase = "literal" // numeric and string literal decoding
	PhaseParse   Phase = "parse"   // structural and instruction grammar
)

// Kind categorizes the error
type Kind string

const (
	KindLex                Kind = "lex"
	KindMalformedLiteral   Kind = "malformed_literal"
	KindUnknownOpcode      Kind = "unknown_opcode"
	KindArity              Kind = "arity"
	KindDuplicateImmediate Kind = "duplicate_immediate"
	KindLabelMismatch      Kind = "label_mismatch"
	KindStructure          Kind = "structure"
	KindDepthExceeded      Kind = "depth_exceeded"
)

// Span is a half-open byte range [Start, End) into the parsed source.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span covers at least one byte.
func (s Span) Valid() bool {
	return s.End > s.Start
}

func (s Span) String() string {
	return strconv.Itoa(s.Start) + ".." + strconv.Itoa(s.End)
}

// Error is the structured error type used by the lexer and parser
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Token   string
	Span    Span
	Related []Span
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Span.Valid() {
		b.WriteString(" at ")
		b.WriteString(e.Span.String())
	}

	if e.Token != "" {
		b.WriteString(" near ")
		b.WriteString(strconv.Quote(e.Token))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	for _, r := range e.Related {
		b.WriteString(" (see ")
		b.WriteString(r.String())
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err or anything it wraps is an *Error of the given kind.
// Joined errors (multierr, errors.Join) are searched too.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if IsKind(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsKind(x.Unwrap(), kind)
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// At sets the primary source span
func (b *Builder) At(start, end int) *Builder {
	b.err.Span = Span{Start: start, End: end}
	return b
}

// Related appends a secondary source span
func (b *Builder) Related(start, end int) *Builder {
	b.err.Related = append(b.err.Related, Span{Start: start, End: end})
	return b
}

// Token sets the offending source text
func (b *Builder) Token(text string) *Builder {
	b.err.Token = text
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Lex creates a tokenization error
func Lex(span Span, detail string) *Error {
	return &Error{
		Phase:  PhaseLex,
		Kind:   KindLex,
		Span:   span,
		Detail: detail,
	}
}

// MalformedLiteral creates a literal decoding error
func MalformedLiteral(span Span, text, detail string) *Error {
	return &Error{
		Phase:  PhaseLiteral,
		Kind:   KindMalformedLiteral,
		Span:   span,
		Token:  text,
		Detail: detail,
	}
}

// UnknownOpcode creates an unknown mnemonic error
func UnknownOpcode(span Span, mnemonic string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnknownOpcode,
		Span:   span,
		Token:  mnemonic,
		Detail: fmt.Sprintf("unknown instruction %q", mnemonic),
	}
}

// Arity creates an immediate count error
func Arity(span Span, op string, want, got int) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindArity,
		Span:   span,
		Token:  op,
		Detail: fmt.Sprintf("%s expects %d immediates, got %d", op, want, got),
		Value:  got,
	}
}

// DuplicateImmediate creates an error for an immediate given more than once
func DuplicateImmediate(span, first Span, name string) *Error {
	return &Error{
		Phase:   PhaseParse,
		Kind:    KindDuplicateImmediate,
		Span:    span,
		Related: []Span{first},
		Token:   name,
		Detail:  fmt.Sprintf("duplicate %s immediate", name),
	}
}

// LabelMismatch creates an error for a closing label that differs from the opening one.
// opening is the zero Span when the block has no label.
func LabelMismatch(span Span, got string, opening Span, want string) *Error {
	e := &Error{
		Phase: PhaseParse,
		Kind:  KindLabelMismatch,
		Span:  span,
		Token: got,
	}
	if want == "" {
		e.Detail = fmt.Sprintf("label %s closes an unlabeled block", got)
	} else {
		e.Detail = fmt.Sprintf("label %s does not match %s", got, want)
		e.Related = []Span{opening}
	}
	return e
}

// Structure creates an unexpected token error
func Structure(span Span, found, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindStructure,
		Span:   span,
		Token:  found,
		Detail: detail,
	}
}

// DepthExceeded creates a nesting limit error
func DepthExceeded(span Span, limit int) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDepthExceeded,
		Span:   span,
		Detail: fmt.Sprintf("nesting exceeds %d levels", limit),
		Value:  limit,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
