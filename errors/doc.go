// Package errors provides structured error types for the WAT lexer and parser.
//
// Errors are categorized by Phase (lex, literal, parse) and Kind (error category).
// Every Error carries the byte span of the offending source, and label or
// duplicate errors also carry the related span of the earlier construct.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindStructure).
//		At(10, 14).
//		Token("func").
//		Detail("expected %s", "')'").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownOpcode(span, "i32.frob")
//	err := errors.LabelMismatch(endSpan, "$b", openSpan, "$a")
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind also looks inside errors combined with multierr.
package errors
