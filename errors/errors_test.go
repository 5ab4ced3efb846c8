package errors

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseParse,
				Kind:    KindLabelMismatch,
				Span:    Span{Start: 40, End: 42},
				Related: []Span{{Start: 10, End: 12}},
				Token:   "$b",
				Detail:  "label $b does not match $a",
			},
			contains: []string{"[parse]", "label_mismatch", "40..42", `"$b"`, "does not match", "see 10..12"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLex,
				Kind:  KindLex,
			},
			contains: []string{"[lex]", "lex"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLiteral,
				Kind:   KindMalformedLiteral,
				Detail: "bad integer",
				Cause:  errors.New("value out of range"),
			},
			contains: []string{"[literal]", "malformed_literal", "bad integer", "caused by", "value out of range"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_EmptySpanOmitted(t *testing.T) {
	err := &Error{Phase: PhaseParse, Kind: KindStructure}
	if strings.Contains(err.Error(), " at ") {
		t.Errorf("unexpected span in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLiteral,
		Kind:  KindMalformedLiteral,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindUnknownOpcode,
		Token: "i32.frob",
	}

	if !err.Is(&Error{Phase: PhaseParse, Kind: KindUnknownOpcode}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseLex, Kind: KindUnknownOpcode}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseParse, Kind: KindArity}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseParse, Kind: KindUnknownOpcode}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestIsKind(t *testing.T) {
	label := LabelMismatch(Span{Start: 5, End: 7}, "$x", Span{Start: 1, End: 3}, "$y")
	depth := DepthExceeded(Span{Start: 0, End: 1}, 8)

	if !IsKind(label, KindLabelMismatch) {
		t.Error("IsKind should match direct error")
	}
	if IsKind(label, KindDepthExceeded) {
		t.Error("IsKind should not match other kind")
	}

	combined := multierr.Combine(label, depth)
	if !IsKind(combined, KindDepthExceeded) || !IsKind(combined, KindLabelMismatch) {
		t.Error("IsKind should search combined errors")
	}

	wrapped := Wrap(PhaseParse, KindStructure, depth, "in func")
	if !IsKind(wrapped, KindDepthExceeded) {
		t.Error("IsKind should follow Unwrap")
	}

	if IsKind(nil, KindLex) {
		t.Error("IsKind(nil) should be false")
	}

	kind, ok := KindOf(wrapped)
	if !ok || kind != KindStructure {
		t.Errorf("KindOf = %v, %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should fail for plain errors")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseParse, KindDuplicateImmediate).
		At(20, 28).
		Related(10, 18).
		Token("offset=4").
		Value(4).
		Cause(cause).
		Detail("duplicate %s immediate", "offset").
		Build()

	if err.Phase != PhaseParse {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
	}
	if err.Kind != KindDuplicateImmediate {
		t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicateImmediate)
	}
	if err.Span != (Span{Start: 20, End: 28}) {
		t.Errorf("Span = %v", err.Span)
	}
	if len(err.Related) != 1 || err.Related[0] != (Span{Start: 10, End: 18}) {
		t.Errorf("Related = %v", err.Related)
	}
	if err.Token != "offset=4" {
		t.Errorf("Token = %v", err.Token)
	}
	if err.Value != 4 {
		t.Errorf("Value = %v, want 4", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "duplicate offset immediate" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	span := Span{Start: 3, End: 9}

	t.Run("Lex", func(t *testing.T) {
		err := Lex(span, "unterminated string")
		if err.Phase != PhaseLex || err.Kind != KindLex {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("MalformedLiteral", func(t *testing.T) {
		err := MalformedLiteral(span, "1__0", "misplaced underscore")
		if err.Kind != KindMalformedLiteral || err.Token != "1__0" {
			t.Errorf("Kind=%v Token=%v", err.Kind, err.Token)
		}
	})

	t.Run("UnknownOpcode", func(t *testing.T) {
		err := UnknownOpcode(span, "i32.frob")
		if err.Kind != KindUnknownOpcode {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Detail, "i32.frob") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Arity", func(t *testing.T) {
		err := Arity(span, "i8x16.shuffle", 16, 3)
		if err.Kind != KindArity || err.Value != 3 {
			t.Errorf("Kind=%v Value=%v", err.Kind, err.Value)
		}
	})

	t.Run("DuplicateImmediate", func(t *testing.T) {
		err := DuplicateImmediate(span, Span{Start: 0, End: 2}, "align")
		if err.Kind != KindDuplicateImmediate || len(err.Related) != 1 {
			t.Errorf("Kind=%v Related=%v", err.Kind, err.Related)
		}
	})

	t.Run("LabelMismatch unlabeled", func(t *testing.T) {
		err := LabelMismatch(span, "$l", Span{}, "")
		if len(err.Related) != 0 {
			t.Errorf("Related = %v", err.Related)
		}
		if !strings.Contains(err.Detail, "unlabeled") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Structure", func(t *testing.T) {
		err := Structure(span, "foo", "expected field")
		if err.Kind != KindStructure || err.Phase != PhaseParse {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("DepthExceeded", func(t *testing.T) {
		err := DepthExceeded(span, 64)
		if err.Value != 64 {
			t.Errorf("Value = %v", err.Value)
		}
	})
}
