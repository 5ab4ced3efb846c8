package wat

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/ast"
)

// Integration tests for the public API.
// Unit tests are in internal packages.

func TestParse(t *testing.T) {
	t.Run("empty_module", func(t *testing.T) {
		doc, err := Parse("(module)")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Module == nil {
			t.Fatal("expected module")
		}
		if len(doc.Module.Fields) != 0 {
			t.Errorf("expected no fields, got %d", len(doc.Module.Fields))
		}
	})

	t.Run("simple_function", func(t *testing.T) {
		doc, err := Parse(`(module
			(func $add (export "add") (param i32 i32) (result i32)
				(i32.add (local.get 0) (local.get 1))))`)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		fn, ok := doc.Module.Fields[0].(*ast.Func)
		if !ok {
			t.Fatalf("expected *ast.Func, got %T", doc.Module.Fields[0])
		}
		if fn.Exports[0].Name != "add" {
			t.Errorf("export = %q", fn.Exports[0].Name)
		}
		got := strings.Join(ast.Mnemonics(fn.Body), " ")
		if got != "local.get local.get i32.add" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("fragment", func(t *testing.T) {
		doc, err := Parse(`(func $f) (export "f" (func $f))`)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Module != nil || len(doc.Fields) != 2 {
			t.Fatalf("expected 2 bare fields, got module=%v fields=%d", doc.Module, len(doc.Fields))
		}
	})
}

func TestParseModule(t *testing.T) {
	mod, err := ParseModule("(module $m (memory 1))")
	if err != nil {
		t.Fatalf("ParseModule failed: %v", err)
	}
	if mod.ID == nil || mod.ID.Name != "$m" {
		t.Errorf("module id = %v", mod.ID)
	}

	if _, err := ParseModule("(memory 1)"); !errors.IsKind(err, errors.KindStructure) {
		t.Errorf("expected structure error, got %v", err)
	}
}

func TestParseFragment(t *testing.T) {
	fields, err := ParseFragment("(type (func)) (global i32 (i32.const 1))")
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if _, ok := fields[1].(*ast.Global); !ok {
		t.Errorf("expected *ast.Global, got %T", fields[1])
	}

	if _, err := ParseFragment("(module)"); err == nil {
		t.Error("expected error for module input")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
	}{
		{"unterminated_comment", "(module (; open", errors.KindLex},
		{"unterminated_string", `(module (export "f`, errors.KindLex},
		{"invalid_escape", `(module (data "\4g"))`, errors.KindLex},
		{"invalid_char", "(module \x01)", errors.KindLex},
		{"unknown_instr", "(module (func (bogus)))", errors.KindUnknownOpcode},
		{"bad_literal", "(module (func i32.const 1.5))", errors.KindMalformedLiteral},
		{"bad_name", `(module (export "\ff" (func 0)))`, errors.KindMalformedLiteral},
		{"missing_immediate", "(module (func br))", errors.KindArity},
		{"duplicate_offset", "(module (func i32.load offset=1 offset=1))", errors.KindDuplicateImmediate},
		{"label_mismatch", "(module (func block $a end $b))", errors.KindLabelMismatch},
		{"unclosed", "(module", errors.KindStructure},
		{"unknown_field", "(module (bogus))", errors.KindStructure},
		{"stray_paren", "(func) )", errors.KindStructure},
		{"leading_paren", ") (func)", errors.KindStructure},
		{"deep_annotation", "(@a " + strings.Repeat("(", 100000), errors.KindLex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if doc != nil {
				t.Error("expected nil document")
			}
			if kind, ok := errors.KindOf(err); !ok || kind != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", kind, tt.kind, err)
			}
		})
	}
}

func TestParseWithConfigRecover(t *testing.T) {
	src := "(module\n  (func nop)\n  (func \x01 i32.bogus)\n  (memory 1))"
	doc, err := ParseWithConfig(src, &Config{Recover: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if doc == nil {
		t.Fatal("expected partial document")
	}
	if len(doc.Errors) != 2 {
		t.Fatalf("expected lex and opcode errors, got %v", doc.Errors)
	}
	if !errors.IsKind(doc.Errors[0], errors.KindLex) {
		t.Errorf("first error = %v", doc.Errors[0])
	}
	if !errors.IsKind(err, errors.KindUnknownOpcode) {
		t.Errorf("combined error missing opcode error: %v", err)
	}

	fields := doc.Module.Fields
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if _, ok := fields[1].(*ast.BadField); !ok {
		t.Errorf("expected *ast.BadField, got %T", fields[1])
	}
	if _, ok := fields[2].(*ast.Memory); !ok {
		t.Errorf("expected *ast.Memory, got %T", fields[2])
	}

	desc := Describe(src, err)
	if !strings.Contains(desc, "3:9: ") || !strings.Contains(desc, "3:11: ") {
		t.Errorf("describe = %q", desc)
	}
}

func TestParseWithConfigOptions(t *testing.T) {
	src := ";; c\n(module (@a) (func))"

	doc, err := ParseWithConfig(src, &Config{SkipTrivia: true})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Comments) != 0 || len(doc.Annotations) != 0 {
		t.Error("expected trivia to be skipped")
	}

	doc, err = ParseWithConfig(src, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Comments) != 1 || len(doc.Annotations) != 1 {
		t.Errorf("comments=%d annotations=%d", len(doc.Comments), len(doc.Annotations))
	}

	deep := "(module (func " + strings.Repeat("(block ", 40) + strings.Repeat(")", 40) + "))"
	if _, err := ParseWithConfig(deep, &Config{MaxDepth: 16}); !errors.IsKind(err, errors.KindDepthExceeded) {
		t.Errorf("expected depth error, got %v", err)
	}
	if _, err := ParseWithConfig(deep, nil); err != nil {
		t.Errorf("default depth rejected input: %v", err)
	}
}

func TestConfigLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := ParseWithConfig("(module (func bogus) (func))", &Config{
		Logger:  zap.New(core),
		Recover: true,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if logs.FilterMessage("skipped malformed field").Len() != 1 {
		t.Errorf("expected one recovery warning, got %v", logs.All())
	}
	if logs.FilterMessage("parsed document").Len() != 1 {
		t.Error("expected parse summary")
	}
}

func TestLineCol(t *testing.T) {
	src := "(module\n  (func)\n\u00e9x)"
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{7, 1, 8},
		{8, 2, 1},
		{10, 2, 3},
		{19, 3, 2},
		{1000, 3, 4},
		{-5, 1, 1},
	}
	for _, tt := range tests {
		line, col := LineCol(src, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}
