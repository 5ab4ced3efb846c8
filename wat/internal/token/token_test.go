package token

import (
	"strings"
	"testing"

	"github.com/wippyai/wat-syntax/errors"
)

type kt struct {
	text string
	kind Kind
}

func kinds(t *testing.T, input string) []kt {
	t.Helper()
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", input, err)
	}
	var out []kt
	for _, tok := range tokens {
		out = append(out, kt{tok.Text, tok.Kind})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []kt
	}{
		{"empty", "", nil},
		{"parens", "()", []kt{{"(", LParen}, {")", RParen}}},
		{"module", "(module)", []kt{{"(", LParen}, {"module", Keyword}, {")", RParen}}},
		{"whitespace", "  (  module  )  ", []kt{{"(", LParen}, {"module", Keyword}, {")", RParen}}},
		{"identifier", "$foo", []kt{{"$foo", ID}}},
		{"identifier_punct", "$a.b/c!", []kt{{"$a.b/c!", ID}}},
		{"bare_dollar", "$", []kt{{"$", Reserved}}},
		{"mnemonic", "i32.const", []kt{{"i32.const", Keyword}}},
		{"memarg", "offset=4 align=0x10", []kt{{"offset=4", Keyword}, {"align=0x10", Keyword}}},
		{"number", "42", []kt{{"42", Number}}},
		{"negative_number", "-42", []kt{{"-42", Number}}},
		{"hex_number", "0xFF", []kt{{"0xFF", Number}}},
		{"float", "1.5e-3", []kt{{"1.5e-3", Number}}},
		{"hexfloat", "-0x1.8p3", []kt{{"-0x1.8p3", Number}}},
		{"inf_nan", "inf -nan nan:0x1", []kt{{"inf", Number}, {"-nan", Number}, {"nan:0x1", Number}}},
		{"reserved_atom", "1x", []kt{{"1x", Reserved}}},
		{"reserved_upper", "Foo", []kt{{"Foo", Reserved}}},
		{"reserved_punct", ",[]{}", []kt{{",", Reserved}, {"[", Reserved}, {"]", Reserved}, {"{", Reserved}, {"}", Reserved}}},
		{"string", `"hello"`, []kt{{`"hello"`, String}}},
		{"string_escapes", `"a\n\t\"\\\00\u{1F600}"`, []kt{{`"a\n\t\"\\\00\u{1F600}"`, String}}},
		{"string_adjacent", `(import"a""b")`, []kt{{"(", LParen}, {"import", Keyword}, {`"a"`, String}, {`"b"`, String}, {")", RParen}}},
		{"line_comment", "nop ;; hi\nend", []kt{{"nop", Keyword}, {";; hi", LineComment}, {"end", Keyword}}},
		{"block_comment", "(; x ;)nop", []kt{{"(; x ;)", BlockComment}, {"nop", Keyword}}},
		{"nested_block_comment", "(; a (; b ;) c ;) nop", []kt{{"(; a (; b ;) c ;)", BlockComment}, {"nop", Keyword}}},
		{"annotation", `(@name "x" (a b) $y)`, []kt{{`(@name "x" (a b) $y)`, Annotation}}},
		{"annotation_with_comment", "(@a (; ) ;) ;; )\n)x", []kt{{"(@a (; ) ;) ;; )\n)", Annotation}, {"x", Keyword}}},
		{"unicode_space", "nop \u00a0\u200b\u2060\ufeffdrop", []kt{{"nop", Keyword}, {"drop", Keyword}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(t, tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(got), got)
			}
			for i, want := range tt.expected {
				if got[i] != want {
					t.Errorf("token %d: expected %v, got %v", i, want, got[i])
				}
			}
		})
	}
}

func TestTokenSpans(t *testing.T) {
	tokens, err := Tokenize("(func $f)")
	if err != nil {
		t.Fatal(err)
	}
	want := []errors.Span{{Start: 0, End: 1}, {Start: 1, End: 5}, {Start: 6, End: 8}, {Start: 8, End: 9}}
	for i, s := range want {
		if tokens[i].Span() != s {
			t.Errorf("token %d span = %v, want %v", i, tokens[i].Span(), s)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		start int
	}{
		{"unterminated_block_comment", "nop (; (; ;)", 4},
		{"unterminated_string", `nop "abc`, 4},
		{"newline_in_string", "\"ab\ncd\"", 0},
		{"invalid_hex_escape", `"a\4z"`, 2},
		{"invalid_unicode_escape", `"\u{zz}"`, 1},
		{"escape_beyond_max_rune", `"\u{110000}"`, 1},
		{"escape_surrogate", `"ab\u{D800}"`, 3},
		{"escape_in_annotation", `(@a "\u{dfff}")`, 5},
		{"invalid_character", "nop \x01", 4},
		{"unterminated_annotation", "(@foo (bar)", 0},
		{"nameless_annotation", "(@ x)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var found bool
			l := NewLexer(tt.input)
			for _, err := range l.All() {
				if err == nil {
					continue
				}
				e, ok := err.(*errors.Error)
				if !ok {
					t.Fatalf("expected *errors.Error, got %T", err)
				}
				if e.Kind != errors.KindLex {
					t.Errorf("kind = %v, want %v", e.Kind, errors.KindLex)
				}
				if e.Span.Start != tt.start {
					t.Errorf("error start = %d, want %d", e.Span.Start, tt.start)
				}
				found = true
				break
			}
			if !found {
				t.Fatal("lexer yielded no error")
			}
		})
	}
}

func TestLexerContinuesAfterError(t *testing.T) {
	tokens, err := Tokenize("nop \x01 drop")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(tokens) != 2 || tokens[0].Text != "nop" || tokens[1].Text != "drop" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
}

func TestLexerReset(t *testing.T) {
	l := NewLexer("(module $m)")
	for range 3 {
		if _, err := l.Next(); err != nil {
			t.Fatal(err)
		}
	}
	l.Reset(1)
	tok, err := l.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Text != "module" || tok.Start != 1 {
		t.Fatalf("after Reset got %q at %d", tok.Text, tok.Start)
	}

	l.Reset(100)
	tok, _ = l.Next()
	if tok.Kind != EOF {
		t.Fatalf("expected EOF, got %v", tok.Kind)
	}
	tok, _ = l.Next()
	if tok.Kind != EOF {
		t.Fatal("EOF should repeat")
	}
}

func TestDeepAnnotation(t *testing.T) {
	const depth = 1 << 20
	src := "(@deep " + strings.Repeat("(", depth) + strings.Repeat(")", depth) + ") nop"
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Kind != Annotation || tokens[1].Text != "nop" {
		t.Fatalf("unexpected tokens: %d", len(tokens))
	}
	if tokens[0].End != len(src)-len(" nop") {
		t.Errorf("annotation end = %d", tokens[0].End)
	}

	_, err = Tokenize("(@deep " + strings.Repeat("(", depth))
	if err == nil {
		t.Fatal("expected unterminated annotation error")
	}
}

func TestAnnotationName(t *testing.T) {
	tokens, err := Tokenize(`(@custom "x")`)
	if err != nil {
		t.Fatal(err)
	}
	if got := tokens[0].AnnotationName(); got != "custom" {
		t.Errorf("AnnotationName = %q", got)
	}
	if !tokens[0].Kind.Trivia() {
		t.Error("annotation should be trivia")
	}
}
