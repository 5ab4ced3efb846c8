package parser

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
	"github.com/wippyai/wat-syntax/wat/literal"
)

// DefaultMaxDepth bounds nesting of folded expressions and blocks.
const DefaultMaxDepth = 1024

// Mode selects the accepted top-level shape.
type Mode uint8

const (
	ModeAuto     Mode = iota // (module ...) or a bare field sequence
	ModeModule               // (module ...) only
	ModeFragment             // field sequence only
)

type Options struct {
	Logger   *zap.Logger
	MaxDepth int
	Mode     Mode
	Recover  bool
	Trivia   bool // collect comments and annotations
}

type Parser struct {
	log    *zap.Logger
	tokens []token.Token
	trivia []token.Token
	errs   []error
	opts   Options
	srcLen int
	pos    int
	depth  int
}

// New creates a parser over tokens produced by token.Tokenize. srcLen is the
// length of the source, used to place end-of-input errors.
func New(tokens []token.Token, srcLen int, opts Options) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := &Parser{
		log:    opts.Logger,
		opts:   opts,
		srcLen: srcLen,
		tokens: make([]token.Token, 0, len(tokens)),
	}
	for _, t := range tokens {
		if t.Kind.Trivia() {
			p.trivia = append(p.trivia, t)
			continue
		}
		p.tokens = append(p.tokens, t)
	}
	return p
}

// Parse parses the whole token stream. In recovery mode the document is
// returned together with the combined errors; otherwise parsing stops at
// the first error and the document is nil.
func (p *Parser) Parse() (*ast.Document, error) {
	doc := &ast.Document{Span: ast.Span{Start: 0, End: p.srcLen}}

	isModule := p.peek().Kind == token.LParen && p.peekAt(1).Is("module")
	switch {
	case p.opts.Mode == ModeModule && !isModule:
		return nil, p.unexpected(p.peek(), "expected (module ...)")
	case p.opts.Mode == ModeFragment && isModule:
		return nil, p.unexpected(p.peekAt(1), "expected module field, got module")
	}

	if isModule {
		mod, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		doc.Module = mod
		if t := p.peek(); t.Kind != token.EOF {
			err := p.unexpected(t, "unexpected input after module")
			if !p.opts.Recover {
				return nil, err
			}
			p.errs = append(p.errs, err)
		}
	} else {
		for {
			fields, err := p.parseFields()
			if err != nil {
				return nil, err
			}
			doc.Fields = append(doc.Fields, fields...)
			t := p.peek()
			if t.Kind == token.EOF {
				break
			}
			err = p.unexpected(t, "unexpected input after fields")
			if !p.opts.Recover {
				return nil, err
			}
			// A stray ')' stops parseFields; drop it and keep going.
			p.errs = append(p.errs, err)
			p.next()
			doc.Fields = append(doc.Fields, &ast.BadField{Err: err, Span: t.Span()})
		}
	}

	if p.opts.Trivia {
		p.collectTrivia(doc)
	}
	doc.Errors = p.errs

	p.log.Debug("parsed document",
		zap.Bool("module", doc.Module != nil),
		zap.Int("tokens", len(p.tokens)),
		zap.Int("fields", len(doc.AllFields())),
		zap.Int("errors", len(p.errs)))

	return doc, multierr.Combine(p.errs...)
}

func (p *Parser) collectTrivia(doc *ast.Document) {
	for _, t := range p.trivia {
		switch t.Kind {
		case token.LineComment, token.BlockComment:
			doc.Comments = append(doc.Comments, ast.Comment{
				Text:  t.Text,
				Span:  t.Span(),
				Block: t.Kind == token.BlockComment,
			})
		case token.Annotation:
			doc.Annotations = append(doc.Annotations, ast.Annotation{
				Name: t.AnnotationName(),
				Text: t.Text,
				Span: t.Span(),
			})
		}
	}
}

func (p *Parser) eof() token.Token {
	return token.Token{Kind: token.EOF, Start: p.srcLen, End: p.srcLen}
}

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// lastEnd is the end offset of the most recently consumed token.
func (p *Parser) lastEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].End
}

func (p *Parser) spanFrom(start int) ast.Span {
	return ast.Span{Start: start, End: p.lastEnd()}
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return t, p.unexpected(t, "expected "+kind.String())
	}
	return p.next(), nil
}

func (p *Parser) expectKeyword(kw string) (token.Token, error) {
	t := p.peek()
	if !t.Is(kw) {
		return t, p.unexpected(t, "expected "+kw)
	}
	return p.next(), nil
}

// atGroup reports whether the next tokens are "(" kw.
func (p *Parser) atGroup(kw string) bool {
	return p.peek().Kind == token.LParen && p.peekAt(1).Is(kw)
}

// openGroup consumes "(" kw.
func (p *Parser) openGroup(kw string) (token.Token, error) {
	open, err := p.expect(token.LParen)
	if err != nil {
		return open, err
	}
	if _, err := p.expectKeyword(kw); err != nil {
		return open, err
	}
	return open, nil
}

func (p *Parser) closeGroup() error {
	_, err := p.expect(token.RParen)
	return err
}

func (p *Parser) unexpected(t token.Token, detail string) error {
	span := t.Span()
	found := t.Text
	if t.Kind == token.EOF {
		span = ast.Span{Start: max(p.srcLen-1, 0), End: p.srcLen}
		found = ""
		detail += ", got end of input"
	}
	return errors.Structure(span, found, detail)
}

// enter bounds recursion on nested constructs; pair with leave.
func (p *Parser) enter(t token.Token) error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return errors.DepthExceeded(t.Span(), p.opts.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// at attaches span to span-less errors from the literal and opcode packages.
func at(err error, span ast.Span) error {
	if e, ok := err.(*errors.Error); ok && !e.Span.Valid() {
		e.Span = span
	}
	return err
}

func (p *Parser) parseOptIdent() *ast.Ident {
	t := p.peek()
	if t.Kind != token.ID {
		return nil
	}
	p.next()
	return &ast.Ident{Name: t.Text, Span: t.Span()}
}

// atIndex reports whether the next token can start an index.
func (p *Parser) atIndex() bool {
	t := p.peek()
	switch t.Kind {
	case token.ID:
		return true
	case token.Number:
		return literal.IsInt(t.Text) && t.Text[0] != '+' && t.Text[0] != '-'
	}
	return false
}

func (p *Parser) parseIndex() (ast.Index, error) {
	t := p.peek()
	switch t.Kind {
	case token.ID:
		p.next()
		return ast.Index{ID: t.Text, Span: t.Span()}, nil
	case token.Number:
		n, err := p.parseU32()
		if err != nil {
			return ast.Index{}, err
		}
		return ast.Index{Num: n, Span: t.Span()}, nil
	}
	return ast.Index{}, p.unexpected(t, "expected index")
}

func (p *Parser) parseOptIndex() (*ast.Index, error) {
	if !p.atIndex() {
		return nil, nil
	}
	idx, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

func (p *Parser) parseU32() (uint32, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	i, err := literal.ParseInt(t.Text)
	if err != nil {
		return 0, at(err, t.Span())
	}
	v, err := i.Uint32()
	if err != nil {
		return 0, at(err, t.Span())
	}
	return v, nil
}

func (p *Parser) parseU64() (uint64, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	v, err := literal.ParseUnsigned(t.Text)
	if err != nil {
		return 0, at(err, t.Span())
	}
	return v, nil
}

// parseName decodes a UTF-8 string token such as an import or export name.
func (p *Parser) parseName() (string, error) {
	t, err := p.expect(token.String)
	if err != nil {
		return "", err
	}
	name, err := literal.DecodeName(t.Text)
	if err != nil {
		return "", at(err, t.Span())
	}
	return name, nil
}

func (p *Parser) parseDataString() (ast.DataString, error) {
	t, err := p.expect(token.String)
	if err != nil {
		return ast.DataString{}, err
	}
	b, err := literal.DecodeString(t.Text)
	if err != nil {
		return ast.DataString{}, at(err, t.Span())
	}
	return ast.DataString{Raw: t.Text, Bytes: b, Span: t.Span()}, nil
}

func (p *Parser) parseDataStrings() ([]ast.DataString, error) {
	var out []ast.DataString
	for p.peek().Kind == token.String {
		s, err := p.parseDataString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
