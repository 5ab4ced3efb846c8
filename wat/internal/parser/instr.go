package parser

import (
	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
	"github.com/wippyai/wat-syntax/wat/opcode"
)

var blockKinds = map[string]ast.BlockKind{
	"block": ast.BlockBlock,
	"loop":  ast.BlockLoop,
	"if":    ast.BlockIf,
}

// parseInstrs parses a mixed sequence of plain and folded instructions. It
// stops before ')', end, else, or end of input; the caller decides which of
// those is legal.
func (p *Parser) parseInstrs() ([]ast.Instr, error) {
	var out []ast.Instr
	for {
		t := p.peek()
		switch {
		case t.Kind == token.RParen, t.Kind == token.EOF, t.Is("end"), t.Is("else"):
			return out, nil
		case t.Kind == token.LParen:
			instrs, err := p.parseFolded()
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
		case t.Kind == token.Keyword:
			in, err := p.parsePlainInstr()
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		default:
			return nil, p.unexpected(t, "expected instruction")
		}
	}
}

// parsePlainInstr parses one unfolded instruction, including a whole
// block ... end construct.
func (p *Parser) parsePlainInstr() (ast.Instr, error) {
	switch p.peek().Text {
	case "block", "loop", "if":
		return p.parsePlainBlock()
	case "call_indirect", "return_call_indirect":
		return p.parsePlainCallIndirect()
	}
	op := p.next()
	return p.parseOperator(op)
}

// parseOperator resolves op and parses its immediates.
func (p *Parser) parseOperator(op token.Token) (*ast.Plain, error) {
	desc, err := opcode.Resolve(op.Text)
	if err != nil {
		return nil, at(err, op.Span())
	}
	imms, err := p.parseImmediates(op, desc)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind == token.Number || t.Kind == token.ID || t.Kind == token.String {
		return nil, errors.New(errors.PhaseParse, errors.KindArity).
			At(t.Start, t.End).
			Token(t.Text).
			Detail("too many immediates for %s", op.Text).
			Build()
	}
	return &ast.Plain{Op: op.Text, Desc: desc, Imms: imms, Span: p.spanFrom(op.Start)}, nil
}

func (p *Parser) parsePlainBlock() (*ast.Block, error) {
	kw := p.next()
	if err := p.enter(kw); err != nil {
		return nil, err
	}
	defer p.leave()

	b := &ast.Block{Kind: blockKinds[kw.Text], Label: p.parseOptIdent()}
	var err error
	if b.Type, err = p.parseTypeUse(false); err != nil {
		return nil, err
	}
	if b.Body, err = p.parseInstrs(); err != nil {
		return nil, err
	}

	if t := p.peek(); t.Is("else") {
		if b.Kind != ast.BlockIf {
			return nil, p.unexpected(t, "else without matching if")
		}
		p.next()
		b.HasElse = true
		b.ElseLabel = p.parseOptIdent()
		if err := checkLabel(b.Label, b.ElseLabel); err != nil {
			return nil, err
		}
		if b.Else, err = p.parseInstrs(); err != nil {
			return nil, err
		}
	}

	end := p.peek()
	if !end.Is("end") {
		return nil, p.unclosed(kw, end)
	}
	p.next()
	b.EndLabel = p.parseOptIdent()
	if err := checkLabel(b.Label, b.EndLabel); err != nil {
		return nil, err
	}
	b.Span = p.spanFrom(kw.Start)
	return b, nil
}

// unclosed reports a block that reached found instead of its end.
func (p *Parser) unclosed(open, found token.Token) error {
	span := found.Span()
	if found.Kind == token.EOF {
		span = ast.Span{Start: max(p.srcLen-1, 0), End: p.srcLen}
	}
	return errors.New(errors.PhaseParse, errors.KindStructure).
		At(span.Start, span.End).
		Related(open.Start, open.End).
		Token(found.Text).
		Detail("expected end of %s", open.Text).
		Build()
}

// checkLabel validates the identifier repeated after else or end.
func checkLabel(open, closing *ast.Ident) error {
	switch {
	case closing == nil:
		return nil
	case open == nil:
		return errors.LabelMismatch(closing.Span, closing.Name, ast.Span{}, "")
	case open.Name != closing.Name:
		return errors.LabelMismatch(closing.Span, closing.Name, open.Span, open.Name)
	}
	return nil
}

// parsePlainCallIndirect parses call_indirect in unfolded form. A following
// plain instruction or block is attached as its target.
func (p *Parser) parsePlainCallIndirect() (*ast.CallIndirect, error) {
	kw := p.next()
	if err := p.enter(kw); err != nil {
		return nil, err
	}
	defer p.leave()

	call, err := p.parseCallIndirectImms(kw)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind == token.Keyword && !t.Is("end") && !t.Is("else") {
		if call.Target, err = p.parsePlainInstr(); err != nil {
			return nil, err
		}
	}
	return call, nil
}

// parseCallIndirectImms parses the optional table index and type use after
// kw. The returned node spans only kw and its immediates.
func (p *Parser) parseCallIndirectImms(kw token.Token) (*ast.CallIndirect, error) {
	call := &ast.CallIndirect{Op: kw.Text}
	var err error
	if call.Table, err = p.parseOptIndex(); err != nil {
		return nil, err
	}
	if call.Type, err = p.parseTypeUse(false); err != nil {
		return nil, err
	}
	call.Span = p.spanFrom(kw.Start)
	return call, nil
}
