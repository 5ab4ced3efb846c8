package parser

import (
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
)

// folded is one parenthesized instruction before flattening: the operator
// node and its folded operands in source order.
type folded struct {
	op       ast.Instr
	operands []*folded
}

// flatten appends the linear form of n to out: operands left to right, then
// the operator. Recursion depth equals the nesting depth, which enter has
// already bounded while the tree was parsed.
func (n *folded) flatten(out []ast.Instr) []ast.Instr {
	for _, o := range n.operands {
		out = o.flatten(out)
	}
	return append(out, n.op)
}

// parseFolded parses one folded instruction and returns it flattened.
func (p *Parser) parseFolded() ([]ast.Instr, error) {
	n, err := p.parseFoldedNode()
	if err != nil {
		return nil, err
	}
	return n.flatten(nil), nil
}

func (p *Parser) parseFoldedNode() (*folded, error) {
	open, err := p.expect(token.LParen)
	if err != nil {
		return nil, err
	}
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()

	kw := p.peek()
	if kw.Kind != token.Keyword {
		return nil, p.unexpected(kw, "expected instruction")
	}
	p.next()

	var n *folded
	switch kw.Text {
	case "block", "loop":
		n, err = p.parseFoldedBlock(kw)
	case "if":
		n, err = p.parseFoldedIf(kw)
	case "call_indirect", "return_call_indirect":
		n, err = p.parseFoldedCallIndirect(kw)
	default:
		n, err = p.parseFoldedPlain(kw)
	}
	if err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	setInstrSpan(n.op, p.spanFrom(open.Start))
	return n, nil
}

func setInstrSpan(in ast.Instr, span ast.Span) {
	switch n := in.(type) {
	case *ast.Plain:
		n.Span = span
	case *ast.Block:
		n.Span = span
	case *ast.CallIndirect:
		n.Span = span
	}
}

// parseOperands parses folded operands up to the closing ')'.
func (p *Parser) parseOperands() ([]*folded, error) {
	var out []*folded
	for p.peek().Kind == token.LParen {
		o, err := p.parseFoldedNode()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (p *Parser) parseFoldedPlain(kw token.Token) (*folded, error) {
	op, err := p.parseOperator(kw)
	if err != nil {
		return nil, err
	}
	operands, err := p.parseOperands()
	if err != nil {
		return nil, err
	}
	return &folded{op: op, operands: operands}, nil
}

func (p *Parser) parseFoldedCallIndirect(kw token.Token) (*folded, error) {
	call, err := p.parseCallIndirectImms(kw)
	if err != nil {
		return nil, err
	}
	operands, err := p.parseOperands()
	if err != nil {
		return nil, err
	}
	return &folded{op: call, operands: operands}, nil
}

// parseFoldedBlock parses (block label? blocktype instr*) and the loop form.
func (p *Parser) parseFoldedBlock(kw token.Token) (*folded, error) {
	b := &ast.Block{Kind: blockKinds[kw.Text], Label: p.parseOptIdent(), Folded: true}
	var err error
	if b.Type, err = p.parseTypeUse(false); err != nil {
		return nil, err
	}
	if b.Body, err = p.parseInstrs(); err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != token.RParen {
		return nil, p.unexpected(t, "expected ) to close "+kw.Text)
	}
	return &folded{op: b}, nil
}

// parseFoldedIf parses (if label? blocktype cond* (then instr*) (else instr*)?).
// The conditions become operands so they flatten ahead of the Block.
func (p *Parser) parseFoldedIf(kw token.Token) (*folded, error) {
	b := &ast.Block{Kind: ast.BlockIf, Label: p.parseOptIdent(), Folded: true}
	var err error
	if b.Type, err = p.parseTypeUse(false); err != nil {
		return nil, err
	}

	n := &folded{op: b}
	for p.peek().Kind == token.LParen && !p.atGroup("then") && !p.atGroup("else") {
		cond, err := p.parseFoldedNode()
		if err != nil {
			return nil, err
		}
		n.operands = append(n.operands, cond)
	}

	if !p.atGroup("then") {
		return nil, p.unexpected(p.peek(), "expected (then ...) in folded if")
	}
	p.openGroup("then")
	if b.Body, err = p.parseInstrs(); err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}

	if p.atGroup("else") {
		p.openGroup("else")
		b.HasElse = true
		if b.Else, err = p.parseInstrs(); err != nil {
			return nil, err
		}
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
	}
	return n, nil
}
