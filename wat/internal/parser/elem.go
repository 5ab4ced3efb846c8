package parser

import (
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
)

// parseElem parses the rest of an elem field. The shape is chosen by the
// tokens after the optional id:
//
//	declare elemlist               declared
//	(table idx) offset list|idx*   active with explicit table
//	offset elemlist                active, modern list
//	offset idx*                    active, legacy function list
//	elemlist                       passive
//
// A leading numeric index is the legacy table index.
func (p *Parser) parseElem() (*ast.Elem, error) {
	el := &ast.Elem{}
	if p.peek().Kind == token.ID {
		el.ID = p.parseOptIdent()
	} else if p.atIndex() {
		idx, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		el.Table = &idx
	}

	var err error
	switch {
	case p.peek().Is("declare"):
		p.next()
		el.Shape = ast.ElemDeclare
		el.List, err = p.parseElemList()

	case p.atGroup("table"):
		p.openGroup("table")
		idx, ierr := p.parseIndex()
		if ierr != nil {
			return nil, ierr
		}
		el.Table = &idx
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
		el.Shape = ast.ElemTableOffset
		if el.Offset, err = p.parseOffset(); err != nil {
			return nil, err
		}
		if p.atElemList() {
			el.List, err = p.parseElemList()
		} else {
			el.List, err = p.parseFuncIndices(el.Offset)
		}

	case p.atElemList():
		el.Shape = ast.ElemPassive
		el.List, err = p.parseElemList()

	case p.peek().Kind == token.LParen:
		if el.Offset, err = p.parseOffset(); err != nil {
			return nil, err
		}
		if p.atElemList() {
			el.Shape = ast.ElemOffsetList
			el.List, err = p.parseElemList()
		} else {
			el.Shape = ast.ElemLegacy
			el.List, err = p.parseFuncIndices(el.Offset)
		}

	default:
		el.Shape = ast.ElemPassive
		el.List, err = p.parseElemList()
	}
	if err != nil {
		return nil, err
	}
	return el, nil
}

func (p *Parser) atElemList() bool {
	return p.peek().Is("func") || p.atRefType()
}

// parseElemList parses "func idx*" or "reftype elemexpr*".
func (p *Parser) parseElemList() (ast.ElemList, error) {
	t := p.peek()
	if t.Is("func") {
		p.next()
		list := ast.ElemList{Func: true, Type: ast.ValType{Kind: ast.FuncRef, Span: t.Span()}}
		var err error
		if list.Indices, err = p.parseIndices(); err != nil {
			return list, err
		}
		list.Span = p.spanFrom(t.Start)
		return list, nil
	}
	if !p.atRefType() {
		return ast.ElemList{}, p.unexpected(t, "expected element list")
	}
	rt, err := p.parseRefType()
	if err != nil {
		return ast.ElemList{}, err
	}
	list := ast.ElemList{Type: rt}
	if list.Exprs, err = p.parseElemExprs(); err != nil {
		return list, err
	}
	list.Span = p.spanFrom(t.Start)
	return list, nil
}

// parseFuncIndices parses a bare idx* list as a function element list. An
// empty list takes the span of the offset it follows.
func (p *Parser) parseFuncIndices(offset *ast.Expr) (ast.ElemList, error) {
	start := p.peek().Start
	indices, err := p.parseIndices()
	if err != nil {
		return ast.ElemList{}, err
	}
	list := ast.ElemList{Func: true, Indices: indices, Type: ast.ValType{Kind: ast.FuncRef}}
	list.Span = p.spanFrom(start)
	if len(indices) == 0 {
		list.Span = offset.Span
	}
	list.Type.Span = list.Span
	return list, nil
}

func (p *Parser) parseIndices() ([]ast.Index, error) {
	var out []ast.Index
	for p.atIndex() {
		idx, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

// parseElemExprs parses (item instr*) groups and single folded expressions.
func (p *Parser) parseElemExprs() ([]ast.Expr, error) {
	var out []ast.Expr
	for p.peek().Kind == token.LParen {
		start := p.peek().Start
		var instrs []ast.Instr
		var err error
		if p.atGroup("item") {
			p.openGroup("item")
			if instrs, err = p.parseInstrs(); err != nil {
				return nil, err
			}
			if err := p.closeGroup(); err != nil {
				return nil, err
			}
		} else if instrs, err = p.parseFolded(); err != nil {
			return nil, err
		}
		out = append(out, ast.Expr{Instrs: instrs, Span: p.spanFrom(start)})
	}
	return out, nil
}

// parseOffset parses (offset instr*) or a single folded instruction.
func (p *Parser) parseOffset() (*ast.Expr, error) {
	t := p.peek()
	if t.Kind != token.LParen {
		return nil, p.unexpected(t, "expected offset expression")
	}
	var instrs []ast.Instr
	var err error
	if p.atGroup("offset") {
		p.openGroup("offset")
		if instrs, err = p.parseInstrs(); err != nil {
			return nil, err
		}
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
	} else if instrs, err = p.parseFolded(); err != nil {
		return nil, err
	}
	return &ast.Expr{Instrs: instrs, Span: p.spanFrom(t.Start)}, nil
}

// parseData parses the rest of (data $id? (memory idx)? offset? string*).
// Without an offset the segment is passive. A leading numeric index is the
// legacy memory index.
func (p *Parser) parseData() (*ast.Data, error) {
	d := &ast.Data{}
	if p.peek().Kind == token.ID {
		d.ID = p.parseOptIdent()
	} else if p.atIndex() {
		idx, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		d.Memory = &idx
	}

	if p.atGroup("memory") {
		p.openGroup("memory")
		idx, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		d.Memory = &idx
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
	}

	var err error
	if p.peek().Kind == token.LParen || d.Memory != nil {
		if d.Offset, err = p.parseOffset(); err != nil {
			return nil, err
		}
	}
	if d.Strings, err = p.parseDataStrings(); err != nil {
		return nil, err
	}
	return d, nil
}
