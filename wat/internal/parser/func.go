package parser

import (
	"github.com/wippyai/wat-syntax/wat/ast"
)

// parseFunc parses the rest of (func $id? export* import? typeuse local* instr*).
func (p *Parser) parseFunc() (*ast.Func, error) {
	fn := &ast.Func{ID: p.parseOptIdent()}
	var err error
	if fn.Exports, err = p.parseInlineExports(); err != nil {
		return nil, err
	}
	if fn.Import, err = p.parseInlineImport(); err != nil {
		return nil, err
	}
	if fn.Type, err = p.parseTypeUse(true); err != nil {
		return nil, err
	}
	if fn.Import != nil {
		return fn, nil
	}
	if fn.Locals, err = p.parseParamGroups("local", true); err != nil {
		return nil, err
	}
	if fn.Body, err = p.parseInstrs(); err != nil {
		return nil, err
	}
	return fn, nil
}

// parseTable parses the rest of a table definition, either
// "limits reftype" or the inline "reftype (elem ...)" form.
func (p *Parser) parseTable() (*ast.Table, error) {
	tab := &ast.Table{ID: p.parseOptIdent()}
	var err error
	if tab.Exports, err = p.parseInlineExports(); err != nil {
		return nil, err
	}
	if tab.Import, err = p.parseInlineImport(); err != nil {
		return nil, err
	}
	if tab.Import != nil || !p.atRefType() {
		tab.Type, err = p.parseTableType()
		if err != nil {
			return nil, err
		}
		return tab, nil
	}

	elemType, err := p.parseRefType()
	if err != nil {
		return nil, err
	}
	tab.Type.Elem = elemType
	open, err := p.openGroup("elem")
	if err != nil {
		return nil, err
	}
	list := &ast.ElemList{Type: elemType}
	if p.atIndex() {
		list.Func = true
		if list.Indices, err = p.parseIndices(); err != nil {
			return nil, err
		}
	} else if list.Exprs, err = p.parseElemExprs(); err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	list.Span = p.spanFrom(open.Start)
	tab.Elem = list
	return tab, nil
}

func (p *Parser) parseMemory() (*ast.Memory, error) {
	mem := &ast.Memory{ID: p.parseOptIdent()}
	var err error
	if mem.Exports, err = p.parseInlineExports(); err != nil {
		return nil, err
	}
	if mem.Import, err = p.parseInlineImport(); err != nil {
		return nil, err
	}
	if mem.Import == nil && p.atGroup("data") {
		p.openGroup("data")
		if mem.Data, err = p.parseDataStrings(); err != nil {
			return nil, err
		}
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
		mem.HasData = true
		return mem, nil
	}
	if mem.Type, err = p.parseMemoryType(); err != nil {
		return nil, err
	}
	return mem, nil
}

func (p *Parser) parseGlobal() (*ast.Global, error) {
	g := &ast.Global{ID: p.parseOptIdent()}
	var err error
	if g.Exports, err = p.parseInlineExports(); err != nil {
		return nil, err
	}
	if g.Import, err = p.parseInlineImport(); err != nil {
		return nil, err
	}
	if g.Type, err = p.parseGlobalType(); err != nil {
		return nil, err
	}
	if g.Import != nil {
		return g, nil
	}
	if g.Init, err = p.parseInstrs(); err != nil {
		return nil, err
	}
	return g, nil
}
