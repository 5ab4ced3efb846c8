package parser

import (
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
)

var numTypes = map[string]ast.ValKind{
	"i32":  ast.I32,
	"i64":  ast.I64,
	"f32":  ast.F32,
	"f64":  ast.F64,
	"v128": ast.V128,
}

// atRefType reports whether the next tokens start a reference type.
func (p *Parser) atRefType() bool {
	return p.peek().Is("funcref") || p.peek().Is("externref") || p.atGroup("ref")
}

func (p *Parser) parseValType() (ast.ValType, error) {
	t := p.peek()
	if t.Kind == token.Keyword {
		if k, ok := numTypes[t.Text]; ok {
			p.next()
			return ast.ValType{Kind: k, Span: t.Span()}, nil
		}
	}
	if p.atRefType() {
		return p.parseRefType()
	}
	return ast.ValType{}, p.unexpected(t, "expected value type")
}

// parseRefType parses funcref, externref or (ref null? heaptype).
func (p *Parser) parseRefType() (ast.ValType, error) {
	t := p.peek()
	switch {
	case t.Is("funcref"):
		p.next()
		return ast.ValType{Kind: ast.FuncRef, Span: t.Span()}, nil
	case t.Is("externref"):
		p.next()
		return ast.ValType{Kind: ast.ExternRef, Span: t.Span()}, nil
	case !p.atGroup("ref"):
		return ast.ValType{}, p.unexpected(t, "expected reference type")
	}

	open, _ := p.openGroup("ref")
	vt := ast.ValType{Kind: ast.Ref}
	if p.peek().Is("null") {
		p.next()
		vt.Nullable = true
	}
	heap, err := p.parseHeapType()
	if err != nil {
		return vt, err
	}
	vt.Heap = heap
	if err := p.closeGroup(); err != nil {
		return vt, err
	}
	vt.Span = p.spanFrom(open.Start)
	return vt, nil
}

func (p *Parser) parseHeapType() (ast.HeapType, error) {
	t := p.peek()
	switch {
	case t.Is("func"):
		p.next()
		return ast.HeapType{Kind: ast.HeapFunc, Span: t.Span()}, nil
	case t.Is("extern"):
		p.next()
		return ast.HeapType{Kind: ast.HeapExtern, Span: t.Span()}, nil
	case p.atIndex():
		idx, err := p.parseIndex()
		if err != nil {
			return ast.HeapType{}, err
		}
		return ast.HeapType{Kind: ast.HeapIndex, Index: &idx, Span: idx.Span}, nil
	}
	return ast.HeapType{}, p.unexpected(t, "expected heap type")
}

// parseTypeUse parses (type idx)? (param ...)* (result ...)*. Named
// parameters are only allowed where named is set.
func (p *Parser) parseTypeUse(named bool) (ast.TypeUse, error) {
	var tu ast.TypeUse
	start := p.peek().Start

	if p.atGroup("type") {
		p.openGroup("type")
		idx, err := p.parseIndex()
		if err != nil {
			return tu, err
		}
		tu.Index = &idx
		if err := p.closeGroup(); err != nil {
			return tu, err
		}
	}

	params, err := p.parseParamGroups("param", named)
	if err != nil {
		return tu, err
	}
	tu.Params = params
	results, err := p.parseResults()
	if err != nil {
		return tu, err
	}
	tu.Results = results

	if !tu.IsEmpty() {
		tu.Span = p.spanFrom(start)
	}
	return tu, nil
}

// parseParamGroups parses consecutive (kw $id T) or (kw T*) groups, used for
// both params and locals.
func (p *Parser) parseParamGroups(kw string, named bool) ([]ast.Param, error) {
	var out []ast.Param
	for p.atGroup(kw) {
		open, _ := p.openGroup(kw)
		if p.peek().Kind == token.ID {
			if !named {
				return nil, p.unexpected(p.peek(), kw+" names are not allowed here")
			}
			id := p.parseOptIdent()
			vt, err := p.parseValType()
			if err != nil {
				return nil, err
			}
			if err := p.closeGroup(); err != nil {
				return nil, err
			}
			out = append(out, ast.Param{ID: id, Type: vt, Span: p.spanFrom(open.Start)})
			continue
		}
		for p.peek().Kind != token.RParen {
			vt, err := p.parseValType()
			if err != nil {
				return nil, err
			}
			out = append(out, ast.Param{Type: vt, Span: vt.Span})
		}
		p.next()
	}
	return out, nil
}

func (p *Parser) parseResults() ([]ast.ValType, error) {
	var out []ast.ValType
	for p.atGroup("result") {
		p.openGroup("result")
		for p.peek().Kind != token.RParen {
			vt, err := p.parseValType()
			if err != nil {
				return nil, err
			}
			out = append(out, vt)
		}
		p.next()
	}
	return out, nil
}

// parseLimits parses min max? followed by an optional shared or unshared.
func (p *Parser) parseLimits() (ast.Limits, error) {
	var l ast.Limits
	start := p.peek().Start
	lo, err := p.parseU64()
	if err != nil {
		return l, err
	}
	l.Min = lo
	if p.peek().Kind == token.Number {
		hi, err := p.parseU64()
		if err != nil {
			return l, err
		}
		l.Max = &hi
	}
	if t := p.peek(); t.Is("shared") || t.Is("unshared") {
		p.next()
		shared := t.Text == "shared"
		l.Shared = &shared
	}
	l.Span = p.spanFrom(start)
	return l, nil
}

func (p *Parser) parseGlobalType() (ast.GlobalType, error) {
	if !p.atGroup("mut") {
		vt, err := p.parseValType()
		return ast.GlobalType{Type: vt, Span: vt.Span}, err
	}
	open, _ := p.openGroup("mut")
	vt, err := p.parseValType()
	if err != nil {
		return ast.GlobalType{}, err
	}
	if err := p.closeGroup(); err != nil {
		return ast.GlobalType{}, err
	}
	return ast.GlobalType{Type: vt, Mutable: true, Span: p.spanFrom(open.Start)}, nil
}

func (p *Parser) parseTableType() (ast.TableType, error) {
	start := p.peek().Start
	limits, err := p.parseLimits()
	if err != nil {
		return ast.TableType{}, err
	}
	elem, err := p.parseRefType()
	if err != nil {
		return ast.TableType{}, err
	}
	return ast.TableType{Limits: limits, Elem: elem, Span: p.spanFrom(start)}, nil
}

func (p *Parser) parseMemoryType() (ast.MemoryType, error) {
	limits, err := p.parseLimits()
	if err != nil {
		return ast.MemoryType{}, err
	}
	return ast.MemoryType{Limits: limits, Span: limits.Span}, nil
}

// parseInlineExports parses zero or more (export "name") abbreviations.
func (p *Parser) parseInlineExports() ([]ast.InlineExport, error) {
	var out []ast.InlineExport
	for p.atGroup("export") {
		open, _ := p.openGroup("export")
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if err := p.closeGroup(); err != nil {
			return nil, err
		}
		out = append(out, ast.InlineExport{Name: name, Span: p.spanFrom(open.Start)})
	}
	return out, nil
}

func (p *Parser) parseInlineImport() (*ast.InlineImport, error) {
	if !p.atGroup("import") {
		return nil, nil
	}
	open, _ := p.openGroup("import")
	mod, err := p.parseName()
	if err != nil {
		return nil, err
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	return &ast.InlineImport{Module: mod, Name: name, Span: p.spanFrom(open.Start)}, nil
}
