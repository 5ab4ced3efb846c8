package parser

import (
	"go.uber.org/zap"

	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
)

func (p *Parser) parseModule() (*ast.Module, error) {
	open, err := p.openGroup("module")
	if err != nil {
		return nil, err
	}
	mod := &ast.Module{ID: p.parseOptIdent()}
	fields, err := p.parseFields()
	if err != nil {
		return nil, err
	}
	mod.Fields = fields
	if err := p.closeGroup(); err != nil {
		if !p.opts.Recover {
			return nil, err
		}
		p.errs = append(p.errs, err)
	}
	mod.Span = p.spanFrom(open.Start)
	return mod, nil
}

// parseFields parses fields up to ')' or end of input. In recovery mode a
// field that fails is replaced by a BadField covering its group and parsing
// resumes after it.
func (p *Parser) parseFields() ([]ast.Field, error) {
	var fields []ast.Field
	for {
		t := p.peek()
		if t.Kind == token.RParen || t.Kind == token.EOF {
			return fields, nil
		}
		start := p.pos
		f, err := p.parseField()
		if err == nil {
			fields = append(fields, f)
			continue
		}
		if !p.opts.Recover {
			return nil, err
		}
		p.errs = append(p.errs, err)
		p.pos = start
		p.depth = 0
		p.skipGroup()
		bad := &ast.BadField{Err: err, Span: p.spanFrom(t.Start)}
		p.log.Warn("skipped malformed field", zap.Stringer("span", bad.Span), zap.Error(err))
		fields = append(fields, bad)
	}
}

// skipGroup consumes one balanced parenthesized group, or a single token
// when not at "(". An unclosed group runs to end of input.
func (p *Parser) skipGroup() {
	if p.peek().Kind != token.LParen {
		p.next()
		return
	}
	depth := 0
	for {
		switch p.next().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return
			}
		case token.EOF:
			return
		}
	}
}

func (p *Parser) parseField() (ast.Field, error) {
	open, err := p.expect(token.LParen)
	if err != nil {
		return nil, p.unexpected(open, "expected module field")
	}
	kw := p.next()
	if kw.Kind != token.Keyword {
		return nil, p.unexpected(kw, "expected module field keyword")
	}
	p.log.Debug("parse field", zap.String("kind", kw.Text), zap.Int("offset", open.Start))

	var f ast.Field
	switch kw.Text {
	case "type":
		f, err = p.parseTypeDef()
	case "import":
		f, err = p.parseImport()
	case "export":
		f, err = p.parseExport()
	case "func":
		f, err = p.parseFunc()
	case "table":
		f, err = p.parseTable()
	case "memory":
		f, err = p.parseMemory()
	case "global":
		f, err = p.parseGlobal()
	case "elem":
		f, err = p.parseElem()
	case "data":
		f, err = p.parseData()
	case "start":
		f, err = p.parseStart()
	default:
		return nil, p.unexpected(kw, "unknown module field")
	}
	if err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	setFieldSpan(f, p.spanFrom(open.Start))
	return f, nil
}

func setFieldSpan(f ast.Field, span ast.Span) {
	switch n := f.(type) {
	case *ast.TypeDef:
		n.Span = span
	case *ast.Import:
		n.Span = span
	case *ast.Export:
		n.Span = span
	case *ast.Func:
		n.Span = span
	case *ast.Table:
		n.Span = span
	case *ast.Memory:
		n.Span = span
	case *ast.Global:
		n.Span = span
	case *ast.Elem:
		n.Span = span
	case *ast.Data:
		n.Span = span
	case *ast.Start:
		n.Span = span
	}
}

// parseTypeDef parses the rest of (type $id? (func (param ...)* (result ...)*)).
func (p *Parser) parseTypeDef() (*ast.TypeDef, error) {
	td := &ast.TypeDef{ID: p.parseOptIdent()}
	if _, err := p.openGroup("func"); err != nil {
		return nil, err
	}
	params, err := p.parseParamGroups("param", true)
	if err != nil {
		return nil, err
	}
	td.Params = params
	results, err := p.parseResults()
	if err != nil {
		return nil, err
	}
	td.Results = results
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *Parser) parseImport() (*ast.Import, error) {
	imp := &ast.Import{}
	var err error
	if imp.Module, err = p.parseName(); err != nil {
		return nil, err
	}
	if imp.Name, err = p.parseName(); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	kw := p.next()
	imp.ID = p.parseOptIdent()
	switch {
	case kw.Is("func"):
		imp.Kind = ast.ExternFunc
		imp.Func, err = p.parseTypeUse(true)
	case kw.Is("table"):
		imp.Kind = ast.ExternTable
		imp.Table, err = p.parseTableType()
	case kw.Is("memory"):
		imp.Kind = ast.ExternMemory
		imp.Memory, err = p.parseMemoryType()
	case kw.Is("global"):
		imp.Kind = ast.ExternGlobal
		imp.Global, err = p.parseGlobalType()
	default:
		return nil, p.unexpected(kw, "expected import kind")
	}
	if err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	return imp, nil
}

var externKinds = map[string]ast.ExternKind{
	"func":   ast.ExternFunc,
	"table":  ast.ExternTable,
	"memory": ast.ExternMemory,
	"global": ast.ExternGlobal,
}

func (p *Parser) parseExport() (*ast.Export, error) {
	exp := &ast.Export{}
	var err error
	if exp.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	kw := p.next()
	kind, ok := externKinds[kw.Text]
	if !ok || kw.Kind != token.Keyword {
		return nil, p.unexpected(kw, "expected export kind")
	}
	exp.Kind = kind
	if exp.Index, err = p.parseIndex(); err != nil {
		return nil, err
	}
	if err := p.closeGroup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func (p *Parser) parseStart() (*ast.Start, error) {
	idx, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	return &ast.Start{Func: idx}, nil
}
