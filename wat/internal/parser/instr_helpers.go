package parser

import (
	"strings"

	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/token"
	"github.com/wippyai/wat-syntax/wat/literal"
	"github.com/wippyai/wat-syntax/wat/opcode"
)

// parseImmediates parses the immediates desc expects after op. Optional
// immediates that are not written are left out of the result.
func (p *Parser) parseImmediates(op token.Token, desc opcode.Descriptor) ([]ast.Immediate, error) {
	var imms []ast.Immediate
	lane := desc.Family == opcode.FamilySIMDLoadLane || desc.Family == opcode.FamilySIMDStoreLane

	for _, kind := range desc.Imms {
		var (
			imm ast.Immediate
			err error
		)
		switch kind {
		case opcode.ImmIndex:
			if !p.atAtom(token.ID, token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			imm, err = p.parseIndex()

		case opcode.ImmOptIndex:
			if !p.atIndex() {
				continue
			}
			imm, err = p.parseIndex()

		case opcode.ImmIndexList:
			if !p.atAtom(token.ID, token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			for p.atAtom(token.ID, token.Number) {
				idx, err := p.parseIndex()
				if err != nil {
					return nil, err
				}
				imms = append(imms, idx)
			}
			continue

		case opcode.ImmMemArg:
			m, written, err := p.parseMemArg(lane)
			if err != nil {
				return nil, err
			}
			if !written {
				continue
			}
			imm = m

		case opcode.ImmLane:
			if !p.atAtom(token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			imm, err = p.parseLane()

		case opcode.ImmLanes16:
			imm, err = p.parseShuffle(op)

		case opcode.ImmI32, opcode.ImmI64:
			if !p.atAtom(token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			width := 32
			if kind == opcode.ImmI64 {
				width = 64
			}
			imm, err = p.parseIntLiteral(width)

		case opcode.ImmF32, opcode.ImmF64:
			if !p.atAtom(token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			width := 32
			if kind == opcode.ImmF64 {
				width = 64
			}
			imm, err = p.parseFloatLiteral(width)

		case opcode.ImmV128:
			imm, err = p.parseVecLiteral(op)

		case opcode.ImmHeapType:
			t := p.peek()
			if !t.Is("func") && !t.Is("extern") && !p.atIndex() {
				return nil, p.missing(op, desc, len(imms))
			}
			imm, err = p.parseHeapType()

		case opcode.ImmUnsigned:
			if !p.atAtom(token.Number) {
				return nil, p.missing(op, desc, len(imms))
			}
			t := p.peek()
			var v uint32
			v, err = p.parseU32()
			imm = ast.Unsigned{Value: v, Span: t.Span()}

		case opcode.ImmSelectTypes:
			if !p.atGroup("result") {
				continue
			}
			start := p.peek().Start
			var types []ast.ValType
			if types, err = p.parseResults(); err == nil {
				imm = ast.ResultTypes{Types: types, Span: p.spanFrom(start)}
			}

		case opcode.ImmTypeUse:
			var tu ast.TypeUse
			if tu, err = p.parseTypeUse(false); err == nil && tu.IsEmpty() {
				continue
			}
			imm = tu

		case opcode.ImmLet:
			var l ast.Let
			if l, err = p.parseLet(); err == nil && !l.Span.Valid() {
				continue
			}
			imm = l

		default:
			return nil, p.unexpected(op, "instruction cannot be used here")
		}
		if err != nil {
			return nil, err
		}
		imms = append(imms, imm)
	}
	return imms, nil
}

func (p *Parser) atAtom(kinds ...token.Kind) bool {
	k := p.peek().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// missing reports a required immediate that was not written.
func (p *Parser) missing(op token.Token, desc opcode.Descriptor, got int) error {
	want := 0
	for _, k := range desc.Imms {
		switch k {
		case opcode.ImmOptIndex, opcode.ImmMemArg, opcode.ImmSelectTypes, opcode.ImmTypeUse:
		default:
			want++
		}
	}
	return errors.Arity(op.Span(), op.Text, want, got)
}

func isMemArgKey(t token.Token) bool {
	return t.Kind == token.Keyword &&
		(strings.HasPrefix(t.Text, "offset=") || strings.HasPrefix(t.Text, "align="))
}

// numbersAhead counts the numbers in the run of memarg tokens ahead.
func (p *Parser) numbersAhead() int {
	n := 0
	for i := 0; ; i++ {
		t := p.peekAt(i)
		switch {
		case t.Kind == token.Number:
			n++
		case isMemArgKey(t), t.Kind == token.ID:
		default:
			return n
		}
	}
}

// parseMemArg parses an optional memory index, offset= and align= in any
// order, each at most once. When lane is set a trailing number is left for
// the lane index, so a bare number is only taken as the memory index if
// another one follows.
func (p *Parser) parseMemArg(lane bool) (ast.MemArg, bool, error) {
	var (
		m                           ast.MemArg
		memSpan, offSpan, alignSpan ast.Span
		start, end                  int
		written                     bool
	)
	for {
		t := p.peek()
		switch {
		case t.Kind == token.Keyword && strings.HasPrefix(t.Text, "offset="):
			if m.Offset != nil {
				return m, false, errors.DuplicateImmediate(t.Span(), offSpan, "offset")
			}
			v, err := literal.ParseUnsigned(t.Text[len("offset="):])
			if err != nil {
				return m, false, at(err, t.Span())
			}
			m.Offset, offSpan = &v, t.Span()
			p.next()

		case t.Kind == token.Keyword && strings.HasPrefix(t.Text, "align="):
			if m.Align != nil {
				return m, false, errors.DuplicateImmediate(t.Span(), alignSpan, "align")
			}
			v, err := literal.ParseUnsigned(t.Text[len("align="):])
			if err != nil {
				return m, false, at(err, t.Span())
			}
			if v == 0 || v&(v-1) != 0 {
				return m, false, errors.MalformedLiteral(t.Span(), t.Text, "alignment must be a power of two")
			}
			m.Align, alignSpan = &v, t.Span()
			p.next()

		case p.atIndex() && (t.Kind == token.ID || !lane || p.numbersAhead() >= 2):
			if m.Mem != nil {
				return m, false, errors.DuplicateImmediate(t.Span(), memSpan, "memory index")
			}
			idx, err := p.parseIndex()
			if err != nil {
				return m, false, err
			}
			m.Mem, memSpan = &idx, idx.Span

		default:
			if written {
				m.Span = ast.Span{Start: start, End: end}
			}
			return m, written, nil
		}
		if !written {
			start, written = t.Start, true
		}
		end = t.End
	}
}

func (p *Parser) parseLane() (ast.LaneIndex, error) {
	t := p.peek()
	v, err := p.parseU32()
	if err != nil {
		return ast.LaneIndex{}, err
	}
	if v > 0xff {
		return ast.LaneIndex{}, errors.MalformedLiteral(t.Span(), t.Text, "lane index out of range")
	}
	return ast.LaneIndex{Value: uint8(v), Span: t.Span()}, nil
}

// numberRun returns how many consecutive number tokens are ahead.
func (p *Parser) numberRun() int {
	n := 0
	for p.peekAt(n).Kind == token.Number {
		n++
	}
	return n
}

// parseShuffle parses exactly 16 lane indices.
func (p *Parser) parseShuffle(op token.Token) (ast.VecLiteral, error) {
	if n := p.numberRun(); n != 16 {
		return ast.VecLiteral{}, errors.Arity(p.runSpan(op, n), op.Text, 16, n)
	}
	v := ast.VecLiteral{Shape: ast.ShapeI8x16, Lanes: make([]ast.Literal, 0, 16)}
	start := p.peek().Start
	for range 16 {
		t := p.peek()
		lane, err := p.parseLane()
		if err != nil {
			return v, err
		}
		v.Lanes = append(v.Lanes, ast.Literal{
			Raw:  t.Text,
			Int:  literal.Int{Mag: uint64(lane.Value)},
			Kind: ast.LitInt,
			Span: t.Span(),
		})
	}
	v.Span = p.spanFrom(start)
	return v, nil
}

// runSpan covers op and the n numbers that follow it.
func (p *Parser) runSpan(op token.Token, n int) ast.Span {
	end := op.End
	if n > 0 {
		end = p.peekAt(n - 1).End
	}
	return ast.Span{Start: op.Start, End: end}
}

// parseVecLiteral parses a shape keyword and one literal per lane.
func (p *Parser) parseVecLiteral(op token.Token) (ast.VecLiteral, error) {
	t := p.peek()
	shape, ok := ast.ParseVecShape(t.Text)
	if t.Kind != token.Keyword || !ok {
		return ast.VecLiteral{}, p.unexpected(t, "expected vector shape")
	}
	p.next()
	if n := p.numberRun(); n != shape.Lanes() {
		return ast.VecLiteral{}, errors.Arity(p.runSpan(op, n), op.Text+" "+shape.String(), shape.Lanes(), n)
	}

	v := ast.VecLiteral{Shape: shape, Lanes: make([]ast.Literal, 0, shape.Lanes())}
	width := 128 / shape.Lanes()
	for range shape.Lanes() {
		var (
			l   ast.Literal
			err error
		)
		if shape.IsFloat() {
			l, err = p.parseFloatLiteral(width)
		} else {
			l, err = p.parseIntLiteral(width)
		}
		if err != nil {
			return v, err
		}
		v.Lanes = append(v.Lanes, l)
	}
	v.Span = p.spanFrom(t.Start)
	return v, nil
}

// parseIntLiteral parses an integer that must fit width bits, signed or
// unsigned.
func (p *Parser) parseIntLiteral(width int) (ast.Literal, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return ast.Literal{}, err
	}
	i, err := literal.ParseInt(t.Text)
	if err == nil {
		switch width {
		case 32:
			_, err = i.Bits32()
		case 64:
			_, err = i.Bits64()
		default:
			_, err = i.BitsN(uint(width))
		}
	}
	if err != nil {
		return ast.Literal{}, at(err, t.Span())
	}
	return ast.Literal{Raw: t.Text, Int: i, Kind: ast.LitInt, Span: t.Span()}, nil
}

func (p *Parser) parseFloatLiteral(width int) (ast.Literal, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return ast.Literal{}, err
	}
	f, err := literal.ParseFloat(t.Text)
	if err == nil {
		if width == 32 {
			_, err = f.Bits32()
		} else {
			_, err = f.Bits64()
		}
	}
	if err != nil {
		return ast.Literal{}, at(err, t.Span())
	}
	return ast.Literal{Raw: t.Text, Float: f, Kind: ast.LitFloat, Span: t.Span()}, nil
}

// parseLet parses let's label, block type and local declarations. The span
// is empty when none were written.
func (p *Parser) parseLet() (ast.Let, error) {
	start := p.peek().Start
	l := ast.Let{Label: p.parseOptIdent()}
	var err error
	if l.Type, err = p.parseTypeUse(false); err != nil {
		return l, err
	}
	if l.Locals, err = p.parseParamGroups("local", true); err != nil {
		return l, err
	}
	if p.lastEnd() > start {
		l.Span = p.spanFrom(start)
	}
	return l, nil
}
