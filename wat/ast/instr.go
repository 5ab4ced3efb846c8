package ast

import (
	"encoding/binary"

	"github.com/wippyai/wat-syntax/errors"
	"github.com/wippyai/wat-syntax/wat/literal"
	"github.com/wippyai/wat-syntax/wat/opcode"
)

// Instr is one instruction of a flattened instruction sequence.
type Instr interface {
	Node
	instr()
}

// Plain is any instruction without a nested body.
type Plain struct {
	Op   string
	Imms []Immediate
	Desc opcode.Descriptor
	Span Span
}

type BlockKind uint8

const (
	BlockBlock BlockKind = iota
	BlockLoop
	BlockIf
)

func (k BlockKind) String() string {
	switch k {
	case BlockLoop:
		return "loop"
	case BlockIf:
		return "if"
	}
	return "block"
}

// Block is block, loop, or if, written plain or folded. For a folded if the
// condition instructions precede the Block in the enclosing sequence.
type Block struct {
	Label     *Ident
	ElseLabel *Ident
	EndLabel  *Ident
	Body      []Instr
	Else      []Instr
	Type      TypeUse
	Span      Span
	Kind      BlockKind
	HasElse   bool
	Folded    bool
}

// CallIndirect is call_indirect or return_call_indirect. In plain syntax the
// instruction written right after it is attached as Target.
type CallIndirect struct {
	Table  *Index
	Target Instr
	Op     string
	Type   TypeUse
	Span   Span
}

func (p *Plain) Pos() Span        { return p.Span }
func (b *Block) Pos() Span        { return b.Span }
func (c *CallIndirect) Pos() Span { return c.Span }

func (*Plain) instr()        {}
func (*Block) instr()        {}
func (*CallIndirect) instr() {}

// Immediate is an operand written after a mnemonic.
type Immediate interface {
	Node
	immediate()
}

// MemArg is the optional memory index, offset= and align= of a memory access.
type MemArg struct {
	Mem    *Index
	Offset *uint64
	Align  *uint64
	Span   Span
}

type LaneIndex struct {
	Span  Span
	Value uint8
}

type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
)

// Literal is a numeric immediate. Int or Float is set according to Kind.
type Literal struct {
	Raw   string
	Float literal.Float
	Int   literal.Int
	Span  Span
	Kind  LiteralKind
}

type VecShape uint8

const (
	ShapeI8x16 VecShape = iota
	ShapeI16x8
	ShapeI32x4
	ShapeI64x2
	ShapeF32x4
	ShapeF64x2
)

var shapeNames = [...]string{"i8x16", "i16x8", "i32x4", "i64x2", "f32x4", "f64x2"}
var shapeLanes = [...]int{16, 8, 4, 2, 4, 2}

func (s VecShape) String() string { return shapeNames[s] }

// Lanes returns the lane count of the shape.
func (s VecShape) Lanes() int { return shapeLanes[s] }

// IsFloat reports whether lanes are float literals.
func (s VecShape) IsFloat() bool { return s == ShapeF32x4 || s == ShapeF64x2 }

// ParseVecShape maps a shape keyword to its VecShape.
func ParseVecShape(name string) (VecShape, bool) {
	for i, n := range shapeNames {
		if n == name {
			return VecShape(i), true
		}
	}
	return 0, false
}

// VecLiteral is the shape and lanes of v128.const.
type VecLiteral struct {
	Lanes []Literal
	Span  Span
	Shape VecShape
}

// Bytes returns the little-endian 128-bit value.
func (v VecLiteral) Bytes() ([16]byte, error) {
	var out [16]byte
	if len(v.Lanes) != v.Shape.Lanes() {
		return out, errors.Arity(v.Span, "v128.const "+v.Shape.String(), v.Shape.Lanes(), len(v.Lanes))
	}
	width := 16 / v.Shape.Lanes()
	for i, l := range v.Lanes {
		chunk := out[i*width : (i+1)*width]
		var err error
		switch v.Shape {
		case ShapeI8x16:
			var b uint64
			b, err = l.Int.BitsN(8)
			chunk[0] = byte(b)
		case ShapeI16x8:
			var b uint64
			b, err = l.Int.BitsN(16)
			binary.LittleEndian.PutUint16(chunk, uint16(b))
		case ShapeI32x4:
			var b uint32
			b, err = l.Int.Bits32()
			binary.LittleEndian.PutUint32(chunk, b)
		case ShapeI64x2:
			var b uint64
			b, err = l.Int.Bits64()
			binary.LittleEndian.PutUint64(chunk, b)
		case ShapeF32x4:
			var b uint32
			b, err = l.Float.Bits32()
			binary.LittleEndian.PutUint32(chunk, b)
		case ShapeF64x2:
			var b uint64
			b, err = l.Float.Bits64()
			binary.LittleEndian.PutUint64(chunk, b)
		}
		if err != nil {
			if e, ok := err.(*errors.Error); ok && !e.Span.Valid() {
				e.Span = l.Span
			}
			return out, err
		}
	}
	return out, nil
}

// ResultTypes is the (result ...) list of a typed select.
type ResultTypes struct {
	Types []ValType
	Span  Span
}

// Let holds the immediates of the let instruction.
type Let struct {
	Label  *Ident
	Locals []Local
	Type   TypeUse
	Span   Span
}

// Unsigned is a bare unsigned immediate such as the argument of ref.extern.
type Unsigned struct {
	Span  Span
	Value uint32
}

func (m MemArg) Pos() Span      { return m.Span }
func (l LaneIndex) Pos() Span   { return l.Span }
func (l Literal) Pos() Span     { return l.Span }
func (v VecLiteral) Pos() Span  { return v.Span }
func (r ResultTypes) Pos() Span { return r.Span }
func (l Let) Pos() Span         { return l.Span }
func (u Unsigned) Pos() Span    { return u.Span }

func (Index) immediate()       {}
func (MemArg) immediate()      {}
func (LaneIndex) immediate()   {}
func (Literal) immediate()     {}
func (VecLiteral) immediate()  {}
func (HeapType) immediate()    {}
func (ResultTypes) immediate() {}
func (TypeUse) immediate()     {}
func (Let) immediate()         {}
func (Unsigned) immediate()    {}

// Float64 returns a float literal's value; integer literals are converted.
func (l Literal) Float64() float64 {
	if l.Kind == LitFloat {
		return l.Float.Float64()
	}
	v := float64(l.Int.Mag)
	if l.Int.Negative {
		v = -v
	}
	return v
}
