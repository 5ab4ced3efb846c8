package ast

import (
	"strconv"

	"github.com/wippyai/wat-syntax/errors"
)

// Span is a half-open byte range into the parsed source.
type Span = errors.Span

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Span
}

// Ident is a symbolic name such as $f. Name keeps the '$'.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }

// Index references an entity either by number or by identifier.
type Index struct {
	ID   string
	Span Span
	Num  uint32
}

func (i Index) Pos() Span  { return i.Span }
func (i Index) IsID() bool { return i.ID != "" }

func (i Index) String() string {
	if i.IsID() {
		return i.ID
	}
	return strconv.FormatUint(uint64(i.Num), 10)
}

type ValKind uint8

const (
	I32 ValKind = iota
	I64
	F32
	F64
	V128
	FuncRef
	ExternRef
	Ref // (ref null? heaptype)
)

func (k ValKind) String() string {
	switch k {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case V128:
		return "v128"
	case FuncRef:
		return "funcref"
	case ExternRef:
		return "externref"
	case Ref:
		return "ref"
	}
	return "unknown"
}

type HeapKind uint8

const (
	HeapFunc HeapKind = iota
	HeapExtern
	HeapIndex
)

// HeapType is func, extern, or a type index.
type HeapType struct {
	Index *Index
	Span  Span
	Kind  HeapKind
}

func (h HeapType) Pos() Span { return h.Span }

func (h HeapType) String() string {
	switch h.Kind {
	case HeapFunc:
		return "func"
	case HeapExtern:
		return "extern"
	}
	if h.Index != nil {
		return h.Index.String()
	}
	return "?"
}

// ValType is a value type. Heap and Nullable only apply to Kind == Ref.
type ValType struct {
	Heap     HeapType
	Span     Span
	Kind     ValKind
	Nullable bool
}

func (v ValType) Pos() Span { return v.Span }

// IsRef reports whether v is a reference type.
func (v ValType) IsRef() bool {
	return v.Kind == FuncRef || v.Kind == ExternRef || v.Kind == Ref
}

func (v ValType) String() string {
	if v.Kind != Ref {
		return v.Kind.String()
	}
	if v.Nullable {
		return "(ref null " + v.Heap.String() + ")"
	}
	return "(ref " + v.Heap.String() + ")"
}

// Param is one parameter or local. Groups such as (param i32 i64) become
// one Param per type, and only the single named form carries an ID.
type Param struct {
	ID   *Ident
	Type ValType
	Span Span
}

func (p Param) Pos() Span { return p.Span }

type Local = Param

// TypeUse is a (type idx) reference and/or an inline signature. Both are
// kept as written.
type TypeUse struct {
	Index   *Index
	Params  []Param
	Results []ValType
	Span    Span
}

func (t TypeUse) Pos() Span { return t.Span }

// IsEmpty reports whether nothing was written.
func (t TypeUse) IsEmpty() bool {
	return t.Index == nil && len(t.Params) == 0 && len(t.Results) == 0
}

// Limits of a table or memory. Shared is nil unless shared or unshared was written.
type Limits struct {
	Max    *uint64
	Shared *bool
	Span   Span
	Min    uint64
}

func (l Limits) Pos() Span { return l.Span }

type GlobalType struct {
	Type    ValType
	Span    Span
	Mutable bool
}

func (g GlobalType) Pos() Span { return g.Span }

type TableType struct {
	Limits Limits
	Elem   ValType
	Span   Span
}

func (t TableType) Pos() Span { return t.Span }

type MemoryType struct {
	Limits Limits
	Span   Span
}

func (m MemoryType) Pos() Span { return m.Span }
