package ast

// Field is one module field.
type Field interface {
	Node
	field()
}

// InlineExport is a (export "name") abbreviation on a definition.
type InlineExport struct {
	Name string
	Span Span
}

// InlineImport is a (import "module" "name") abbreviation on a definition.
type InlineImport struct {
	Module string
	Name   string
	Span   Span
}

type ExternKind uint8

const (
	ExternFunc ExternKind = iota
	ExternTable
	ExternMemory
	ExternGlobal
)

func (k ExternKind) String() string {
	switch k {
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	}
	return "func"
}

// TypeDef is (type $id? (func params results)).
type TypeDef struct {
	ID      *Ident
	Params  []Param
	Results []ValType
	Span    Span
}

// Import is (import "m" "n" desc). Only the field matching Kind is set.
type Import struct {
	ID     *Ident
	Module string
	Name   string
	Func   TypeUse
	Table  TableType
	Memory MemoryType
	Global GlobalType
	Span   Span
	Kind   ExternKind
}

type Export struct {
	Name  string
	Index Index
	Span  Span
	Kind  ExternKind
}

type Func struct {
	ID      *Ident
	Import  *InlineImport
	Exports []InlineExport
	Locals  []Local
	Body    []Instr
	Type    TypeUse
	Span    Span
}

// Table is a table definition. With the inline (elem ...) form, Elem is set
// and Type.Limits is left zero.
type Table struct {
	ID      *Ident
	Import  *InlineImport
	Elem    *ElemList
	Exports []InlineExport
	Type    TableType
	Span    Span
}

// Memory is a memory definition. With the inline (data ...) form, Data is
// set and Type is left zero.
type Memory struct {
	ID      *Ident
	Import  *InlineImport
	Exports []InlineExport
	Data    []DataString
	Type    MemoryType
	Span    Span
	HasData bool
}

type Global struct {
	ID      *Ident
	Import  *InlineImport
	Exports []InlineExport
	Init    []Instr
	Type    GlobalType
	Span    Span
}

// Expr is a constant expression: an (offset ...) or (item ...) body, or a
// single folded instruction.
type Expr struct {
	Instrs []Instr
	Span   Span
}

// ElemList is either "func idx*" (Func set) or "reftype elemexpr*".
type ElemList struct {
	Indices []Index
	Exprs   []Expr
	Type    ValType
	Span    Span
	Func    bool
}

type ElemShape uint8

const (
	ElemPassive     ElemShape = iota // elemlist
	ElemTableOffset                  // (table idx) offset (elemlist | idx*)
	ElemDeclare                      // declare elemlist
	ElemOffsetList                   // offset elemlist
	ElemLegacy                       // offset idx*
)

func (s ElemShape) String() string {
	switch s {
	case ElemTableOffset:
		return "table_offset"
	case ElemDeclare:
		return "declare"
	case ElemOffsetList:
		return "offset_list"
	case ElemLegacy:
		return "legacy"
	}
	return "passive"
}

type Elem struct {
	ID     *Ident
	Table  *Index
	Offset *Expr
	List   ElemList
	Span   Span
	Shape  ElemShape
}

// DataString is one string of a data segment, raw and decoded.
type DataString struct {
	Raw   string
	Bytes []byte
	Span  Span
}

type Data struct {
	ID      *Ident
	Memory  *Index
	Offset  *Expr
	Strings []DataString
	Span    Span
}

// Bytes concatenates the decoded strings.
func (d *Data) Bytes() []byte {
	var out []byte
	for _, s := range d.Strings {
		out = append(out, s.Bytes...)
	}
	return out
}

type Start struct {
	Func Index
	Span Span
}

// BadField stands in for a field that failed to parse in recovery mode.
type BadField struct {
	Err  error
	Span Span
}

func (f *TypeDef) Pos() Span  { return f.Span }
func (f *Import) Pos() Span   { return f.Span }
func (f *Export) Pos() Span   { return f.Span }
func (f *Func) Pos() Span     { return f.Span }
func (f *Table) Pos() Span    { return f.Span }
func (f *Memory) Pos() Span   { return f.Span }
func (f *Global) Pos() Span   { return f.Span }
func (f *Elem) Pos() Span     { return f.Span }
func (f *Data) Pos() Span     { return f.Span }
func (f *Start) Pos() Span    { return f.Span }
func (f *BadField) Pos() Span { return f.Span }

func (*TypeDef) field()  {}
func (*Import) field()   {}
func (*Export) field()   {}
func (*Func) field()     {}
func (*Table) field()    {}
func (*Memory) field()   {}
func (*Global) field()   {}
func (*Elem) field()     {}
func (*Data) field()     {}
func (*Start) field()    {}
func (*BadField) field() {}

// Module is (module $id? field*).
type Module struct {
	ID     *Ident
	Fields []Field
	Span   Span
}

func (m *Module) Pos() Span { return m.Span }

// Comment is a line or block comment as written.
type Comment struct {
	Text  string
	Span  Span
	Block bool
}

// Annotation is a (@name ...) form kept as raw text.
type Annotation struct {
	Name string
	Text string
	Span Span
}

// Document is the result of a parse. Exactly one of Module and Fields holds
// the parse result: Module for "(module ...)" input, Fields for a bare field
// sequence.
type Document struct {
	Module      *Module
	Fields      []Field
	Comments    []Comment
	Annotations []Annotation
	Errors      []error
	Span        Span
}

func (d *Document) Pos() Span { return d.Span }

// AllFields returns the module's fields or the fragment's fields.
func (d *Document) AllFields() []Field {
	if d.Module != nil {
		return d.Module.Fields
	}
	return d.Fields
}
