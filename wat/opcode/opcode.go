package opcode

import (
	"slices"
	"strings"

	"github.com/wippyai/wat-syntax/errors"
)

// Family groups mnemonics that share an immediate shape and operand role.
type Family uint8

const (
	FamilyControl Family = iota
	FamilyBlock
	FamilyCall
	FamilyCallIndirect
	FamilyParametric
	FamilyVariable
	FamilyTable
	FamilyMemory
	FamilyReference
	FamilyConst
	FamilyTest
	FamilyCompare
	FamilyUnary
	FamilyBinary
	FamilyConvert
	FamilyLoad
	FamilyStore
	FamilyAtomicLoad
	FamilyAtomicStore
	FamilyAtomicRMW
	FamilyAtomicCmpxchg
	FamilyAtomicWait
	FamilyAtomicNotify
	FamilyAtomicFence
	FamilySIMDConst
	FamilySIMDLoad
	FamilySIMDStore
	FamilySIMDLoadLane
	FamilySIMDStoreLane
	FamilySIMDLane
	FamilySIMDShuffle
	FamilySIMDUnary
	FamilySIMDBinary
	FamilySIMDTernary
	FamilySIMDCompare
	FamilySIMDConvert
)

var familyNames = [...]string{
	FamilyControl:       "control",
	FamilyBlock:         "block",
	FamilyCall:          "call",
	FamilyCallIndirect:  "call_indirect",
	FamilyParametric:    "parametric",
	FamilyVariable:      "variable",
	FamilyTable:         "table",
	FamilyMemory:        "memory",
	FamilyReference:     "reference",
	FamilyConst:         "const",
	FamilyTest:          "test",
	FamilyCompare:       "compare",
	FamilyUnary:         "unary",
	FamilyBinary:        "binary",
	FamilyConvert:       "convert",
	FamilyLoad:          "load",
	FamilyStore:         "store",
	FamilyAtomicLoad:    "atomic_load",
	FamilyAtomicStore:   "atomic_store",
	FamilyAtomicRMW:     "atomic_rmw",
	FamilyAtomicCmpxchg: "atomic_cmpxchg",
	FamilyAtomicWait:    "atomic_wait",
	FamilyAtomicNotify:  "atomic_notify",
	FamilyAtomicFence:   "atomic_fence",
	FamilySIMDConst:     "simd_const",
	FamilySIMDLoad:      "simd_load",
	FamilySIMDStore:     "simd_store",
	FamilySIMDLoadLane:  "simd_load_lane",
	FamilySIMDStoreLane: "simd_store_lane",
	FamilySIMDLane:      "simd_lane",
	FamilySIMDShuffle:   "simd_shuffle",
	FamilySIMDUnary:     "simd_unary",
	FamilySIMDBinary:    "simd_binary",
	FamilySIMDTernary:   "simd_ternary",
	FamilySIMDCompare:   "simd_compare",
	FamilySIMDConvert:   "simd_convert",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "unknown"
}

// ImmKind describes one immediate slot of an instruction.
type ImmKind uint8

const (
	ImmIndex       ImmKind = iota // required index: local.get, call, br
	ImmOptIndex                   // optional index: table.get, memory.size
	ImmIndexList                  // br_table: one or more indices
	ImmMemArg                     // memory index? offset=? align=?
	ImmLane                       // one lane index
	ImmLanes16                    // i8x16.shuffle: sixteen lane indices
	ImmI32                        // i32.const
	ImmI64                        // i64.const
	ImmF32                        // f32.const
	ImmF64                        // f64.const
	ImmV128                       // v128.const shape + lanes
	ImmHeapType                   // ref.null
	ImmUnsigned                   // ref.extern
	ImmSelectTypes                // select (result ...)*
	ImmTypeUse                    // call_indirect, func.bind
	ImmBlockType                  // block, loop, if
	ImmLet                        // let: label? params results locals
)

func (k ImmKind) String() string {
	switch k {
	case ImmIndex:
		return "index"
	case ImmOptIndex:
		return "index?"
	case ImmIndexList:
		return "index+"
	case ImmMemArg:
		return "memarg"
	case ImmLane:
		return "lane"
	case ImmLanes16:
		return "lane*16"
	case ImmI32:
		return "i32"
	case ImmI64:
		return "i64"
	case ImmF32:
		return "f32"
	case ImmF64:
		return "f64"
	case ImmV128:
		return "v128"
	case ImmHeapType:
		return "heaptype"
	case ImmUnsigned:
		return "u32"
	case ImmSelectTypes:
		return "result*"
	case ImmTypeUse:
		return "typeuse"
	case ImmBlockType:
		return "blocktype"
	case ImmLet:
		return "let"
	}
	return "unknown"
}

// Descriptor is what the resolver knows about one mnemonic.
type Descriptor struct {
	Name   string
	Imms   []ImmKind
	Align  uint32 // natural alignment in bytes, memory access only
	Family Family
}

// MemoryAccess reports whether the instruction takes a memarg.
func (d Descriptor) MemoryAccess() bool {
	return slices.Contains(d.Imms, ImmMemArg)
}

// Lookup resolves a full mnemonic. Fixed mnemonics win over type-prefixed
// families; within a prefix the first registered rule wins.
func Lookup(name string) (Descriptor, bool) {
	if d, ok := fixed[name]; ok {
		return d, true
	}
	prefix, suffix, found := strings.Cut(name, ".")
	if !found {
		return Descriptor{}, false
	}
	ops, ok := prefixed[prefix]
	if !ok {
		return Descriptor{}, false
	}
	d, ok := ops[suffix]
	return d, ok
}

// Resolve is Lookup with an unknown_opcode error. The error carries no span;
// callers attach the mnemonic's position.
func Resolve(name string) (Descriptor, error) {
	if d, ok := Lookup(name); ok {
		return d, nil
	}
	return Descriptor{}, errors.UnknownOpcode(errors.Span{}, name)
}

// Names returns every known mnemonic in sorted order.
func Names() []string {
	names := make([]string, 0, len(fixed)+512)
	for name := range fixed {
		names = append(names, name)
	}
	for prefix, ops := range prefixed {
		for suffix := range ops {
			names = append(names, prefix+"."+suffix)
		}
	}
	slices.Sort(names)
	return names
}

// Prefixes returns the recognized type prefixes.
func Prefixes() []string {
	out := make([]string, 0, len(prefixed))
	for p := range prefixed {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
