package opcode

var (
	none     = []ImmKind{}
	index    = []ImmKind{ImmIndex}
	optIndex = []ImmKind{ImmOptIndex}
	memarg   = []ImmKind{ImmMemArg}
	lane     = []ImmKind{ImmLane}
)

func op(name string, family Family, imms []ImmKind) Descriptor {
	return Descriptor{Name: name, Family: family, Imms: imms}
}

func mem(name string, family Family, align uint32) Descriptor {
	return Descriptor{Name: name, Family: family, Imms: memarg, Align: align}
}

var fixed = func() map[string]Descriptor {
	list := []Descriptor{
		// Control
		op("unreachable", FamilyControl, none),
		op("nop", FamilyControl, none),
		op("block", FamilyBlock, []ImmKind{ImmBlockType}),
		op("loop", FamilyBlock, []ImmKind{ImmBlockType}),
		op("if", FamilyBlock, []ImmKind{ImmBlockType}),
		op("br", FamilyControl, index),
		op("br_if", FamilyControl, index),
		op("br_table", FamilyControl, []ImmKind{ImmIndexList}),
		op("br_on_null", FamilyControl, index),
		op("return", FamilyControl, none),
		op("call", FamilyCall, index),
		op("return_call", FamilyCall, index),
		op("call_indirect", FamilyCallIndirect, []ImmKind{ImmOptIndex, ImmTypeUse}),
		op("return_call_indirect", FamilyCallIndirect, []ImmKind{ImmOptIndex, ImmTypeUse}),
		op("call_ref", FamilyCall, none),
		op("return_call_ref", FamilyCall, none),
		op("func.bind", FamilyCall, []ImmKind{ImmTypeUse}),
		op("let", FamilyBlock, []ImmKind{ImmLet}),

		// Parametric
		op("drop", FamilyParametric, none),
		op("select", FamilyParametric, []ImmKind{ImmSelectTypes}),

		// Variables
		op("local.get", FamilyVariable, index),
		op("local.set", FamilyVariable, index),
		op("local.tee", FamilyVariable, index),
		op("global.get", FamilyVariable, index),
		op("global.set", FamilyVariable, index),

		// Tables
		op("table.get", FamilyTable, optIndex),
		op("table.set", FamilyTable, optIndex),
		op("table.size", FamilyTable, optIndex),
		op("table.grow", FamilyTable, optIndex),
		op("table.fill", FamilyTable, optIndex),
		op("table.copy", FamilyTable, []ImmKind{ImmOptIndex, ImmOptIndex}),
		op("table.init", FamilyTable, []ImmKind{ImmIndex, ImmOptIndex}),
		op("elem.drop", FamilyTable, index),

		// Memory
		op("memory.size", FamilyMemory, optIndex),
		op("memory.grow", FamilyMemory, optIndex),
		op("memory.fill", FamilyMemory, optIndex),
		op("memory.copy", FamilyMemory, []ImmKind{ImmOptIndex, ImmOptIndex}),
		op("memory.init", FamilyMemory, []ImmKind{ImmIndex, ImmOptIndex}),
		op("data.drop", FamilyMemory, index),

		// References
		op("ref.null", FamilyReference, []ImmKind{ImmHeapType}),
		op("ref.is_null", FamilyReference, none),
		op("ref.func", FamilyReference, index),
		op("ref.extern", FamilyReference, []ImmKind{ImmUnsigned}),
		op("ref.as_non_null", FamilyReference, none),

		// Threads
		mem("memory.atomic.notify", FamilyAtomicNotify, 4),
		mem("memory.atomic.wait32", FamilyAtomicWait, 4),
		mem("memory.atomic.wait64", FamilyAtomicWait, 8),
		op("atomic.fence", FamilyAtomicFence, none),
	}
	m := make(map[string]Descriptor, len(list))
	for _, desc := range list {
		m[desc.Name] = desc
	}
	return m
}()

// prefixed maps a type prefix to its suffix table.
var prefixed = map[string]map[string]Descriptor{}

// add registers prefix.suffix unless an earlier rule already claimed it.
func add(prefix, suffix string, family Family, imms []ImmKind, align uint32) {
	ops, ok := prefixed[prefix]
	if !ok {
		ops = make(map[string]Descriptor)
		prefixed[prefix] = ops
	}
	if _, taken := ops[suffix]; taken {
		return
	}
	ops[suffix] = Descriptor{Name: prefix + "." + suffix, Family: family, Imms: imms, Align: align}
}

func addAll(prefixes []string, suffixes []string, family Family, imms []ImmKind) {
	for _, p := range prefixes {
		for _, s := range suffixes {
			add(p, s, family, imms, 0)
		}
	}
}

func su(bases ...string) []string {
	out := make([]string, 0, 2*len(bases))
	for _, b := range bases {
		out = append(out, b+"_s", b+"_u")
	}
	return out
}

var (
	intTypes   = []string{"i32", "i64"}
	floatTypes = []string{"f32", "f64"}
	numTypes   = []string{"i32", "i64", "f32", "f64"}
)

var typeWidth = map[string]uint32{"i32": 4, "i64": 8, "f32": 4, "f64": 8}

// The registration order below is the disambiguation order: atomic forms,
// then width-qualified memory forms, then generic ones, then SIMD.
func init() {
	registerAtomics()
	registerMemory()
	registerNumeric()
	registerSIMD()
}

func registerAtomics() {
	rmwOps := []string{"add", "sub", "and", "or", "xor", "xchg"}
	for _, t := range intTypes {
		w := typeWidth[t]
		add(t, "atomic.load", FamilyAtomicLoad, memarg, w)
		add(t, "atomic.load8_u", FamilyAtomicLoad, memarg, 1)
		add(t, "atomic.load16_u", FamilyAtomicLoad, memarg, 2)
		add(t, "atomic.store", FamilyAtomicStore, memarg, w)
		add(t, "atomic.store8", FamilyAtomicStore, memarg, 1)
		add(t, "atomic.store16", FamilyAtomicStore, memarg, 2)
		for _, rmw := range rmwOps {
			add(t, "atomic.rmw."+rmw, FamilyAtomicRMW, memarg, w)
			add(t, "atomic.rmw8."+rmw+"_u", FamilyAtomicRMW, memarg, 1)
			add(t, "atomic.rmw16."+rmw+"_u", FamilyAtomicRMW, memarg, 2)
		}
		add(t, "atomic.rmw.cmpxchg", FamilyAtomicCmpxchg, memarg, w)
		add(t, "atomic.rmw8.cmpxchg_u", FamilyAtomicCmpxchg, memarg, 1)
		add(t, "atomic.rmw16.cmpxchg_u", FamilyAtomicCmpxchg, memarg, 2)
	}
	add("i64", "atomic.load32_u", FamilyAtomicLoad, memarg, 4)
	add("i64", "atomic.store32", FamilyAtomicStore, memarg, 4)
	for _, rmw := range rmwOps {
		add("i64", "atomic.rmw32."+rmw+"_u", FamilyAtomicRMW, memarg, 4)
	}
	add("i64", "atomic.rmw32.cmpxchg_u", FamilyAtomicCmpxchg, memarg, 4)
}

func registerMemory() {
	for _, t := range intTypes {
		for _, s := range su("load8") {
			add(t, s, FamilyLoad, memarg, 1)
		}
		for _, s := range su("load16") {
			add(t, s, FamilyLoad, memarg, 2)
		}
		add(t, "store8", FamilyStore, memarg, 1)
		add(t, "store16", FamilyStore, memarg, 2)
	}
	for _, s := range su("load32") {
		add("i64", s, FamilyLoad, memarg, 4)
	}
	add("i64", "store32", FamilyStore, memarg, 4)

	for _, t := range numTypes {
		add(t, "load", FamilyLoad, memarg, typeWidth[t])
		add(t, "store", FamilyStore, memarg, typeWidth[t])
	}
}

func registerNumeric() {
	add("i32", "const", FamilyConst, []ImmKind{ImmI32}, 0)
	add("i64", "const", FamilyConst, []ImmKind{ImmI64}, 0)
	add("f32", "const", FamilyConst, []ImmKind{ImmF32}, 0)
	add("f64", "const", FamilyConst, []ImmKind{ImmF64}, 0)

	addAll(intTypes, []string{"eqz"}, FamilyTest, none)

	addAll(numTypes, []string{"eq", "ne"}, FamilyCompare, none)
	addAll(intTypes, su("lt", "gt", "le", "ge"), FamilyCompare, none)
	addAll(floatTypes, []string{"lt", "gt", "le", "ge"}, FamilyCompare, none)

	addAll(intTypes, []string{"clz", "ctz", "popcnt", "extend8_s", "extend16_s"}, FamilyUnary, none)
	add("i64", "extend32_s", FamilyUnary, none, 0)
	addAll(floatTypes, []string{"abs", "neg", "ceil", "floor", "trunc", "nearest", "sqrt"}, FamilyUnary, none)

	addAll(numTypes, []string{"add", "sub", "mul"}, FamilyBinary, none)
	addAll(intTypes, []string{"and", "or", "xor", "shl", "rotl", "rotr"}, FamilyBinary, none)
	addAll(intTypes, su("div", "rem", "shr"), FamilyBinary, none)
	addAll(floatTypes, []string{"div", "min", "max", "copysign"}, FamilyBinary, none)

	add("i32", "wrap_i64", FamilyConvert, none, 0)
	addAll([]string{"i64"}, su("extend_i32"), FamilyConvert, none)
	add("f32", "demote_f64", FamilyConvert, none, 0)
	add("f64", "promote_f32", FamilyConvert, none, 0)
	addAll(intTypes, su("trunc_f32", "trunc_f64", "trunc_sat_f32", "trunc_sat_f64"), FamilyConvert, none)
	addAll(floatTypes, su("convert_i32", "convert_i64"), FamilyConvert, none)
	add("i32", "reinterpret_f32", FamilyConvert, none, 0)
	add("i64", "reinterpret_f64", FamilyConvert, none, 0)
	add("f32", "reinterpret_i32", FamilyConvert, none, 0)
	add("f64", "reinterpret_i64", FamilyConvert, none, 0)
}

func registerSIMD() {
	// v128 memory forms come first so the load/store entries that the
	// unary and binary families also list resolve to the memory family.
	add("v128", "load", FamilySIMDLoad, memarg, 16)
	add("v128", "store", FamilySIMDStore, memarg, 16)
	for _, s := range su("load8x8", "load16x4", "load32x2") {
		add("v128", s, FamilySIMDLoad, memarg, 8)
	}
	for _, w := range []struct {
		bits  string
		bytes uint32
	}{{"8", 1}, {"16", 2}, {"32", 4}, {"64", 8}} {
		add("v128", "load"+w.bits+"_splat", FamilySIMDLoad, memarg, w.bytes)
		add("v128", "load"+w.bits+"_lane", FamilySIMDLoadLane, []ImmKind{ImmMemArg, ImmLane}, w.bytes)
		add("v128", "store"+w.bits+"_lane", FamilySIMDStoreLane, []ImmKind{ImmMemArg, ImmLane}, w.bytes)
	}
	add("v128", "load32_zero", FamilySIMDLoad, memarg, 4)
	add("v128", "load64_zero", FamilySIMDLoad, memarg, 8)

	// Draft spellings of the same loads.
	for _, s := range su("load8x8") {
		add("i16x8", s, FamilySIMDLoad, memarg, 8)
	}
	for _, s := range su("load16x4") {
		add("i32x4", s, FamilySIMDLoad, memarg, 8)
	}
	for _, s := range su("load32x2") {
		add("i64x2", s, FamilySIMDLoad, memarg, 8)
	}
	add("v8x16", "load_splat", FamilySIMDLoad, memarg, 1)
	add("v16x8", "load_splat", FamilySIMDLoad, memarg, 2)
	add("v32x4", "load_splat", FamilySIMDLoad, memarg, 4)
	add("v64x2", "load_splat", FamilySIMDLoad, memarg, 8)

	add("v128", "const", FamilySIMDConst, []ImmKind{ImmV128}, 0)
	addAll([]string{"v128"}, []string{"not", "any_true"}, FamilySIMDUnary, none)
	addAll([]string{"v128"}, []string{"and", "andnot", "or", "xor"}, FamilySIMDBinary, none)
	add("v128", "bitselect", FamilySIMDTernary, none, 0)

	add("i8x16", "shuffle", FamilySIMDShuffle, []ImmKind{ImmLanes16}, 0)
	add("v8x16", "shuffle", FamilySIMDShuffle, []ImmKind{ImmLanes16}, 0)
	add("i8x16", "swizzle", FamilySIMDBinary, none, 0)
	add("v8x16", "swizzle", FamilySIMDBinary, none, 0)

	ints := []string{"i8x16", "i16x8", "i32x4", "i64x2"}
	floats := []string{"f32x4", "f64x2"}
	all := append(append([]string{}, ints...), floats...)

	// Lanes
	addAll(all, []string{"splat"}, FamilySIMDUnary, none)
	addAll([]string{"i8x16", "i16x8"}, su("extract_lane"), FamilySIMDLane, lane)
	addAll([]string{"i32x4", "i64x2", "f32x4", "f64x2"}, []string{"extract_lane"}, FamilySIMDLane, lane)
	addAll(all, []string{"replace_lane"}, FamilySIMDLane, lane)

	// Comparisons
	addAll(all, []string{"eq", "ne"}, FamilySIMDCompare, none)
	addAll([]string{"i8x16", "i16x8", "i32x4"}, su("lt", "gt", "le", "ge"), FamilySIMDCompare, none)
	addAll([]string{"i64x2"}, []string{"lt_s", "gt_s", "le_s", "ge_s"}, FamilySIMDCompare, none)
	addAll(floats, []string{"lt", "gt", "le", "ge"}, FamilySIMDCompare, none)

	// Integer unary
	addAll(ints, []string{"abs", "neg", "all_true", "bitmask"}, FamilySIMDUnary, none)
	addAll([]string{"i8x16", "i16x8", "i32x4"}, []string{"any_true"}, FamilySIMDUnary, none)
	add("i8x16", "popcnt", FamilySIMDUnary, none, 0)

	// Integer binary
	addAll(ints, []string{"shl", "shr_s", "shr_u", "add", "sub"}, FamilySIMDBinary, none)
	addAll([]string{"i16x8", "i32x4", "i64x2"}, []string{"mul"}, FamilySIMDBinary, none)
	addAll([]string{"i8x16", "i16x8"}, su("add_sat", "sub_sat"), FamilySIMDBinary, none)
	addAll([]string{"i8x16", "i16x8"}, []string{"avgr_u"}, FamilySIMDBinary, none)
	addAll([]string{"i8x16", "i16x8", "i32x4"}, su("min", "max"), FamilySIMDBinary, none)
	add("i16x8", "q15mulr_sat_s", FamilySIMDBinary, none, 0)
	add("i32x4", "dot_i16x8_s", FamilySIMDBinary, none, 0)
	addAll([]string{"i16x8"}, su("extmul_low_i8x16", "extmul_high_i8x16"), FamilySIMDBinary, none)
	addAll([]string{"i32x4"}, su("extmul_low_i16x8", "extmul_high_i16x8"), FamilySIMDBinary, none)
	addAll([]string{"i64x2"}, su("extmul_low_i32x4", "extmul_high_i32x4"), FamilySIMDBinary, none)

	// Float unary and binary
	addAll(floats, []string{"abs", "neg", "sqrt", "ceil", "floor", "trunc", "nearest"}, FamilySIMDUnary, none)
	addAll(floats, []string{"add", "sub", "mul", "div", "min", "max", "pmin", "pmax"}, FamilySIMDBinary, none)

	// Conversions
	addAll([]string{"i8x16"}, su("narrow_i16x8"), FamilySIMDConvert, none)
	addAll([]string{"i16x8"}, su("narrow_i32x4"), FamilySIMDConvert, none)
	addAll([]string{"i16x8"}, su("extend_low_i8x16", "extend_high_i8x16", "widen_low_i8x16", "widen_high_i8x16", "extadd_pairwise_i8x16"), FamilySIMDConvert, none)
	addAll([]string{"i32x4"}, su("extend_low_i16x8", "extend_high_i16x8", "widen_low_i16x8", "widen_high_i16x8", "extadd_pairwise_i16x8"), FamilySIMDConvert, none)
	addAll([]string{"i64x2"}, su("extend_low_i32x4", "extend_high_i32x4"), FamilySIMDConvert, none)
	addAll([]string{"i32x4"}, su("trunc_sat_f32x4"), FamilySIMDConvert, none)
	addAll([]string{"i32x4"}, []string{"trunc_sat_f64x2_s_zero", "trunc_sat_f64x2_u_zero"}, FamilySIMDConvert, none)
	addAll([]string{"f32x4"}, su("convert_i32x4"), FamilySIMDConvert, none)
	add("f32x4", "demote_f64x2_zero", FamilySIMDConvert, none, 0)
	addAll([]string{"f64x2"}, su("convert_low_i32x4"), FamilySIMDConvert, none)
	add("f64x2", "promote_low_f32x4", FamilySIMDConvert, none, 0)
}
