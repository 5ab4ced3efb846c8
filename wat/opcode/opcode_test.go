package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wat-syntax/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		imms   []ImmKind
		align  uint32
	}{
		// Control
		{"unreachable", FamilyControl, none, 0},
		{"nop", FamilyControl, none, 0},
		{"br", FamilyControl, index, 0},
		{"br_table", FamilyControl, []ImmKind{ImmIndexList}, 0},
		{"call", FamilyCall, index, 0},
		{"call_indirect", FamilyCallIndirect, []ImmKind{ImmOptIndex, ImmTypeUse}, 0},
		{"block", FamilyBlock, []ImmKind{ImmBlockType}, 0},

		// Variables and tables
		{"local.get", FamilyVariable, index, 0},
		{"global.set", FamilyVariable, index, 0},
		{"table.copy", FamilyTable, []ImmKind{ImmOptIndex, ImmOptIndex}, 0},
		{"ref.null", FamilyReference, []ImmKind{ImmHeapType}, 0},

		// Numeric
		{"i32.const", FamilyConst, []ImmKind{ImmI32}, 0},
		{"f64.const", FamilyConst, []ImmKind{ImmF64}, 0},
		{"i32.eqz", FamilyTest, none, 0},
		{"i64.lt_u", FamilyCompare, none, 0},
		{"f32.lt", FamilyCompare, none, 0},
		{"i32.add", FamilyBinary, none, 0},
		{"f64.copysign", FamilyBinary, none, 0},
		{"i64.extend32_s", FamilyUnary, none, 0},
		{"i32.trunc_sat_f64_u", FamilyConvert, none, 0},
		{"f32.reinterpret_i32", FamilyConvert, none, 0},

		// Memory
		{"i32.load", FamilyLoad, memarg, 4},
		{"i64.load32_s", FamilyLoad, memarg, 4},
		{"i32.load8_u", FamilyLoad, memarg, 1},
		{"f64.store", FamilyStore, memarg, 8},
		{"i64.store16", FamilyStore, memarg, 2},

		// Threads
		{"i32.atomic.load", FamilyAtomicLoad, memarg, 4},
		{"i64.atomic.load32_u", FamilyAtomicLoad, memarg, 4},
		{"i64.atomic.rmw.add", FamilyAtomicRMW, memarg, 8},
		{"i32.atomic.rmw8.xchg_u", FamilyAtomicRMW, memarg, 1},
		{"i64.atomic.rmw32.cmpxchg_u", FamilyAtomicCmpxchg, memarg, 4},
		{"memory.atomic.wait64", FamilyAtomicWait, memarg, 8},
		{"atomic.fence", FamilyAtomicFence, none, 0},

		// SIMD
		{"v128.const", FamilySIMDConst, []ImmKind{ImmV128}, 0},
		{"v128.load", FamilySIMDLoad, memarg, 16},
		{"v128.store", FamilySIMDStore, memarg, 16},
		{"v128.load8x8_s", FamilySIMDLoad, memarg, 8},
		{"v128.load32_zero", FamilySIMDLoad, memarg, 4},
		{"v128.load16_lane", FamilySIMDLoadLane, []ImmKind{ImmMemArg, ImmLane}, 2},
		{"i16x8.load8x8_u", FamilySIMDLoad, memarg, 8},
		{"v32x4.load_splat", FamilySIMDLoad, memarg, 4},
		{"i8x16.shuffle", FamilySIMDShuffle, []ImmKind{ImmLanes16}, 0},
		{"i8x16.extract_lane_s", FamilySIMDLane, lane, 0},
		{"f64x2.replace_lane", FamilySIMDLane, lane, 0},
		{"i32x4.dot_i16x8_s", FamilySIMDBinary, none, 0},
		{"f32x4.pmin", FamilySIMDBinary, none, 0},
		{"i16x8.widen_high_i8x16_s", FamilySIMDConvert, none, 0},
		{"i16x8.extend_high_i8x16_s", FamilySIMDConvert, none, 0},
		{"v128.bitselect", FamilySIMDTernary, none, 0},
		{"i64x2.ge_s", FamilySIMDCompare, none, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Lookup(tt.name)
			require.True(t, ok, "Lookup(%q) not found", tt.name)
			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.family, d.Family, "family %s", d.Family)
			assert.Equal(t, tt.imms, d.Imms)
			assert.Equal(t, tt.align, d.Align)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, name := range []string{
		"", "i32", "i32.", "i32.frob", "i128.add", "f32.eqz", "i32.load32_s", "i32.atomic.rmw32.add_u",
		"i64x2.lt_u", "v128.load8", "frob", "i32.add.x",
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := Lookup(name)
			assert.False(t, ok)

			_, err := Resolve(name)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindUnknownOpcode))
		})
	}
}

func TestMemoryAccess(t *testing.T) {
	for _, name := range []string{"i32.load", "i64.atomic.store8", "v128.store64_lane", "memory.atomic.notify"} {
		d, err := Resolve(name)
		require.NoError(t, err)
		assert.True(t, d.MemoryAccess(), name)
		assert.NotZero(t, d.Align, name)
	}
	for _, name := range []string{"memory.size", "i32.add", "i8x16.extract_lane_u"} {
		d, err := Resolve(name)
		require.NoError(t, err)
		assert.False(t, d.MemoryAccess(), name)
	}
}

func TestNamesSortedAndResolvable(t *testing.T) {
	names := Names()
	require.Greater(t, len(names), 400)
	for i, name := range names {
		if i > 0 {
			assert.Less(t, names[i-1], name)
		}
		d, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, d.Name)
	}
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{
		"f32", "f32x4", "f64", "f64x2", "i16x8", "i32", "i32x4", "i64", "i64x2", "i8x16",
		"v128", "v16x8", "v32x4", "v64x2", "v8x16",
	}, Prefixes())
}

func TestFamilyString(t *testing.T) {
	assert.Equal(t, "atomic_rmw", FamilyAtomicRMW.String())
	assert.Equal(t, "simd_convert", FamilySIMDConvert.String())
	assert.Equal(t, "unknown", Family(250).String())
	assert.Equal(t, "memarg", ImmMemArg.String())
}
