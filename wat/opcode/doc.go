// Package opcode classifies WAT instruction mnemonics.
//
// Lookup is keyed on the whole mnemonic. Fixed names such as nop, br_table
// or memory.atomic.notify are checked first; everything else is split at
// the first '.' into a type prefix (i32, f64, v128, i8x16, v8x16, ...) and
// a suffix looked up in that prefix's table. Suffix tables are filled in
// priority order (atomic, width-qualified memory access, generic, SIMD) and
// the first registration of a name wins, which settles the names the text
// grammar lists under more than one family.
package opcode
