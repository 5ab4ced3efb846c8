// Package wat parses the WebAssembly Text format into a syntax tree.
//
// The parser keeps what was written: identifiers stay unresolved, numeric
// literals keep their text next to the decoded value, and folded
// instructions are flattened into the linear order a binary encoder
// expects. Index resolution, validation and encoding are left to callers.
//
// Basic usage:
//
//	doc, err := wat.Parse(`(module
//		(func (export "add") (param i32 i32) (result i32)
//			(i32.add (local.get 0) (local.get 1))))`)
//
// Parse accepts either a (module ...) form or a bare sequence of module
// fields. ParseModule and ParseFragment require one shape. Every error is an
// *errors.Error carrying the byte span it refers to; LineCol and Describe
// turn spans into line and column positions.
//
// For editor tooling, ParseWithConfig with Config.Recover set keeps going
// past malformed module fields:
//
//	doc, err := wat.ParseWithConfig(src, &wat.Config{Recover: true})
//	for _, e := range doc.Errors {
//		fmt.Println(wat.Describe(src, e))
//	}
//
// Supported syntax:
//   - Module fields: type, import, export, func, table, memory, global,
//     elem (all five shapes), data, start, with inline import/export
//   - Plain and folded instructions, block/loop/if with label checking
//   - Numeric, SIMD, atomic, bulk memory and reference instructions
//   - Tail calls and typed function references
//   - Comments (;; and nested (; ;)) and (@name ...) annotations
package wat
