// Package ast defines the syntax tree produced by package wat.
//
// Nodes record what was written. Identifiers are not resolved to indices,
// type uses keep both the (type idx) reference and any inline signature,
// and literals keep their source text next to the decoded value. Every node
// has a byte span into the source.
//
// Instruction sequences are flat: folded forms are already expanded with
// operands ahead of their operator. Blocks own their bodies. In plain syntax
// the instruction written right after call_indirect is attached to it as
// Target; Linearize undoes that attachment.
package ast
