// Package codegen compiles a bound script graph into script source.
//
// The Compiler walks nodes in execution order and asks the Catalogue for each
// node's Generator. Every compiled node is kept in a Memo so that later nodes,
// including nodes inside nested scopes, can reference its code. Callback and
// condition nodes open nested scopes: the nodes that depend on them are
// compiled by a recursive pass and spliced into placeholders of the node's
// own code.
//
// The flat list of OutputRecords a compilation produces is turned into source
// by Assemble, which fills the phase sections of a template and formats the
// result.
package codegen
