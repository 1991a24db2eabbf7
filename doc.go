// Package jscn compiles JSON Schema Compact Notation (JSCN) source text
// into JSON Schema draft-07 documents.
//
// A Schema pairs a root type with the table of named definitions it may
// reference; a Definitions value carries only the table. Both are
// immutable once constructed: parsing and the algebraic operators &/And and
// |/Or always produce new values rather than mutating their operands. The
// JSONSchema accessor is the only place an AST is turned into JSON; it is
// pure, so calling it twice on the same Schema yields equal values.
//
// Design policy:
//   - Keep only the public API in this root package; lexing, parsing, and
//     lowering live under internal/.
//   - Place the ordered JSON value representation under jsonschema/, and
//     the CLI under cmd/jscn.
//
// Typical usage:
//
//	s, err := jscn.ParseSchema(`{only <id>: <byte>} where id = r"[a-z]+" and byte = integer{0,0xff}`)
//	doc, err := s.JSONSchema()
//	b, err := jsonschema.Marshal(doc)
package jscn
