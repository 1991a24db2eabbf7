package jscn

import (
	"github.com/fab13n/jsonschema-cn/internal/ast"
	"github.com/fab13n/jsonschema-cn/internal/lower"
	"github.com/fab13n/jsonschema-cn/internal/parser"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

// Schema is a compiled JSCN document: a root type plus the definitions it
// may reference.
type Schema struct {
	root ast.Type
	defs ast.Defs
}

// Definitions is a standalone, named set of types with no root, as produced
// by parsing a bare "ident = type (and ident = type)*" document.
type Definitions struct {
	defs ast.Defs
}

// ParseSchema compiles a "type (\"where\" definitions)?" document.
func ParseSchema(source string) (Schema, error) {
	s, err := parser.ParseSchema(source)
	if err != nil {
		return Schema{}, err
	}
	return Schema{root: s.Root, defs: s.Defs}, nil
}

// ParseDefinitions compiles a standalone definitions document.
func ParseDefinitions(source string) (Definitions, error) {
	d, err := parser.ParseDefinitions(source)
	if err != nil {
		return Definitions{}, err
	}
	return Definitions{defs: d}, nil
}

// JSONSchema lowers the AST into a JSON Schema draft-07 document. Lowering
// is where unresolved references, invalid cardinals, and duplicate
// properties are detected; ParseSchema never fails for these reasons, only
// for lexical and grammar errors, and the combinators below fail only for
// conflicting definitions.
func (s Schema) JSONSchema() (*jsonschema.Value, error) {
	return lower.Schema(ast.Schema{Root: s.root, Defs: s.defs})
}

// Defs exposes the schema's definition table, e.g. for inspection or for
// building a Definitions value to merge elsewhere.
func (s Schema) Defs() Definitions { return Definitions{defs: s.defs} }

// And is the "&" operator: allOf of the two roots, with merged definitions.
func (s Schema) And(other Schema) (Schema, error) {
	defs, err := mergeDefs(s.defs, other.defs)
	if err != nil {
		return Schema{}, err
	}
	return Schema{root: &ast.AllOf{Types: []ast.Type{s.root, other.root}}, defs: defs}, nil
}

// Or is the "|" operator: anyOf of the two roots, with merged definitions.
// As with parsing, an all-Literal operand pair collapses to an Enum rather
// than an AnyOf.
func (s Schema) Or(other Schema) (Schema, error) {
	defs, err := mergeDefs(s.defs, other.defs)
	if err != nil {
		return Schema{}, err
	}
	return Schema{root: orType(s.root, other.root), defs: defs}, nil
}

// AndDefinitions merges d's definitions into s, leaving s's root unchanged.
func (s Schema) AndDefinitions(d Definitions) (Schema, error) {
	defs, err := mergeDefs(s.defs, d.defs)
	if err != nil {
		return Schema{}, err
	}
	return Schema{root: s.root, defs: defs}, nil
}

// OrDefinitions is identical to AndDefinitions: per the algebra, combining a
// Schema with a bare Definitions only ever merges the definition tables,
// regardless of which binary operator was written at the call site.
func (s Schema) OrDefinitions(d Definitions) (Schema, error) {
	return s.AndDefinitions(d)
}

// Equal reports structural equality of the two schemas' ASTs.
func (s Schema) Equal(other Schema) bool {
	return typeEqual(s.root, other.root) && defsEqual(s.defs, other.defs)
}

// And merges two Definitions tables.
func (d Definitions) And(other Definitions) (Definitions, error) {
	defs, err := mergeDefs(d.defs, other.defs)
	if err != nil {
		return Definitions{}, err
	}
	return Definitions{defs: defs}, nil
}

// Or merges two Definitions tables. Union and intersection of two bare
// Definitions sets are the same operation: both just merge the tables.
func (d Definitions) Or(other Definitions) (Definitions, error) {
	return d.And(other)
}

// WithRoot merges d into root's definition table, keeping root's root type.
func (d Definitions) WithRoot(root Schema) (Schema, error) {
	return root.AndDefinitions(d)
}

func orType(a, b ast.Type) ast.Type {
	la, aok := a.(*ast.Literal)
	lb, bok := b.(*ast.Literal)
	if aok && bok {
		return &ast.Enum{Values: []*jsonschema.Value{la.Value, lb.Value}}
	}
	if ae, ok := a.(*ast.Enum); ok && bok {
		return &ast.Enum{Values: append(append([]*jsonschema.Value{}, ae.Values...), lb.Value)}
	}
	if be, ok := b.(*ast.Enum); ok && aok {
		return &ast.Enum{Values: append([]*jsonschema.Value{la.Value}, be.Values...)}
	}
	if ae, ok := a.(*ast.Enum); ok {
		if be, ok := b.(*ast.Enum); ok {
			return &ast.Enum{Values: append(append([]*jsonschema.Value{}, ae.Values...), be.Values...)}
		}
	}
	return &ast.AnyOf{Types: []ast.Type{a, b}}
}
