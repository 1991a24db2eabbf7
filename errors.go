package jscn

import (
	"fmt"

	"github.com/fab13n/jsonschema-cn/internal/ast"
	"github.com/fab13n/jsonschema-cn/internal/lexer"
	"github.com/fab13n/jsonschema-cn/internal/lower"
	"github.com/fab13n/jsonschema-cn/internal/parser"
)

// The error kinds below are aliases onto the concrete types returned by the
// lexer, parser, and lowering engine, so callers can type-assert or
// errors.As against them without reaching into this module's internal
// packages.
type (
	LexError                 = lexer.Error
	ParseError               = parser.Error
	UnresolvedReferenceError = lower.UnresolvedReferenceError
	InvalidCardinalError     = lower.InvalidCardinalError
	DuplicatePropertyError   = lower.DuplicatePropertyError
)

// DefinitionConflictError reports that two definition tables being merged
// bind the same name to structurally different types.
type DefinitionConflictError struct {
	Name string
}

func (e *DefinitionConflictError) Error() string {
	return fmt.Sprintf("conflicting definitions for %q", e.Name)
}

// mergeDefs combines two definition tables left-to-right: a's names come
// first in their original order, then b's names not already present. A name
// bound on both sides must bind to structurally equal types.
func mergeDefs(a, b ast.Defs) (ast.Defs, error) {
	out := ast.NewDefs()
	for _, name := range a.Names() {
		t, _ := a.Get(name)
		out.Set(name, t)
	}
	for _, name := range b.Names() {
		bt, _ := b.Get(name)
		if at, ok := out.Get(name); ok {
			if !typeEqual(at, bt) {
				return ast.Defs{}, &DefinitionConflictError{Name: name}
			}
			continue
		}
		out.Set(name, bt)
	}
	return out, nil
}

func defsEqual(a, b ast.Defs) bool {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return false
	}
	for i, name := range an {
		if name != bn[i] {
			return false
		}
		at, _ := a.Get(name)
		bt, _ := b.Get(name)
		if !typeEqual(at, bt) {
			return false
		}
	}
	return true
}
