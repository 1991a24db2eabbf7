package jscn

import (
	"github.com/fab13n/jsonschema-cn/internal/ast"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

// typeEqual reports deep structural equality of two AST type trees. It
// mirrors jsonschema.Equal's shape: a type switch per node kind, recursing
// into children, with no shortcuts that compare by pointer identity.
func typeEqual(a, b ast.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *ast.Literal:
		y, ok := b.(*ast.Literal)
		return ok && jsonschema.Equal(x.Value, y.Value)
	case *ast.Enum:
		y, ok := b.(*ast.Enum)
		if !ok || len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if !jsonschema.Equal(x.Values[i], y.Values[i]) {
				return false
			}
		}
		return true
	case *ast.Keyword:
		y, ok := b.(*ast.Keyword)
		return ok && x.Name == y.Name
	case *ast.Regex:
		y, ok := b.(*ast.Regex)
		return ok && x.Pattern == y.Pattern
	case *ast.Format:
		y, ok := b.(*ast.Format)
		return ok && x.Name == y.Name
	case *ast.StringCard:
		y, ok := b.(*ast.StringCard)
		return ok && cardinalEqual(x.Card, y.Card)
	case *ast.IntegerCard:
		y, ok := b.(*ast.IntegerCard)
		return ok && cardinalEqual(x.Card, y.Card) && intPtrEqual(x.MultipleOf, y.MultipleOf)
	case *ast.Ref:
		y, ok := b.(*ast.Ref)
		return ok && x.Name == y.Name
	case *ast.Not:
		y, ok := b.(*ast.Not)
		return ok && typeEqual(x.Inner, y.Inner)
	case *ast.AllOf:
		y, ok := b.(*ast.AllOf)
		return ok && typeSliceEqual(x.Types, y.Types)
	case *ast.AnyOf:
		y, ok := b.(*ast.AnyOf)
		return ok && typeSliceEqual(x.Types, y.Types)
	case *ast.Conditional:
		y, ok := b.(*ast.Conditional)
		if !ok || len(x.Branches) != len(y.Branches) {
			return false
		}
		for i := range x.Branches {
			if !typeEqual(x.Branches[i].Cond, y.Branches[i].Cond) || !typeEqual(x.Branches[i].Then, y.Branches[i].Then) {
				return false
			}
		}
		return typeEqual(x.Else, y.Else)
	case *ast.Object:
		y, ok := b.(*ast.Object)
		if !ok || len(x.Properties) != len(y.Properties) || !cardinalEqual(x.Card, y.Card) {
			return false
		}
		for i := range x.Properties {
			px, py := x.Properties[i], y.Properties[i]
			if px.Key != py.Key || px.Optional != py.Optional || !typeEqual(px.Value, py.Value) {
				return false
			}
		}
		return restrictionEqual(x.Restriction, y.Restriction)
	case *ast.Array:
		y, ok := b.(*ast.Array)
		if !ok || x.Repeat != y.Repeat || x.Only != y.Only || x.Unique != y.Unique || !cardinalEqual(x.Card, y.Card) {
			return false
		}
		return typeSliceEqual(x.Items, y.Items) && typeEqual(x.Tail, y.Tail)
	}
	return false
}

func typeSliceEqual(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !typeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cardinalEqual(a, b ast.Cardinal) bool {
	return intPtrEqual(a.Min, b.Min) && intPtrEqual(a.Max, b.Max)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func restrictionEqual(a, b ast.ObjectRestriction) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.RestrictOnlyNames:
		return nameConstraintEqual(a.Names, b.Names)
	case ast.RestrictOnlyKV:
		return nameConstraintEqual(a.Names, b.Names) && typeEqual(a.ValueTyp, b.ValueTyp)
	}
	return true
}

func nameConstraintEqual(a, b *ast.NameConstraint) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.NameRegex:
		return a.Pattern == b.Pattern
	case ast.NameRef:
		return a.RefName == b.RefName
	}
	return true
}
