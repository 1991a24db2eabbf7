// Package ast defines the abstract syntax tree produced by the JSCN parser.
//
// Type is a tagged sum: one concrete struct per grammar production, all
// implementing the Type marker method. Nodes are immutable once built; the
// parser never mutates a node after returning it.
package ast

import "github.com/fab13n/jsonschema-cn/jsonschema"

// Type is the sum of all JSCN type expressions.
type Type interface {
	isType()
}

// Literal is a back-quoted or bare-quoted scalar used as a `const` value.
type Literal struct {
	Value *jsonschema.Value
}

func (*Literal) isType() {}

// Enum is an ordered, all-Literal anyOf chain, lowered to "enum" rather than
// "anyOf". Constructed structurally during parsing, not by inspecting JSON.
type Enum struct {
	Values []*jsonschema.Value
}

func (*Enum) isType() {}

// Keyword is one of the bare type-name keywords.
type Keyword struct {
	Name KeywordName
}

func (*Keyword) isType() {}

// KeywordName enumerates the keyword-typed atoms.
type KeywordName int

const (
	Boolean KeywordName = iota
	StringKW
	IntegerKW
	NumberKW
	Null
	ObjectKW
	ArrayKW
	Forbidden
)

func (k KeywordName) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case StringKW:
		return "string"
	case IntegerKW:
		return "integer"
	case NumberKW:
		return "number"
	case Null:
		return "null"
	case ObjectKW:
		return "object"
	case ArrayKW:
		return "array"
	case Forbidden:
		return "forbidden"
	default:
		return "?"
	}
}

// Regex is a pattern string destined for the "pattern" keyword.
type Regex struct {
	Pattern string
}

func (*Regex) isType() {}

// Format is a format name destined for the "format" keyword.
type Format struct {
	Name string
}

func (*Format) isType() {}

// Cardinal bounds a length/range/count. Absence of a bound is represented by
// a nil pointer.
type Cardinal struct {
	Min *int
	Max *int
}

// StringCard is "string" with an optional character-count cardinal.
type StringCard struct {
	Card Cardinal
}

func (*StringCard) isType() {}

// IntegerCard is "integer" with an optional cardinal and/or divisor. The
// grammar allows only one of Card or MultipleOf per node; combining both
// requires an explicit "&" at the source level.
type IntegerCard struct {
	Card       Cardinal
	MultipleOf *int
}

func (*IntegerCard) isType() {}

// Ref is a reference to a named definition, "<id>".
type Ref struct {
	Name string
}

func (*Ref) isType() {}

// Not negates its inner type.
type Not struct {
	Inner Type
}

func (*Not) isType() {}

// AllOf is a flattened chain of "&"-joined types.
type AllOf struct {
	Types []Type
}

func (*AllOf) isType() {}

// AnyOf is a flattened chain of "|"-joined types that is not an all-Literal
// enum shape.
type AnyOf struct {
	Types []Type
}

func (*AnyOf) isType() {}

// CondBranch is one "if C then T" / "elif C then T" arm.
type CondBranch struct {
	Cond Type
	Then Type
}

// Conditional is "if C0 then T0 (elif Ci then Ti)* (else E)?".
type Conditional struct {
	Branches []CondBranch // at least one; Branches[0] is the leading "if"
	Else     Type         // nil when no "else" clause is present
}

func (*Conditional) isType() {}

// ObjectProperty is one declared "key: type" / "key?: type" pair, in source
// order.
type ObjectProperty struct {
	Key      string
	Optional bool
	Value    Type
}

// NameConstraintKind distinguishes the two ways extra-property names can be
// constrained.
type NameConstraintKind int

const (
	NameRegex NameConstraintKind = iota
	NameRef
)

// NameConstraint constrains the names of extra object properties, either by
// regex or by reference to a definition.
type NameConstraint struct {
	Kind    NameConstraintKind
	Pattern string // set when Kind == NameRegex
	RefName string // set when Kind == NameRef
}

// RestrictionKind enumerates the four flavors of object extra-property
// restriction.
type RestrictionKind int

const (
	RestrictNone       RestrictionKind = iota // extra properties allowed, unconstrained
	RestrictOnlyListed                        // no extra properties
	RestrictOnlyNames                         // extra keys constrained, any value
	RestrictOnlyKV                            // extra keys constrained (or wildcard), values typed
)

// ObjectRestriction is the optional "only ..." clause of an object type.
type ObjectRestriction struct {
	Kind     RestrictionKind
	Names    *NameConstraint // set for RestrictOnlyNames and RestrictOnlyKV (nil means wildcard "_")
	ValueTyp Type            // set for RestrictOnlyKV
}

// Object is a "{ ... }" type.
type Object struct {
	Properties  []ObjectProperty
	Restriction ObjectRestriction
	Card        Cardinal
}

func (*Object) isType() {}

// RepeatMode classifies the trailing "*"/"+" suffix on the last item type of
// an array, or its absence.
type RepeatMode int

const (
	Closed     RepeatMode = iota // no extra items beyond the listed prefix
	ZeroOrMore                   // trailing "*": 0-or-more items of the last declared type
	OneOrMore                    // trailing "+": 1-or-more items of the last declared type
)

// Array is a "[ ... ]" type.
type Array struct {
	Items  []Type // the fixed prefix of item types (for ZeroOrMore/OneOrMore, excludes the repeated tail type)
	Tail   Type   // the repeated tail type, set iff Repeat != Closed
	Repeat RepeatMode
	Only   bool // forbids any item beyond the listed prefix (Closed mode only)
	Unique bool
	Card   Cardinal
}

func (*Array) isType() {}

// Defs is an insertion-ordered, duplicate-free mapping from definition name
// to Type.
type Defs struct {
	order []string
	index map[string]Type
}

// NewDefs returns an empty Defs value.
func NewDefs() Defs {
	return Defs{index: map[string]Type{}}
}

// Set inserts or overwrites a definition, preserving the position of the
// first insertion for that name.
func (d *Defs) Set(name string, t Type) {
	if d.index == nil {
		d.index = map[string]Type{}
	}
	if _, exists := d.index[name]; !exists {
		d.order = append(d.order, name)
	}
	d.index[name] = t
}

// Get returns the Type bound to name, and whether it was present.
func (d Defs) Get(name string) (Type, bool) {
	t, ok := d.index[name]
	return t, ok
}

// Names returns definition names in insertion order.
func (d Defs) Names() []string {
	return append([]string(nil), d.order...)
}

// Len returns the number of definitions.
func (d Defs) Len() int { return len(d.order) }

// Schema is the top-level parsed entity: a root Type plus its definition
// table.
type Schema struct {
	Root Type
	Defs Defs
}
