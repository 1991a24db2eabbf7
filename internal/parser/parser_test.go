package parser

import (
	"testing"

	"github.com/fab13n/jsonschema-cn/internal/ast"
)

func mustParse(t *testing.T, src string) ast.Schema {
	t.Helper()
	s, err := ParseSchema(src)
	if err != nil {
		t.Fatalf("ParseSchema(%q): %v", src, err)
	}
	return s
}

func TestParseKeyword(t *testing.T) {
	s := mustParse(t, "boolean")
	kw, ok := s.Root.(*ast.Keyword)
	if !ok || kw.Name != ast.Boolean {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseBareObjectAndArrayAreKeywords(t *testing.T) {
	s := mustParse(t, "object")
	if kw, ok := s.Root.(*ast.Keyword); !ok || kw.Name != ast.ObjectKW {
		t.Fatalf("object: got %#v", s.Root)
	}
	s = mustParse(t, "array")
	if kw, ok := s.Root.(*ast.Keyword); !ok || kw.Name != ast.ArrayKW {
		t.Fatalf("array: got %#v", s.Root)
	}
}

func TestParseEnumShortcut(t *testing.T) {
	s := mustParse(t, "`1` | `2`")
	en, ok := s.Root.(*ast.Enum)
	if !ok || len(en.Values) != 2 {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseMixedAnyOfIsNotEnum(t *testing.T) {
	s := mustParse(t, "`1` | boolean")
	if _, ok := s.Root.(*ast.AnyOf); !ok {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseNestedParenthesizedUnionFoldsIntoEnum(t *testing.T) {
	s := mustParse(t, "(`1` | `2`) | `3`")
	en, ok := s.Root.(*ast.Enum)
	if !ok || len(en.Values) != 3 {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseBareStringInterpretsEscapes(t *testing.T) {
	s := mustParse(t, `"a\nb"`)
	lit, ok := s.Root.(*ast.Literal)
	if !ok || lit.Value.StringValue() != "a\nb" {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseQuotedPropertyKeyInterpretsEscapes(t *testing.T) {
	s := mustParse(t, `{"a\"b": boolean}`)
	obj := s.Root.(*ast.Object)
	if obj.Properties[0].Key != `a"b` {
		t.Fatalf("got %q", obj.Properties[0].Key)
	}
}

func TestParseArrayRepeatTail(t *testing.T) {
	s := mustParse(t, "[integer, boolean+]{4}")
	arr, ok := s.Root.(*ast.Array)
	if !ok {
		t.Fatalf("got %#v", s.Root)
	}
	if len(arr.Items) != 1 {
		t.Fatalf("expected 1 prefix item, got %d", len(arr.Items))
	}
	if arr.Repeat != ast.OneOrMore {
		t.Fatalf("expected OneOrMore, got %v", arr.Repeat)
	}
	if arr.Tail == nil {
		t.Fatal("expected a non-nil Tail type")
	}
	kw, ok := arr.Tail.(*ast.Keyword)
	if !ok || kw.Name != ast.Boolean {
		t.Fatalf("tail: got %#v", arr.Tail)
	}
	if arr.Card.Min == nil || *arr.Card.Min != 4 {
		t.Fatalf("card: got %#v", arr.Card)
	}
}

func TestParseArrayZeroOrMoreHomogeneous(t *testing.T) {
	s := mustParse(t, "[integer*]")
	arr, ok := s.Root.(*ast.Array)
	if !ok {
		t.Fatalf("got %#v", s.Root)
	}
	if len(arr.Items) != 0 {
		t.Fatalf("expected no fixed prefix, got %d", len(arr.Items))
	}
	if arr.Repeat != ast.ZeroOrMore {
		t.Fatalf("got %v", arr.Repeat)
	}
	if arr.Tail == nil {
		t.Fatal("expected Tail to be set")
	}
}

func TestParseObjectOnlyRestrictionWithRef(t *testing.T) {
	s := mustParse(t, "{only <id>: <byte>} where id = r\"[a-z]+\" and byte = integer{0,0xff}")
	obj, ok := s.Root.(*ast.Object)
	if !ok {
		t.Fatalf("got %#v", s.Root)
	}
	if obj.Restriction.Kind != ast.RestrictOnlyKV {
		t.Fatalf("got %v", obj.Restriction.Kind)
	}
	if obj.Restriction.Names == nil || obj.Restriction.Names.Kind != ast.NameRef || obj.Restriction.Names.RefName != "id" {
		t.Fatalf("got %#v", obj.Restriction.Names)
	}
	if s.Defs.Len() != 2 {
		t.Fatalf("expected 2 definitions, got %d", s.Defs.Len())
	}
}

func TestParseObjectOnlyBareListed(t *testing.T) {
	s := mustParse(t, "{only a: boolean}")
	obj, ok := s.Root.(*ast.Object)
	if !ok {
		t.Fatalf("got %#v", s.Root)
	}
	if obj.Restriction.Kind != ast.RestrictOnlyListed {
		t.Fatalf("got %v", obj.Restriction.Kind)
	}
	if len(obj.Properties) != 1 || obj.Properties[0].Key != "a" {
		t.Fatalf("got %#v", obj.Properties)
	}
}

func TestParseForbiddenPropertyIsImplicitlyOptional(t *testing.T) {
	s := mustParse(t, "{a: forbidden}")
	obj := s.Root.(*ast.Object)
	if !obj.Properties[0].Optional {
		t.Fatal("expected forbidden property to be marked optional")
	}
}

func TestParseConditionalChain(t *testing.T) {
	s := mustParse(t, `if {country: "USA"} then {postcode: r"\d{5}"} elif {country: "FR"} then {postcode: r"\d{5}"} else {postcode: string}`)
	cond, ok := s.Root.(*ast.Conditional)
	if !ok {
		t.Fatalf("got %#v", s.Root)
	}
	if len(cond.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(cond.Branches))
	}
	if cond.Else == nil {
		t.Fatal("expected an else clause")
	}
}

func TestParseIntegerDivisor(t *testing.T) {
	s := mustParse(t, "integer/3")
	ic, ok := s.Root.(*ast.IntegerCard)
	if !ok || ic.MultipleOf == nil || *ic.MultipleOf != 3 {
		t.Fatalf("got %#v", s.Root)
	}
}

func TestParseUnboundedCardinal(t *testing.T) {
	s := mustParse(t, "string{_,10}")
	sc := s.Root.(*ast.StringCard)
	if sc.Card.Min != nil {
		t.Fatalf("expected no min, got %v", *sc.Card.Min)
	}
	if sc.Card.Max == nil || *sc.Card.Max != 10 {
		t.Fatalf("got %#v", sc.Card)
	}
}

func TestParseErrorReportsOffset(t *testing.T) {
	_, err := ParseSchema("boolean &")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Offset != len("boolean &") {
		t.Fatalf("got offset %d", perr.Offset)
	}
}
