package lower

import (
	"testing"

	"github.com/fab13n/jsonschema-cn/internal/parser"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

func compile(t *testing.T, src string) *jsonschema.Value {
	t.Helper()
	s, err := parser.ParseSchema(src)
	if err != nil {
		t.Fatalf("ParseSchema(%q): %v", src, err)
	}
	v, err := Schema(s)
	if err != nil {
		t.Fatalf("Schema(%q): %v", src, err)
	}
	return v
}

func marshal(t *testing.T, v *jsonschema.Value) string {
	t.Helper()
	b, err := jsonschema.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(b)
}

func TestLowerBoolean(t *testing.T) {
	got := marshal(t, compile(t, "boolean"))
	want := `{"$schema":"http://json-schema.org/draft-07/schema#","type":"boolean"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestLowerArrayHomogeneous(t *testing.T) {
	v := compile(t, "[integer*]")
	if _, ok := v.Get("items"); !ok {
		t.Fatal("expected an items key")
	}
	items, _ := v.Get("items")
	if items.Kind() != jsonschema.KindObject {
		t.Fatalf("expected homogeneous items to be an object, got %v", items.Kind())
	}
	typ, _ := items.Get("type")
	if typ.StringValue() != "integer" {
		t.Fatalf("got %#v", typ)
	}
}

func TestLowerArrayTuplePlusTail(t *testing.T) {
	v := compile(t, "[integer, boolean+]{4}")
	minItems, ok := v.Get("minItems")
	if !ok || minItems.NumberLiteral() != "4" {
		t.Fatalf("minItems: got %#v", minItems)
	}
	maxItems, ok := v.Get("maxItems")
	if !ok || maxItems.NumberLiteral() != "4" {
		t.Fatalf("maxItems: got %#v", maxItems)
	}
	items, ok := v.Get("items")
	if !ok || items.Kind() != jsonschema.KindArray || len(items.Items()) != 1 {
		t.Fatalf("items: got %#v", items)
	}
	addl, ok := v.Get("additionalItems")
	if !ok {
		t.Fatal("expected additionalItems")
	}
	typ, _ := addl.Get("type")
	if typ.StringValue() != "boolean" {
		t.Fatalf("got %#v", addl)
	}
}

func TestLowerOneOrMoreForcesMinItems(t *testing.T) {
	v := compile(t, "[integer+]")
	minItems, ok := v.Get("minItems")
	if !ok || minItems.NumberLiteral() != "1" {
		t.Fatalf("got %#v", minItems)
	}
}

func TestLowerClosedArrayCardinalBelowPrefixIsAdjusted(t *testing.T) {
	v := compile(t, "[integer, boolean]{1}")
	minItems, ok := v.Get("minItems")
	if !ok || minItems.NumberLiteral() != "2" {
		t.Fatalf("minItems: got %#v", minItems)
	}
	maxItems, ok := v.Get("maxItems")
	if !ok || maxItems.NumberLiteral() != "2" {
		t.Fatalf("maxItems: got %#v", maxItems)
	}
}

func TestLowerEnumShortcut(t *testing.T) {
	v := compile(t, "`1` | `2`")
	enum, ok := v.Get("enum")
	if !ok {
		t.Fatal("expected an enum key")
	}
	if _, hasAnyOf := v.Get("anyOf"); hasAnyOf {
		t.Fatal("did not expect anyOf alongside enum")
	}
	if len(enum.Items()) != 2 {
		t.Fatalf("got %#v", enum.Items())
	}
}

func TestLowerReferenceAndDefinitions(t *testing.T) {
	v := compile(t, `{only <id>: <byte>} where id = r"[a-z]+" and byte = integer{0,0xff}`)
	propNames, ok := v.Get("propertyNames")
	if !ok {
		t.Fatal("expected propertyNames")
	}
	ref, ok := propNames.Get("$ref")
	if !ok || ref.StringValue() != "#/definitions/id" {
		t.Fatalf("got %#v", propNames)
	}
	addl, ok := v.Get("additionalProperties")
	if !ok {
		t.Fatal("expected additionalProperties")
	}
	if r, _ := addl.Get("$ref"); r == nil || r.StringValue() != "#/definitions/byte" {
		t.Fatalf("got %#v", addl)
	}
	defs, ok := v.Get("definitions")
	if !ok {
		t.Fatal("expected a definitions object")
	}
	if !defs.Has("id") || !defs.Has("byte") {
		t.Fatalf("got %#v", defs.Members())
	}
}

func TestLowerUnreachableDefinitionIsPruned(t *testing.T) {
	v := compile(t, "boolean where unused = integer")
	if _, ok := v.Get("definitions"); ok {
		t.Fatal("expected no definitions object when nothing is referenced")
	}
}

func TestLowerUnresolvedReference(t *testing.T) {
	s, err := parser.ParseSchema("<missing>")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	_, err = Schema(s)
	if err == nil {
		t.Fatal("expected an unresolved-reference error")
	}
	if _, ok := err.(*UnresolvedReferenceError); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestLowerInvalidCardinal(t *testing.T) {
	s, err := parser.ParseSchema("integer{5,3}")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	_, err = Schema(s)
	if _, ok := err.(*InvalidCardinalError); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestLowerConditional(t *testing.T) {
	v := compile(t, `if {country: "USA"} then {postcode: r"\d{5}(-\d{4})?"} else {postcode: string}`)
	if _, ok := v.Get("if"); !ok {
		t.Fatal("expected if")
	}
	if _, ok := v.Get("then"); !ok {
		t.Fatal("expected then")
	}
	elseVal, ok := v.Get("else")
	if !ok {
		t.Fatal("expected else")
	}
	props, _ := elseVal.Get("properties")
	if !props.Has("postcode") {
		t.Fatalf("got %#v", elseVal)
	}
}

func TestLowerObjectForbiddenProperty(t *testing.T) {
	v := compile(t, "{a: forbidden}")
	props, ok := v.Get("properties")
	if !ok {
		t.Fatal("expected properties")
	}
	a, _ := props.Get("a")
	if a.Kind() != jsonschema.KindBool || a.BoolValue() {
		t.Fatalf("got %#v", a)
	}
	if _, hasRequired := v.Get("required"); hasRequired {
		t.Fatal("forbidden property must not be required")
	}
}

func TestLowerDuplicateProperty(t *testing.T) {
	// The parser accepts a repeated key; lowering is where the duplicate
	// is rejected.
	s, err := parser.ParseSchema(`{a: boolean, a: integer}`)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	_, err = Schema(s)
	if _, ok := err.(*DuplicatePropertyError); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}
