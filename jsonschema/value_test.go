package jsonschema

import "testing"

func TestMarshalPreservesMemberOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", Int(1))
	obj.Set("a", Int(2))
	obj.Set("m", Int(3))
	b, err := Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(b)
	want := `{"z":1,"a":2,"m":3}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestSetOverwritePreservesPosition(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Int(1))
	obj.Set("b", Int(2))
	obj.Set("a", Int(99))
	b, _ := Marshal(obj)
	want := `{"a":99,"b":2}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", string(b), want)
	}
}

func TestEqual(t *testing.T) {
	a := Array(Int(1), String("x"), Bool(true), Null())
	b := Array(Int(1), String("x"), Bool(true), Null())
	if !Equal(a, b) {
		t.Fatal("expected equal arrays")
	}
	c := Array(Int(1), String("y"), Bool(true), Null())
	if Equal(a, c) {
		t.Fatal("expected unequal arrays")
	}
}

func TestEqualObjectIsOrderSensitive(t *testing.T) {
	a := NewObject()
	a.Set("x", Int(1))
	a.Set("y", Int(2))
	b := NewObject()
	b.Set("y", Int(2))
	b.Set("x", Int(1))
	if Equal(a, b) {
		t.Fatal("expected member order to matter")
	}
}

func TestNumberPreservesVerbatimText(t *testing.T) {
	v := Number("0xff")
	b, _ := Marshal(v)
	if string(b) != "0xff" {
		t.Fatalf("got %s", string(b))
	}
}
