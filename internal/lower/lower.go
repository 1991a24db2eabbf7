// Package lower turns a parsed internal/ast.Schema into a JSON Schema
// draft-07 document, represented as an order-preserving jsonschema.Value. It
// walks the tagged AST sum the same way the engine this compiler is modeled
// on walks its own token tree: one switch over the node's concrete type, one
// case per production, no shared mutable state beyond the reachability set
// threaded through the walk.
package lower

import (
	"fmt"

	"github.com/fab13n/jsonschema-cn/internal/ast"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// UnresolvedReferenceError reports a "<id>" with no matching definition.
type UnresolvedReferenceError struct {
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.Name)
}

// InvalidCardinalError reports a cardinal whose min exceeds its max. (The
// grammar's integer literals are unsigned, so a bound is never negative.)
type InvalidCardinalError struct {
	Context string
	Min     int
	Max     int
}

func (e *InvalidCardinalError) Error() string {
	return fmt.Sprintf("invalid cardinal in %s: min %d > max %d", e.Context, e.Min, e.Max)
}

// DuplicatePropertyError reports the same literal key declared twice in one
// object body.
type DuplicatePropertyError struct {
	Key string
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("duplicate property %q", e.Key)
}

// state threads the definition table and the growing reachability set
// through a single top-level lowering.
type state struct {
	defs    ast.Defs
	reached map[string]*jsonschema.Value // name -> lowered form, in first-reached order
	order   []string
}

// Schema lowers a parsed Schema into a complete JSON Schema draft-07
// document, including the "$schema" header and a pruned "definitions"
// object holding only the definitions transitively reachable from root.
func Schema(s ast.Schema) (*jsonschema.Value, error) {
	st := &state{defs: s.Defs, reached: map[string]*jsonschema.Value{}}
	root, err := st.lowerType(s.Root)
	if err != nil {
		return nil, err
	}
	// A root of Keyword(forbidden) lowers to the bare JSON boolean false,
	// which cannot carry a "$schema" key; emit it unwrapped.
	if root.Kind() != jsonschema.KindObject {
		return root, nil
	}
	out := jsonschema.NewObject()
	out.Set("$schema", jsonschema.String(draft07))
	for _, m := range root.Members() {
		out.Set(m.Key, m.Value)
	}
	if len(st.order) > 0 {
		defsObj := jsonschema.NewObject()
		for _, name := range st.order {
			defsObj.Set(name, st.reached[name])
		}
		out.Set("definitions", defsObj)
	}
	return out, nil
}

// resolve lowers and memoizes definition name, marking it reached. Lowering
// the body may itself mark further names reached (transitive reachability),
// which is why this recurses through lowerType rather than a flat loop.
func (st *state) resolve(name string) (*jsonschema.Value, error) {
	if v, ok := st.reached[name]; ok {
		return v, nil
	}
	typ, ok := st.defs.Get(name)
	if !ok {
		return nil, &UnresolvedReferenceError{Name: name}
	}
	// Reserve the slot before recursing so a cyclic reference sees itself as
	// already "reached" and does not loop forever; the placeholder is
	// overwritten once the body finishes lowering.
	st.reached[name] = jsonschema.NewObject()
	st.order = append(st.order, name)
	v, err := st.lowerType(typ)
	if err != nil {
		return nil, err
	}
	st.reached[name] = v
	return v, nil
}

func refValue(name string) *jsonschema.Value {
	v := jsonschema.NewObject()
	v.Set("$ref", jsonschema.String("#/definitions/"+name))
	return v
}

func (st *state) lowerType(t ast.Type) (*jsonschema.Value, error) {
	switch n := t.(type) {
	case *ast.Literal:
		v := jsonschema.NewObject()
		v.Set("const", n.Value)
		return v, nil
	case *ast.Enum:
		v := jsonschema.NewObject()
		v.Set("enum", jsonschema.Array(n.Values...))
		return v, nil
	case *ast.Keyword:
		return st.lowerKeyword(n)
	case *ast.Regex:
		v := jsonschema.NewObject()
		v.Set("type", jsonschema.String("string"))
		v.Set("pattern", jsonschema.String(n.Pattern))
		return v, nil
	case *ast.Format:
		v := jsonschema.NewObject()
		v.Set("type", jsonschema.String("string"))
		v.Set("format", jsonschema.String(n.Name))
		return v, nil
	case *ast.StringCard:
		return st.lowerStringCard(n)
	case *ast.IntegerCard:
		return st.lowerIntegerCard(n)
	case *ast.Ref:
		if _, err := st.resolve(n.Name); err != nil {
			return nil, err
		}
		return refValue(n.Name), nil
	case *ast.Not:
		inner, err := st.lowerType(n.Inner)
		if err != nil {
			return nil, err
		}
		v := jsonschema.NewObject()
		v.Set("not", inner)
		return v, nil
	case *ast.AllOf:
		items, err := st.lowerAll(n.Types)
		if err != nil {
			return nil, err
		}
		v := jsonschema.NewObject()
		v.Set("allOf", jsonschema.Array(items...))
		return v, nil
	case *ast.AnyOf:
		items, err := st.lowerAll(n.Types)
		if err != nil {
			return nil, err
		}
		v := jsonschema.NewObject()
		v.Set("anyOf", jsonschema.Array(items...))
		return v, nil
	case *ast.Conditional:
		return st.lowerConditional(n)
	case *ast.Object:
		return st.lowerObject(n)
	case *ast.Array:
		return st.lowerArray(n)
	}
	return nil, fmt.Errorf("lower: unhandled AST node %T", t)
}

func (st *state) lowerAll(types []ast.Type) ([]*jsonschema.Value, error) {
	out := make([]*jsonschema.Value, len(types))
	for i, t := range types {
		v, err := st.lowerType(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (st *state) lowerKeyword(k *ast.Keyword) (*jsonschema.Value, error) {
	if k.Name == ast.Forbidden {
		return jsonschema.Bool(false), nil
	}
	v := jsonschema.NewObject()
	v.Set("type", jsonschema.String(k.Name.String()))
	return v, nil
}

func (st *state) lowerStringCard(n *ast.StringCard) (*jsonschema.Value, error) {
	if err := checkCardinal("string cardinal", n.Card); err != nil {
		return nil, err
	}
	v := jsonschema.NewObject()
	v.Set("type", jsonschema.String("string"))
	if n.Card.Min != nil {
		v.Set("minLength", jsonschema.Int(*n.Card.Min))
	}
	if n.Card.Max != nil {
		v.Set("maxLength", jsonschema.Int(*n.Card.Max))
	}
	return v, nil
}

func (st *state) lowerIntegerCard(n *ast.IntegerCard) (*jsonschema.Value, error) {
	v := jsonschema.NewObject()
	v.Set("type", jsonschema.String("integer"))
	if n.MultipleOf != nil {
		v.Set("multipleOf", jsonschema.Int(*n.MultipleOf))
		return v, nil
	}
	if err := checkCardinal("integer cardinal", n.Card); err != nil {
		return nil, err
	}
	if n.Card.Min != nil {
		v.Set("minimum", jsonschema.Int(*n.Card.Min))
	}
	if n.Card.Max != nil {
		v.Set("maximum", jsonschema.Int(*n.Card.Max))
	}
	return v, nil
}

func checkCardinal(context string, c ast.Cardinal) error {
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return &InvalidCardinalError{Context: context, Min: *c.Min, Max: *c.Max}
	}
	return nil
}

// lowerConditional renders the branch chain right-associatively: each elif
// nests inside the preceding branch's "else".
func (st *state) lowerConditional(n *ast.Conditional) (*jsonschema.Value, error) {
	var elseVal *jsonschema.Value
	if n.Else != nil {
		v, err := st.lowerType(n.Else)
		if err != nil {
			return nil, err
		}
		elseVal = v
	}
	for i := len(n.Branches) - 1; i >= 0; i-- {
		b := n.Branches[i]
		cond, err := st.lowerType(b.Cond)
		if err != nil {
			return nil, err
		}
		then, err := st.lowerType(b.Then)
		if err != nil {
			return nil, err
		}
		node := jsonschema.NewObject()
		node.Set("if", cond)
		node.Set("then", then)
		if elseVal != nil {
			node.Set("else", elseVal)
		}
		elseVal = node
	}
	return elseVal, nil
}

func (st *state) lowerNameConstraint(nc *ast.NameConstraint) (*jsonschema.Value, error) {
	switch nc.Kind {
	case ast.NameRegex:
		v := jsonschema.NewObject()
		v.Set("type", jsonschema.String("string"))
		v.Set("pattern", jsonschema.String(nc.Pattern))
		return v, nil
	case ast.NameRef:
		if _, err := st.resolve(nc.RefName); err != nil {
			return nil, err
		}
		return refValue(nc.RefName), nil
	}
	return nil, fmt.Errorf("lower: unhandled name constraint kind %v", nc.Kind)
}

func (st *state) lowerObject(n *ast.Object) (*jsonschema.Value, error) {
	seen := map[string]bool{}
	for _, p := range n.Properties {
		if seen[p.Key] {
			return nil, &DuplicatePropertyError{Key: p.Key}
		}
		seen[p.Key] = true
	}

	v := jsonschema.NewObject()
	v.Set("type", jsonschema.String("object"))

	if len(n.Properties) > 0 {
		props := jsonschema.NewObject()
		var required []*jsonschema.Value
		for _, p := range n.Properties {
			forbidden := isForbidden(p.Value)
			var pv *jsonschema.Value
			if forbidden {
				pv = jsonschema.Bool(false)
			} else {
				lv, err := st.lowerType(p.Value)
				if err != nil {
					return nil, err
				}
				pv = lv
			}
			props.Set(p.Key, pv)
			if !p.Optional && !forbidden {
				required = append(required, jsonschema.String(p.Key))
			}
		}
		v.Set("properties", props)
		if len(required) > 0 {
			v.Set("required", jsonschema.Array(required...))
		}
	}

	switch n.Restriction.Kind {
	case ast.RestrictOnlyListed:
		v.Set("additionalProperties", jsonschema.Bool(false))
	case ast.RestrictOnlyNames:
		nc, err := st.lowerNameConstraint(n.Restriction.Names)
		if err != nil {
			return nil, err
		}
		v.Set("propertyNames", nc)
	case ast.RestrictOnlyKV:
		valTyp, err := st.lowerType(n.Restriction.ValueTyp)
		if err != nil {
			return nil, err
		}
		if n.Restriction.Names == nil { // wildcard "_"
			v.Set("additionalProperties", valTyp)
		} else {
			nc, err := st.lowerNameConstraint(n.Restriction.Names)
			if err != nil {
				return nil, err
			}
			v.Set("propertyNames", nc)
			v.Set("additionalProperties", valTyp)
		}
	}

	if err := checkCardinal("object cardinal", n.Card); err != nil {
		return nil, err
	}
	if n.Card.Min != nil {
		v.Set("minProperties", jsonschema.Int(*n.Card.Min))
	}
	if n.Card.Max != nil {
		v.Set("maxProperties", jsonschema.Int(*n.Card.Max))
	}
	return v, nil
}

func isForbidden(t ast.Type) bool {
	kw, ok := t.(*ast.Keyword)
	return ok && kw.Name == ast.Forbidden
}

func (st *state) lowerArray(n *ast.Array) (*jsonschema.Value, error) {
	if err := checkCardinal("array cardinal", n.Card); err != nil {
		return nil, err
	}

	v := jsonschema.NewObject()
	v.Set("type", jsonschema.String("array"))

	k := len(n.Items)
	prefix, err := st.lowerAll(n.Items)
	if err != nil {
		return nil, err
	}

	min, max := n.Card.Min, n.Card.Max

	switch {
	case n.Repeat == ast.Closed && k == 0:
		// bare {"type":"array"}, no items.
	case n.Repeat == ast.Closed:
		v.Set("items", jsonschema.Array(prefix...))
		if n.Only {
			v.Set("additionalItems", jsonschema.Bool(false))
		}
		// A tuple of k fixed items can never have fewer than k elements; an
		// explicit cardinal below k is adjusted up rather than emitted as-is.
		if min != nil && *min < k {
			min = &k
		}
		if max != nil && *max < k {
			max = &k
		}
	default: // ZeroOrMore or OneOrMore
		tail, terr := st.lowerType(n.Tail)
		if terr != nil {
			return nil, terr
		}
		if k == 0 {
			v.Set("items", tail)
		} else {
			v.Set("items", jsonschema.Array(prefix...))
			v.Set("additionalItems", tail)
		}
		if n.Repeat == ast.OneOrMore {
			floor := 1
			if k > 0 {
				floor = k + 1
			}
			if min == nil || *min < floor {
				min = &floor
			}
		}
	}

	if min != nil {
		v.Set("minItems", jsonschema.Int(*min))
	}
	if max != nil {
		v.Set("maxItems", jsonschema.Int(*max))
	}
	if n.Unique {
		v.Set("uniqueItems", jsonschema.Bool(true))
	}
	return v, nil
}
