// Package jsondecode decodes the JSON sub-grammar used by back-quoted and
// bare-quoted JSCN literals directly into an order-preserving
// jsonschema.Value, the way internal/engine in the schema library this
// compiler is modeled on turns a streaming token source into a value tree.
package jsondecode

import (
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/fab13n/jsonschema-cn/jsonschema"
)

// Decode parses a single JSON value from text and returns it as an ordered
// jsonschema.Value. It reports an error if text is not a complete, valid
// JSON value, or contains trailing non-whitespace content.
func Decode(text string) (*jsonschema.Value, error) {
	dec := j.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON literal: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON literal: trailing content after value")
	}
	return v, nil
}

func decodeValue(dec *j.Decoder) (*jsonschema.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *j.Decoder, tok j.Token) (*jsonschema.Value, error) {
	switch t := tok.(type) {
	case j.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return jsonschema.String(t), nil
	case bool:
		return jsonschema.Bool(t), nil
	case j.Number:
		return jsonschema.Number(string(t)), nil
	case nil:
		return jsonschema.Null(), nil
	default:
		return nil, fmt.Errorf("unsupported JSON token %T", t)
	}
}

func decodeObject(dec *j.Decoder) (*jsonschema.Value, error) {
	obj := jsonschema.NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %T", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("unterminated object")
			}
			return nil, err
		}
		obj.Set(key, val)
	}
}

func decodeArray(dec *j.Decoder) (*jsonschema.Value, error) {
	var items []*jsonschema.Value
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == ']' {
			return jsonschema.Array(items...), nil
		}
		val, err := decodeToken(dec, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
}
