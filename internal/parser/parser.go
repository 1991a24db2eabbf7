// Package parser implements a recursive-descent parser for the JSCN grammar,
// turning a token stream from internal/lexer into an internal/ast.Schema.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fab13n/jsonschema-cn/internal/ast"
	"github.com/fab13n/jsonschema-cn/internal/jsondecode"
	"github.com/fab13n/jsonschema-cn/internal/lexer"
	"github.com/fab13n/jsonschema-cn/internal/token"
	"github.com/fab13n/jsonschema-cn/jsonschema"
)

// Error reports a grammar mismatch at a byte offset, together with the set
// of token kinds that would have been accepted there. Parse errors are
// terminal; the parser never attempts recovery.
type Error struct {
	Offset   int
	Expected []string
	Msg      string
}

func (e *Error) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d: %s (expected one of: %s)", e.Offset, e.Msg, strings.Join(e.Expected, ", "))
}

// parser holds single-token lookahead state over a lexer.Lexer.
type parser struct {
	lx  *lexer.Lexer
	tok token.Token
}

// ParseSchema parses a complete "type (\"where\" definitions)?" document.
func ParseSchema(src string) (ast.Schema, error) {
	p := &parser{lx: lexer.New(src)}
	if err := p.advance(); err != nil {
		return ast.Schema{}, err
	}
	root, err := p.parseType()
	if err != nil {
		return ast.Schema{}, err
	}
	defs := ast.NewDefs()
	if p.tok.Kind == token.WHERE {
		if err := p.advance(); err != nil {
			return ast.Schema{}, err
		}
		defs, err = p.parseDefinitions()
		if err != nil {
			return ast.Schema{}, err
		}
	}
	if p.tok.Kind != token.EOF {
		return ast.Schema{}, p.errorf("unexpected trailing input", token.EOF)
	}
	return ast.Schema{Root: root, Defs: defs}, nil
}

// ParseDefinitions parses a standalone "definitions" document (no leading
// type, no "where").
func ParseDefinitions(src string) (ast.Defs, error) {
	p := &parser{lx: lexer.New(src)}
	if err := p.advance(); err != nil {
		return ast.Defs{}, err
	}
	defs, err := p.parseDefinitions()
	if err != nil {
		return ast.Defs{}, err
	}
	if p.tok.Kind != token.EOF {
		return ast.Defs{}, p.errorf("unexpected trailing input", token.EOF)
	}
	return defs, nil
}

func (p *parser) advance() error {
	t, err := p.lx.Next()
	if err != nil {
		return err // a *lexer.Error, passed through unchanged
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(msg string, expected ...token.Kind) error {
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}
	return &Error{Offset: p.tok.Offset, Expected: names, Msg: msg}
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	if p.tok.Kind != k {
		return token.Token{}, p.errorf(fmt.Sprintf("unexpected %s", p.tok.Kind), k)
	}
	t := p.tok
	err := p.advance()
	return t, err
}

// parseDefinitions parses "ident \"=\" type (\"and\" ident \"=\" type)*".
func (p *parser) parseDefinitions() (ast.Defs, error) {
	defs := ast.NewDefs()
	for {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return ast.Defs{}, err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return ast.Defs{}, err
		}
		typ, err := p.parseType()
		if err != nil {
			return ast.Defs{}, err
		}
		defs.Set(nameTok.Lit, typ)
		if p.tok.Kind != token.AND {
			break
		}
		if err := p.advance(); err != nil {
			return ast.Defs{}, err
		}
	}
	return defs, nil
}

// parseType is the "or_expr" entry point: "|" binds loosest.
func (p *parser) parseType() (ast.Type, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []ast.Type{first}
	for p.tok.Kind == token.PIPE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	if values, ok := enumValues(operands); ok {
		return &ast.Enum{Values: values}, nil
	}
	return &ast.AnyOf{Types: operands}, nil
}

// parseAnd is "and_expr": "&" binds tighter than "|".
func (p *parser) parseAnd() (ast.Type, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	operands := []ast.Type{first}
	for p.tok.Kind == token.AMP {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return &ast.AllOf{Types: operands}, nil
}

// parseNot is "not_expr": "not" binds tighter than "&", looser than atom.
func (p *parser) parseNot() (ast.Type, error) {
	if p.tok.Kind == token.NOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Inner: inner}, nil
	}
	return p.parseAtom()
}

// enumValues reports whether every operand is a Literal or an already-folded
// Enum, flattening them into one ordered value list; this is what lets a
// parenthesized nested union ("1"|"2")|"3" still fold into a single Enum,
// mirroring the Or combinator's own Literal/Enum folding in jscn.go.
func enumValues(types []ast.Type) ([]*jsonschema.Value, bool) {
	var values []*jsonschema.Value
	for _, t := range types {
		switch v := t.(type) {
		case *ast.Literal:
			values = append(values, v.Value)
		case *ast.Enum:
			values = append(values, v.Values...)
		default:
			return nil, false
		}
	}
	return values, true
}

func (p *parser) parseAtom() (ast.Type, error) {
	switch p.tok.Kind {
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.IF:
		return p.parseConditional()
	case token.BOOLEAN:
		return p.simpleKeyword(ast.Boolean)
	case token.NUMBER:
		return p.simpleKeyword(ast.NumberKW)
	case token.NULL:
		return p.simpleKeyword(ast.Null)
	case token.OBJECT:
		return p.parseObjectOrKeyword()
	case token.ARRAY:
		return p.parseArrayOrKeyword()
	case token.FORBIDDEN:
		return p.simpleKeyword(ast.Forbidden)
	case token.JSON:
		return p.parseJSONLiteral()
	case token.STRING:
		return p.parseBareString()
	case token.LANGLE:
		return p.parseRef()
	case token.REGEX:
		lit := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Regex{Pattern: lit}, nil
	case token.FORMAT:
		lit := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Format{Name: lit}, nil
	case token.STRINGKW:
		return p.parseStringCard()
	case token.INTEGER:
		return p.parseIntegerCard()
	case token.LBRACE:
		return p.parseObject()
	case token.LBRACKET:
		return p.parseArray()
	}
	return nil, p.errorf(fmt.Sprintf("unexpected %s", p.tok.Kind))
}

func (p *parser) simpleKeyword(name ast.KeywordName) (ast.Type, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Keyword{Name: name}, nil
}

// "object" used bare, with no braces, is the keyword_type atom: {"type":"object"}.
func (p *parser) parseObjectOrKeyword() (ast.Type, error) {
	return p.simpleKeyword(ast.ObjectKW)
}

// "array" used bare, with no brackets, is the keyword_type atom: {"type":"array"}.
func (p *parser) parseArrayOrKeyword() (ast.Type, error) {
	return p.simpleKeyword(ast.ArrayKW)
}

func (p *parser) parseJSONLiteral() (ast.Type, error) {
	lit := p.tok.Lit
	off := p.tok.Offset
	if err := p.advance(); err != nil {
		return nil, err
	}
	val, err := jsondecode.Decode(lit)
	if err != nil {
		return nil, &Error{Offset: off, Msg: err.Error()}
	}
	return &ast.Literal{Value: val}, nil
}

func (p *parser) parseBareString() (ast.Type, error) {
	lit := p.tok.Lit
	off := p.tok.Offset
	if err := p.advance(); err != nil {
		return nil, err
	}
	s, err := decodeStringBody(lit)
	if err != nil {
		return nil, &Error{Offset: off, Msg: err.Error()}
	}
	return &ast.Literal{Value: jsonschema.String(s)}, nil
}

// decodeStringBody interprets JSON escape sequences in a lexed double-quoted
// token body, so a bare string is decoded exactly as its back-quoted
// equivalent `` `"..."` `` would be, per the grammar's stated equivalence.
func decodeStringBody(lit string) (string, error) {
	val, err := jsondecode.Decode(`"` + lit + `"`)
	if err != nil {
		return "", err
	}
	return val.StringValue(), nil
}

func (p *parser) parseRef() (ast.Type, error) {
	if err := p.advance(); err != nil { // consume "<"
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RANGLE); err != nil {
		return nil, err
	}
	return &ast.Ref{Name: name.Lit}, nil
}

func (p *parser) parseStringCard() (ast.Type, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	card, err := p.parseOptCardinal()
	if err != nil {
		return nil, err
	}
	return &ast.StringCard{Card: card}, nil
}

func (p *parser) parseIntegerCard() (ast.Type, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind == token.SLASH {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.IntegerCard{MultipleOf: &n}, nil
	}
	card, err := p.parseOptCardinal()
	if err != nil {
		return nil, err
	}
	return &ast.IntegerCard{Card: card}, nil
}

// parseOptCardinal parses an optional "{" ... "}" cardinal. An absent
// cardinal yields a Cardinal with both bounds nil.
func (p *parser) parseOptCardinal() (ast.Cardinal, error) {
	if p.tok.Kind != token.LBRACE {
		return ast.Cardinal{}, nil
	}
	if err := p.advance(); err != nil {
		return ast.Cardinal{}, err
	}
	card, err := p.parseCardinalContent()
	if err != nil {
		return ast.Cardinal{}, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.Cardinal{}, err
	}
	return card, nil
}

// parseCardinalContent parses "int" | "_, int" | "int, _" | "int, int".
func (p *parser) parseCardinalContent() (ast.Cardinal, error) {
	if p.tok.Kind == token.USCORE {
		if err := p.advance(); err != nil {
			return ast.Cardinal{}, err
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return ast.Cardinal{}, err
		}
		max, err := p.parseIntLiteral()
		if err != nil {
			return ast.Cardinal{}, err
		}
		return ast.Cardinal{Max: &max}, nil
	}
	first, err := p.parseIntLiteral()
	if err != nil {
		return ast.Cardinal{}, err
	}
	if p.tok.Kind != token.COMMA {
		return ast.Cardinal{Min: &first, Max: &first}, nil
	}
	if err := p.advance(); err != nil {
		return ast.Cardinal{}, err
	}
	if p.tok.Kind == token.USCORE {
		if err := p.advance(); err != nil {
			return ast.Cardinal{}, err
		}
		return ast.Cardinal{Min: &first}, nil
	}
	second, err := p.parseIntLiteral()
	if err != nil {
		return ast.Cardinal{}, err
	}
	return ast.Cardinal{Min: &first, Max: &second}, nil
}

func (p *parser) parseIntLiteral() (int, error) {
	if p.tok.Kind != token.INT {
		return 0, p.errorf(fmt.Sprintf("unexpected %s", p.tok.Kind), token.INT)
	}
	lit := p.tok.Lit
	off := p.tok.Offset
	if err := p.advance(); err != nil {
		return 0, err
	}
	var n int64
	var err error
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, err = strconv.ParseInt(lit[2:], 16, 64)
	} else {
		n, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		return 0, &Error{Offset: off, Msg: fmt.Sprintf("invalid integer literal %q", lit)}
	}
	return int(n), nil
}

func (p *parser) parseConditional() (ast.Type, error) {
	var branches []ast.CondBranch
	for {
		if err := p.advance(); err != nil { // consume "if" / "elif"
			return nil, err
		}
		cond, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		then, err := p.parseType()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.CondBranch{Cond: cond, Then: then})
		if p.tok.Kind != token.ELIF {
			break
		}
	}
	var elseTyp ast.Type
	if p.tok.Kind == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elseTyp = e
	}
	return &ast.Conditional{Branches: branches, Else: elseTyp}, nil
}

// parseObject parses "{" obj_restriction? (obj_prop ("," obj_prop)* ","?)? "}" cardinal?
func (p *parser) parseObject() (ast.Type, error) {
	if err := p.advance(); err != nil { // consume "{"
		return nil, err
	}
	restriction := ast.ObjectRestriction{Kind: ast.RestrictNone}
	if p.tok.Kind == token.ONLY {
		r, err := p.parseObjectRestriction()
		if err != nil {
			return nil, err
		}
		restriction = r
	}
	var props []ast.ObjectProperty
	for p.tok.Kind == token.IDENT || p.tok.Kind == token.STRING || isKeywordAsName(p.tok.Kind) {
		prop, err := p.parseObjectProperty()
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
		if p.tok.Kind != token.COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	card, err := p.parseOptCardinal()
	if err != nil {
		return nil, err
	}
	return &ast.Object{Properties: props, Restriction: restriction, Card: card}, nil
}

// isKeywordAsName allows reserved words to double as unquoted property
// names, matching common JSON-ish DSLs where "type", "object", etc. are
// common field names.
func isKeywordAsName(k token.Kind) bool {
	switch k {
	case token.BOOLEAN, token.STRINGKW, token.INTEGER, token.NUMBER, token.NULL,
		token.OBJECT, token.ARRAY, token.FORBIDDEN, token.ONLY, token.UNIQUE,
		token.NOT, token.WHERE, token.AND, token.IF, token.THEN, token.ELIF, token.ELSE:
		return true
	}
	return false
}

func (p *parser) parseObjectRestriction() (ast.ObjectRestriction, error) {
	if err := p.advance(); err != nil { // consume "only"
		return ast.ObjectRestriction{}, err
	}
	// "only" alone, followed directly by a property or "}".
	if p.tok.Kind == token.RBRACE || p.tok.Kind == token.IDENT || p.tok.Kind == token.STRING || isKeywordAsName(p.tok.Kind) {
		return ast.ObjectRestriction{Kind: ast.RestrictOnlyListed}, nil
	}
	nc, isWildcard, err := p.parseNameConstraintOrWildcard()
	if err != nil {
		return ast.ObjectRestriction{}, err
	}
	if p.tok.Kind != token.COLON {
		if isWildcard {
			return ast.ObjectRestriction{}, p.errorf("wildcard \"_\" requires \": type\"")
		}
		return ast.ObjectRestriction{Kind: ast.RestrictOnlyNames, Names: nc}, nil
	}
	if err := p.advance(); err != nil { // consume ":"
		return ast.ObjectRestriction{}, err
	}
	valTyp, err := p.parseType()
	if err != nil {
		return ast.ObjectRestriction{}, err
	}
	if isWildcard {
		return ast.ObjectRestriction{Kind: ast.RestrictOnlyKV, Names: nil, ValueTyp: valTyp}, nil
	}
	return ast.ObjectRestriction{Kind: ast.RestrictOnlyKV, Names: nc, ValueTyp: valTyp}, nil
}

// parseNameConstraintOrWildcard parses "regex" | "<" ident ">" | "_".
func (p *parser) parseNameConstraintOrWildcard() (*ast.NameConstraint, bool, error) {
	switch p.tok.Kind {
	case token.REGEX:
		pat := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return &ast.NameConstraint{Kind: ast.NameRegex, Pattern: pat}, false, nil
	case token.LANGLE:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RANGLE); err != nil {
			return nil, false, err
		}
		return &ast.NameConstraint{Kind: ast.NameRef, RefName: name.Lit}, false, nil
	case token.USCORE:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return nil, false, p.errorf(fmt.Sprintf("unexpected %s", p.tok.Kind), token.REGEX, token.LANGLE, token.USCORE)
}

func (p *parser) parseObjectProperty() (ast.ObjectProperty, error) {
	var key string
	if p.tok.Kind == token.STRING {
		lit := p.tok.Lit
		off := p.tok.Offset
		if err := p.advance(); err != nil {
			return ast.ObjectProperty{}, err
		}
		k, err := decodeStringBody(lit)
		if err != nil {
			return ast.ObjectProperty{}, &Error{Offset: off, Msg: err.Error()}
		}
		key = k
	} else {
		key = p.tok.Lit
		if key == "" {
			key = p.tok.Kind.String()
		}
		if err := p.advance(); err != nil {
			return ast.ObjectProperty{}, err
		}
	}
	optional := false
	if p.tok.Kind == token.QUESTION {
		optional = true
		if err := p.advance(); err != nil {
			return ast.ObjectProperty{}, err
		}
	}
	if _, err := p.expect(token.COLON); err != nil {
		return ast.ObjectProperty{}, err
	}
	val, err := p.parseType()
	if err != nil {
		return ast.ObjectProperty{}, err
	}
	if isForbidden(val) {
		optional = true
	}
	return ast.ObjectProperty{Key: key, Optional: optional, Value: val}, nil
}

func isForbidden(t ast.Type) bool {
	kw, ok := t.(*ast.Keyword)
	return ok && kw.Name == ast.Forbidden
}

// parseArray parses "[" "only"? "unique"? (type ("," type)*)? ("*"|"+")? "]" cardinal?
func (p *parser) parseArray() (ast.Type, error) {
	if err := p.advance(); err != nil { // consume "["
		return nil, err
	}
	only := false
	unique := false
	for p.tok.Kind == token.ONLY || p.tok.Kind == token.UNIQUE {
		if p.tok.Kind == token.ONLY {
			only = true
		} else {
			unique = true
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var items []ast.Type
	for p.tok.Kind != token.RBRACKET {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		items = append(items, typ)
		if p.tok.Kind == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	repeat := ast.Closed
	switch p.tok.Kind {
	case token.STAR:
		repeat = ast.ZeroOrMore
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.PLUS:
		repeat = ast.OneOrMore
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	card, err := p.parseOptCardinal()
	if err != nil {
		return nil, err
	}
	var tail ast.Type
	if repeat != ast.Closed && len(items) > 0 {
		// The last listed type is the repeated tail type; it is not part of
		// the fixed prefix.
		tail = items[len(items)-1]
		items = items[:len(items)-1]
	}
	return &ast.Array{Items: items, Tail: tail, Repeat: repeat, Only: only, Unique: unique, Card: card}, nil
}
