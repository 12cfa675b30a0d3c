package literal

// Kind classifies a parsed Value.
type Kind int

const (
	// Null covers null, undefined and absent values.
	Null Kind = iota
	String
	Number
	Bool
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "null"
	}
}

// Value is one node of a parsed literal. The zero Value is Null, which is
// what a lookup of a missing key yields.
type Value struct {
	Kind Kind
	// Text is the contents of a String or the spelling of a Number.
	Text   string
	Bool   bool
	Fields []Field
	Items  []Value
	Pos    Position
}

type Field struct {
	Key    string
	KeyPos Position
	Value  Value
}

// Get returns the value of the last field named key, or a Null value.
func (v Value) Get(key string) Value {
	for i := len(v.Fields) - 1; i >= 0; i-- {
		if v.Fields[i].Key == key {
			return v.Fields[i].Value
		}
	}
	return Value{}
}

// RootName is the identifier whose initializer holds the configuration.
const RootName = "CONFIG"

const maxDepth = 64

type parser struct {
	lex   *lexer
	depth int
}

// Parse locates the `const CONFIG = { ... }` declaration in src and returns
// its object literal. Text after the closing brace is not read.
func Parse(src string) (Value, error) {
	p := &parser{lex: newLexer(src)}
	open, err := p.findRoot()
	if err != nil {
		return Value{}, err
	}
	return p.object(open.pos)
}

func (p *parser) next() (token, error) {
	return p.lex.next()
}

// findRoot scans for `const|let|var CONFIG =` and returns the opening brace.
func (p *parser) findRoot() (token, error) {
	var prev, cur token
	for {
		tok, err := p.next()
		if err != nil {
			return token{}, err
		}
		if tok.kind == tokEOF {
			return token{}, &DecodeError{Msg: "no " + RootName + " declaration found"}
		}
		if tok.is(tokPunct, "=") && cur.is(tokIdent, RootName) && isDeclKeyword(prev) {
			open, err := p.next()
			if err != nil {
				return token{}, err
			}
			if !open.is(tokPunct, "{") {
				return token{}, errorAt(open.pos, "%s must be initialized with an object literal, found %s", RootName, open.describe())
			}
			return open, nil
		}
		prev, cur = cur, tok
	}
}

func isDeclKeyword(t token) bool {
	return t.kind == tokIdent && (t.text == "const" || t.text == "let" || t.text == "var")
}

func (p *parser) value(tok token) (Value, error) {
	switch tok.kind {
	case tokString:
		return Value{Kind: String, Text: tok.text, Pos: tok.pos}, nil
	case tokNumber:
		return Value{Kind: Number, Text: tok.text, Pos: tok.pos}, nil
	case tokIdent:
		switch tok.text {
		case "true", "false":
			return Value{Kind: Bool, Bool: tok.text == "true", Pos: tok.pos}, nil
		case "null", "undefined":
			return Value{Kind: Null, Pos: tok.pos}, nil
		}
		return Value{}, errorAt(tok.pos, "unexpected identifier %q", tok.text)
	case tokPunct:
		switch tok.text {
		case "{":
			return p.object(tok.pos)
		case "[":
			return p.array(tok.pos)
		}
	}
	return Value{}, errorAt(tok.pos, "unexpected %s", tok.describe())
}

func (p *parser) enter(at Position) error {
	p.depth++
	if p.depth > maxDepth {
		return errorAt(at, "literal nested deeper than %d levels", maxDepth)
	}
	return nil
}

func (p *parser) object(open Position) (Value, error) {
	if err := p.enter(open); err != nil {
		return Value{}, err
	}
	defer func() { p.depth-- }()

	obj := Value{Kind: Object, Pos: open}
	for {
		tok, err := p.next()
		if err != nil {
			return Value{}, err
		}
		if tok.is(tokPunct, "}") {
			return obj, nil
		}
		if tok.kind == tokEOF {
			return Value{}, errorAt(open, "unclosed '{'")
		}
		if tok.kind != tokIdent && tok.kind != tokString && tok.kind != tokNumber {
			return Value{}, errorAt(tok.pos, "expected property name, found %s", tok.describe())
		}
		field := Field{Key: tok.text, KeyPos: tok.pos}

		colon, err := p.next()
		if err != nil {
			return Value{}, err
		}
		if !colon.is(tokPunct, ":") {
			if colon.kind == tokEOF {
				return Value{}, errorAt(open, "unclosed '{'")
			}
			return Value{}, errorAt(colon.pos, "expected ':' after %q, found %s", field.Key, colon.describe())
		}

		vtok, err := p.next()
		if err != nil {
			return Value{}, err
		}
		if vtok.kind == tokEOF {
			return Value{}, errorAt(open, "unclosed '{'")
		}
		if field.Value, err = p.value(vtok); err != nil {
			return Value{}, err
		}
		obj.Fields = append(obj.Fields, field)

		sep, err := p.next()
		if err != nil {
			return Value{}, err
		}
		switch {
		case sep.is(tokPunct, ","):
		case sep.is(tokPunct, "}"):
			return obj, nil
		case sep.kind == tokEOF:
			return Value{}, errorAt(open, "unclosed '{'")
		default:
			return Value{}, errorAt(sep.pos, "expected ',' or '}', found %s", sep.describe())
		}
	}
}

func (p *parser) array(open Position) (Value, error) {
	if err := p.enter(open); err != nil {
		return Value{}, err
	}
	defer func() { p.depth-- }()

	arr := Value{Kind: Array, Pos: open}
	for {
		tok, err := p.next()
		if err != nil {
			return Value{}, err
		}
		if tok.is(tokPunct, "]") {
			return arr, nil
		}
		if tok.kind == tokEOF {
			return Value{}, errorAt(open, "unclosed '['")
		}
		item, err := p.value(tok)
		if err != nil {
			return Value{}, err
		}
		arr.Items = append(arr.Items, item)

		sep, err := p.next()
		if err != nil {
			return Value{}, err
		}
		switch {
		case sep.is(tokPunct, ","):
		case sep.is(tokPunct, "]"):
			return arr, nil
		case sep.kind == tokEOF:
			return Value{}, errorAt(open, "unclosed '['")
		default:
			return Value{}, errorAt(sep.pos, "expected ',' or ']', found %s", sep.describe())
		}
	}
}
