package literal

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokIdent
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	// text holds the unescaped contents of a string, the spelling of an
	// identifier or number, or the single rune of a punctuation token.
	text string
	pos  Position
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "string"
	case tokNumber:
		return "number " + t.text
	case tokIdent:
		return "identifier " + t.text
	default:
		return "'" + t.text + "'"
	}
}

// lexer produces tokens on demand so that source after the root literal is
// never examined.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) peekRune() (rune, int) {
	if l.off >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

func (l *lexer) advance() rune {
	r, size := l.peekRune()
	if size == 0 {
		return utf8.RuneError
	}
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.off:], s)
}

func (l *lexer) skipSpaceAndComments() error {
	for l.off < len(l.src) {
		switch {
		case l.hasPrefix("//"):
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case l.hasPrefix("/*"):
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.off >= len(l.src) {
					return errorAt(start, "unterminated block comment")
				}
				if l.hasPrefix("*/") {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			r, _ := l.peekRune()
			if !isSpace(r) {
				return nil
			}
			l.advance()
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	start := l.pos()
	if l.off >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	r, _ := l.peekRune()
	switch {
	case r == '"' || r == '\'':
		s, err := l.quoted(r)
		return token{kind: tokString, text: s, pos: start}, err
	case r == '`':
		s, err := l.template()
		return token{kind: tokString, text: s, pos: start}, err
	case isIdentStart(r):
		begin := l.off
		for {
			c, size := l.peekRune()
			if size == 0 || !isIdentPart(c) {
				break
			}
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[begin:l.off], pos: start}, nil
	case isDigit(r) || ((r == '-' || r == '+' || r == '.') && l.startsNumber()):
		return l.number(start)
	default:
		l.advance()
		return token{kind: tokPunct, text: string(r), pos: start}, nil
	}
}

// startsNumber reports whether the sign or dot at the cursor begins a
// numeric literal.
func (l *lexer) startsNumber() bool {
	rest := l.src[l.off:]
	if len(rest) < 2 {
		return false
	}
	if rest[0] == '.' {
		return isDigit(rune(rest[1]))
	}
	if isDigit(rune(rest[1])) {
		return true
	}
	return len(rest) >= 3 && rest[1] == '.' && isDigit(rune(rest[2]))
}

func (l *lexer) number(start Position) (token, error) {
	begin := l.off
	if l.src[l.off] == '-' || l.src[l.off] == '+' {
		l.advance()
	}
	digits := l.digits()
	if l.off < len(l.src) && l.src[l.off] == '.' {
		l.advance()
		digits += l.digits()
	}
	if digits == 0 {
		return token{}, errorAt(start, "malformed number")
	}
	if l.off < len(l.src) && (l.src[l.off] == 'e' || l.src[l.off] == 'E') {
		l.advance()
		if l.off < len(l.src) && (l.src[l.off] == '-' || l.src[l.off] == '+') {
			l.advance()
		}
		if l.digits() == 0 {
			return token{}, errorAt(start, "malformed number exponent")
		}
	}
	if r, size := l.peekRune(); size > 0 && isIdentPart(r) {
		return token{}, errorAt(start, "malformed number")
	}
	return token{kind: tokNumber, text: l.src[begin:l.off], pos: start}, nil
}

func (l *lexer) digits() int {
	n := 0
	for l.off < len(l.src) && isDigit(rune(l.src[l.off])) {
		l.advance()
		n++
	}
	return n
}

func (l *lexer) quoted(quote rune) (string, error) {
	start := l.pos()
	l.advance()
	var b strings.Builder
	for {
		if l.off >= len(l.src) {
			return "", errorAt(start, "unterminated string")
		}
		r := l.advance()
		switch r {
		case quote:
			return b.String(), nil
		case '\n', '\r':
			return "", errorAt(start, "unterminated string")
		case '\\':
			if err := l.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) escape(b *strings.Builder) error {
	at := l.pos()
	if l.off >= len(l.src) {
		return errorAt(at, "unterminated escape sequence")
	}
	r := l.advance()
	switch r {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'u':
		cp, err := l.hex4(at)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(cp) && l.hasPrefix(`\u`) {
			l.advance()
			l.advance()
			low, err := l.hex4(at)
			if err != nil {
				return err
			}
			cp = utf16.DecodeRune(cp, low)
		}
		b.WriteRune(cp)
	case '\n', '\r':
		return errorAt(at, "line continuation in string is not supported")
	default:
		// \" \' \\ \/ and any other escaped rune stand for themselves.
		b.WriteRune(r)
	}
	return nil
}

func (l *lexer) hex4(at Position) (rune, error) {
	if len(l.src)-l.off < 4 {
		return 0, errorAt(at, "truncated \\u escape")
	}
	var cp rune
	for i := 0; i < 4; i++ {
		c := l.src[l.off]
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			return 0, errorAt(at, "invalid \\u escape")
		}
		cp = cp<<4 | rune(v)
		l.advance()
	}
	return cp, nil
}

// template reads a backtick string verbatim. Interpolations are not
// evaluated; the text is taken as written.
func (l *lexer) template() (string, error) {
	start := l.pos()
	l.advance()
	var b strings.Builder
	for {
		if l.off >= len(l.src) {
			return "", errorAt(start, "unterminated template string")
		}
		r := l.advance()
		switch r {
		case '`':
			return b.String(), nil
		case '\\':
			if l.off < len(l.src) {
				b.WriteRune(l.advance())
			}
		default:
			b.WriteRune(r)
		}
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0xFEFF, 0x00A0, 0x3000:
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }
