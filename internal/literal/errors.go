package literal

import "fmt"

// Position is a 1-based line and column (in runes) within the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// DecodeError reports why a literal could not be decoded. No partial
// configuration accompanies it.
type DecodeError struct {
	Pos Position
	Msg string
}

func (e *DecodeError) Error() string {
	if e.Pos.Line == 0 {
		return "literal: " + e.Msg
	}
	return fmt.Sprintf("literal: %s: %s", e.Pos, e.Msg)
}

func errorAt(pos Position, format string, args ...any) *DecodeError {
	return &DecodeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
