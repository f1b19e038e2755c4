// Package validate checks a JSON byte buffer against the same grammar as
// package parser, but without building a tree, and with an optional
// continue-on-error recovery mode that collects multiple diagnostics.
//
// Recovery mode synchronizes past a bad token: it skips forward until a
// comma, the closer of the container currently being validated, EOF, or the
// start of a new value reappears, then resumes reporting from there instead
// of stopping at the first problem. A closer belonging to some other,
// enclosing container is not a resumption point; it is consumed as garbage
// like any other stray token so synchronizing always makes progress.
package validate

import (
	"bytes"
	"errors"
	"fmt"

	"roseh.moe/pkg/jsonkit/lexer"
	"roseh.moe/pkg/jsonkit/token"
)

// Mode selects whether validation stops at the first problem or tries to
// keep going and collect every diagnostic it can find.
type Mode int

const (
	// Strict stops at the first diagnostic.
	Strict Mode = iota
	// Recovery synchronizes past a diagnostic and keeps validating.
	Recovery
)

// Diagnostic describes one violation of the JSON grammar.
type Diagnostic struct {
	Pos     token.Position
	Message string
	// Context is the offending source line, truncated to at most 60 bytes.
	Context string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Result is the outcome of validating one buffer.
type Result struct {
	Valid       bool
	Diagnostics []Diagnostic
	TokenCount  int
	LineCount   int
}

// Validate tokenizes and validates data in the given mode.
func Validate(data []byte, mode Mode) Result {
	lineCount := bytes.Count(data, []byte{'\n'}) + 1

	toks, err := lexer.Lex(data)
	if err != nil {
		pos, msg := token.Position{Line: 1, Column: 1}, err.Error()
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			pos, msg = lexErr.Pos, lexErr.Cause
		}
		return Result{
			Valid:       false,
			Diagnostics: []Diagnostic{{Pos: pos, Message: msg, Context: extractContext(data, pos.Line)}},
			TokenCount:  len(toks),
			LineCount:   lineCount,
		}
	}

	v := &validator{toks: toks, data: data, mode: mode, lineCount: lineCount}
	v.run()
	return v.result()
}

type validator struct {
	toks      []token.Token
	data      []byte
	mode      Mode
	i         int
	diags     []Diagnostic
	lineCount int
}

func (v *validator) result() Result {
	return Result{
		Valid:       len(v.diags) == 0,
		Diagnostics: v.diags,
		TokenCount:  len(v.toks),
		LineCount:   v.lineCount,
	}
}

func (v *validator) current() token.Token {
	return v.toks[v.i]
}

func (v *validator) peek(offset int) token.Token {
	idx := v.i + offset
	if idx >= len(v.toks) {
		return v.toks[len(v.toks)-1]
	}
	return v.toks[idx]
}

func (v *validator) advance() {
	if v.i < len(v.toks)-1 {
		v.i++
	}
}

func (v *validator) atEnd() bool {
	return v.current().Kind == token.EOF
}

func (v *validator) addError(format string, args ...any) {
	t := v.current()
	v.diags = append(v.diags, Diagnostic{
		Pos:     t.Pos,
		Message: fmt.Sprintf(format, args...),
		Context: extractContext(v.data, t.Pos.Line),
	})
}

// stopping reports whether validation should abort the current production
// because Strict mode already recorded a diagnostic.
func (v *validator) stopping() bool {
	return v.mode == Strict && len(v.diags) > 0
}

func (v *validator) run() {
	if v.atEnd() {
		v.addError("empty document")
		return
	}

	v.validateValue()

	if !v.stopping() && !v.atEnd() {
		v.addError("trailing data after root value")
	}
}

// synchronize discards tokens until a likely resumption point at the
// current depth: a comma, the closer this production is waiting for, EOF,
// or the start of a new value. want is the closer kind (RBrace or
// RBracket) of the container currently being validated.
//
// A closer belonging to some other, enclosing container is not "mine" —
// stopping on it would park the cursor forever, since the caller only
// checks for want and EOF before looping back here. Such a stray closer is
// consumed as garbage instead, guaranteeing every call advances the cursor
// or reaches EOF.
func (v *validator) synchronize(want token.Kind) {
	for !v.atEnd() {
		switch v.current().Kind {
		case token.Comma, token.LBrace, token.LBracket, token.String, token.Number, token.True, token.False, token.Null:
			return
		case token.RBrace, token.RBracket:
			if v.current().Kind == want {
				return
			}
		}
		v.advance()
	}
}

func (v *validator) validateValue() bool {
	if v.stopping() {
		return false
	}

	switch v.current().Kind {
	case token.LBrace:
		return v.validateObject()
	case token.LBracket:
		return v.validateArray()
	case token.String, token.Number, token.True, token.False, token.Null:
		v.advance()
		return true
	case token.RBrace:
		v.addError("unexpected closing '}'")
		return false
	case token.RBracket:
		v.addError("unexpected closing ']'")
		return false
	case token.Comma:
		v.addError("unexpected ','")
		return false
	case token.Colon:
		v.addError("unexpected ':'")
		return false
	case token.EOF:
		v.addError("unexpected end of input, expected a value")
		return false
	default:
		v.addError("unexpected token %s", v.current().Kind)
		return false
	}
}

func (v *validator) validateObject() bool {
	v.advance() // '{'

	if v.current().Kind == token.RBrace {
		v.advance()
		return true
	}

	ok := true
	for {
		if v.current().Kind != token.String {
			v.addError("expected string key in object, got %s", v.current().Kind)
			ok = false
			if v.stopping() {
				return false
			}
			v.synchronize(token.RBrace)
			if v.current().Kind == token.RBrace {
				v.advance()
				return ok
			}
			if v.current().Kind == token.Comma {
				v.advance()
				continue
			}
			if v.atEnd() {
				v.addError("unexpected end of input in open object")
				return false
			}
			continue
		}
		v.advance()

		if v.current().Kind != token.Colon {
			v.addError("missing ':' after key")
			ok = false
			if v.stopping() {
				return false
			}
			switch v.current().Kind {
			case token.String, token.Number, token.LBrace, token.LBracket, token.True, token.False, token.Null:
			default:
				v.synchronize(token.RBrace)
				continue
			}
		} else {
			v.advance()
		}

		if !v.validateValue() {
			ok = false
			if v.stopping() {
				return false
			}
			v.synchronize(token.RBrace)
		}

		switch v.current().Kind {
		case token.Comma:
			v.advance()
			if v.current().Kind == token.RBrace {
				v.addError("trailing comma before '}'")
				ok = false
				if v.stopping() {
					return false
				}
				v.advance()
				return ok
			}
		case token.RBrace:
			v.advance()
			return ok
		default:
			v.addError("expected ',' or closing '}'")
			ok = false
			if v.stopping() {
				return false
			}
			v.synchronize(token.RBrace)
			if v.current().Kind == token.RBrace {
				v.advance()
				return ok
			}
			if v.atEnd() {
				v.addError("unexpected end of input in open object")
				return false
			}
		}
	}
}

func (v *validator) validateArray() bool {
	v.advance() // '['

	if v.current().Kind == token.RBracket {
		v.advance()
		return true
	}

	ok := true
	for {
		if !v.validateValue() {
			ok = false
			if v.stopping() {
				return false
			}
			v.synchronize(token.RBracket)
		}

		switch v.current().Kind {
		case token.Comma:
			v.advance()
			if v.current().Kind == token.RBracket {
				v.addError("trailing comma before ']'")
				ok = false
				if v.stopping() {
					return false
				}
				v.advance()
				return ok
			}
		case token.RBracket:
			v.advance()
			return ok
		default:
			v.addError("expected ',' or closing ']'")
			ok = false
			if v.stopping() {
				return false
			}
			v.synchronize(token.RBracket)
			if v.current().Kind == token.RBracket {
				v.advance()
				return ok
			}
			if v.atEnd() {
				v.addError("unexpected end of input in open array")
				return false
			}
		}
	}
}

func extractContext(data []byte, line int) string {
	if line < 1 {
		return ""
	}
	start := 0
	current := 1
	for current < line {
		idx := bytes.IndexByte(data[start:], '\n')
		if idx < 0 {
			return ""
		}
		start += idx + 1
		current++
	}
	end := bytes.IndexByte(data[start:], '\n')
	var lineBytes []byte
	if end < 0 {
		lineBytes = data[start:]
	} else {
		lineBytes = data[start : start+end]
	}
	if len(lineBytes) > 60 {
		lineBytes = lineBytes[:60]
	}
	return string(lineBytes)
}
