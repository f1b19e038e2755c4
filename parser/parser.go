// Package parser implements a recursive-descent parser that turns a token
// sequence into a value.Value, rejecting anything that is not a single
// complete JSON text followed by EOF.
//
// The parser is a cursor over a token slice with current/advance helpers
// and one method per grammar production, building a generic document tree
// rather than decoding into a caller-supplied struct.
package parser

import (
	"fmt"
	"math"
	"strconv"

	"roseh.moe/pkg/jsonkit/lexer"
	"roseh.moe/pkg/jsonkit/token"
	"roseh.moe/pkg/jsonkit/value"
)

// ErrNonFiniteNumber's text is the message prefix of the *ParseError
// returned when a number literal converts to a non-finite binary64 (only
// possible through overflow, since the grammar itself cannot spell Infinity
// or NaN). Non-finite results are rejected rather than silently clamped.
// The *ParseError does not wrap this value, so errors.Is does not match it.
var ErrNonFiniteNumber = fmt.Errorf("number is not finite")

// ErrMaxDepth's text is the message of the *ParseError returned when
// nesting exceeds MaxDepth; the *ParseError does not wrap this value.
var ErrMaxDepth = fmt.Errorf("maximum nesting depth exceeded")

// MaxDepth bounds the recursion depth of the parser so pathological input
// fails with a diagnostic instead of exhausting the goroutine stack.
const MaxDepth = 10000

// ParseError reports a grammatically invalid token arrangement.
type ParseError struct {
	Pos token.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parse lexes and parses data, returning the resulting document.
func Parse(data []byte) (value.Value, error) {
	toks, err := lexer.Lex(data)
	if err != nil {
		return value.Value{}, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token sequence, which must end with a
// single token.EOF.
func ParseTokens(toks []token.Token) (value.Value, error) {
	if len(toks) == 0 {
		return value.Value{}, &ParseError{Msg: "empty document"}
	}
	p := &parser{toks: toks}
	if p.current().Kind == token.EOF {
		return value.Value{}, &ParseError{Pos: p.current().Pos, Msg: "empty document"}
	}

	v, err := p.parseValue(0)
	if err != nil {
		return value.Value{}, err
	}
	if p.current().Kind != token.EOF {
		return value.Value{}, &ParseError{Pos: p.current().Pos, Msg: "trailing data after root value"}
	}
	return v, nil
}

type parser struct {
	toks []token.Token
	i    int
}

func (p *parser) current() token.Token {
	return p.toks[p.i]
}

func (p *parser) advance() token.Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token.Token, format string, args ...any) error {
	return &ParseError{Pos: t.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseValue(depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, &ParseError{Pos: p.current().Pos, Msg: ErrMaxDepth.Error()}
	}

	t := p.current()
	switch t.Kind {
	case token.LBrace:
		return p.parseObject(depth)
	case token.LBracket:
		return p.parseArray(depth)
	case token.String:
		p.advance()
		return value.NewString(t.Value), nil
	case token.Number:
		return p.parseNumber(t)
	case token.True:
		p.advance()
		return value.NewBool(true), nil
	case token.False:
		p.advance()
		return value.NewBool(false), nil
	case token.Null:
		p.advance()
		return value.NewNull(), nil
	default:
		return value.Value{}, p.errorf(t, "unexpected %s, expected a value", t.Kind)
	}
}

func (p *parser) parseNumber(t token.Token) (value.Value, error) {
	p.advance()
	n, err := strconv.ParseFloat(t.Value, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return value.Value{}, p.errorf(t, "%s: %q", ErrNonFiniteNumber, t.Value)
	}
	return value.NewNumber(n), nil
}

func (p *parser) parseObject(depth int) (value.Value, error) {
	p.advance() // '{'
	obj := value.NewObject()

	if p.current().Kind == token.RBrace {
		p.advance()
		return obj, nil
	}

	for {
		keyTok := p.current()
		if keyTok.Kind != token.String {
			return value.Value{}, p.errorf(keyTok, "expected string key, got %s", keyTok.Kind)
		}
		p.advance()

		if p.current().Kind != token.Colon {
			return value.Value{}, p.errorf(p.current(), "expected ':' after key")
		}
		p.advance()

		val, err := p.parseValue(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		obj, _ = obj.Set(keyTok.Value, val)

		switch p.current().Kind {
		case token.Comma:
			p.advance()
			if p.current().Kind == token.RBrace {
				return value.Value{}, p.errorf(p.current(), "trailing comma before '}'")
			}
		case token.RBrace:
			p.advance()
			return obj, nil
		default:
			return value.Value{}, p.errorf(p.current(), "expected ',' or '}'")
		}
	}
}

func (p *parser) parseArray(depth int) (value.Value, error) {
	p.advance() // '['
	var elems []value.Value

	if p.current().Kind == token.RBracket {
		p.advance()
		return value.NewArray(), nil
	}

	for {
		val, err := p.parseValue(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, val)

		switch p.current().Kind {
		case token.Comma:
			p.advance()
			if p.current().Kind == token.RBracket {
				return value.Value{}, p.errorf(p.current(), "trailing comma before ']'")
			}
		case token.RBracket:
			p.advance()
			return value.NewArray(elems...), nil
		default:
			return value.Value{}, p.errorf(p.current(), "expected ',' or ']'")
		}
	}
}
