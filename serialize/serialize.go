// Package serialize renders a value.Value back to UTF-8 JSON bytes, in
// compact or pretty form, with independent knobs for indentation, key
// ordering, and non-ASCII escaping.
package serialize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"roseh.moe/pkg/jsonkit/value"
)

// Options controls how a Value is rendered.
type Options struct {
	// Pretty inserts newlines and indentation; when false, output is
	// single-line and minimally spaced.
	Pretty bool
	// IndentSize is the number of spaces per nesting level when Pretty is
	// set. Ignored otherwise.
	IndentSize int
	// SortKeys emits object keys in ascending codepoint order instead of
	// the container's storage order.
	SortKeys bool
	// EscapeNonASCII emits every byte above 0x7F as a \uXXXX escape
	// (with surrogate pairs for code points beyond the BMP) instead of
	// passing UTF-8 through unescaped.
	EscapeNonASCII bool
}

// Compact returns the default compact (single-line) options.
func Compact() Options {
	return Options{}
}

// Pretty returns pretty-printing options with the given indent width.
func Pretty(indent int) Options {
	return Options{Pretty: true, IndentSize: indent}
}

// Marshal renders v as UTF-8 JSON bytes under opts.
func Marshal(v value.Value, opts Options) ([]byte, error) {
	var sb strings.Builder
	s := &serializer{opts: opts, out: &sb}
	if err := s.writeValue(v, 0); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

type serializer struct {
	opts Options
	out  *strings.Builder
}

func (s *serializer) writeValue(v value.Value, depth int) error {
	switch v.Kind() {
	case value.Null:
		s.out.WriteString("null")
	case value.Bool:
		b, _ := v.Bool()
		if b {
			s.out.WriteString("true")
		} else {
			s.out.WriteString("false")
		}
	case value.Number:
		n, _ := v.Number()
		s.out.WriteString(formatNumber(n))
	case value.String:
		str, _ := v.String()
		s.writeString(str)
	case value.Array:
		return s.writeArray(v, depth)
	case value.Object:
		return s.writeObject(v, depth)
	default:
		return fmt.Errorf("serialize: value has unknown kind %v", v.Kind())
	}
	return nil
}

func (s *serializer) writeArray(v value.Value, depth int) error {
	elems, err := v.Elements()
	if err != nil {
		return err
	}
	if len(elems) == 0 {
		s.out.WriteString("[]")
		return nil
	}

	s.out.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			s.out.WriteByte(',')
		}
		s.newlineIndent(depth + 1)
		if err := s.writeValue(e, depth+1); err != nil {
			return err
		}
	}
	s.newlineIndent(depth)
	s.out.WriteByte(']')
	return nil
}

func (s *serializer) writeObject(v value.Value, depth int) error {
	keys, err := v.Keys()
	if err != nil {
		return err
	}
	// value.Value does not separately track insertion order, so Keys()
	// already returns ascending order regardless of opts.SortKeys; the
	// flag exists for document models that do preserve insertion order.
	if len(keys) == 0 {
		s.out.WriteString("{}")
		return nil
	}

	s.out.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			s.out.WriteByte(',')
		}
		s.newlineIndent(depth + 1)
		s.writeString(k)
		s.out.WriteByte(':')
		if s.opts.Pretty {
			s.out.WriteByte(' ')
		}
		val, err := v.Get(k)
		if err != nil {
			return err
		}
		if err := s.writeValue(val, depth+1); err != nil {
			return err
		}
	}
	s.newlineIndent(depth)
	s.out.WriteByte('}')
	return nil
}

func (s *serializer) newlineIndent(depth int) {
	if !s.opts.Pretty {
		return
	}
	s.out.WriteByte('\n')
	for i := 0; i < depth*s.opts.IndentSize; i++ {
		s.out.WriteByte(' ')
	}
}

func (s *serializer) writeString(str string) {
	s.out.WriteByte('"')
	for _, r := range str {
		switch r {
		case '"':
			s.out.WriteString(`\"`)
		case '\\':
			s.out.WriteString(`\\`)
		case '\b':
			s.out.WriteString(`\b`)
		case '\f':
			s.out.WriteString(`\f`)
		case '\n':
			s.out.WriteString(`\n`)
		case '\r':
			s.out.WriteString(`\r`)
		case '\t':
			s.out.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(s.out, `\u%04x`, r)
			case r > 0x7F && s.opts.EscapeNonASCII:
				s.writeUnicodeEscape(r)
			default:
				s.out.WriteRune(r)
			}
		}
	}
	s.out.WriteByte('"')
}

func (s *serializer) writeUnicodeEscape(r rune) {
	if r > 0xFFFF {
		r -= 0x10000
		high := 0xD800 + (r >> 10)
		low := 0xDC00 + (r & 0x3FF)
		fmt.Fprintf(s.out, `\u%04x\u%04x`, high, low)
		return
	}
	fmt.Fprintf(s.out, `\u%04x`, r)
}

const maxSafeInteger = 1 << 53

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) <= maxSafeInteger {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', 17, 64)
}
