// Package jsonpath resolves a dotted/indexed path string such as
// "a.b[0].c" against a value.Value tree, returning the node it names or
// reporting that no such node exists.
package jsonpath

import (
	"fmt"
	"strconv"

	"roseh.moe/pkg/jsonkit/value"
)

// PathError reports a malformed path string. It is distinct from a failed
// lookup: a syntactically valid path that names a missing node is reported
// through Resolve's bool return instead.
type PathError struct {
	Path string
	Pos  int
	Msg  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q at offset %d: %s", e.Path, e.Pos, e.Msg)
}

// segment is either a bare object key or a bracketed array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// Parse splits path into segments: a sequence of dot-separated bare keys,
// each optionally followed by one or more bracketed non-negative integer
// indices, e.g. "a.b[0].c" or "items[2][0]".
func Parse(path string) ([]segment, error) {
	if path == "" {
		return nil, &PathError{Path: path, Pos: 0, Msg: "empty path"}
	}

	var segs []segment
	i := 0
	expectKey := true

	for i < len(path) {
		switch {
		case path[i] == '.':
			if expectKey {
				return nil, &PathError{Path: path, Pos: i, Msg: "unexpected '.'"}
			}
			i++
			expectKey = true

		case path[i] == '[':
			start := i + 1
			end := start
			for end < len(path) && path[end] != ']' {
				end++
			}
			if end >= len(path) {
				return nil, &PathError{Path: path, Pos: i, Msg: "unterminated '['"}
			}
			digits := path[start:end]
			n, err := strconv.Atoi(digits)
			if err != nil || n < 0 {
				return nil, &PathError{Path: path, Pos: start, Msg: fmt.Sprintf("invalid array index %q", digits)}
			}
			segs = append(segs, segment{index: n, isIndex: true})
			i = end + 1
			expectKey = false

		default:
			if !expectKey {
				return nil, &PathError{Path: path, Pos: i, Msg: "expected '.' or '[' between segments"}
			}
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' {
				i++
			}
			key := path[start:i]
			if key == "" {
				return nil, &PathError{Path: path, Pos: start, Msg: "empty key segment"}
			}
			segs = append(segs, segment{key: key})
			expectKey = false
		}
	}

	if expectKey {
		return nil, &PathError{Path: path, Pos: len(path), Msg: "path ends with '.'"}
	}
	return segs, nil
}

// Resolve parses path and navigates root to the node it names. The bool
// result is false when path is syntactically valid but does not name an
// existing node: missing key, out-of-range index, and indexing into a
// non-container all collapse to "not found" rather than distinguishing
// among them, matching how a caller would treat any of them — there is
// nothing at that path.
func Resolve(root value.Value, path string) (value.Value, bool, error) {
	segs, err := Parse(path)
	if err != nil {
		return value.Value{}, false, err
	}

	cur := root
	for _, s := range segs {
		var ok bool
		var next value.Value
		var navErr error

		if s.isIndex {
			next, navErr = cur.Index(s.index)
		} else {
			next, navErr = cur.Get(s.key)
		}
		ok = navErr == nil
		if !ok {
			return value.Value{}, false, nil
		}
		cur = next
	}
	return cur, true, nil
}
