package token

import "testing"

func TestKindString(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		kind Kind
		want string
	}{
		{desc: "LBrace", kind: LBrace, want: "'{'"},
		{desc: "String", kind: String, want: "string"},
		{desc: "EOF", kind: EOF, want: "end of input"},
		{desc: "out of range", kind: Kind(999), want: "Kind(999)"},
		{desc: "negative", kind: Kind(-1), want: "Kind(-1)"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	t.Parallel()

	pos := Position{Line: 3, Column: 12}
	if got, want := pos.String(), "3:12"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}
}
