package validate

import "testing"

func TestValidateValid(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		src  string
	}{
		{desc: "scalar", src: "42"},
		{desc: "empty array", src: "[]"},
		{desc: "empty object", src: "{}"},
		{desc: "nested", src: `{"a": [1, 2, {"b": true}], "c": null}`},
		{desc: "whitespace padded", src: "  [1, 2]  "},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			res := Validate([]byte(tc.src), Strict)
			if !res.Valid {
				t.Errorf("Validate(%q) = invalid, diagnostics: %v", tc.src, res.Diagnostics)
			}
			if len(res.Diagnostics) != 0 {
				t.Errorf("Validate(%q) has %d diagnostics, want 0", tc.src, len(res.Diagnostics))
			}
		})
	}
}

func TestValidateStrictStopsAtFirstProblem(t *testing.T) {
	t.Parallel()

	res := Validate([]byte(`[1, , 3]`), Strict)
	if res.Valid {
		t.Fatal("Validate reported valid for malformed array")
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("Strict mode produced %d diagnostics, want exactly 1", len(res.Diagnostics))
	}
}

func TestValidateRecoveryCollectsMultiple(t *testing.T) {
	t.Parallel()

	res := Validate([]byte(`[1, , 3, , 5]`), Recovery)
	if res.Valid {
		t.Fatal("Validate reported valid for malformed array")
	}
	if len(res.Diagnostics) < 2 {
		t.Errorf("Recovery mode produced %d diagnostics, want at least 2", len(res.Diagnostics))
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	t.Parallel()

	res := Validate([]byte(""), Strict)
	if res.Valid {
		t.Fatal("Validate reported valid for empty input")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "empty document" {
		t.Errorf("diagnostics = %v, want a single \"empty document\" diagnostic", res.Diagnostics)
	}
}

func TestValidateTrailingData(t *testing.T) {
	t.Parallel()

	res := Validate([]byte("1 2"), Strict)
	if res.Valid {
		t.Fatal("Validate reported valid for trailing data")
	}
}

func TestValidateTrackCounts(t *testing.T) {
	t.Parallel()

	res := Validate([]byte("[1, 2, 3]\n"), Strict)
	if !res.Valid {
		t.Fatalf("Validate reported invalid: %v", res.Diagnostics)
	}
	if res.TokenCount == 0 {
		t.Error("TokenCount = 0, want > 0")
	}
	if res.LineCount != 2 {
		t.Errorf("LineCount = %d, want 2", res.LineCount)
	}
}

func TestDiagnosticContext(t *testing.T) {
	t.Parallel()

	res := Validate([]byte("{\n  \"a\": ,\n}"), Strict)
	if res.Valid {
		t.Fatal("Validate reported valid for malformed object")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
	}
	if res.Diagnostics[0].Context == "" {
		t.Error("Diagnostic.Context is empty, want the offending line")
	}
}

func TestValidateRecoverySynchronizesPastMismatchedCloser(t *testing.T) {
	t.Parallel()

	// Each of these has a closer that belongs to the wrong container at the
	// point synchronize is invoked; it must be consumed as garbage rather
	// than mistaken for the resumption point, or the validator never
	// terminates.
	for _, tc := range []struct {
		desc string
		src  string
	}{
		{desc: "brace inside array", src: `[}`},
		{desc: "bracket closing object", src: `{"a":1]`},
		{desc: "brace after array comma", src: `[1,}`},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			res := Validate([]byte(tc.src), Recovery)
			if res.Valid {
				t.Fatalf("Validate(%q) reported valid, want invalid", tc.src)
			}
			if len(res.Diagnostics) == 0 {
				t.Errorf("Validate(%q) produced no diagnostics, want at least 1", tc.src)
			}
		})
	}
}

func TestLexErrorSurfacesAsDiagnostic(t *testing.T) {
	t.Parallel()

	res := Validate([]byte(`[1, "unterminated`), Strict)
	if res.Valid {
		t.Fatal("Validate reported valid for an unterminated string")
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("got %d diagnostics, want 1", len(res.Diagnostics))
	}
	if res.TokenCount == 0 {
		t.Error("TokenCount = 0 on a lex error, want the partial scan count")
	}
}
