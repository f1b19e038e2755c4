package value

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConstructorsAndPredicates(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		v    Value
		kind Kind
	}{
		{desc: "null", v: NewNull(), kind: Null},
		{desc: "bool", v: NewBool(true), kind: Bool},
		{desc: "number", v: NewNumber(3.14), kind: Number},
		{desc: "string", v: NewString("hi"), kind: String},
		{desc: "array", v: NewArray(NewNull()), kind: Array},
		{desc: "object", v: NewObject(), kind: Object},
		{desc: "zero value is null", v: Value{}, kind: Null},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			if got := tc.v.Kind(); got != tc.kind {
				t.Errorf("Kind() = %v, want %v", got, tc.kind)
			}
		})
	}
}

func TestTypedAccessorsRejectWrongKind(t *testing.T) {
	t.Parallel()

	if _, err := NewNull().Bool(); err == nil {
		t.Error("Null.Bool() succeeded, want error")
	}
	if _, err := NewBool(true).Number(); err == nil {
		t.Error("Bool.Number() succeeded, want error")
	}
	if _, err := NewString("x").Index(0); err == nil {
		t.Error("String.Index() succeeded, want error")
	}
	if _, err := NewNumber(1).Get("k"); err == nil {
		t.Error("Number.Get() succeeded, want error")
	}
}

func TestArrayOperations(t *testing.T) {
	t.Parallel()

	arr := NewArray(NewNumber(1), NewNumber(2), NewNumber(3))

	n, err := arr.Len()
	if err != nil || n != 3 {
		t.Fatalf("Len() = %d, %v, want 3, nil", n, err)
	}

	v, err := arr.Index(1)
	if err != nil {
		t.Fatalf("Index(1): %v", err)
	}
	if num, _ := v.Number(); num != 2 {
		t.Errorf("Index(1) = %v, want 2", num)
	}

	if _, err := arr.Index(3); err == nil {
		t.Error("Index(3) succeeded, want out-of-range error")
	}
	if _, err := arr.Index(-1); err == nil {
		t.Error("Index(-1) succeeded, want out-of-range error")
	}

	appended, err := arr.Append(NewNumber(4))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n, _ := appended.Len(); n != 4 {
		t.Errorf("after Append, Len() = %d, want 4", n)
	}
	if n, _ := arr.Len(); n != 3 {
		t.Errorf("Append mutated the receiver: Len() = %d, want 3", n)
	}

	removed, err := arr.RemoveIndex(1)
	if err != nil {
		t.Fatalf("RemoveIndex: %v", err)
	}
	elems, _ := removed.Elements()
	want := []Value{NewNumber(1), NewNumber(3)}
	for i := range want {
		if !elems[i].Equal(want[i]) {
			t.Errorf("RemoveIndex(1) element %d = %v, want %v", i, elems[i], want[i])
		}
	}
}

func TestObjectOperations(t *testing.T) {
	t.Parallel()

	obj := NewObject()
	obj, err := obj.Set("b", NewNumber(2))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	obj, err = obj.Set("a", NewNumber(1))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	keys, err := obj.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	ok, err := obj.Contains("a")
	if err != nil || !ok {
		t.Errorf("Contains(\"a\") = %v, %v, want true, nil", ok, err)
	}

	// Last write wins.
	obj, err = obj.Set("a", NewNumber(99))
	if err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, err := obj.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n, _ := v.Number(); n != 99 {
		t.Errorf("Get(\"a\") = %v, want 99", n)
	}

	obj2, removed, err := obj.Remove("a")
	if err != nil || !removed {
		t.Fatalf("Remove(\"a\") = %v, %v, want true, nil", removed, err)
	}
	if ok, _ := obj2.Contains("a"); ok {
		t.Error("Remove did not remove the key")
	}
	if ok, _ := obj.Contains("a"); !ok {
		t.Error("Remove mutated the receiver")
	}

	_, removed, err = obj.Remove("missing")
	if err != nil || removed {
		t.Errorf("Remove(\"missing\") = %v, %v, want false, nil", removed, err)
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	objA, _ := NewObject().Set("x", NewNumber(1))
	objA, _ = objA.Set("y", NewNumber(2))

	objB, _ := NewObject().Set("y", NewNumber(2))
	objB, _ = objB.Set("x", NewNumber(1))

	for _, tc := range []struct {
		desc string
		a, b Value
		want bool
	}{
		{desc: "equal numbers", a: NewNumber(1), b: NewNumber(1), want: true},
		{desc: "different numbers", a: NewNumber(1), b: NewNumber(2), want: false},
		{desc: "different kinds", a: NewNull(), b: NewBool(false), want: false},
		{desc: "arrays in order", a: NewArray(NewNumber(1), NewNumber(2)), b: NewArray(NewNumber(1), NewNumber(2)), want: true},
		{desc: "arrays out of order differ", a: NewArray(NewNumber(1), NewNumber(2)), b: NewArray(NewNumber(2), NewNumber(1)), want: false},
		{desc: "objects independent of storage order", a: objA, b: objB, want: true},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}

// randomValue builds a pseudo-random Value tree up to the given depth, for
// the reflexivity property checked below.
func randomValue(rng *rand.Rand, depth int) Value {
	if depth <= 0 {
		return NewNull()
	}
	switch rng.Intn(6) {
	case 0:
		return NewNull()
	case 1:
		return NewBool(rng.Intn(2) == 0)
	case 2:
		return NewNumber(rng.Float64()*200 - 100)
	case 3:
		return NewString("s")
	case 4:
		n := rng.Intn(4)
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = randomValue(rng, depth-1)
		}
		return NewArray(elems...)
	default:
		obj := NewObject()
		n := rng.Intn(4)
		for i := 0; i < n; i++ {
			key := string(rune('a' + i))
			obj, _ = obj.Set(key, randomValue(rng, depth-1))
		}
		return obj
	}
}

func TestEqualIsReflexiveOverRandomTrees(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		v := randomValue(rng, 4)
		if !v.Equal(v) {
			t.Fatalf("value not equal to itself: %#v", v)
		}
	}
}
