package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalPairCommutative(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	x1, y1 := CanonicalPair(a, b)
	x2, y2 := CanonicalPair(b, a)
	if x1 != x2 || y1 != y2 {
		t.Fatal("canonical order must not depend on argument order")
	}
	if x1 != a || y1 != b {
		t.Fatalf("expected byte-wise smaller id first, got (%s, %s)", x1, y1)
	}
}

func TestCanonicalPairIdempotent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	x, y := CanonicalPair(a, b)
	x2, y2 := CanonicalPair(x, y)
	if x != x2 || y != y2 {
		t.Fatal("canonicalizing an already-canonical pair must be a no-op")
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.5, 1},
	}
	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Fatalf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestInitialImportance(t *testing.T) {
	if MemoryTypeError.InitialImportance() != 0.8 {
		t.Fatal("error memories must start at 0.8")
	}
	if MemoryTypeSuccess.InitialImportance() != 0.6 {
		t.Fatal("success memories must start at 0.6")
	}
	if MemoryTypeInteraction.InitialImportance() != 0.5 {
		t.Fatal("interaction memories must start at 0.5")
	}
}
