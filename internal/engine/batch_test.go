package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func makeUnits(texts ...string) []Unit {
	units := make([]Unit, len(texts))
	for i, text := range texts {
		units[i] = Unit{Index: i, Text: text}
	}
	return units
}

func TestMakeBatchesEmpty(t *testing.T) {
	t.Parallel()

	if got := MakeBatches(nil, 100, DefaultDelimiter); got != nil {
		t.Fatalf("expected nil batches, got %v", got)
	}
}

func TestMakeBatchesPreservesEveryUnitInOrder(t *testing.T) {
	t.Parallel()

	units := makeUnits("alpha", "beta", "gamma", "delta", "epsilon")
	batches := MakeBatches(units, 12, DefaultDelimiter)

	var flat []Unit
	for _, b := range batches {
		flat = append(flat, b.Units...)
	}
	if len(flat) != len(units) {
		t.Fatalf("expected %d units across batches, got %d", len(units), len(flat))
	}
	for i, u := range flat {
		if u != units[i] {
			t.Fatalf("unit %d changed: got %+v, want %+v", i, u, units[i])
		}
	}
}

func TestMakeBatchesRespectsLimit(t *testing.T) {
	t.Parallel()

	units := makeUnits("aaaa", "bb", "cccccc", "d", "eeeee", "fff")
	limit := 10
	batches := MakeBatches(units, limit, DefaultDelimiter)

	for i, b := range batches {
		if b.Len() > 1 && len(b.Join(DefaultDelimiter)) > limit {
			t.Fatalf("batch %d packs %d bytes over limit %d", i, len(b.Join(DefaultDelimiter)), limit)
		}
	}
}

func TestMakeBatchesDelimiterAccounting(t *testing.T) {
	t.Parallel()

	// Three 3000-byte units at limit 6000: the second unit would need
	// 3000+1+3000 bytes packed, so every unit ends up alone.
	big := strings.Repeat("x", 3000)
	batches := MakeBatches(makeUnits(big, big, big), 6000, DefaultDelimiter)

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	for i, b := range batches {
		if b.Len() != 1 {
			t.Fatalf("batch %d holds %d units, want 1", i, b.Len())
		}
	}

	// Two units that fit exactly with the delimiter stay together.
	half := strings.Repeat("y", 2999)
	batches = MakeBatches(makeUnits(half, strings.Repeat("z", 3000)), 6000, DefaultDelimiter)
	if len(batches) != 1 || batches[0].Len() != 2 {
		t.Fatalf("expected one batch of 2 units, got %d batches", len(batches))
	}
}

func TestMakeBatchesOversizedUnitIsAlone(t *testing.T) {
	t.Parallel()

	units := makeUnits("ab", strings.Repeat("x", 50), "cd")
	batches := MakeBatches(units, 10, DefaultDelimiter)

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if batches[1].Len() != 1 || len(batches[1].Units[0].Text) != 50 {
		t.Fatalf("oversized unit was not isolated: %+v", batches[1])
	}
}

func TestBatchIndicesAndJoin(t *testing.T) {
	t.Parallel()

	b := Batch{Units: []Unit{{Index: 4, Text: "one"}, {Index: 9, Text: "two"}}}
	indices := b.Indices()
	if len(indices) != 2 || indices[0] != 4 || indices[1] != 9 {
		t.Fatalf("unexpected indices: %v", indices)
	}
	if got := b.Join("|"); got != "one|two" {
		t.Fatalf("unexpected join: %q", got)
	}
}

func TestSplitOversized(t *testing.T) {
	t.Parallel()

	if got := SplitOversized("short", 100); len(got) != 1 || got[0] != "short" {
		t.Fatalf("text within limit must come back whole: %v", got)
	}

	text := strings.Repeat("a", 25)
	pieces := SplitOversized(text, 10)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(pieces))
	}
	if strings.Join(pieces, "") != text {
		t.Fatalf("pieces do not reconstruct input")
	}
	for i, p := range pieces {
		if len(p) > 10 {
			t.Fatalf("piece %d exceeds limit: %d bytes", i, len(p))
		}
	}
}

func TestSplitOversizedRuneSafe(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("好", 20)
	pieces := SplitOversized(text, 10)

	if strings.Join(pieces, "") != text {
		t.Fatalf("pieces do not reconstruct input")
	}
	for i, p := range pieces {
		if !utf8.ValidString(p) {
			t.Fatalf("piece %d broke a rune: %q", i, p)
		}
		if len(p) > 10 {
			t.Fatalf("piece %d exceeds limit: %d bytes", i, len(p))
		}
	}
}
