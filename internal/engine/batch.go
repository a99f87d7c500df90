package engine

import "unicode/utf8"

// DefaultDelimiter separates units inside one batched request and splits the
// reply back apart.
const DefaultDelimiter = "\n"

// Unit is one translatable span tagged with its originating block index.
type Unit struct {
	Index int
	Text  string
}

// Batch is an ordered group of units sent together in one request.
type Batch struct {
	Units []Unit
}

// Len returns the number of units in the batch.
func (b Batch) Len() int {
	return len(b.Units)
}

// Indices lists the originating block indices in unit order.
func (b Batch) Indices() []int {
	indices := make([]int, len(b.Units))
	for i, u := range b.Units {
		indices[i] = u.Index
	}
	return indices
}

// Join concatenates unit texts with the delimiter, in order.
func (b Batch) Join(delimiter string) string {
	size := packedSize(b.Units, delimiter)
	out := make([]byte, 0, size)
	for i, u := range b.Units {
		if i > 0 {
			out = append(out, delimiter...)
		}
		out = append(out, u.Text...)
	}
	return string(out)
}

// MakeBatches packs units into size-bounded batches with a greedy single
// pass. A unit joins the running batch only when its bytes plus one
// delimiter still fit the limit; otherwise the batch closes and the unit
// starts the next one. Units longer than the limit are placed alone (callers
// pre-split those with SplitOversized). Order is never changed and every
// unit lands in exactly one batch.
func MakeBatches(units []Unit, limit int, delimiter string) []Batch {
	if len(units) == 0 {
		return nil
	}

	var batches []Batch
	var current []Unit
	currentLen := 0

	for _, u := range units {
		if len(current) > 0 && currentLen+len(delimiter)+len(u.Text) > limit {
			batches = append(batches, Batch{Units: current})
			current = nil
			currentLen = 0
		}
		if len(current) > 0 {
			currentLen += len(delimiter)
		}
		current = append(current, u)
		currentLen += len(u.Text)
	}
	if len(current) > 0 {
		batches = append(batches, Batch{Units: current})
	}
	return batches
}

// SplitOversized byte-slices text into pieces of at most limit bytes without
// breaking a rune. Pieces are re-concatenated after translation by the
// caller. Text already within the limit comes back as a single piece.
func SplitOversized(text string, limit int) []string {
	if limit < utf8.UTFMax {
		limit = utf8.UTFMax
	}
	if len(text) <= limit {
		return []string{text}
	}

	var pieces []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		pieces = append(pieces, text)
	}
	return pieces
}

func packedSize(units []Unit, delimiter string) int {
	size := 0
	for i, u := range units {
		if i > 0 {
			size += len(delimiter)
		}
		size += len(u.Text)
	}
	return size
}
