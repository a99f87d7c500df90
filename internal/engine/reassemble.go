package engine

import (
	"strings"
	"sync"
)

// ResultMap collects translated text by originating block index. Results are
// placed by index, never by arrival order, so out-of-order completion across
// workers cannot corrupt output ordering. The first write for an index wins;
// repeated writes are dropped.
type ResultMap struct {
	mu      sync.Mutex
	entries map[int]string
}

func NewResultMap() *ResultMap {
	return &ResultMap{entries: make(map[int]string)}
}

func (m *ResultMap) Set(index int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[index]; exists {
		return
	}
	m.entries[index] = text
}

func (m *ResultMap) Get(index int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.entries[index]
	return text, ok
}

func (m *ResultMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reassemble splits a batch reply on the delimiter and maps piece j to the
// j-th unit's index. When the provider collapses or expands lines the piece
// count differs from the batch size; missing trailing pieces are padded with
// empty strings and excess trailing pieces are dropped, so exactly
// batch.Len() results always come back. The returned mismatch is the piece
// count delta (0 when the reply lined up). This padding is a best-effort
// heuristic, not a correctness guarantee: it cannot tell which original line
// the provider lost.
func Reassemble(batch Batch, reply, delimiter string) (results []Result, mismatch int) {
	pieces := strings.Split(reply, delimiter)
	mismatch = len(pieces) - batch.Len()

	results = make([]Result, batch.Len())
	for j, u := range batch.Units {
		text := ""
		if j < len(pieces) {
			text = pieces[j]
		}
		results[j] = Result{Index: u.Index, Text: text}
	}
	return results, mismatch
}

// Result pairs a translated piece with its originating block index.
type Result struct {
	Index int
	Text  string
}
