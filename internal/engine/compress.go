package engine

import "strings"

// EllipsisToken terminates a collapsed run. It also breaks any further run,
// which keeps CompressRepeats idempotent.
const EllipsisToken = "..."

// CompressRepeats bounds worst-case span size: runs of 3 or more identical
// whitespace-delimited tokens are collapsed to the first three plus an
// ellipsis token. Shorter runs pass through unchanged; tokens are re-joined
// with single spaces.
func CompressRepeats(line string) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}

	out := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		run := 1
		for i+run < len(words) && words[i+run] == words[i] {
			run++
		}
		if run >= 3 {
			out = append(out, words[i], words[i], words[i])
			if i+run >= len(words) || words[i+run] != EllipsisToken {
				out = append(out, EllipsisToken)
			}
		} else {
			out = append(out, words[i:i+run]...)
		}
		i += run
	}
	return strings.Join(out, " ")
}
