package subtitle

import (
	"regexp"
	"strings"
)

// Kind classifies one line of a subtitle file.
type Kind int

const (
	// KindBlank is an empty separator line.
	KindBlank Kind = iota
	// KindSequence is a cue sequence marker (digits only).
	KindSequence
	// KindTimeRange is a "HH:MM:SS,mmm --> HH:MM:SS,mmm" line.
	KindTimeRange
	// KindText is translatable cue text.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindSequence:
		return "sequence"
	case KindTimeRange:
		return "timerange"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Block is one structural unit of the source file. Blocks are read-only once
// parsed; output is assembled into a fresh slice.
type Block struct {
	Index   int
	Kind    Kind
	Content string
}

var (
	sequenceLine  = regexp.MustCompile(`^\d+$`)
	timeRangeLine = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3}\s*-->\s*\d{2}:\d{2}:\d{2},\d{3}$`)
)

// ClassifyLine decides the structural kind of a raw line.
func ClassifyLine(line string) Kind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return KindBlank
	case sequenceLine.MatchString(trimmed):
		return KindSequence
	case timeRangeLine.MatchString(trimmed):
		return KindTimeRange
	default:
		return KindText
	}
}

// IsTranslatable reports whether a line carries cue text rather than
// structural metadata.
func IsTranslatable(line string) bool {
	return ClassifyLine(line) == KindText
}

// Parse splits subtitle data into line-level blocks. Line endings are
// normalized to "\n"; a leading UTF-8 BOM is dropped.
func Parse(data string) []Block {
	data = strings.TrimPrefix(data, "\uFEFF")
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")

	lines := strings.Split(data, "\n")
	blocks := make([]Block, len(lines))
	for i, line := range lines {
		blocks[i] = Block{
			Index:   i,
			Kind:    ClassifyLine(line),
			Content: line,
		}
	}
	return blocks
}

// Compose serializes blocks back to file form in source order.
func Compose(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(block.Content)
	}
	return b.String()
}
