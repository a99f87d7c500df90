package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter language code of the sample, or ""
// when the sample is too short or ambiguous.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// DetectFromSpans samples up to maxSpans text spans and detects the language
// of their concatenation. Subtitle lines are individually too short for a
// reliable verdict; a joined sample is not.
func DetectFromSpans(spans []string, maxSpans int) string {
	if maxSpans < 1 {
		maxSpans = 20
	}
	picked := make([]string, 0, maxSpans)
	for _, span := range spans {
		span = strings.TrimSpace(span)
		if span == "" {
			continue
		}
		picked = append(picked, span)
		if len(picked) == maxSpans {
			break
		}
	}
	if len(picked) == 0 {
		return ""
	}
	return DetectISO6391(strings.Join(picked, " "))
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
