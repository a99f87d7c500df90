package langdetect

import "testing"

func TestDetectISO6391(t *testing.T) {
	t.Parallel()

	if got := DetectISO6391("The quick brown fox jumps over the lazy dog near the river bank."); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
	if got := DetectISO6391("这是一个用来测试语言检测功能的中文句子。"); got != "zh" {
		t.Fatalf("expected zh, got %q", got)
	}
}

func TestDetectISO6391ShortSample(t *testing.T) {
	t.Parallel()

	if got := DetectISO6391("ok"); got != "" {
		t.Fatalf("short sample must be inconclusive, got %q", got)
	}
	if got := DetectISO6391("   "); got != "" {
		t.Fatalf("blank sample must be inconclusive, got %q", got)
	}
	if got := DetectISO6391("12345 678"); got != "" {
		t.Fatalf("digits must be inconclusive, got %q", got)
	}
}

func TestDetectFromSpans(t *testing.T) {
	t.Parallel()

	spans := []string{
		"Where are we going?",
		"",
		"I have no idea, honestly.",
		"  ",
		"Just keep driving until the road ends.",
	}
	if got := DetectFromSpans(spans, 20); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}

	if got := DetectFromSpans(nil, 20); got != "" {
		t.Fatalf("no spans must be inconclusive, got %q", got)
	}
	if got := DetectFromSpans([]string{"", "  "}, 20); got != "" {
		t.Fatalf("blank spans must be inconclusive, got %q", got)
	}
}
