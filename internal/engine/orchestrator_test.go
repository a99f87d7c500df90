package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sayaxia/srt-transfer/internal/ratelimit"
	"github.com/sayaxia/srt-transfer/internal/subtitle"
	"github.com/sayaxia/srt-transfer/internal/translation"
)

// fnProvider delegates each request to fn so tests can script replies and
// failures per request.
type fnProvider struct {
	fn func(req translation.TranslateRequest) (string, error)
}

func (p *fnProvider) Translate(_ context.Context, req translation.TranslateRequest) (*translation.TranslateResponse, error) {
	out, err := p.fn(req)
	if err != nil {
		return nil, err
	}
	return &translation.TranslateResponse{
		Text:         out,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		ProviderName: "fn",
	}, nil
}

func (p *fnProvider) Name() string { return "fn" }

func (p *fnProvider) SupportedLanguages() []string { return []string{"en", "zh"} }

// upperEachLine stands in for a real translation: it transforms every
// delimiter-separated line independently, preserving the line count.
func upperEachLine(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.ToUpper(l)
	}
	return strings.Join(lines, "\n")
}

func newTestOrchestrator(t *testing.T, fn func(req translation.TranslateRequest) (string, error), opts Options) *Orchestrator {
	t.Helper()
	bucket := ratelimit.NewBucket(1000, time.Second)
	t.Cleanup(bucket.Shutdown)

	client := translation.NewClient(&fnProvider{fn: fn}, bucket, translation.NewCache(), zerolog.Nop(), translation.ClientOptions{
		MaxAttempts: 2,
		DelayStep:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	})
	return NewOrchestrator(client, zerolog.Nop(), opts)
}

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello there\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral Kenobi"

func TestExtractUnits(t *testing.T) {
	t.Parallel()

	blocks := subtitle.Parse("1\n00:00:01,000 --> 00:00:02,000\nHello there\n\nha ha ha ha ha")
	units := ExtractUnits(blocks)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Index != 2 || units[0].Text != "Hello there" {
		t.Fatalf("unexpected first unit: %+v", units[0])
	}
	if units[1].Text != "ha ha ha ..." {
		t.Fatalf("repeated tokens were not compressed: %q", units[1].Text)
	}
}

func TestTranslateBlocksBatchBilingual(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		return upperEachLine(req.Text), nil
	}, Options{
		Strategy:      StrategyBatch,
		BilingualMode: true,
		SourceLang:    "en",
		TargetLang:    "zh",
	})

	blocks := subtitle.Parse(sampleSRT)
	out, sourceLang, stats, err := o.TranslateBlocks(context.Background(), blocks)
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	if sourceLang != "en" {
		t.Fatalf("unexpected source language: %q", sourceLang)
	}
	if stats.Units != 2 || stats.Translated != 2 || stats.Failed != 0 || stats.Mismatches != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if out[2].Content != "Hello there\nHELLO THERE" {
		t.Fatalf("bilingual block 2 = %q", out[2].Content)
	}
	if out[6].Content != "General Kenobi\nGENERAL KENOBI" {
		t.Fatalf("bilingual block 6 = %q", out[6].Content)
	}
	if out[0].Content != "1" || out[1].Kind != subtitle.KindTimeRange {
		t.Fatalf("structural blocks must pass through untouched")
	}
	if blocks[2].Content != "Hello there" {
		t.Fatalf("input blocks were mutated: %q", blocks[2].Content)
	}
}

func TestTranslateBlocksMonolingual(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		return upperEachLine(req.Text), nil
	}, Options{
		SourceLang: "en",
		TargetLang: "zh",
	})

	out, _, _, err := o.TranslateBlocks(context.Background(), subtitle.Parse(sampleSRT))
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	if out[2].Content != "HELLO THERE" {
		t.Fatalf("monolingual block 2 = %q", out[2].Content)
	}
}

func TestTranslateBlocksReplyMismatchKeepsOriginal(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		// Drop the last line of every reply, as a collapsing provider would.
		lines := strings.Split(upperEachLine(req.Text), "\n")
		return strings.Join(lines[:len(lines)-1], "\n"), nil
	}, Options{
		SourceLang: "en",
		TargetLang: "zh",
	})

	out, _, stats, err := o.TranslateBlocks(context.Background(), subtitle.Parse(sampleSRT))
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	if stats.Mismatches != 1 {
		t.Fatalf("expected 1 mismatch, got %d", stats.Mismatches)
	}
	if out[2].Content != "HELLO THERE" {
		t.Fatalf("block 2 = %q", out[2].Content)
	}
	if out[6].Content != "General Kenobi" {
		t.Fatalf("padded empty translation must keep the original, got %q", out[6].Content)
	}
}

func TestTranslateBlocksChunkedFallback(t *testing.T) {
	t.Parallel()

	var small []string
	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		if len(req.Text) > 12 {
			return "", fmt.Errorf("payload too large")
		}
		small = append(small, req.Text)
		return upperEachLine(req.Text), nil
	}, Options{
		SourceLang:         "en",
		TargetLang:         "zh",
		BatchLimitBytes:    60,
		FallbackLimitBytes: 12,
		MaxWorkers:         1,
	})

	blocks := subtitle.Parse("first line\nsecond one\nthird text")
	out, _, stats, err := o.TranslateBlocks(context.Background(), blocks)
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	if stats.Translated != 3 {
		t.Fatalf("expected 3 translated units after fallback, got %+v", stats)
	}
	if len(small) != 3 {
		t.Fatalf("expected 3 fallback requests, got %d: %v", len(small), small)
	}
	for i, want := range []string{"FIRST LINE", "SECOND ONE", "THIRD TEXT"} {
		if out[i].Content != want {
			t.Fatalf("block %d = %q, want %q", i, out[i].Content, want)
		}
	}
}

func TestTranslateBlocksLinesStrategyKeepsFailedOriginal(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		if req.Text == "General Kenobi" {
			return "", fmt.Errorf("provider refused")
		}
		return upperEachLine(req.Text), nil
	}, Options{
		Strategy:   StrategyLines,
		SourceLang: "en",
		TargetLang: "zh",
	})

	out, _, stats, err := o.TranslateBlocks(context.Background(), subtitle.Parse(sampleSRT))
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	if stats.Translated != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if out[2].Content != "HELLO THERE" {
		t.Fatalf("block 2 = %q", out[2].Content)
	}
	if out[6].Content != "General Kenobi" {
		t.Fatalf("failed unit must keep the original, got %q", out[6].Content)
	}
}

func TestTranslateBlocksLinesStrategyAllFailed(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		return "", fmt.Errorf("provider down")
	}, Options{
		Strategy:   StrategyLines,
		SourceLang: "en",
		TargetLang: "zh",
	})

	_, _, _, err := o.TranslateBlocks(context.Background(), subtitle.Parse(sampleSRT))
	if err == nil {
		t.Fatalf("expected error when every unit fails")
	}
}

func TestTranslateFileWritesSuffixedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "movie.srt")
	if err := os.WriteFile(input, []byte(sampleSRT+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	o := newTestOrchestrator(t, func(req translation.TranslateRequest) (string, error) {
		return upperEachLine(req.Text), nil
	}, Options{
		SourceLang: "en",
		TargetLang: "zh",
	})

	report, err := o.TranslateFile(context.Background(), input)
	if err != nil {
		t.Fatalf("TranslateFile: %v", err)
	}
	want := filepath.Join(dir, "movie.chs.srt")
	if report.OutputPath != want {
		t.Fatalf("output path = %q, want %q", report.OutputPath, want)
	}

	raw, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(raw), "HELLO THERE") {
		t.Fatalf("output missing translation: %q", raw)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatalf("output must end with a newline")
	}
}

func TestOutputSuffixForLang(t *testing.T) {
	t.Parallel()

	cases := []struct{ lang, want string }{
		{"zh", "chs"},
		{"chs", "chs"},
		{"en", "en"},
		{"", "out"},
	}
	for _, tc := range cases {
		if got := outputSuffixForLang(tc.lang); got != tc.want {
			t.Fatalf("outputSuffixForLang(%q) = %q, want %q", tc.lang, got, tc.want)
		}
	}
}
