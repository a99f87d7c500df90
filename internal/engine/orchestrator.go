// Package engine drives subtitle translation end to end: it classifies
// blocks, compresses repeated tokens, packs translatable spans into
// size-bounded batches, dispatches them through the rate-limited client and
// maps every reply back to its originating block index.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sayaxia/srt-transfer/internal/langdetect"
	"github.com/sayaxia/srt-transfer/internal/subtitle"
	"github.com/sayaxia/srt-transfer/internal/translation"
)

// Translation strategies.
const (
	// StrategyBatch packs spans into size-bounded batches, one request per
	// batch, with chunked re-batching of a failed range.
	StrategyBatch = "batch"
	// StrategyLines issues one request per span across the worker pool.
	StrategyLines = "lines"
)

const detectSampleSpans = 20

// Options tunes one Orchestrator.
type Options struct {
	Strategy           string
	BatchLimitBytes    int
	FallbackLimitBytes int
	MaxWorkers         int
	BilingualMode      bool
	SourceLang         string
	TargetLang         string
	OutputSuffix       string
	Delimiter          string
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyBatch
	}
	if o.BatchLimitBytes < 1 {
		o.BatchLimitBytes = 6000
	}
	if o.FallbackLimitBytes < 1 || o.FallbackLimitBytes > o.BatchLimitBytes {
		o.FallbackLimitBytes = o.BatchLimitBytes / 6
		if o.FallbackLimitBytes < 1 {
			o.FallbackLimitBytes = 1
		}
	}
	if o.MaxWorkers < 1 {
		o.MaxWorkers = 10
	}
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	return o
}

// RunStats reports translation execution counters for one file.
type RunStats struct {
	Units      int `json:"units"`
	Translated int `json:"translated"`
	Failed     int `json:"failed"`
	Mismatches int `json:"mismatches"`
}

// FileReport describes the outcome of one file.
type FileReport struct {
	InputPath  string   `json:"input_path"`
	OutputPath string   `json:"output_path,omitempty"`
	SourceLang string   `json:"source_lang"`
	Stats      RunStats `json:"stats"`
}

// Orchestrator coordinates classification, batching, dispatch, reassembly
// and output assembly for whole files.
type Orchestrator struct {
	client *translation.Client
	logger zerolog.Logger
	opts   Options
}

func NewOrchestrator(client *translation.Client, logger zerolog.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// TranslateFile reads, translates and writes one subtitle file. The output
// is assembled in memory and written in a single scoped operation, so an
// interrupted run never leaves a half-written file on disk.
func (o *Orchestrator) TranslateFile(ctx context.Context, path string) (FileReport, error) {
	report := FileReport{InputPath: path}

	data, err := subtitle.ReadFile(path)
	if err != nil {
		return report, err
	}

	blocks := subtitle.Parse(data)
	outBlocks, sourceLang, stats, err := o.TranslateBlocks(ctx, blocks)
	report.SourceLang = sourceLang
	report.Stats = stats
	if err != nil {
		return report, err
	}

	suffix := strings.TrimSpace(o.opts.OutputSuffix)
	if suffix == "" {
		suffix = outputSuffixForLang(o.opts.TargetLang)
	}
	outputPath := subtitle.OutputPath(path, suffix)
	if err := subtitle.WriteFile(outputPath, subtitle.Compose(outBlocks)); err != nil {
		return report, err
	}
	report.OutputPath = outputPath
	return report, nil
}

// TranslateBlocks translates the text blocks of an ordered block sequence
// and returns a fresh output sequence; the input blocks are never mutated.
func (o *Orchestrator) TranslateBlocks(ctx context.Context, blocks []subtitle.Block) ([]subtitle.Block, string, RunStats, error) {
	units := ExtractUnits(blocks)
	stats := RunStats{Units: len(units)}
	sourceLang := o.resolveSourceLang(units)

	if len(units) > 0 {
		results := NewResultMap()
		var err error
		switch o.opts.Strategy {
		case StrategyLines:
			err = o.translateUnitsConcurrent(ctx, units, sourceLang, results, &stats)
		default:
			err = o.translateBatches(ctx, units, sourceLang, results, &stats)
		}
		if err != nil {
			return nil, sourceLang, stats, err
		}
		return o.assemble(blocks, results), sourceLang, stats, nil
	}

	return o.assemble(blocks, NewResultMap()), sourceLang, stats, nil
}

// ExtractUnits collects and compresses translatable spans, tagged with their
// originating block index. Spans that compress to nothing are sent as a
// single space so providers do not reject an empty query.
func ExtractUnits(blocks []subtitle.Block) []Unit {
	var units []Unit
	for _, b := range blocks {
		if b.Kind != subtitle.KindText {
			continue
		}
		text := CompressRepeats(b.Content)
		if text == "" {
			text = " "
		}
		units = append(units, Unit{Index: b.Index, Text: text})
	}
	return units
}

func (o *Orchestrator) resolveSourceLang(units []Unit) string {
	configured := strings.ToLower(strings.TrimSpace(o.opts.SourceLang))
	if configured != "" && configured != translation.SourceAuto {
		return configured
	}

	spans := make([]string, len(units))
	for i, u := range units {
		spans[i] = u.Text
	}
	if detected := langdetect.DetectFromSpans(spans, detectSampleSpans); detected != "" {
		o.logger.Debug().Str("source_lang", detected).Msg("detected source language from sampled spans")
		return detected
	}
	return translation.SourceAuto
}

func (o *Orchestrator) translateBatches(ctx context.Context, units []Unit, sourceLang string, results *ResultMap, stats *RunStats) error {
	regular, oversized := partitionOversized(units, o.opts.BatchLimitBytes)
	batches := MakeBatches(regular, o.opts.BatchLimitBytes, o.opts.Delimiter)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxWorkers)

	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			return o.translateBatchWithFallback(gctx, batch, sourceLang, o.opts.BatchLimitBytes, results, stats, &mu)
		})
	}
	for _, u := range oversized {
		u := u
		g.Go(func() error {
			text, err := o.translateSplitting(gctx, u.Text, sourceLang)
			if err != nil {
				return fmt.Errorf("oversized unit at block %d: %w", u.Index, err)
			}
			results.Set(u.Index, text)
			mu.Lock()
			stats.Translated++
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// translateBatchWithFallback sends one batch and, when the request exhausts
// its retries, re-batches just that range at the smaller fallback limit
// before giving the failure up to the file level.
func (o *Orchestrator) translateBatchWithFallback(ctx context.Context, batch Batch, sourceLang string, limit int, results *ResultMap, stats *RunStats, mu *sync.Mutex) error {
	err := o.translateOneBatch(ctx, batch, sourceLang, results, stats, mu)
	if err == nil {
		return nil
	}
	if !errors.Is(err, translation.ErrAttemptsExhausted) || o.opts.FallbackLimitBytes >= limit {
		return err
	}

	o.logger.Warn().
		Int("units", batch.Len()).
		Int("fallback_limit_bytes", o.opts.FallbackLimitBytes).
		Err(err).
		Msg("batch failed, re-batching failed range at smaller limit")

	for _, sub := range MakeBatches(batch.Units, o.opts.FallbackLimitBytes, o.opts.Delimiter) {
		if err := o.translateOneBatch(ctx, sub, sourceLang, results, stats, mu); err != nil {
			return fmt.Errorf("chunked fallback: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) translateOneBatch(ctx context.Context, batch Batch, sourceLang string, results *ResultMap, stats *RunStats, mu *sync.Mutex) error {
	reply, err := o.client.Translate(ctx, batch.Join(o.opts.Delimiter), sourceLang, o.opts.TargetLang)
	if err != nil {
		return err
	}

	pieces, mismatch := Reassemble(batch, reply, o.opts.Delimiter)
	if mismatch != 0 {
		o.logger.Warn().
			Int("batch_units", batch.Len()).
			Int("reply_pieces", batch.Len()+mismatch).
			Msg("reply line count differs from batch size; padding trailing entries")
	}
	for _, r := range pieces {
		results.Set(r.Index, r.Text)
	}

	mu.Lock()
	stats.Translated += batch.Len()
	if mismatch != 0 {
		stats.Mismatches++
	}
	completed := stats.Translated
	mu.Unlock()

	o.logger.Info().
		Int("completed", completed).
		Int("total", stats.Units).
		Msg("batch translated")
	return nil
}

func (o *Orchestrator) translateUnitsConcurrent(ctx context.Context, units []Unit, sourceLang string, results *ResultMap, stats *RunStats) error {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(o.opts.MaxWorkers)

	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := o.translateSplitting(ctx, u.Text, sourceLang)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.logger.Warn().
					Int("block", u.Index).
					Err(err).
					Msg("unit translation failed; original text is kept")
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}
			results.Set(u.Index, text)
			mu.Lock()
			stats.Translated++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if stats.Failed > 0 && stats.Failed == stats.Units {
		return fmt.Errorf("all %d units failed to translate", stats.Units)
	}
	return nil
}

// translateSplitting translates text that may exceed the batch limit by
// slicing it into limit-sized pieces and re-concatenating the replies.
func (o *Orchestrator) translateSplitting(ctx context.Context, text, sourceLang string) (string, error) {
	pieces := SplitOversized(text, o.opts.BatchLimitBytes)
	if len(pieces) == 1 {
		return o.client.Translate(ctx, pieces[0], sourceLang, o.opts.TargetLang)
	}

	var joined strings.Builder
	for _, piece := range pieces {
		translated, err := o.client.Translate(ctx, piece, sourceLang, o.opts.TargetLang)
		if err != nil {
			return "", err
		}
		joined.WriteString(translated)
	}
	return joined.String(), nil
}

// assemble builds the output block sequence. Text blocks gain their
// translation (bilingual keeps the original above it); blocks whose
// translation is missing or empty keep the original text; structural blocks
// pass through untouched.
func (o *Orchestrator) assemble(blocks []subtitle.Block, results *ResultMap) []subtitle.Block {
	out := make([]subtitle.Block, len(blocks))
	copy(out, blocks)
	for i, b := range blocks {
		if b.Kind != subtitle.KindText {
			continue
		}
		translated, ok := results.Get(b.Index)
		if !ok || strings.TrimSpace(translated) == "" {
			continue
		}
		if o.opts.BilingualMode {
			out[i].Content = b.Content + "\n" + translated
		} else {
			out[i].Content = translated
		}
	}
	return out
}

func partitionOversized(units []Unit, limit int) (regular, oversized []Unit) {
	for _, u := range units {
		if len(u.Text) > limit {
			oversized = append(oversized, u)
			continue
		}
		regular = append(regular, u)
	}
	return regular, oversized
}

// outputSuffixForLang keeps the historical ".chs" suffix for Chinese output
// and falls back to the language code for everything else.
func outputSuffixForLang(targetLang string) string {
	code := strings.ToLower(strings.TrimSpace(targetLang))
	switch code {
	case "zh", "chs":
		return "chs"
	case "":
		return "out"
	default:
		return code
	}
}
