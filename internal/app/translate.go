package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sayaxia/srt-transfer/internal/cli"
	"github.com/sayaxia/srt-transfer/internal/config"
	"github.com/sayaxia/srt-transfer/internal/language"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 0, "Overall run timeout (0 means no timeout)")
	lang := fs.String("lang", "", "Target language (ISO 639-1, for example: en, zh)")
	source := fs.String("source", "", "Source language (ISO 639-1 or \"auto\")")
	provider := fs.String("provider", "", "Translation provider name (for example: baidu, local)")
	mode := fs.String("mode", "", "Translation strategy: batch or lines")
	bilingual := fs.Bool("bilingual", true, "Keep the original text above each translation")
	suffix := fs.String("suffix", "", "Output filename suffix (default derives from target language)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "translate requires at least one subtitle file")
		printTranslateUsage()
		return 2
	}

	if *lang != "" && language.NormalizeCode(*lang) == "" {
		fmt.Fprintln(os.Stderr, "--lang must be a valid language code")
		return 2
	}

	bilingualSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "bilingual" {
			bilingualSet = true
		}
	})

	rt, err := buildRuntime(envLoader, func(cfg *config.Config) {
		if v := strings.TrimSpace(*lang); v != "" {
			cfg.TargetLang = language.NormalizeCode(v)
		}
		if v := strings.TrimSpace(*source); v != "" {
			cfg.SourceLang = v
		}
		if v := strings.TrimSpace(*provider); v != "" {
			cfg.Provider = v
		}
		if v := strings.TrimSpace(*mode); v != "" {
			cfg.TranslationMode = v
		}
		if v := strings.TrimSpace(*suffix); v != "" {
			cfg.OutputSuffix = v
		}
		if bilingualSet {
			cfg.BilingualMode = *bilingual
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		rt.logger.Warn().Msg("interrupt received, aborting run")
		cancel()
	}()

	files := fs.Args()
	succeeded := 0
	failed := 0
	started := time.Now()

	for _, path := range files {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Run aborted")
			break
		}

		report, err := rt.orchestrator.TranslateFile(ctx, path)
		if err != nil {
			failed++
			rt.logger.Error().Str("file", path).Err(err).Msg("file skipped")
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", path, err)
			continue
		}

		succeeded++
		rt.logger.Info().
			Str("file", path).
			Str("output", report.OutputPath).
			Str("source_lang", report.SourceLang).
			Int("units", report.Stats.Units).
			Int("translated", report.Stats.Translated).
			Int("failed", report.Stats.Failed).
			Int("mismatches", report.Stats.Mismatches).
			Msg("file translated")
		fmt.Printf("Translated %s -> %s (%d units)\n", path, report.OutputPath, report.Stats.Units)
	}

	fmt.Printf("Done: %d translated, %d failed in %s\n", succeeded, failed, time.Since(started).Round(time.Millisecond))
	if succeeded == 0 {
		return 1
	}
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  srt-transfer translate [flags] <file.srt> [more files...]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Each file is translated independently; one bad file never aborts the run.")
}
