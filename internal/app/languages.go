package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sayaxia/srt-transfer/internal/translation"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "languages does not accept positional args")
		return 2
	}

	for _, option := range translation.TargetLanguageOptions() {
		fmt.Printf("%s\t%s\t%s\n", option.Code, option.Label, option.Native)
	}
	return 0
}
