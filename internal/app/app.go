package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "translate":
		return runTranslate(args[1:])
	case "serve":
		return runServe(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "setup":
		return runSetup(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "srt-transfer CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  srt-transfer <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  translate  Translate one or more subtitle files")
	fmt.Fprintln(os.Stderr, "  serve      Start the HTTP translation API")
	fmt.Fprintln(os.Stderr, "  languages  List supported target languages")
	fmt.Fprintln(os.Stderr, "  setup      Write the provider credentials file")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"srt-transfer <command> -h\" for command-specific flags.")
}
