package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sayaxia/srt-transfer/internal/config"
)

func runSetup(args []string) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	appID := fs.String("appid", "", "Provider application ID")
	secret := fs.String("secret", "", "Provider secret key")
	path := fs.String("credentials", "srt-transfer-credentials.json", "Credentials file to write")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "setup does not accept positional args")
		return 2
	}

	creds := &config.Credentials{
		AppID:  strings.TrimSpace(*appID),
		Secret: strings.TrimSpace(*secret),
	}
	if creds.AppID == "" || creds.Secret == "" {
		fmt.Fprintln(os.Stderr, "--appid and --secret are required")
		return 2
	}

	if err := config.SaveCredentials(*path, creds); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Round-trip the file so a malformed write is caught here, not at the
	// first translate run.
	if _, err := config.LoadCredentials(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("Credentials written to %s\n", *path)
	return 0
}
