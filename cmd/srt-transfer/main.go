package main

import (
	"os"

	"github.com/sayaxia/srt-transfer/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
