package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// ReadFile loads a subtitle file as UTF-8 text. Files that are not valid
// UTF-8 get one fallback decode as GBK before being treated as unreadable.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s as GBK after UTF-8 failure: %w", path, err)
	}
	return string(decoded), nil
}

// WriteFile writes the composed output in one scoped operation.
func WriteFile(path, data string) error {
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutputPath derives the output name beside the input: "movie.srt" with
// suffix "chs" becomes "movie.chs.srt".
func OutputPath(inputPath, suffix string) string {
	suffix = strings.Trim(strings.TrimSpace(suffix), ".")
	if suffix == "" {
		suffix = "out"
	}
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return base + "." + suffix + ext
}
