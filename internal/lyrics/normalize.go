package lyrics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decodes raw lyric bytes into the text the parser expects.
// A UTF-8 or UTF-16 byte order mark selects the decoding and is dropped,
// line endings become "\n" and the result is NFC composed so that
// accented characters are never split across segments.
func Normalize(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), decoder))
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics: %w", err)
	}

	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return norm.NFC.String(text), nil
}

// reads and normalizes a lyrics file
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics file: %w", err)
	}
	return Normalize(raw)
}
