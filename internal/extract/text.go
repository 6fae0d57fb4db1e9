package extract

import (
	"fmt"
	"os"
	"strings"
)

type txtExtractor struct{}

func (txtExtractor) CanExtract(filename string) bool {
	return hasSuffixFold(filename, ".txt")
}

func (txtExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

type markdownExtractor struct{}

func (markdownExtractor) CanExtract(filename string) bool {
	return hasSuffixFold(filename, ".md", ".markdown")
}

// Extract keeps markdown intact but normalizes line endings and collapses
// runs of blank lines.
func (markdownExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown file: %w", err)
	}
	return normalizeText(string(data)), nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}
