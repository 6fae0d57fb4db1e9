// Package extract turns research documents into plain text for
// summarization. Extractors are selected by filename.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Extractor converts one document format to plain text.
type Extractor interface {
	CanExtract(filename string) bool
	Extract(path string) (string, error)
}

// ErrUnsupported indicates a format no registered extractor handles.
var ErrUnsupported = errors.New("unsupported document format")

var registry []Extractor

// Register adds an extractor to the registry. Later registrations take
// precedence over the defaults.
func Register(e Extractor) {
	registry = append([]Extractor{e}, registry...)
}

// FromFile extracts plain text from the document at path.
func FromFile(path string) (string, error) {
	for _, e := range registry {
		if e.CanExtract(path) {
			return e.Extract(path)
		}
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
}

// Supported reports whether any registered extractor handles the file.
func Supported(path string) bool {
	for _, e := range registry {
		if e.CanExtract(path) {
			return true
		}
	}
	return false
}

func hasSuffixFold(name string, suffixes ...string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func init() {
	Register(tabularExtractor{})
	Register(docxExtractor{})
	Register(pdfExtractor{})
	Register(markdownExtractor{})
	Register(txtExtractor{})
}
