package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extraction failure modes callers may want to branch on.
var (
	ErrEncryptedPDF = errors.New("pdf is encrypted")
	ErrCorruptPDF   = errors.New("pdf is corrupt or malformed")
)

type pdfExtractor struct{}

func (pdfExtractor) CanExtract(filename string) bool {
	return hasSuffixFold(filename, ".pdf")
}

// Extract reads the PDF's plain text. The underlying reader panics on some
// malformed inputs, so parsing is fenced and reported as ErrCorruptPDF.
func (pdfExtractor) Extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCorruptPDF, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "encrypted") {
			return "", fmt.Errorf("%s: %w", path, ErrEncryptedPDF)
		}
		return "", fmt.Errorf("%s: %w: %v", path, ErrCorruptPDF, err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", fmt.Errorf("%s: no extractable text", path)
	}
	return out, nil
}
