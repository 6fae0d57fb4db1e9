package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type docxExtractor struct{}

func (docxExtractor) CanExtract(filename string) bool {
	return hasSuffixFold(filename, ".docx")
}

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Extract pulls word/document.xml out of the DOCX archive and strips the XML
// markup. Paragraph boundaries are approximated by the closing tags before
// stripping.
func (docxExtractor) Extract(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", fmt.Errorf("document.xml not found in %s", path)
	}

	text := strings.ReplaceAll(string(docXML), "</w:p>", "\n")
	text = xmlTagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(normalizeText(text)), nil
}
