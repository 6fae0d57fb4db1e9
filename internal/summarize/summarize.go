// Package summarize turns research papers into LLM-generated summaries in
// one of several presentation modes.
package summarize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pharmadata-tools/labqa-cli/internal/ai"
	"github.com/pharmadata-tools/labqa-cli/internal/extract"
	"github.com/pharmadata-tools/labqa-cli/internal/utils"
)

// Summary modes.
const (
	ModeConcise     = "concise"
	ModeDetailed    = "detailed"
	ModeTeaching    = "teaching"
	ModeKeyFindings = "key_findings"
)

// Modes lists the supported summary modes in display order.
func Modes() []string {
	return []string{ModeConcise, ModeDetailed, ModeTeaching, ModeKeyFindings}
}

// ValidMode reports whether mode is supported.
func ValidMode(mode string) bool {
	switch mode {
	case ModeConcise, ModeDetailed, ModeTeaching, ModeKeyFindings:
		return true
	}
	return false
}

const systemPrompt = "You are a pharmaceutical research analyst."

// defaultInputTokens bounds how much paper text goes into the prompt.
const defaultInputTokens = 3000

// Options configures a summarization run.
type Options struct {
	Mode        string
	Model       string
	MaxTokens   int
	Temperature float64

	// InputTokenLimit truncates the extracted text before prompting.
	// Zero means the default limit.
	InputTokenLimit int

	// OutputDir, when non-empty, saves each summary as a markdown file
	// with a front-matter header.
	OutputDir string
}

// Result describes one summarized document.
type Result struct {
	InputFile  string    `json:"input_file"`
	Mode       string    `json:"mode"`
	Summary    string    `json:"summary"`
	OutputFile string    `json:"output_file,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	TextChars  int       `json:"text_length"`
	Chars      int       `json:"summary_length"`
}

// Summarizer generates summaries through any ai.Generator.
type Summarizer struct {
	gen ai.Generator
}

// New returns a Summarizer backed by gen.
func New(gen ai.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// File extracts the document at path and produces a summary. An unknown mode
// falls back to concise.
func (s *Summarizer) File(ctx context.Context, path string, opt Options) (*Result, error) {
	if !ValidMode(opt.Mode) {
		opt.Mode = ModeConcise
	}
	text, err := extract.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	limit := opt.InputTokenLimit
	if limit <= 0 {
		limit = defaultInputTokens
	}
	excerpt := utils.TruncateToTokenLimit(text, limit)

	summary, err := s.gen.GenerateText(ctx, ai.GenerateRequest{
		Model: opt.Model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(opt.Mode, excerpt)},
		},
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", filepath.Base(path), err)
	}

	res := &Result{
		InputFile: path,
		Mode:      opt.Mode,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
		TextChars: len(text),
		Chars:     len(summary),
	}
	if opt.OutputDir != "" {
		out, err := save(res, opt.OutputDir)
		if err != nil {
			return nil, err
		}
		res.OutputFile = out
	}
	return res, nil
}

// StreamFile is like File but delivers the summary incrementally through
// onDelta when the provider supports streaming; otherwise the full summary is
// delivered in a single call. Streamed summaries are never saved.
func (s *Summarizer) StreamFile(ctx context.Context, path string, opt Options, onDelta func(string)) error {
	if !ValidMode(opt.Mode) {
		opt.Mode = ModeConcise
	}
	text, err := extract.FromFile(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	limit := opt.InputTokenLimit
	if limit <= 0 {
		limit = defaultInputTokens
	}
	req := ai.GenerateRequest{
		Model: opt.Model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(opt.Mode, utils.TruncateToTokenLimit(text, limit))},
		},
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	}
	if streamer, ok := s.gen.(ai.Streamer); ok {
		if err := streamer.GenerateStream(ctx, req, onDelta); err != nil {
			return fmt.Errorf("summarize %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	summary, err := s.gen.GenerateText(ctx, req)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", filepath.Base(path), err)
	}
	onDelta(summary)
	return nil
}

// save writes the summary as markdown with a front-matter header and returns
// the output path.
func save(res *Result, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(res.InputFile), filepath.Ext(res.InputFile))
	name := fmt.Sprintf("%s_%s_%s.md", stem, res.Mode, res.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source: %s\n", res.InputFile)
	fmt.Fprintf(&b, "mode: %s\n", res.Mode)
	fmt.Fprintf(&b, "generated: %s\n", res.Timestamp.Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(res.Summary)

	if err := utils.SafeWriteFile(path, []byte(b.String())); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return path, nil
}
