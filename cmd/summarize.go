package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pharmadata-tools/labqa-cli/internal/extract"
	"github.com/pharmadata-tools/labqa-cli/internal/summarize"
)

var (
	sumMode      string
	sumModel     string
	sumMaxTokens int
	sumTemp      float64
	sumOutputDir string
	sumWorkers   int
	sumRPS       float64
	sumNoSave    bool
	sumStream    bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file> [file...]",
	Short: "Summarize research papers through the configured LLM provider",
	Long: `Summarize extracts text from PDF, DOCX, Markdown, plain-text or
tabular files and asks the configured LLM provider for a summary in one
of four modes: concise, detailed, teaching or key_findings.

Multiple files run concurrently; one failed file never aborts the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if !summarize.ValidMode(sumMode) {
			return fmt.Errorf("unknown mode %q (use %s)", sumMode, strings.Join(summarize.Modes(), ", "))
		}
		for _, f := range args {
			if !extract.Supported(f) {
				return fmt.Errorf("unsupported file type: %s", f)
			}
		}

		gen, err := newGenerator(cmd.Context(), c)
		if err != nil {
			return err
		}

		opt := summarize.Options{
			Mode:        sumMode,
			Model:       c.DefaultModel,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
		}
		if sumModel != "" {
			opt.Model = sumModel
		}
		if cmd.Flags().Changed("max-tokens") {
			opt.MaxTokens = sumMaxTokens
		}
		if cmd.Flags().Changed("temperature") {
			opt.Temperature = sumTemp
		}
		if !sumNoSave {
			opt.OutputDir = c.OutputDir
			if sumOutputDir != "" {
				opt.OutputDir = sumOutputDir
			}
		}

		s := summarize.New(gen)

		if sumStream {
			if len(args) != 1 {
				return fmt.Errorf("--stream works with a single file")
			}
			err := s.StreamFile(cmd.Context(), args[0], opt, func(delta string) {
				fmt.Print(delta)
			})
			fmt.Println()
			return err
		}

		if len(args) == 1 {
			res, err := s.File(cmd.Context(), args[0], opt)
			if err != nil {
				return err
			}
			printSummary(res)
			return nil
		}

		bopt := summarize.BatchOptions{
			Options:      opt,
			Workers:      sumWorkers,
			RateLimitRPS: sumRPS,
		}
		if bopt.Workers == 0 {
			bopt.Workers = c.SummaryWorkers
		}
		if bopt.RateLimitRPS == 0 {
			bopt.RateLimitRPS = c.SummaryRPS
		}
		bar := progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("summarizing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		bopt.OnDone = func(summarize.BatchResult) { _ = bar.Add(1) }

		results := s.Batch(cmd.Context(), args, bopt)
		_ = bar.Finish()

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", args[r.Index], r.Err)
				continue
			}
			printSummary(r.Result)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
		}
		return nil
	},
}

func printSummary(res *summarize.Result) {
	if res.OutputFile != "" {
		fmt.Printf("✓ %s (%s) → %s\n", res.InputFile, res.Mode, res.OutputFile)
		return
	}
	fmt.Printf("=== %s (%s) ===\n\n%s\n\n", res.InputFile, res.Mode, res.Summary)
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumMode, "mode", "m", "concise", "summary mode: concise | detailed | teaching | key_findings")
	summarizeCmd.Flags().StringVar(&sumModel, "model", "", "model identifier (overrides config)")
	summarizeCmd.Flags().IntVar(&sumMaxTokens, "max-tokens", 0, "max completion tokens (overrides config)")
	summarizeCmd.Flags().Float64Var(&sumTemp, "temperature", 0, "sampling temperature (overrides config)")
	summarizeCmd.Flags().StringVarP(&sumOutputDir, "output-dir", "o", "", "directory for saved summaries (overrides config)")
	summarizeCmd.Flags().BoolVar(&sumNoSave, "no-save", false, "print summaries to stdout instead of saving")
	summarizeCmd.Flags().BoolVar(&sumStream, "stream", false, "stream the summary to stdout as it is generated (single file)")
	summarizeCmd.Flags().IntVar(&sumWorkers, "workers", 0, "concurrent workers for batch mode (overrides config)")
	summarizeCmd.Flags().Float64Var(&sumRPS, "rps", 0, "request rate limit per second for batch mode (overrides config)")
}
