package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pharmadata-tools/labqa-cli/internal/anomaly"
	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
	"github.com/pharmadata-tools/labqa-cli/internal/quality"
	"github.com/pharmadata-tools/labqa-cli/internal/report"
	"github.com/pharmadata-tools/labqa-cli/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaDelimiter  string
	anaMaxRows    int
	anaZScore     float64
	anaIQRMult    float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run a full data quality analysis over a tabular file",
	Long: `Analyze loads a CSV/TSV/XLSX file, profiles every column, detects
anomalous values and produces a weighted quality report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt := dataset.Options{MaxRows: anaMaxRows}
		if anaDelimiter != "" {
			switch anaDelimiter {
			case ",":
				opt.Delimiter = ','
			case "\t", "tab":
				opt.Delimiter = '\t'
			case ";":
				opt.Delimiter = ';'
			default:
				return fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
			}
		}
		d, err := dataset.Load(args[0], opt)
		if err != nil {
			return err
		}

		detect := anomaly.Options{
			ZScoreThreshold: c.ZScoreThreshold,
			IQRMultiplier:   c.IQRMultiplier,
		}
		if cmd.Flags().Changed("zscore-threshold") {
			detect.ZScoreThreshold = anaZScore
		}
		if cmd.Flags().Changed("iqr-multiplier") {
			detect.IQRMultiplier = anaIQRMult
		}
		scorer, err := quality.New(c.QualityWeights, detect)
		if err != nil {
			return err
		}
		rep := scorer.Score(d)

		var out string
		switch strings.ToLower(anaFormat) {
		case "text", "":
			out = report.Text(rep)
		case "markdown", "md":
			out = report.Markdown(rep)
		case "json":
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			out = string(b)
		default:
			return fmt.Errorf("unsupported --format: %s (use text, markdown or json)", anaFormat)
		}

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote quality report to %s\n", filepath.Clean(anaOutputPath))
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "text", "report format: text | markdown | json")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	analyzeCmd.Flags().Float64Var(&anaZScore, "zscore-threshold", 3.0, "|z| threshold for the Z-score outlier test")
	analyzeCmd.Flags().Float64Var(&anaIQRMult, "iqr-multiplier", 1.5, "IQR fence multiplier for the IQR outlier test")
}
