package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
	"github.com/pharmadata-tools/labqa-cli/internal/profiler"
	"github.com/pharmadata-tools/labqa-cli/internal/utils"
)

var (
	profOutputPath string
	profJSON       bool
	profMaxRows    int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Print column statistics for a tabular file",
	Long: `Profile computes per-column statistics (completeness, unique count,
mean, median, standard deviation, min and max) without scoring or
anomaly detection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dataset.Load(args[0], dataset.Options{MaxRows: profMaxRows})
		if err != nil {
			return err
		}
		p := profiler.Build(d)

		var out string
		if profJSON {
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			out = string(b)
		} else {
			out = formatProfile(p)
		}

		if profOutputPath != "" {
			if err := os.WriteFile(profOutputPath, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", profOutputPath)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func formatProfile(p *profiler.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", p.Dataset)
	fmt.Fprintf(&b, "Rows: %d   Columns: %d   Overall completeness: %.1f%%\n\n",
		p.Rows, p.ColumnsN, p.Completeness()*100)
	for _, c := range p.Columns {
		fmt.Fprintf(&b, "%s (%s)\n", c.Name, c.Kind)
		fmt.Fprintf(&b, "  missing: %d/%d (%.1f%% complete)   unique: %d\n",
			c.Missing, c.Total, c.Completeness*100, c.Unique)
		if c.Kind == dataset.KindNumeric {
			if c.InsufficientData {
				fmt.Fprintf(&b, "  numeric values: %d (insufficient for statistics)\n", c.NumericCount)
			} else {
				fmt.Fprintf(&b, "  mean: %.4g   median: %.4g   std: %.4g   min: %.4g   max: %.4g\n",
					c.Mean, c.Median, c.Std, c.Min, c.Max)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile")
	profileCmd.Flags().BoolVar(&profJSON, "json", false, "emit the profile as JSON")
	profileCmd.Flags().IntVar(&profMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
}
