package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pharmadata-tools/labqa-cli/internal/etl"
)

var (
	etlDBPath    string
	etlMaxErrors int
)

var etlCmd = &cobra.Command{
	Use:   "etl <file.csv>",
	Short: "Validate experiment records and load them into SQLite",
	Long: `ETL reads a CSV of experiment records, validates each row against
chemistry domain rules (pH range, temperature by unit, positive
concentration), stamps valid rows with a batch ID and loads them into
a SQLite database. Rows that fail validation are reported, not loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		dbPath := c.DatabasePath
		if etlDBPath != "" {
			dbPath = etlDBPath
		}
		db, err := etl.Open(dbPath)
		if err != nil {
			return err
		}

		p := etl.New(db)
		var bar *progressbar.ProgressBar
		p.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("validating"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}

		sum, err := p.Run(args[0])
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Finish()
		}

		fmt.Printf("✓ Batch %s loaded into %s\n", sum.BatchID, dbPath)
		fmt.Printf("  rows: %d   valid: %d   failed: %d   pass rate: %.1f%%\n",
			sum.Total, sum.Valid, sum.Failed, sum.PassRate*100)
		if len(sum.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d row(s) failed validation:\n", len(sum.Errors))
			shown := sum.Errors
			if etlMaxErrors > 0 && len(shown) > etlMaxErrors {
				shown = shown[:etlMaxErrors]
			}
			for _, e := range shown {
				fmt.Fprintf(os.Stderr, "  row %d: %s\n", e.Row, e.Reason)
			}
			if rest := len(sum.Errors) - len(shown); rest > 0 {
				fmt.Fprintf(os.Stderr, "  ... and %d more\n", rest)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(etlCmd)
	etlCmd.Flags().StringVar(&etlDBPath, "db", "", "SQLite database path (overrides config)")
	etlCmd.Flags().IntVar(&etlMaxErrors, "max-errors", 10, "maximum validation errors to print (0 = all)")
}
