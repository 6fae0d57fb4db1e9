package extract

import (
	"fmt"
	"strings"

	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
	"github.com/pharmadata-tools/labqa-cli/internal/profiler"
)

// tabularSampleRows caps how much raw data a tabular summary embeds. The
// summary feeds an LLM prompt, so it must stay compact.
const tabularSampleRows = 20

type tabularExtractor struct{}

func (tabularExtractor) CanExtract(filename string) bool {
	return hasSuffixFold(filename, ".csv", ".tsv", ".xlsx")
}

// Extract summarizes a tabular file as markdown: the column profile plus a
// small sample of rows, capped so large datasets stay within prompt limits.
func (tabularExtractor) Extract(path string) (string, error) {
	d, err := dataset.Load(path, dataset.Options{})
	if err != nil {
		return "", fmt.Errorf("load tabular file: %w", err)
	}
	p := profiler.Build(d)

	var b strings.Builder
	fmt.Fprintf(&b, "# Tabular data: %s\n\n", d.Name)
	fmt.Fprintf(&b, "%d rows, %d columns, %.1f%% complete.\n\n", p.Rows, p.ColumnsN, p.Completeness()*100)

	b.WriteString("## Columns\n\n")
	for _, col := range p.Columns {
		if col.Kind == dataset.KindNumeric && !col.InsufficientData {
			fmt.Fprintf(&b, "- %s (%s): mean %.4g, median %.4g, std %.4g, range [%.4g, %.4g], %d unique\n",
				col.Name, col.Kind, col.Mean, col.Median, col.Std, col.Min, col.Max, col.Unique)
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %d unique, %.1f%% complete\n",
			col.Name, col.Kind, col.Unique, col.Completeness*100)
	}

	b.WriteString("\n## Sample rows\n\n")
	fmt.Fprintf(&b, "| %s |\n", strings.Join(d.Columns, " | "))
	b.WriteString("|" + strings.Repeat("---|", len(d.Columns)) + "\n")
	for i := 0; i < d.NumRows() && i < tabularSampleRows; i++ {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(d.Rows[i], " | "))
	}
	if d.NumRows() > tabularSampleRows {
		fmt.Fprintf(&b, "\n(%d more rows omitted)\n", d.NumRows()-tabularSampleRows)
	}
	return b.String(), nil
}
