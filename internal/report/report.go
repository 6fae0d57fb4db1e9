// Package report renders quality reports for terminal and markdown output.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pharmadata-tools/labqa-cli/internal/anomaly"
	"github.com/pharmadata-tools/labqa-cli/internal/quality"
)

const sectionRule = "============================================================"

// Per-method display cap. Full detail is available in the JSON output.
const maxShownPerMethod = 5

// Text renders r as a plain-text terminal report.
func Text(r *quality.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DATA QUALITY REPORT\n%s\n", sectionRule)
	fmt.Fprintf(&b, "Dataset:        %s\n", r.Dataset)
	fmt.Fprintf(&b, "Run ID:         %s\n", r.RunID)
	fmt.Fprintf(&b, "Generated:      %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Rows:           %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns:        %d\n\n", r.Columns)

	if r.Empty {
		b.WriteString("⚠ Dataset is empty: no scores computed.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "OVERALL QUALITY SCORE: %.1f%%  (%s)\n%s\n", r.Overall*100, r.Grade(), sectionRule)
	fmt.Fprintf(&b, "Completeness:   %6.1f%%  (weight %.0f%%)\n", r.Completeness*100, r.Weights.Completeness*100)
	fmt.Fprintf(&b, "Accuracy:       %6.1f%%  (weight %.0f%%)\n", r.Accuracy*100, r.Weights.Accuracy*100)
	fmt.Fprintf(&b, "Consistency:    %6.1f%%  (weight %.0f%%)\n", r.Consistency*100, r.Weights.Consistency*100)
	fmt.Fprintf(&b, "Uniqueness:     %6.1f%%  (weight %.0f%%)\n\n", r.Uniqueness*100, r.Weights.Uniqueness*100)

	fmt.Fprintf(&b, "COLUMN COMPLETENESS\n%s\n", sectionRule)
	for _, col := range r.Profiles {
		status := "✓"
		switch {
		case col.Completeness < 0.9:
			status = "✗"
		case col.Completeness < 1:
			status = "⚠"
		}
		fmt.Fprintf(&b, "%s %-24s %5.1f%% complete (%d missing)\n",
			status, col.Name, col.Completeness*100, col.Missing)
		if col.InsufficientData {
			fmt.Fprintf(&b, "  insufficient numeric data for dispersion statistics\n")
		}
	}
	b.WriteString("\n")

	writeAnomalySection(&b, r.Anomalies)

	fmt.Fprintf(&b, "RECOMMENDATIONS\n%s\n", sectionRule)
	for i, rec := range recommendations(r) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

func writeAnomalySection(b *strings.Builder, anoms []anomaly.Anomaly) {
	fmt.Fprintf(b, "ANOMALY DETECTION\n%s\n", sectionRule)
	fmt.Fprintf(b, "Total anomalies found: %d\n\n", len(anoms))
	if len(anoms) == 0 {
		b.WriteString("✓ No anomalies detected\n\n")
		return
	}
	for _, method := range methodOrder(anoms) {
		group := filterMethod(anoms, method)
		fmt.Fprintf(b, "⚠ %s: %d value(s)\n", methodLabel(method), len(group))
		for i, a := range group {
			if i == maxShownPerMethod {
				fmt.Fprintf(b, "  ... and %d more\n", len(group)-maxShownPerMethod)
				break
			}
			fmt.Fprintf(b, "  - row %d, %s: %g (%s)\n", a.Row, a.Column, a.Value, a.Reason)
		}
		b.WriteString("\n")
	}
}

// Markdown renders r for saving alongside other pipeline artifacts.
func Markdown(r *quality.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report: %s\n\n", r.Dataset)
	fmt.Fprintf(&b, "- **Run ID**: %s\n", r.RunID)
	fmt.Fprintf(&b, "- **Generated**: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Rows**: %d\n- **Columns**: %d\n\n", r.Rows, r.Columns)

	if r.Empty {
		b.WriteString("> Dataset is empty: no scores computed.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Overall Score: %.1f%% (%s)\n\n", r.Overall*100, r.Grade())
	b.WriteString("| Metric | Score | Weight |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Completeness | %.1f%% | %.0f%% |\n", r.Completeness*100, r.Weights.Completeness*100)
	fmt.Fprintf(&b, "| Accuracy | %.1f%% | %.0f%% |\n", r.Accuracy*100, r.Weights.Accuracy*100)
	fmt.Fprintf(&b, "| Consistency | %.1f%% | %.0f%% |\n", r.Consistency*100, r.Weights.Consistency*100)
	fmt.Fprintf(&b, "| Uniqueness | %.1f%% | %.0f%% |\n\n", r.Uniqueness*100, r.Weights.Uniqueness*100)

	b.WriteString("## Column Profiles\n\n")
	b.WriteString("| Column | Kind | Complete | Unique | Mean | Median | Std | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, col := range r.Profiles {
		if col.Kind == "numeric" && !col.InsufficientData {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				col.Name, col.Kind, col.Completeness*100, col.Unique,
				col.Mean, col.Median, col.Std, col.Min, col.Max)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %.1f%% | %d | - | - | - | - | - |\n",
			col.Name, col.Kind, col.Completeness*100, col.Unique)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Anomalies (%d)\n\n", len(r.Anomalies))
	if len(r.Anomalies) == 0 {
		b.WriteString("No anomalies detected.\n\n")
	} else {
		b.WriteString("| Row | Column | Value | Method | Reason |\n|---|---|---|---|---|\n")
		for _, a := range r.Anomalies {
			fmt.Fprintf(&b, "| %d | %s | %g | %s | %s |\n", a.Row, a.Column, a.Value, a.Method, a.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for i, rec := range recommendations(r) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// Save writes content into dir, creating it if needed, and returns the path.
func Save(dir, filename, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func recommendations(r *quality.Report) []string {
	var recs []string

	var missing int
	for _, col := range r.Profiles {
		missing += col.Missing
	}
	if missing > 0 {
		total := r.Rows * r.Columns
		recs = append(recs, fmt.Sprintf("Address %d missing values (%.1f%% of data)",
			missing, float64(missing)/float64(total)*100))
	}
	if n := len(filterMethod(r.Anomalies, anomaly.MethodDomainRule)); n > 0 {
		recs = append(recs, fmt.Sprintf("Investigate %d domain-rule violations", n))
	}
	if len(r.Anomalies) > 0 {
		recs = append(recs, fmt.Sprintf("Review %d detected anomalies", len(r.Anomalies)))
	}
	if r.DuplicateRows > 0 {
		recs = append(recs, fmt.Sprintf("Remove %d duplicate records", r.DuplicateRows))
	}

	switch r.Grade() {
	case "EXCELLENT":
		recs = append(recs, "Overall data quality: EXCELLENT, proceed with confidence")
	case "GOOD":
		recs = append(recs, "Overall data quality: GOOD, minor issues to address")
	case "FAIR":
		recs = append(recs, "Overall data quality: FAIR, significant improvements needed")
	default:
		recs = append(recs, "Overall data quality: POOR, major data cleaning required")
	}
	return recs
}

func filterMethod(anoms []anomaly.Anomaly, method string) []anomaly.Anomaly {
	var out []anomaly.Anomaly
	for _, a := range anoms {
		if a.Method == method {
			out = append(out, a)
		}
	}
	return out
}

// methodOrder returns the detection methods present in anoms, in the order
// their sections appear in the report. Unrecognized methods follow in
// first-seen order.
func methodOrder(anoms []anomaly.Anomaly) []string {
	present := map[string]bool{}
	for _, a := range anoms {
		present[a.Method] = true
	}
	var order []string
	for _, m := range []string{anomaly.MethodZScore, anomaly.MethodIQR, anomaly.MethodDomainRule} {
		if present[m] {
			order = append(order, m)
			delete(present, m)
		}
	}
	for _, a := range anoms {
		if present[a.Method] {
			order = append(order, a.Method)
			delete(present, a.Method)
		}
	}
	return order
}

func methodLabel(method string) string {
	switch method {
	case anomaly.MethodZScore:
		return "Z-score outliers"
	case anomaly.MethodIQR:
		return "IQR outliers"
	case anomaly.MethodDomainRule:
		return "Domain rule violations"
	default:
		return method
	}
}
