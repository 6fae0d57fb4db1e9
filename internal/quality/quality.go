package quality

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmadata-tools/labqa-cli/internal/anomaly"
	"github.com/pharmadata-tools/labqa-cli/internal/chem"
	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
	"github.com/pharmadata-tools/labqa-cli/internal/profiler"
)

// Weights controls the relative contribution of each sub-score to the overall
// quality score. They must sum to 1.
type Weights struct {
	Completeness float64 `mapstructure:"completeness" yaml:"completeness"`
	Accuracy     float64 `mapstructure:"accuracy" yaml:"accuracy"`
	Consistency  float64 `mapstructure:"consistency" yaml:"consistency"`
	Uniqueness   float64 `mapstructure:"uniqueness" yaml:"uniqueness"`
}

// DefaultWeights returns the standard weighting used when no override is
// configured.
func DefaultWeights() Weights {
	return Weights{Completeness: 0.4, Accuracy: 0.3, Consistency: 0.2, Uniqueness: 0.1}
}

// Validate checks the weights are non-negative and sum to 1 within a small
// tolerance.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"completeness": w.Completeness,
		"accuracy":     w.Accuracy,
		"consistency":  w.Consistency,
		"uniqueness":   w.Uniqueness,
	} {
		if v < 0 {
			return fmt.Errorf("quality weight %s is negative: %g", name, v)
		}
	}
	sum := w.Completeness + w.Accuracy + w.Consistency + w.Uniqueness
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("quality weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// Report is the result of one quality analysis run. All scores are in [0, 1].
type Report struct {
	RunID       string    `json:"run_id"`
	Dataset     string    `json:"dataset"`
	GeneratedAt time.Time `json:"generated_at"`

	Rows    int  `json:"rows"`
	Columns int  `json:"columns"`
	Empty   bool `json:"empty,omitempty"`

	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Uniqueness   float64 `json:"uniqueness"`
	Overall      float64 `json:"overall"`

	Weights   Weights                  `json:"weights"`
	Profiles  []profiler.ColumnProfile `json:"column_profiles"`
	Anomalies []anomaly.Anomaly        `json:"anomalies"`

	DuplicateRows int `json:"duplicate_rows"`
}

// Scorer computes quality reports with a fixed weighting and detector
// settings. A zero Scorer is not usable; construct with New.
type Scorer struct {
	weights Weights
	detect  anomaly.Options
}

// New returns a Scorer. Invalid weights are rejected.
func New(w Weights, detect anomaly.Options) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w, detect: detect}, nil
}

// Score analyzes d and builds a full quality report. The computation is
// purely functional over the dataset snapshot; the same input yields the same
// scores (only RunID and GeneratedAt differ between runs).
func (s *Scorer) Score(d *dataset.Dataset) *Report {
	r := &Report{
		RunID:       uuid.New().String(),
		Dataset:     d.Name,
		GeneratedAt: time.Now().UTC(),
		Rows:        d.NumRows(),
		Columns:     len(d.Columns),
		Weights:     s.weights,
	}
	if d.NumRows() == 0 || len(d.Columns) == 0 {
		r.Empty = true
		return r
	}

	prof := profiler.Build(d)
	r.Profiles = prof.Columns
	r.Anomalies = anomaly.Detect(d, s.detect)

	r.Completeness = prof.Completeness()
	r.Accuracy = accuracy(d)
	r.Consistency = consistency(d)
	r.Uniqueness, r.DuplicateRows = uniqueness(d)

	r.Overall = s.weights.Completeness*r.Completeness +
		s.weights.Accuracy*r.Accuracy +
		s.weights.Consistency*r.Consistency +
		s.weights.Uniqueness*r.Uniqueness
	return r
}

// Grade maps an overall score to a coarse label for report headers.
func (r *Report) Grade() string {
	switch {
	case r.Overall >= 0.9:
		return "EXCELLENT"
	case r.Overall >= 0.75:
		return "GOOD"
	case r.Overall >= 0.6:
		return "FAIR"
	default:
		return "POOR"
	}
}

// accuracy is the fraction of domain-rule-checked values that pass. Columns
// with no matching rule contribute nothing. With no checkable values at all
// the dataset is vacuously accurate.
func accuracy(d *dataset.Dataset) float64 {
	var checked, valid int
	for i := range d.Columns {
		col := d.ColumnAt(i)
		rule := chem.RuleFor(col.Name)
		if rule == nil {
			continue
		}
		vals, _ := col.Numeric()
		for _, v := range vals {
			checked++
			if ok, _ := rule(v); ok {
				valid++
			}
		}
	}
	if checked == 0 {
		return 1
	}
	return float64(valid) / float64(checked)
}

// consistency is the fraction of non-missing cells whose parsed type matches
// the column's inferred kind.
func consistency(d *dataset.Dataset) float64 {
	var total, matching int
	for i := range d.Columns {
		col := d.ColumnAt(i)
		kind := col.Kind()
		for _, cell := range col.Cells() {
			if cell == "" {
				continue
			}
			total++
			if cellKind(cell) == kind {
				matching++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(matching) / float64(total)
}

func cellKind(cell string) string {
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return dataset.KindNumeric
	}
	if looksLikeTime(cell) {
		return dataset.KindDatetime
	}
	return dataset.KindText
}

func looksLikeTime(s string) bool {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}

// uniqueness is 1 minus the share of rows that exactly repeat an earlier row
// across every column.
func uniqueness(d *dataset.Dataset) (float64, int) {
	seen := make(map[string]struct{}, d.NumRows())
	dups := 0
	for _, row := range d.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return 1 - float64(dups)/float64(d.NumRows()), dups
}
