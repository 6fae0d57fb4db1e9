package quality

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pharmadata-tools/labqa-cli/internal/anomaly"
	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(DefaultWeights(), anomaly.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	sum := w.Completeness + w.Accuracy + w.Consistency + w.Uniqueness
	if !almostEqual(sum, 1.0) {
		t.Errorf("sum = %v, want 1.0", sum)
	}
}

func TestWeightsValidate(t *testing.T) {
	bad := Weights{Completeness: 0.5, Accuracy: 0.5, Consistency: 0.5, Uniqueness: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("weights summing to 2.0 should be rejected")
	}
	neg := Weights{Completeness: -0.1, Accuracy: 0.5, Consistency: 0.3, Uniqueness: 0.3}
	if err := neg.Validate(); err == nil {
		t.Error("negative weight should be rejected")
	}
	if _, err := New(bad, anomaly.Options{}); err == nil {
		t.Error("New should reject invalid weights")
	}
}

func TestScorePHScenario(t *testing.T) {
	// 1000 rows: 50 missing pH, 12 values outside [0, 14], the rest 7.x.
	rows := make([][]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		switch {
		case i < 50:
			rows = append(rows, []string{fmt.Sprintf("EXP%04d", i), ""})
		case i < 62:
			rows = append(rows, []string{fmt.Sprintf("EXP%04d", i), "15.5"})
		default:
			rows = append(rows, []string{fmt.Sprintf("EXP%04d", i), "7.2"})
		}
	}
	d := &dataset.Dataset{Name: "run.csv", Columns: []string{"experiment_id", "ph"}, Rows: rows}

	r := mustScorer(t).Score(d)

	// Completeness over all cells: 1950 of 2000 filled.
	if !almostEqual(r.Completeness, 1950.0/2000.0) {
		t.Errorf("completeness = %v, want 0.975", r.Completeness)
	}
	// Accuracy over rule-checked values: 938 of 950 pH readings in range.
	if !almostEqual(r.Accuracy, 938.0/950.0) {
		t.Errorf("accuracy = %v, want %v", r.Accuracy, 938.0/950.0)
	}
	// Every row carries a distinct experiment ID, so no exact duplicates.
	if !almostEqual(r.Uniqueness, 1) {
		t.Errorf("uniqueness = %v, want 1", r.Uniqueness)
	}

	var outOfRange int
	for _, a := range r.Anomalies {
		if a.Method == anomaly.MethodDomainRule && a.Column == "ph" {
			outOfRange++
			if !strings.Contains(a.Reason, "pH") {
				t.Errorf("reason = %q, want pH out-of-range message", a.Reason)
			}
		}
	}
	if outOfRange != 12 {
		t.Errorf("domain-rule anomalies = %d, want 12", outOfRange)
	}

	if r.Overall < 0 || r.Overall > 1 {
		t.Errorf("overall = %v, want within [0, 1]", r.Overall)
	}
}

func TestScoreUniquenessCountsExactDuplicates(t *testing.T) {
	d := &dataset.Dataset{
		Name:    "dup.csv",
		Columns: []string{"compound", "ph"},
		Rows: [][]string{
			{"Aspirin", "7.4"},
			{"Aspirin", "7.4"},
			{"Ibuprofen", "6.8"},
			{"Aspirin", "7.1"},
		},
	}
	r := mustScorer(t).Score(d)
	if r.DuplicateRows != 1 {
		t.Errorf("duplicate rows = %d, want 1", r.DuplicateRows)
	}
	if !almostEqual(r.Uniqueness, 0.75) {
		t.Errorf("uniqueness = %v, want 0.75", r.Uniqueness)
	}
}

func TestScoreConsistency(t *testing.T) {
	// Column is predominantly numeric, one text value breaks type consistency.
	d := &dataset.Dataset{
		Name:    "mixed.csv",
		Columns: []string{"temp"},
		Rows:    [][]string{{"25.0"}, {"22.5"}, {"ambient"}, {"24.0"}},
	}
	r := mustScorer(t).Score(d)
	if !almostEqual(r.Consistency, 0.75) {
		t.Errorf("consistency = %v, want 0.75", r.Consistency)
	}
}

func TestScoreEmptyDataset(t *testing.T) {
	d := &dataset.Dataset{Name: "empty.csv", Columns: []string{"a"}}
	r := mustScorer(t).Score(d)
	if !r.Empty {
		t.Fatal("empty dataset must set the Empty flag")
	}
	if r.Overall != 0 || r.Completeness != 0 {
		t.Errorf("empty dataset scores should stay zero, got %+v", r)
	}
}

func TestScoreIdempotence(t *testing.T) {
	d := &dataset.Dataset{
		Name:    "stable.csv",
		Columns: []string{"ph", "temp"},
		Rows:    [][]string{{"7.0", "25"}, {"7.4", "22"}, {"6.8", "24"}, {"8.1", "23"}},
	}
	s := mustScorer(t)
	a, b := s.Score(d), s.Score(d)
	if a.Overall != b.Overall || a.Completeness != b.Completeness ||
		a.Accuracy != b.Accuracy || a.Consistency != b.Consistency ||
		a.Uniqueness != b.Uniqueness || len(a.Anomalies) != len(b.Anomalies) {
		t.Errorf("repeated runs differ: %+v vs %+v", a, b)
	}
	if a.RunID == b.RunID {
		t.Error("each run should get a fresh run ID")
	}
}

func TestGrade(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, "EXCELLENT"},
		{0.80, "GOOD"},
		{0.65, "FAIR"},
		{0.30, "POOR"},
	}
	for _, c := range cases {
		r := &Report{Overall: c.score}
		if got := r.Grade(); got != c.want {
			t.Errorf("Grade(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}
