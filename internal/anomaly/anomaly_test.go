package anomaly

import (
	"strings"
	"testing"

	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
)

func singleColumn(name string, cells ...string) *dataset.Dataset {
	rows := make([][]string, len(cells))
	for i, c := range cells {
		rows[i] = []string{c}
	}
	return &dataset.Dataset{Name: "test", Columns: []string{name}, Rows: rows}
}

func byMethod(anoms []Anomaly, method string) []Anomaly {
	var out []Anomaly
	for _, a := range anoms {
		if a.Method == method {
			out = append(out, a)
		}
	}
	return out
}

func TestIQRFlagsExtremeValue(t *testing.T) {
	d := singleColumn("reading", "10", "12", "11", "13", "1000")
	anoms := Detect(d, Options{})

	flagged := byMethod(anoms, MethodIQR)
	if len(flagged) != 1 {
		t.Fatalf("IQR flagged %d values, want 1: %+v", len(flagged), anoms)
	}
	if flagged[0].Value != 1000 || flagged[0].Row != 4 {
		t.Errorf("flagged = %+v, want value 1000 at row 4", flagged[0])
	}
}

func TestZScoreFlagsAtLowerThreshold(t *testing.T) {
	// With only 5 observations the maximum attainable z-score is below the
	// default threshold of 3, so the extreme value only surfaces when the
	// caller lowers it.
	d := singleColumn("reading", "10", "12", "11", "13", "1000")

	if got := byMethod(Detect(d, Options{}), MethodZScore); len(got) != 0 {
		t.Errorf("default threshold should not flag in a 5-value column, got %+v", got)
	}

	flagged := byMethod(Detect(d, Options{ZScoreThreshold: 1.5}), MethodZScore)
	if len(flagged) != 1 || flagged[0].Value != 1000 {
		t.Fatalf("threshold 1.5 should flag exactly the extreme value, got %+v", flagged)
	}
	if !strings.Contains(flagged[0].Reason, "z-score") {
		t.Errorf("reason = %q, want z-score mention", flagged[0].Reason)
	}
}

func TestZScoreFlagsInLargeColumn(t *testing.T) {
	cells := make([]string, 0, 101)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			cells = append(cells, "10")
		} else {
			cells = append(cells, "12")
		}
	}
	cells = append(cells, "500")
	d := singleColumn("reading", cells...)

	flagged := byMethod(Detect(d, Options{}), MethodZScore)
	if len(flagged) != 1 || flagged[0].Value != 500 {
		t.Fatalf("z-score should flag 500 with 100 tight neighbors, got %+v", flagged)
	}
}

func TestZeroVarianceIsSkipped(t *testing.T) {
	d := singleColumn("reading", "5", "5", "5", "5", "5")
	if anoms := Detect(d, Options{}); len(anoms) != 0 {
		t.Errorf("constant column must not be flagged, got %+v", anoms)
	}
}

func TestTooFewValuesSkipsStatisticalTests(t *testing.T) {
	d := singleColumn("reading", "1", "100")
	if anoms := Detect(d, Options{}); len(anoms) != 0 {
		t.Errorf("two observations are not enough for either test, got %+v", anoms)
	}
}

func TestDomainRulePH(t *testing.T) {
	d := singleColumn("ph", "7.0", "14.5", "6.5", "-1", "7.2")
	flagged := byMethod(Detect(d, Options{}), MethodDomainRule)
	if len(flagged) != 2 {
		t.Fatalf("domain rule flagged %d values, want 2: %+v", len(flagged), flagged)
	}
	for _, a := range flagged {
		if !strings.Contains(a.Reason, "pH") {
			t.Errorf("reason = %q, want pH out-of-range message", a.Reason)
		}
	}
}

func TestDomainRuleConcentration(t *testing.T) {
	d := singleColumn("concentration_mm", "1.5", "0", "-2.5", "3.0")
	flagged := byMethod(Detect(d, Options{}), MethodDomainRule)
	if len(flagged) != 2 {
		t.Fatalf("flagged %d, want 2 (zero and negative): %+v", len(flagged), flagged)
	}
}

func TestUnionOfMethods(t *testing.T) {
	// An out-of-range pH that is also a statistical outlier should appear
	// once per detection method.
	cells := make([]string, 0, 41)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			cells = append(cells, "7.0")
		} else {
			cells = append(cells, "7.2")
		}
	}
	cells = append(cells, "99")
	d := singleColumn("ph", cells...)

	anoms := Detect(d, Options{})
	methods := map[string]bool{}
	for _, a := range anoms {
		if a.Value == 99 {
			methods[a.Method] = true
		}
	}
	if !methods[MethodIQR] || !methods[MethodZScore] || !methods[MethodDomainRule] {
		t.Errorf("99 should be flagged by all three methods, got %+v", anoms)
	}
}

func TestTextColumnsIgnored(t *testing.T) {
	d := &dataset.Dataset{
		Name:    "test",
		Columns: []string{"compound"},
		Rows:    [][]string{{"Aspirin"}, {"Ibuprofen"}, {"Caffeine"}, {"Paracetamol"}},
	}
	if anoms := Detect(d, Options{}); len(anoms) != 0 {
		t.Errorf("text column must not be scanned, got %+v", anoms)
	}
}
