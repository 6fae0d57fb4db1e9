package etl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	return db
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiments.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

const sampleCSV = `experiment_id,compound_name,ph,temperature,temp_unit,concentration,batch_number
EXP001,Aspirin,7.4,25.0,celsius,100,BATCH001
EXP002,Ibuprofen,6.8,22.5,celsius,50,BATCH002
EXP003,Caffeine,15.5,24.0,celsius,75,BATCH003
EXP004,Paracetamol,7.1,-300.0,celsius,200,BATCH004
EXP005,Naproxen,7.0,23.0,celsius,-10,BATCH005
EXP006,Diclofenac,7.2,,celsius,80,BATCH006
`

func TestRun(t *testing.T) {
	db := memoryDB(t)
	path := writeCSV(t, sampleCSV)

	sum, err := New(db).Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Total != 6 {
		t.Errorf("total = %d, want 6", sum.Total)
	}
	// EXP003 fails pH, EXP004 fails temperature, EXP005 fails concentration.
	if sum.Valid != 3 || sum.Failed != 3 {
		t.Errorf("valid/failed = %d/%d, want 3/3 (errors: %+v)", sum.Valid, sum.Failed, sum.Errors)
	}
	if sum.PassRate != 0.5 {
		t.Errorf("pass rate = %v, want 0.5", sum.PassRate)
	}
	if sum.BatchID == "" {
		t.Error("summary should carry a batch ID")
	}
	if len(sum.Errors) != 3 {
		t.Fatalf("errors = %+v, want 3", sum.Errors)
	}
	if sum.Errors[0].Row != 2 || !strings.Contains(sum.Errors[0].Reason, "pH") {
		t.Errorf("first error = %+v, want pH failure at row 2", sum.Errors[0])
	}

	var stored []Experiment
	if err := db.Order("source_row").Find(&stored).Error; err != nil {
		t.Fatalf("query experiments: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored rows = %d, want 3", len(stored))
	}
	first := stored[0]
	if first.ExperimentID != "EXP001" || first.CompoundName != "Aspirin" {
		t.Errorf("first record = %+v", first)
	}
	if first.PH == nil || *first.PH != 7.4 {
		t.Errorf("first pH = %v, want 7.4", first.PH)
	}
	if first.ValidationStatus != "PASS" || first.ValidatedAt.IsZero() {
		t.Errorf("validation stamp missing: %+v", first)
	}
	if first.BatchID != sum.BatchID {
		t.Errorf("record batch = %s, summary batch = %s", first.BatchID, sum.BatchID)
	}

	// EXP006 has a missing temperature; the record loads with a NULL.
	last := stored[2]
	if last.ExperimentID != "EXP006" || last.Temperature != nil {
		t.Errorf("missing temperature should stay nil: %+v", last)
	}
}

func TestRunReplacesTable(t *testing.T) {
	db := memoryDB(t)
	p := New(db)

	if _, err := p.Run(writeCSV(t, sampleCSV)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Run(writeCSV(t, "experiment_id,ph\nEXP900,7.0\n")); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var count int64
	if err := db.Model(&Experiment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("table should be replaced per run, have %d rows", count)
	}
}

func TestRunMissingFile(t *testing.T) {
	if _, err := New(memoryDB(t)).Run("/nonexistent/input.csv"); err == nil {
		t.Error("missing input must abort the run")
	}
}

func TestRunMalformedNumeric(t *testing.T) {
	db := memoryDB(t)
	path := writeCSV(t, "experiment_id,ph\nEXP001,acidic\nEXP002,7.0\n")

	sum, err := New(db).Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Valid != 1 || sum.Failed != 1 {
		t.Errorf("valid/failed = %d/%d, want 1/1", sum.Valid, sum.Failed)
	}
	if !strings.Contains(sum.Errors[0].Reason, "not a number") {
		t.Errorf("reason = %q", sum.Errors[0].Reason)
	}
}

func TestTransformProgress(t *testing.T) {
	db := memoryDB(t)
	p := New(db)
	var calls int
	p.Progress = func(done, total int) {
		calls++
		if total != 6 {
			t.Errorf("total = %d, want 6", total)
		}
	}
	if _, err := p.Run(writeCSV(t, sampleCSV)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 6 {
		t.Errorf("progress calls = %d, want 6", calls)
	}
}
