// Package etl implements the extract-transform-load pipeline for raw lab
// exports: CSV in, chemistry-validated rows out to SQLite.
package etl

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pharmadata-tools/labqa-cli/internal/chem"
	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
)

const loadBatchSize = 100

// Experiment is one validated lab record as persisted. Numeric measurements
// are nullable because source exports routinely omit them.
type Experiment struct {
	ID            uint   `gorm:"primaryKey"`
	BatchID       string `gorm:"index;size:36"`
	SourceRow     int
	ExperimentID  string `gorm:"index"`
	CompoundName  string
	PH            *float64
	Temperature   *float64
	TempUnit      string
	Concentration *float64
	BatchNumber   string

	ValidatedAt      time.Time
	ValidationStatus string
}

// RowError records one rejected source row.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Summary describes one pipeline run.
type Summary struct {
	BatchID  string     `json:"batch_id"`
	Total    int        `json:"total_records"`
	Valid    int        `json:"valid_records"`
	Failed   int        `json:"failed_records"`
	PassRate float64    `json:"pass_rate"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Pipeline runs extract, transform and load against one database handle.
type Pipeline struct {
	db *gorm.DB

	// Progress, when set, is called after each transformed row.
	Progress func(done, total int)
}

// Open connects to the SQLite database at path, creating it if missing.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

// New returns a Pipeline writing to db.
func New(db *gorm.DB) *Pipeline {
	return &Pipeline{db: db}
}

// Run executes the full pipeline over the tabular file at csvPath and returns
// a run summary. Row-level validation failures are collected, never fatal;
// an unreadable or empty input aborts the run.
func (p *Pipeline) Run(csvPath string) (*Summary, error) {
	d, err := dataset.Load(csvPath, dataset.Options{})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	records, rowErrs := p.Transform(d)
	sum := &Summary{
		BatchID: uuid.New().String(),
		Total:   d.NumRows(),
		Valid:   len(records),
		Failed:  d.NumRows() - len(records),
		Errors:  rowErrs,
	}
	if sum.Total > 0 {
		sum.PassRate = float64(sum.Valid) / float64(sum.Total)
	}

	if len(records) > 0 {
		for i := range records {
			records[i].BatchID = sum.BatchID
		}
		if err := p.Load(records); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// Transform validates every row of d against the chemistry rules and maps the
// survivors to Experiment records stamped with the validation time.
func (p *Pipeline) Transform(d *dataset.Dataset) ([]Experiment, []RowError) {
	phCol, hasPH := d.Column("ph")
	tempCol, hasTemp := d.Column("temperature")
	unitCol, hasUnit := d.Column("temp_unit")
	concCol, hasConc := d.Column("concentration")
	idCol, hasID := d.Column("experiment_id")
	nameCol, hasName := d.Column("compound_name")
	batchCol, hasBatch := d.Column("batch_number")

	var records []Experiment
	var rowErrs []RowError
	now := time.Now().UTC()

	for row := 0; row < d.NumRows(); row++ {
		rec := Experiment{
			SourceRow:        row,
			ValidatedAt:      now,
			ValidationStatus: "PASS",
		}
		if hasID {
			rec.ExperimentID = d.Cell(row, idCol.Index)
		}
		if hasName {
			rec.CompoundName = d.Cell(row, nameCol.Index)
		}
		if hasBatch {
			rec.BatchNumber = d.Cell(row, batchCol.Index)
		}
		if hasUnit {
			rec.TempUnit = d.Cell(row, unitCol.Index)
		}

		reject := func(reason string) {
			rowErrs = append(rowErrs, RowError{Row: row, Reason: reason})
		}

		ok := true
		if hasPH {
			if v, present, err := numericCell(d, row, phCol.Index); err != nil {
				reject(fmt.Sprintf("ph: %v", err))
				ok = false
			} else if present {
				if valid, reason := chem.ValidatePH(v); !valid {
					reject(reason)
					ok = false
				} else {
					rec.PH = &v
				}
			}
		}
		if ok && hasTemp {
			if v, present, err := numericCell(d, row, tempCol.Index); err != nil {
				reject(fmt.Sprintf("temperature: %v", err))
				ok = false
			} else if present {
				if valid, reason := chem.ValidateTemperature(v, rec.TempUnit); !valid {
					reject(reason)
					ok = false
				} else {
					rec.Temperature = &v
				}
			}
		}
		if ok && hasConc {
			if v, present, err := numericCell(d, row, concCol.Index); err != nil {
				reject(fmt.Sprintf("concentration: %v", err))
				ok = false
			} else if present {
				if valid, reason := chem.ValidateConcentration(v); !valid {
					reject(reason)
					ok = false
				} else {
					rec.Concentration = &v
				}
			}
		}

		if ok {
			records = append(records, rec)
		}
		if p.Progress != nil {
			p.Progress(row+1, d.NumRows())
		}
	}
	return records, rowErrs
}

// Load replaces the experiments table with the given records, inserting in
// batches.
func (p *Pipeline) Load(records []Experiment) error {
	mig := p.db.Migrator()
	if mig.HasTable(&Experiment{}) {
		if err := mig.DropTable(&Experiment{}); err != nil {
			return fmt.Errorf("drop experiments table: %w", err)
		}
	}
	if err := p.db.AutoMigrate(&Experiment{}); err != nil {
		return fmt.Errorf("migrate experiments table: %w", err)
	}
	if err := p.db.CreateInBatches(records, loadBatchSize).Error; err != nil {
		return fmt.Errorf("insert experiments: %w", err)
	}
	return nil
}

// numericCell parses the cell at (row, col). present is false for a missing
// cell; a non-empty cell that fails to parse is an error.
func numericCell(d *dataset.Dataset, row, col int) (v float64, present bool, err error) {
	cell := d.Cell(row, col)
	if cell == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", cell)
	}
	return v, true, nil
}
