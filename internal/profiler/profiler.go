package profiler

import (
	"math"
	"sort"

	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
)

// ColumnProfile summarizes one column of a dataset. Numeric statistics are
// only populated when Kind is numeric; Completeness and Unique apply to any
// column.
type ColumnProfile struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Total        int     `json:"total"`
	Missing      int     `json:"missing"`
	Completeness float64 `json:"completeness"`
	Unique       int     `json:"unique"`

	// Numeric statistics. Std is the sample standard deviation (ddof=1).
	NumericCount int     `json:"numeric_count,omitempty"`
	Mean         float64 `json:"mean,omitempty"`
	Median       float64 `json:"median,omitempty"`
	Std          float64 `json:"std,omitempty"`
	Min          float64 `json:"min,omitempty"`
	Max          float64 `json:"max,omitempty"`

	// InsufficientData is set when fewer than 2 numeric observations exist,
	// making dispersion undefined.
	InsufficientData bool `json:"insufficient_data,omitempty"`
}

// Profile holds per-column statistics plus a dataset-level overview.
type Profile struct {
	Dataset    string          `json:"dataset"`
	Rows       int             `json:"rows"`
	ColumnsN   int             `json:"columns"`
	TotalCells int             `json:"total_cells"`
	Columns    []ColumnProfile `json:"column_profiles"`
}

// Build computes a Profile over every column of d.
func Build(d *dataset.Dataset) *Profile {
	p := &Profile{
		Dataset:    d.Name,
		Rows:       d.NumRows(),
		ColumnsN:   len(d.Columns),
		TotalCells: d.NumRows() * len(d.Columns),
	}
	for i := range d.Columns {
		p.Columns = append(p.Columns, profileColumn(d.ColumnAt(i)))
	}
	return p
}

// Completeness returns the share of non-missing cells across the whole
// dataset, in [0, 1].
func (p *Profile) Completeness() float64 {
	if p.TotalCells == 0 {
		return 0
	}
	missing := 0
	for _, c := range p.Columns {
		missing += c.Missing
	}
	return 1 - float64(missing)/float64(p.TotalCells)
}

func profileColumn(col dataset.ColumnView) ColumnProfile {
	cells := col.Cells()
	cp := ColumnProfile{
		Name:  col.Name,
		Kind:  col.Kind(),
		Total: len(cells),
	}
	seen := make(map[string]struct{})
	for _, c := range cells {
		if c == "" {
			cp.Missing++
			continue
		}
		seen[c] = struct{}{}
	}
	cp.Unique = len(seen)
	if cp.Total > 0 {
		cp.Completeness = float64(cp.Total-cp.Missing) / float64(cp.Total)
	}

	if cp.Kind != dataset.KindNumeric {
		return cp
	}
	vals, _ := col.Numeric()
	cp.NumericCount = len(vals)
	if len(vals) == 0 {
		cp.InsufficientData = true
		return cp
	}
	cp.Mean = Mean(vals)
	cp.Median = Median(vals)
	cp.Min, cp.Max = minMax(vals)
	if len(vals) < 2 {
		cp.InsufficientData = true
		return cp
	}
	cp.Std = StdDev(vals)
	return cp
}

// Mean returns the arithmetic mean; 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Median returns the middle value, averaging the two central values for an
// even count. 0 for an empty slice.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the sample standard deviation (ddof=1). It needs at least
// two observations; fewer return 0.
func StdDev(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	mean := Mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Quantile returns the q-th quantile (0 <= q <= 1) of vals using linear
// interpolation between closest ranks, the same scheme pandas and numpy
// default to.
func Quantile(vals []float64, q float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func minMax(vals []float64) (float64, float64) {
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}
