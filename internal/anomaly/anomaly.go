package anomaly

import (
	"fmt"
	"math"

	"github.com/pharmadata-tools/labqa-cli/internal/chem"
	"github.com/pharmadata-tools/labqa-cli/internal/dataset"
	"github.com/pharmadata-tools/labqa-cli/internal/profiler"
)

// Detection methods reported on each anomaly.
const (
	MethodZScore     = "zscore"
	MethodIQR        = "iqr"
	MethodDomainRule = "domain_rule"
)

// Anomaly is one flagged cell. Row is the zero-based data row index (the
// header is not counted).
type Anomaly struct {
	Row    int     `json:"row"`
	Column string  `json:"column"`
	Value  float64 `json:"value"`
	Method string  `json:"method"`
	Reason string  `json:"reason"`
}

// Options tunes the statistical detectors. Zero values fall back to the
// defaults below.
type Options struct {
	ZScoreThreshold float64
	IQRMultiplier   float64
}

// Default detector settings.
const (
	DefaultZScoreThreshold = 3.0
	DefaultIQRMultiplier   = 1.5
)

func (o Options) withDefaults() Options {
	if o.ZScoreThreshold <= 0 {
		o.ZScoreThreshold = DefaultZScoreThreshold
	}
	if o.IQRMultiplier <= 0 {
		o.IQRMultiplier = DefaultIQRMultiplier
	}
	return o
}

// Detect runs every detector over every column of d and returns the union of
// their findings. A single cell can be flagged by more than one method.
func Detect(d *dataset.Dataset, opt Options) []Anomaly {
	opt = opt.withDefaults()
	var out []Anomaly
	for i := range d.Columns {
		col := d.ColumnAt(i)
		if col.Kind() != dataset.KindNumeric {
			continue
		}
		vals, rows := col.Numeric()
		out = append(out, zscore(col.Name, vals, rows, opt.ZScoreThreshold)...)
		out = append(out, iqr(col.Name, vals, rows, opt.IQRMultiplier)...)
		out = append(out, domainRules(col.Name, vals, rows)...)
	}
	return out
}

// zscore flags values more than threshold sample standard deviations from the
// mean. Needs at least 3 observations and nonzero dispersion.
func zscore(column string, vals []float64, rows []int, threshold float64) []Anomaly {
	if len(vals) < 3 {
		return nil
	}
	mean := profiler.Mean(vals)
	std := profiler.StdDev(vals)
	if std == 0 {
		return nil
	}
	var out []Anomaly
	for i, v := range vals {
		z := math.Abs(v-mean) / std
		if z > threshold {
			out = append(out, Anomaly{
				Row:    rows[i],
				Column: column,
				Value:  v,
				Method: MethodZScore,
				Reason: fmt.Sprintf("z-score %.2f exceeds threshold %.1f", z, threshold),
			})
		}
	}
	return out
}

// iqr flags values outside [Q1 - k*IQR, Q3 + k*IQR]. Needs at least 4
// observations and a nonzero interquartile range.
func iqr(column string, vals []float64, rows []int, multiplier float64) []Anomaly {
	if len(vals) < 4 {
		return nil
	}
	q1 := profiler.Quantile(vals, 0.25)
	q3 := profiler.Quantile(vals, 0.75)
	spread := q3 - q1
	if spread == 0 {
		return nil
	}
	lo := q1 - multiplier*spread
	hi := q3 + multiplier*spread
	var out []Anomaly
	for i, v := range vals {
		if v < lo || v > hi {
			out = append(out, Anomaly{
				Row:    rows[i],
				Column: column,
				Value:  v,
				Method: MethodIQR,
				Reason: fmt.Sprintf("outside IQR fence [%.4g, %.4g]", lo, hi),
			})
		}
	}
	return out
}

// domainRules applies chemistry plausibility checks when the column name maps
// to a known measurement.
func domainRules(column string, vals []float64, rows []int) []Anomaly {
	rule := chem.RuleFor(column)
	if rule == nil {
		return nil
	}
	var out []Anomaly
	for i, v := range vals {
		if ok, reason := rule(v); !ok {
			out = append(out, Anomaly{
				Row:    rows[i],
				Column: column,
				Value:  v,
				Method: MethodDomainRule,
				Reason: reason,
			})
		}
	}
	return out
}
