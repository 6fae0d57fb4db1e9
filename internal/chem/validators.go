package chem

import (
	"fmt"
	"strings"
)

// Valid pH range for aqueous pharmaceutical samples.
const (
	MinPH = 0.0
	MaxPH = 14.0
)

// TempRange bounds a temperature scale between its physical floor and the
// highest reading the lab instruments report.
type TempRange struct {
	Min float64
	Max float64
}

// tempRanges keys are lowercase unit names.
var tempRanges = map[string]TempRange{
	"celsius":    {Min: -273.15, Max: 1000},
	"fahrenheit": {Min: -459.67, Max: 1832},
	"kelvin":     {Min: 0, Max: 1273.15},
}

// ValidatePH checks a pH measurement against the chemically valid range.
// Both bounds are inclusive.
func ValidatePH(v float64) (bool, string) {
	if v >= MinPH && v <= MaxPH {
		return true, ""
	}
	return false, fmt.Sprintf("pH %g out of valid range [%g, %g]", v, MinPH, MaxPH)
}

// ValidateTemperature checks a temperature reading against the physical
// bounds of its scale. The floor (absolute zero) is inclusive: exactly
// -273.15°C passes. Unknown units fail rather than guessing a scale.
func ValidateTemperature(v float64, unit string) (bool, string) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "celsius"
	}
	r, ok := tempRanges[u]
	if !ok {
		return false, fmt.Sprintf("unknown temperature unit: %s", unit)
	}
	if v >= r.Min && v <= r.Max {
		return true, ""
	}
	return false, fmt.Sprintf("temperature %g°%s out of valid range [%g, %g]", v, strings.ToUpper(u[:1]), r.Min, r.Max)
}

// ValidateConcentration checks that a concentration is strictly positive.
func ValidateConcentration(v float64) (bool, string) {
	if v > 0 {
		return true, ""
	}
	return false, fmt.Sprintf("concentration %g must be positive", v)
}

// FieldValidator checks a single numeric value and reports a reason on
// failure.
type FieldValidator func(v float64) (bool, string)

// RuleFor returns the domain validator for a column, matched by name the same
// way lab exports name their fields: an exact "ph" column, anything
// containing "temp" (temperature, storage_temp, ...), anything containing
// "conc". Returns nil when no domain rule applies.
func RuleFor(column string) FieldValidator {
	name := strings.ToLower(strings.TrimSpace(column))
	switch {
	case name == "ph":
		return ValidatePH
	case strings.Contains(name, "temp") && !strings.Contains(name, "unit"):
		return func(v float64) (bool, string) { return ValidateTemperature(v, "celsius") }
	case strings.Contains(name, "conc"):
		return ValidateConcentration
	}
	return nil
}
