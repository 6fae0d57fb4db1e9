package chem

import (
	"errors"
	"fmt"
)

// ErrMolarMassRequired is returned when a mass<->molar conversion is
// requested without a usable molar mass.
var ErrMolarMassRequired = errors.New("molar mass required for conversion")

// Concentration units supported by ConvertConcentration. Millimolar is the
// internal base unit; every conversion passes through it.
const (
	UnitMilliMolar = "mM"
	UnitMicroMolar = "µM"
	UnitMolar      = "M"
	UnitMgPerML    = "mg/mL"
	UnitGPerL      = "g/L"
)

// molarFactors maps molarity units to their factor into mM.
var molarFactors = map[string]float64{
	UnitMilliMolar: 1.0,
	UnitMicroMolar: 0.001,
	UnitMolar:      1000.0,
}

// massUnits are concentration-by-mass units. Converting them to or from a
// molarity needs the compound's molar mass (g/mol); mg/mL and g/L are
// numerically identical, so their factor into mM is 1000/molarMass for both.
var massUnits = map[string]bool{
	UnitMgPerML: true,
	UnitGPerL:   true,
}

// ConvertConcentration converts value between concentration units. Mass-based
// units (mg/mL, g/L) require molarMass > 0; pass 0 when converting purely
// among molarity units.
func ConvertConcentration(value float64, fromUnit, toUnit string, molarMass float64) (float64, error) {
	toBase, err := factorToMilliMolar(fromUnit, molarMass)
	if err != nil {
		return 0, err
	}
	fromBase, err := factorToMilliMolar(toUnit, molarMass)
	if err != nil {
		return 0, err
	}
	return value * toBase / fromBase, nil
}

func factorToMilliMolar(unit string, molarMass float64) (float64, error) {
	if f, ok := molarFactors[unit]; ok {
		return f, nil
	}
	if massUnits[unit] {
		if molarMass <= 0 {
			return 0, fmt.Errorf("%w: %s", ErrMolarMassRequired, unit)
		}
		return 1000.0 / molarMass, nil
	}
	return 0, fmt.Errorf("unsupported concentration unit: %s", unit)
}
