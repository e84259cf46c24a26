package enums

import (
	"fmt"
	"strings"
)

// Unit is the measure a quantity is expressed in.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLitre      Unit = "litre"
	UnitMillilitre Unit = "ml"
	UnitPieces     Unit = "pcs"
	UnitUnits      Unit = "units"
)

var validUnits = []Unit{
	UnitKilogram,
	UnitGram,
	UnitLitre,
	UnitMillilitre,
	UnitPieces,
	UnitUnits,
}

var unitAliases = map[string]Unit{
	"grams":  UnitGram,
	"gram":   UnitGram,
	"liter":  UnitLitre,
	"litres": UnitLitre,
	"kgs":    UnitKilogram,
	"pc":     UnitPieces,
	"unit":   UnitUnits,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit normalizes case and common aliases ("grams", "liter").
func ParseUnit(value string) (Unit, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := unitAliases[normalized]; ok {
		return alias, nil
	}
	for _, candidate := range validUnits {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
