package models

import "strings"

const (
	UnitCount      = "uds"
	UnitPiece      = "unidad"
	UnitGram       = "gr"
	UnitKilogram   = "kg"
	UnitMilligram  = "mg"
	UnitMillilitre = "ml"
	UnitLitre      = "l"
	UnitTablespoon = "cucharada"
	UnitTeaspoon   = "cucharadita"
	UnitCup        = "taza"
	UnitPinch      = "pizca"
	UnitPackage    = "paquete"
	UnitJar        = "bote"
	DefaultUnit    = UnitCount
)

var units = []string{
	UnitCount,
	UnitPiece,
	UnitGram,
	UnitKilogram,
	UnitMilligram,
	UnitMillilitre,
	UnitLitre,
	UnitTablespoon,
	UnitTeaspoon,
	UnitCup,
	UnitPinch,
	UnitPackage,
	UnitJar,
}

// Units returns the accepted unit vocabulary in display order.
func Units() []string {
	result := make([]string, len(units))
	copy(result, units)
	return result
}

// NormalizeUnit trims and lower-cases a unit. Blank input yields an empty string.
func NormalizeUnit(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ValidUnit reports whether value names a unit from the vocabulary.
func ValidUnit(value string) bool {
	normalized := NormalizeUnit(value)
	for _, unit := range units {
		if normalized == unit {
			return true
		}
	}
	return false
}
