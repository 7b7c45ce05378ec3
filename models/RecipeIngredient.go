package models

import (
	"strconv"
	"strings"
)

type RecipeIngredient struct {
	ID       uint `gorm:"primaryKey" json:"-"`
	RecipeID uint `gorm:"not null;index" json:"-"` // Parent Recipe
	Position int  `gorm:"not null" json:"-"`

	Name          string   `gorm:"not null" json:"name"`
	Specification *float64 `json:"specification,omitempty"`
	Unit          string   `json:"unit,omitempty"`
}

// SpecificationText formats the quantity the way a form field holds it; empty when unset.
func (i RecipeIngredient) SpecificationText() string {
	if i.Specification == nil {
		return ""
	}
	return strconv.FormatFloat(*i.Specification, 'f', -1, 64)
}

// Label formats the ingredient for display, e.g. "Huevo (3 uds)".
func (i RecipeIngredient) Label() string {
	var b strings.Builder
	b.WriteString(i.Name)
	unit := strings.TrimSpace(i.Unit)
	switch {
	case i.Specification != nil:
		b.WriteString(" (")
		b.WriteString(i.SpecificationText())
		if unit != "" {
			b.WriteString(" ")
			b.WriteString(unit)
		}
		b.WriteString(")")
	case unit != "":
		b.WriteString(" (")
		b.WriteString(unit)
		b.WriteString(")")
	}
	return b.String()
}

func (i RecipeIngredient) Clone() RecipeIngredient {
	out := i
	if i.Specification != nil {
		value := *i.Specification
		out.Specification = &value
	}
	return out
}
