// Package changeset models the edits a user asks the model to apply to a
// recipe. A change set lives only for the duration of one request.
package changeset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

var (
	ErrUnknownIngredient = errors.New("change set references an unknown ingredient")
	ErrInvalidChange     = errors.New("change set contains an invalid change")
)

// Direction is the requested movement along one axis.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionNeutral Direction = "neutral"
	DirectionDown    Direction = "down"
)

// Valid reports whether d is a known direction. Empty reads as neutral.
func (d Direction) Valid() bool {
	switch d {
	case "", DirectionUp, DirectionNeutral, DirectionDown:
		return true
	}
	return false
}

// IsNeutral reports whether d asks for no change.
func (d Direction) IsNeutral() bool {
	return d == "" || d == DirectionNeutral
}

// MaxMagnitude bounds Adjustment.Magnitude.
const MaxMagnitude = 3

// Field names a modifiable ingredient field.
type Field string

const (
	FieldQuantity Field = "quantity"
	FieldUnit     Field = "unit"
	FieldName     Field = "name"
)

// Substitution swaps an ingredient for another, or lets the model pick.
type Substitution struct {
	IngredientID   string `json:"ingredientId" validate:"required"`
	Replacement    string `json:"replacement,omitempty"`
	LetModelChoose bool   `json:"letModelChoose,omitempty"`
}

// Modification changes one field of an ingredient.
type Modification struct {
	IngredientID string `json:"ingredientId" validate:"required"`
	Field        Field  `json:"field" validate:"required,oneof=quantity unit name"`
	Before       string `json:"before"`
	After        string `json:"after"`
}

// Adjustment is a macro direction with a strength from 0 to MaxMagnitude.
type Adjustment struct {
	Direction Direction `json:"direction,omitempty" validate:"direction"`
	Magnitude int       `json:"magnitude,omitempty" validate:"macro_magnitude"`
}

// MacroIntent holds the requested macro shifts.
type MacroIntent struct {
	Protein Adjustment `json:"protein"`
	Carbs   Adjustment `json:"carbs"`
	Fat     Adjustment `json:"fat"`
}

// TasteIntent holds the requested taste shifts.
type TasteIntent struct {
	Sweetness Direction `json:"sweetness,omitempty" validate:"direction"`
	Saltiness Direction `json:"saltiness,omitempty" validate:"direction"`
	Acidity   Direction `json:"acidity,omitempty" validate:"direction"`
	Spiciness Direction `json:"spiciness,omitempty" validate:"direction"`
	Richness  Direction `json:"richness,omitempty" validate:"direction"`
}

// Axes lists the taste axes in a fixed order.
func (t TasteIntent) Axes() []struct {
	Name      string
	Direction Direction
} {
	return []struct {
		Name      string
		Direction Direction
	}{
		{"sweetness", t.Sweetness},
		{"saltiness", t.Saltiness},
		{"acidity", t.Acidity},
		{"spiciness", t.Spiciness},
		{"richness", t.Richness},
	}
}

// Constraints are boolean preferences for the rewrite.
type Constraints struct {
	PreferLocal       bool `json:"preferLocal,omitempty"`
	AvoidSpecialty    bool `json:"avoidSpecialty,omitempty"`
	MaintainIntegrity bool `json:"maintainIntegrity,omitempty"`
}

// ChangeSet is everything a user asked to change in one regeneration.
type ChangeSet struct {
	Substitutions       []Substitution `json:"substitutions,omitempty" validate:"dive"`
	Deletions           []string       `json:"deletions,omitempty"`
	Modifications       []Modification `json:"modifications,omitempty" validate:"dive"`
	Macros              MacroIntent    `json:"macros"`
	Taste               TasteIntent    `json:"taste"`
	Notes               string         `json:"notes,omitempty"`
	PantryItems         []string       `json:"pantryItems,omitempty"`
	Constraints         Constraints    `json:"constraints"`
	LockedIngredientIDs []string       `json:"lockedIngredientIds,omitempty"`
	Location            string         `json:"location,omitempty"`
}

// Validate checks every reference against the original recipe.
func (cs *ChangeSet) Validate(original *recipe.Recipe) error {
	known := make(map[string]struct{}, len(original.Ingredients))
	for _, ing := range original.Ingredients {
		known[ing.ID] = struct{}{}
	}
	check := func(kind, id string) error {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s %q", ErrUnknownIngredient, kind, id)
		}
		return nil
	}

	for _, s := range cs.Substitutions {
		if err := check("substitution", s.IngredientID); err != nil {
			return err
		}
		if !s.LetModelChoose && strings.TrimSpace(s.Replacement) == "" {
			return fmt.Errorf("%w: substitution for %q needs a replacement", ErrInvalidChange, s.IngredientID)
		}
	}
	for _, id := range cs.Deletions {
		if err := check("deletion", id); err != nil {
			return err
		}
	}
	for _, m := range cs.Modifications {
		if err := check("modification", m.IngredientID); err != nil {
			return err
		}
		switch m.Field {
		case FieldQuantity, FieldUnit, FieldName:
		default:
			return fmt.Errorf("%w: unknown field %q", ErrInvalidChange, m.Field)
		}
	}
	for _, id := range cs.LockedIngredientIDs {
		if err := check("lock", id); err != nil {
			return err
		}
	}

	for name, adj := range map[string]Adjustment{
		"protein": cs.Macros.Protein, "carbs": cs.Macros.Carbs, "fat": cs.Macros.Fat,
	} {
		if !adj.Direction.Valid() {
			return fmt.Errorf("%w: %s direction %q", ErrInvalidChange, name, adj.Direction)
		}
		if adj.Magnitude < 0 || adj.Magnitude > MaxMagnitude {
			return fmt.Errorf("%w: %s magnitude %d", ErrInvalidChange, name, adj.Magnitude)
		}
	}
	for _, axis := range cs.Taste.Axes() {
		if !axis.Direction.Valid() {
			return fmt.Errorf("%w: %s direction %q", ErrInvalidChange, axis.Name, axis.Direction)
		}
	}
	return nil
}

// IsLocked reports whether the ingredient may not be touched.
func (cs *ChangeSet) IsLocked(id string) bool {
	for _, locked := range cs.LockedIngredientIDs {
		if locked == id {
			return true
		}
	}
	return false
}

// IsDeleted reports whether the ingredient is marked for deletion.
func (cs *ChangeSet) IsDeleted(id string) bool {
	for _, deleted := range cs.Deletions {
		if deleted == id {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the change set asks for nothing at all.
func (cs *ChangeSet) IsEmpty() bool {
	if len(cs.Substitutions)+len(cs.Deletions)+len(cs.Modifications)+len(cs.PantryItems) > 0 {
		return false
	}
	if strings.TrimSpace(cs.Notes) != "" {
		return false
	}
	if !cs.Macros.Protein.Direction.IsNeutral() || !cs.Macros.Carbs.Direction.IsNeutral() || !cs.Macros.Fat.Direction.IsNeutral() {
		return false
	}
	for _, axis := range cs.Taste.Axes() {
		if !axis.Direction.IsNeutral() {
			return false
		}
	}
	c := cs.Constraints
	return !c.PreferLocal && !c.AvoidSpecialty && !c.MaintainIntegrity
}
