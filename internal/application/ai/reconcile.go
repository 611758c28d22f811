package ai

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// MergeRegeneration folds a parsed model answer into the original recipe.
// Each field falls back to the original on its own. Deletions are enforced,
// then locked ingredients are restored exactly as they were. A lock beats
// a deletion of the same ingredient.
func MergeRegeneration(original *recipe.Recipe, d *RecipeDraft, cs *changeset.ChangeSet) (*recipe.Recipe, []string) {
	out := original.Clone()
	var warnings []string

	if d.Title != nil && strings.TrimSpace(*d.Title) != "" {
		out.Title = strings.TrimSpace(*d.Title)
	}
	if d.Description != nil && strings.TrimSpace(*d.Description) != "" {
		out.Description = strings.TrimSpace(*d.Description)
	}

	switch {
	case d.HasIngredients && len(d.Ingredients) > 0:
		out.Ingredients = carryIngredientIDs(original, d.Ingredients)
	case d.HasIngredients:
		warnings = append(warnings, "the model returned no ingredients; the original list was kept")
	}

	if d.HasSteps && len(d.Steps) > 0 {
		out.Steps = append([]string(nil), d.Steps...)
	}
	if d.HasTags && len(d.Tags) > 0 {
		out.Tags = append([]string(nil), d.Tags...)
	}

	for _, f := range []struct {
		name string
		src  *int
		dst  **int
	}{
		{"prepTimeMinutes", d.PrepTimeMinutes, &out.PrepTimeMinutes},
		{"cookTimeMinutes", d.CookTimeMinutes, &out.CookTimeMinutes},
		{"servings", d.Servings, &out.Servings},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			warnings = append(warnings, fmt.Sprintf("ignored negative %s from the model", f.name))
			continue
		}
		v := *f.src
		*f.dst = &v
	}

	warnings = append(warnings, enforceDeletions(original, out, cs)...)
	warnings = append(warnings, enforceLocks(original, out, cs)...)
	out.EnsureIngredientIDs()

	return out, warnings
}

// carryIngredientIDs keeps ids the model echoed back when they belong to the
// original recipe and are not repeated. Every other ingredient gets a new id.
func carryIngredientIDs(original *recipe.Recipe, parsed []recipe.Ingredient) []recipe.Ingredient {
	known := make(map[string]bool, len(original.Ingredients))
	for _, ing := range original.Ingredients {
		known[ing.ID] = true
	}
	seen := make(map[string]bool, len(parsed))
	out := make([]recipe.Ingredient, len(parsed))
	for i, ing := range parsed {
		if !known[ing.ID] || seen[ing.ID] {
			ing.ID = uuid.NewString()
		}
		seen[ing.ID] = true
		out[i] = ing
	}
	return out
}

func enforceDeletions(original, out *recipe.Recipe, cs *changeset.ChangeSet) []string {
	var warnings []string
	for _, id := range cs.Deletions {
		if cs.IsLocked(id) {
			continue
		}
		deleted, _, ok := original.IngredientByID(id)
		if !ok {
			continue
		}
		kept := out.Ingredients[:0]
		for _, ing := range out.Ingredients {
			if !cs.IsLocked(ing.ID) && (ing.ID == id || NameMatches(ing.Name, deleted.Name)) {
				warnings = append(warnings, fmt.Sprintf("removed %q, which was marked for deletion", ing.Name))
				continue
			}
			kept = append(kept, ing)
		}
		out.Ingredients = kept
	}
	return warnings
}

func enforceLocks(original, out *recipe.Recipe, cs *changeset.ChangeSet) []string {
	var warnings []string
	for origIdx, locked := range original.Ingredients {
		if !cs.IsLocked(locked.ID) {
			continue
		}

		idx := indexByID(out.Ingredients, locked.ID)
		if idx < 0 {
			idx = indexByName(out.Ingredients, locked.Name, cs)
		}

		switch {
		case idx >= 0 && out.Ingredients[idx] == locked:
		case idx >= 0:
			out.Ingredients[idx] = locked
			warnings = append(warnings, fmt.Sprintf("restored locked ingredient %q", locked.Name))
		default:
			pos := origIdx
			if pos > len(out.Ingredients) {
				pos = len(out.Ingredients)
			}
			out.Ingredients = append(out.Ingredients, recipe.Ingredient{})
			copy(out.Ingredients[pos+1:], out.Ingredients[pos:])
			out.Ingredients[pos] = locked
			warnings = append(warnings, fmt.Sprintf("re-added locked ingredient %q", locked.Name))
		}
	}
	return warnings
}

func indexByID(list []recipe.Ingredient, id string) int {
	for i, ing := range list {
		if ing.ID == id {
			return i
		}
	}
	return -1
}

// indexByName finds an unlocked ingredient whose name equals name, ignoring
// case. Ingredients already claimed by another lock are skipped.
func indexByName(list []recipe.Ingredient, name string, cs *changeset.ChangeSet) int {
	for i, ing := range list {
		if cs.IsLocked(ing.ID) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(ing.Name), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// NameMatches reports whether the words of needle appear, in order and
// next to each other, among the words of name. Case and simple plurals
// are ignored.
func NameMatches(name, needle string) bool {
	hay := words(name)
	want := words(needle)
	if len(want) == 0 || len(want) > len(hay) {
		return false
	}
outer:
	for i := 0; i+len(want) <= len(hay); i++ {
		for j := range want {
			if !sameWord(hay[i+j], want[j]) {
				continue outer
			}
		}
		return true
	}
	return false
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func sameWord(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return b == a+"s" || b == a+"es"
}
