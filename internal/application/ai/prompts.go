package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
)

const recipeShape = `{
  "title": string,
  "description": string,
  "ingredients": [{"id": string, "quantity": number, "unit": string, "name": string, "note": string}],
  "steps": [string],
  "prepTimeMinutes": number,
  "cookTimeMinutes": number,
  "servings": number,
  "tags": [string]
}`

// RegenerationSystemPrompt is sent unchanged with every regeneration.
const RegenerationSystemPrompt = `You are a professional recipe developer who rewrites recipes on request.

When requested changes conflict, resolve them in this order of priority:
1. Locked ingredients. Never change, remove or rename an ingredient marked LOCKED.
2. Deletions. Remove every ingredient marked for deletion and do not reintroduce it under another name.
3. Substitutions. Replace the named ingredient with the requested replacement, or pick a fitting one when asked to choose.
4. Macro adjustments. Shift protein, carbohydrates and fat in the requested direction.

Adjust quantities, steps, timings and the description so the recipe stays coherent after the changes.
Keep the "id" of every ingredient you keep. Leave "id" empty for new ingredients.
A quantity of 0 means "to taste".

Respond with a single raw JSON object and nothing else, no Markdown and no commentary, in exactly this shape:
` + recipeShape

// GenerationSystemPrompt is sent with every new-recipe request.
const GenerationSystemPrompt = `You are a professional recipe developer. Create complete, cookable recipes with precise quantities and clear numbered steps.
A quantity of 0 means "to taste". Leave every ingredient "id" empty.

Respond with a single raw JSON object and nothing else, no Markdown and no commentary, in exactly this shape:
` + recipeShape

// ConversionSystemPrompt turns recipe quantities into shopping units.
const ConversionSystemPrompt = `You convert recipe ingredients into grocery purchasing units, the way the items are sold in a typical supermarket.
Round up to whole packages. Merge duplicates. Choose category from: ` + categoryList + `.

Respond with a single raw JSON object and nothing else, in exactly this shape:
{"items": [{"ingredientName": string, "quantity": number, "unit": string, "packageDescription": string, "category": string}]}`

// MacroSystemPrompt asks for per-serving nutrition.
const MacroSystemPrompt = `You are a nutritionist. Estimate nutrition for ONE serving of the recipe from its ingredients.
Use grams for protein, carbs, fat, fiber, sugar and saturatedFat, and milligrams for sodium, cholesterol and potassium.

Respond with a single raw JSON object and nothing else, in exactly this shape:
{"calories": number, "protein": number, "carbs": number, "fat": number, "fiber": number, "sugar": number, "sodium": number, "saturatedFat": number, "cholesterol": number, "potassium": number}`

// categoryList names every grocery.Categories value in order.
const categoryList = string(grocery.CategoryProduce) + ", " +
	string(grocery.CategoryDairy) + ", " +
	string(grocery.CategoryMeat) + ", " +
	string(grocery.CategorySeafood) + ", " +
	string(grocery.CategoryBakery) + ", " +
	string(grocery.CategoryPantry) + ", " +
	string(grocery.CategoryFrozen) + ", " +
	string(grocery.CategoryBeverages) + ", " +
	string(grocery.CategorySpices) + ", " +
	string(grocery.CategoryOther)

// BuildRegenerationPrompt renders the original recipe and the change set.
// Ingredients are addressed by their stable id. The function is pure.
func BuildRegenerationPrompt(original *recipe.Recipe, cs *changeset.ChangeSet) (system, user string) {
	var b strings.Builder

	writeRecipe(&b, original, cs)

	b.WriteString("\nRequested changes:\n")
	if cs.IsEmpty() {
		b.WriteString("- None. Return the recipe with clearer wording and otherwise unchanged.\n")
	}

	name := func(id string) string {
		ing, _, _ := original.IngredientByID(id)
		return ing.Name
	}
	lockNote := func(id string) string {
		if cs.IsLocked(id) {
			return " (ignored, ingredient is LOCKED)"
		}
		return ""
	}

	if len(cs.Deletions) > 0 {
		b.WriteString("Delete:\n")
		for _, id := range cs.Deletions {
			fmt.Fprintf(&b, "- [%s] %s%s\n", id, name(id), lockNote(id))
		}
	}

	if len(cs.Substitutions) > 0 {
		b.WriteString("Substitute:\n")
		for _, s := range cs.Substitutions {
			replacement := s.Replacement
			if s.LetModelChoose || strings.TrimSpace(replacement) == "" {
				replacement = "a suitable replacement of your choice"
			}
			fmt.Fprintf(&b, "- [%s] %s -> %s%s\n", s.IngredientID, name(s.IngredientID), replacement, lockNote(s.IngredientID))
		}
	}

	if len(cs.Modifications) > 0 {
		b.WriteString("Modify:\n")
		for _, m := range cs.Modifications {
			fmt.Fprintf(&b, "- [%s] %s: %s %q -> %q%s\n", m.IngredientID, name(m.IngredientID), m.Field, m.Before, m.After, lockNote(m.IngredientID))
		}
	}

	macroLines := make([]string, 0, 3)
	for _, m := range []struct {
		name string
		adj  changeset.Adjustment
	}{
		{"protein", cs.Macros.Protein},
		{"carbohydrates", cs.Macros.Carbs},
		{"fat", cs.Macros.Fat},
	} {
		if m.adj.Direction.IsNeutral() {
			continue
		}
		macroLines = append(macroLines, fmt.Sprintf("- %s %s%s", directionVerb(m.adj.Direction), m.name, magnitudeSuffix(m.adj.Magnitude)))
	}
	if len(macroLines) > 0 {
		b.WriteString("Macros:\n")
		b.WriteString(strings.Join(macroLines, "\n"))
		b.WriteString("\n")
	}

	tasteLines := make([]string, 0, 5)
	for _, axis := range cs.Taste.Axes() {
		if axis.Direction.IsNeutral() {
			continue
		}
		tasteLines = append(tasteLines, fmt.Sprintf("- %s %s", tasteVerb(axis.Direction), axis.Name))
	}
	if len(tasteLines) > 0 {
		b.WriteString("Taste:\n")
		b.WriteString(strings.Join(tasteLines, "\n"))
		b.WriteString("\n")
	}

	if len(cs.PantryItems) > 0 {
		fmt.Fprintf(&b, "Use these pantry items where they fit: %s\n", strings.Join(cs.PantryItems, ", "))
	}
	if notes := strings.TrimSpace(cs.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes from the cook: %s\n", notes)
	}

	c := cs.Constraints
	if c.PreferLocal || c.AvoidSpecialty || c.MaintainIntegrity {
		b.WriteString("Constraints:\n")
		if c.PreferLocal {
			b.WriteString("- Prefer ingredients that are locally available")
			if loc := strings.TrimSpace(cs.Location); loc != "" {
				fmt.Fprintf(&b, " in %s", loc)
			}
			b.WriteString("\n")
		}
		if c.AvoidSpecialty {
			b.WriteString("- Avoid specialty ingredients that are hard to find\n")
		}
		if c.MaintainIntegrity {
			b.WriteString("- Keep the dish recognisably the same dish\n")
		}
	} else if loc := strings.TrimSpace(cs.Location); loc != "" {
		fmt.Fprintf(&b, "The cook is located in %s.\n", loc)
	}

	b.WriteString("\nReturn the complete updated recipe as JSON.")

	return RegenerationSystemPrompt, b.String()
}

func writeRecipe(b *strings.Builder, r *recipe.Recipe, cs *changeset.ChangeSet) {
	fmt.Fprintf(b, "Recipe: %s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", r.Description)
	}

	var facts []string
	if r.Servings != nil {
		facts = append(facts, fmt.Sprintf("servings %d", *r.Servings))
	}
	if r.PrepTimeMinutes != nil {
		facts = append(facts, fmt.Sprintf("prep %d min", *r.PrepTimeMinutes))
	}
	if r.CookTimeMinutes != nil {
		facts = append(facts, fmt.Sprintf("cook %d min", *r.CookTimeMinutes))
	}
	if len(facts) > 0 {
		fmt.Fprintf(b, "Details: %s\n", strings.Join(facts, ", "))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(b, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}

	b.WriteString("\nIngredients:\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(b, "- [%s] %s", ing.ID, FormatIngredient(ing))
		if cs != nil && cs.IsLocked(ing.ID) {
			b.WriteString(" LOCKED - do not change")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nSteps:\n")
	for i, step := range r.Steps {
		fmt.Fprintf(b, "%d. %s\n", i+1, step)
	}
}

// FormatIngredient renders an ingredient as a single readable line.
func FormatIngredient(ing recipe.Ingredient) string {
	var parts []string
	if recipe.IsToTaste(ing.Quantity) {
		parts = append(parts, ing.Name, "to taste")
	} else {
		parts = append(parts, FormatQuantity(ing.Quantity))
		if ing.Unit != "" {
			parts = append(parts, ing.Unit)
		}
		parts = append(parts, ing.Name)
	}
	line := strings.Join(parts, " ")
	if ing.Note != "" {
		line += " (" + ing.Note + ")"
	}
	return line
}

// FormatQuantity prints a quantity without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func directionVerb(d changeset.Direction) string {
	if d == changeset.DirectionUp {
		return "increase"
	}
	return "reduce"
}

func tasteVerb(d changeset.Direction) string {
	if d == changeset.DirectionUp {
		return "more"
	}
	return "less"
}

func magnitudeSuffix(m int) string {
	switch m {
	case 1:
		return " slightly"
	case 2:
		return " moderately"
	case 3:
		return " substantially"
	default:
		return ""
	}
}

// BuildGenerationPrompt renders a new-recipe request.
func BuildGenerationPrompt(req inbound.GenerateRecipeRequest) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a recipe for: %s\n", strings.TrimSpace(req.Prompt))
	if req.Cuisine != "" {
		fmt.Fprintf(&b, "Cuisine: %s\n", req.Cuisine)
	}
	if len(req.Dietary) > 0 {
		fmt.Fprintf(&b, "Dietary requirements: %s\n", strings.Join(req.Dietary, ", "))
	}
	if req.Servings > 0 {
		fmt.Fprintf(&b, "Servings: %d\n", req.Servings)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, "Prefer ingredients available in %s.\n", req.Location)
	}
	return GenerationSystemPrompt, b.String()
}

// BuildConversionPrompt lists the ingredients to convert.
func BuildConversionPrompt(ingredients []recipe.Ingredient) (system, user string) {
	var b strings.Builder
	b.WriteString("Convert these ingredients into grocery items:\n")
	for _, ing := range ingredients {
		fmt.Fprintf(&b, "- %s\n", FormatIngredient(ing))
	}
	return ConversionSystemPrompt, b.String()
}

// BuildMacroPrompt lists the ingredients to estimate.
func BuildMacroPrompt(title string, ingredients []recipe.Ingredient, servings int) (system, user string) {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Recipe: %s\n", title)
	}
	fmt.Fprintf(&b, "Servings: %d\n", servings)
	b.WriteString("Ingredients:\n")
	for _, ing := range ingredients {
		fmt.Fprintf(&b, "- %s\n", FormatIngredient(ing))
	}
	return MacroSystemPrompt, b.String()
}
