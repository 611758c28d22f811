package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// RecipeToDocument converts a domain recipe to its stored shape. The id
// must already be valid hex or empty.
func RecipeToDocument(r *recipe.Recipe) *RecipeDocument {
	doc := &RecipeDocument{
		Title:           r.Title,
		Description:     r.Description,
		Steps:           nonNilStrings(r.Steps),
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Tags:            nonNilStrings(r.Tags),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if id, err := primitive.ObjectIDFromHex(r.ID); err == nil {
		doc.ID = id
	}

	doc.Ingredients = make([]IngredientModel, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		doc.Ingredients[i] = IngredientModel(ing)
	}

	if r.Nutrition != nil {
		m := MacroModel(r.Nutrition.Clone())
		doc.Nutrition = &m
	}

	for _, img := range r.Images {
		doc.Images = append(doc.Images, ImageModel(img))
	}
	return doc
}

// DocumentToRecipe converts a stored document to a domain recipe
func DocumentToRecipe(doc *RecipeDocument) *recipe.Recipe {
	r := &recipe.Recipe{
		ID:              doc.ID.Hex(),
		Title:           doc.Title,
		Description:     doc.Description,
		Steps:           nonNilStrings(doc.Steps),
		PrepTimeMinutes: doc.PrepTimeMinutes,
		CookTimeMinutes: doc.CookTimeMinutes,
		Servings:        doc.Servings,
		Tags:            nonNilStrings(doc.Tags),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	r.Ingredients = make([]recipe.Ingredient, len(doc.Ingredients))
	for i, ing := range doc.Ingredients {
		r.Ingredients[i] = recipe.Ingredient(ing)
	}

	if doc.Nutrition != nil {
		m := recipe.MacroInformation(*doc.Nutrition)
		r.Nutrition = &m
	}

	for _, img := range doc.Images {
		r.Images = append(r.Images, recipe.RecipeImage(img))
	}
	return r
}

// GroceryToDocument converts a domain item to its stored shape
func GroceryToDocument(i *grocery.Item) *GroceryDocument {
	key := i.Key()
	doc := &GroceryDocument{
		IngredientName:     i.IngredientName,
		NameKey:            key.Name,
		Quantity:           i.Quantity,
		Unit:               i.Unit,
		UnitKey:            key.Unit,
		PackageDescription: i.PackageDescription,
		Category:           string(i.Category),
		Purchased:          i.Purchased,
		SourceRecipeID:     i.SourceRecipeID,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
	if id, err := primitive.ObjectIDFromHex(i.ID); err == nil {
		doc.ID = id
	}
	return doc
}

// DocumentToGrocery converts a stored document to a domain item
func DocumentToGrocery(doc *GroceryDocument) *grocery.Item {
	return &grocery.Item{
		ID:                 doc.ID.Hex(),
		IngredientName:     doc.IngredientName,
		Quantity:           doc.Quantity,
		Unit:               doc.Unit,
		PackageDescription: doc.PackageDescription,
		Category:           grocery.NormalizeCategory(doc.Category),
		Purchased:          doc.Purchased,
		SourceRecipeID:     doc.SourceRecipeID,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
