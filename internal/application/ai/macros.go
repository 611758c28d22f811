package ai

import (
	"math"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// nutrient holds values per 100 g of an ingredient family.
type nutrient struct {
	keyword  string
	calories float64
	protein  float64
	carbs    float64
	fat      float64
	// pieceGrams is the weight of one unit-less piece, e.g. "2 eggs".
	pieceGrams float64
	category   grocery.Category
}

// nutrients is matched top to bottom, so compound names come before the
// words they contain ("peanut butter" before "butter").
var nutrients = []nutrient{
	{"peanut butter", 588, 25, 20, 50, 0, grocery.CategoryPantry},
	{"coconut milk", 230, 2.3, 6, 24, 0, grocery.CategoryPantry},
	{"broth", 15, 1.5, 1, 0.5, 0, grocery.CategoryPantry},
	{"stock", 15, 1.5, 1, 0.5, 0, grocery.CategoryPantry},
	{"chicken", 165, 31, 0, 3.6, 150, grocery.CategoryMeat},
	{"turkey", 135, 30, 0, 1, 150, grocery.CategoryMeat},
	{"beef", 250, 26, 0, 15, 150, grocery.CategoryMeat},
	{"pork", 242, 27, 0, 14, 150, grocery.CategoryMeat},
	{"bacon", 541, 37, 1.4, 42, 15, grocery.CategoryMeat},
	{"sausage", 301, 12, 2, 27, 75, grocery.CategoryMeat},
	{"salmon", 208, 20, 0, 13, 150, grocery.CategorySeafood},
	{"tuna", 132, 28, 0, 1, 150, grocery.CategorySeafood},
	{"shrimp", 99, 24, 0.2, 0.3, 10, grocery.CategorySeafood},
	{"prawn", 99, 24, 0.2, 0.3, 10, grocery.CategorySeafood},
	{"cod", 82, 18, 0, 0.7, 150, grocery.CategorySeafood},
	{"tofu", 76, 8, 1.9, 4.8, 0, grocery.CategoryProduce},
	{"egg", 155, 13, 1.1, 11, 50, grocery.CategoryDairy},
	{"milk", 42, 3.4, 5, 1, 0, grocery.CategoryDairy},
	{"cheese", 402, 25, 1.3, 33, 0, grocery.CategoryDairy},
	{"parmesan", 431, 38, 4.1, 29, 0, grocery.CategoryDairy},
	{"butter", 717, 0.9, 0.1, 81, 0, grocery.CategoryDairy},
	{"yogurt", 59, 10, 3.6, 0.4, 0, grocery.CategoryDairy},
	{"cream", 340, 2.8, 2.7, 36, 0, grocery.CategoryDairy},
	{"oil", 884, 0, 0, 100, 0, grocery.CategoryPantry},
	{"rice", 365, 7.1, 80, 0.7, 0, grocery.CategoryPantry},
	{"quinoa", 368, 14, 64, 6, 0, grocery.CategoryPantry},
	{"oats", 389, 17, 66, 7, 0, grocery.CategoryPantry},
	{"pasta", 371, 13, 75, 1.5, 0, grocery.CategoryPantry},
	{"spaghetti", 371, 13, 75, 1.5, 0, grocery.CategoryPantry},
	{"noodles", 138, 4.5, 25, 2, 0, grocery.CategoryPantry},
	{"bread", 265, 9, 49, 3.2, 30, grocery.CategoryBakery},
	{"tortilla", 218, 5.7, 46, 2.9, 45, grocery.CategoryBakery},
	{"flour", 364, 10, 76, 1, 0, grocery.CategoryPantry},
	{"sugar", 387, 0, 100, 0, 0, grocery.CategoryPantry},
	{"honey", 304, 0.3, 82, 0, 0, grocery.CategoryPantry},
	{"lentil", 116, 9, 20, 0.4, 0, grocery.CategoryPantry},
	{"chickpea", 164, 8.9, 27, 2.6, 0, grocery.CategoryPantry},
	{"bean", 127, 8.7, 23, 0.5, 0, grocery.CategoryPantry},
	{"almond", 579, 21, 22, 50, 1.2, grocery.CategoryPantry},
	{"walnut", 654, 15, 14, 65, 4, grocery.CategoryPantry},
	{"potato", 77, 2, 17, 0.1, 170, grocery.CategoryProduce},
	{"onion", 40, 1.1, 9.3, 0.1, 110, grocery.CategoryProduce},
	{"garlic", 149, 6.4, 33, 0.5, 5, grocery.CategoryProduce},
	{"tomato", 18, 0.9, 3.9, 0.2, 120, grocery.CategoryProduce},
	{"carrot", 41, 0.9, 10, 0.2, 60, grocery.CategoryProduce},
	{"black pepper", 251, 10, 64, 3.3, 0, grocery.CategorySpices},
	{"pepper", 31, 1, 6, 0.3, 120, grocery.CategoryProduce},
	{"spinach", 23, 2.9, 3.6, 0.4, 0, grocery.CategoryProduce},
	{"broccoli", 34, 2.8, 7, 0.4, 300, grocery.CategoryProduce},
	{"mushroom", 22, 3.1, 3.3, 0.3, 18, grocery.CategoryProduce},
	{"avocado", 160, 2, 8.5, 14.7, 150, grocery.CategoryProduce},
	{"banana", 89, 1.1, 23, 0.3, 120, grocery.CategoryProduce},
	{"apple", 52, 0.3, 14, 0.2, 180, grocery.CategoryProduce},
	{"lemon", 29, 1.1, 9, 0.3, 60, grocery.CategoryProduce},
	{"salt", 0, 0, 0, 0, 0, grocery.CategorySpices},
	{"cumin", 375, 18, 44, 22, 0, grocery.CategorySpices},
	{"paprika", 282, 14, 54, 13, 0, grocery.CategorySpices},
	{"cinnamon", 247, 4, 81, 1.2, 0, grocery.CategorySpices},
}

// defaultPieceGrams is used for unit-less quantities of unknown weight.
const defaultPieceGrams = 100

// gramsPerUnit converts a unit to grams. Volumes assume the density of water.
var gramsPerUnit = map[string]float64{
	"g": 1, "gr": 1, "gram": 1, "grams": 1,
	"kg": 1000, "kilogram": 1000, "kilograms": 1000,
	"mg": 0.001,
	"oz": 28.35, "ounce": 28.35, "ounces": 28.35,
	"lb": 453.6, "lbs": 453.6, "pound": 453.6, "pounds": 453.6,
	"ml": 1, "milliliter": 1, "milliliters": 1, "millilitre": 1, "millilitres": 1,
	"l": 1000, "liter": 1000, "liters": 1000, "litre": 1000, "litres": 1000,
	"cup": 240, "cups": 240,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5,
	"can": 400, "cans": 400, "tin": 400, "tins": 400,
	"pinch": 0.3, "dash": 0.6,
}

func lookupNutrient(name string) (nutrient, bool) {
	for _, n := range nutrients {
		if NameMatches(name, n.keyword) {
			return n, true
		}
	}
	return nutrient{}, false
}

// toGrams converts an ingredient quantity to grams. Unknown and count
// units use the piece weight of the matched family.
func toGrams(quantity float64, unit string, n nutrient) float64 {
	u := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(unit), "."))
	if factor, ok := gramsPerUnit[u]; ok {
		return quantity * factor
	}
	piece := n.pieceGrams
	if piece == 0 {
		piece = defaultPieceGrams
	}
	return quantity * piece
}

// EstimateMacrosHeuristic derives per-serving macros from ingredient names
// alone. Unknown ingredients and "to taste" quantities add nothing.
func EstimateMacrosHeuristic(ingredients []recipe.Ingredient, servings int) *recipe.MacroInformation {
	if servings < 1 {
		servings = 1
	}

	var calories, protein, carbs, fat float64
	for _, ing := range ingredients {
		if recipe.IsToTaste(ing.Quantity) {
			continue
		}
		n, ok := lookupNutrient(ing.Name)
		if !ok {
			continue
		}
		factor := toGrams(ing.Quantity, ing.Unit, n) / 100
		calories += n.calories * factor
		protein += n.protein * factor
		carbs += n.carbs * factor
		fat += n.fat * factor
	}

	per := float64(servings)
	return &recipe.MacroInformation{
		Calories: math.Round(calories / per),
		Protein:  recipe.FloatPtr(round1(protein / per)),
		Carbs:    recipe.FloatPtr(round1(carbs / per)),
		Fat:      recipe.FloatPtr(round1(fat / per)),
		Fallback: true,
	}
}

// CategorizeIngredient guesses the store section from the name.
func CategorizeIngredient(name string) grocery.Category {
	if n, ok := lookupNutrient(name); ok {
		return n.category
	}
	return grocery.CategoryOther
}

// FallbackGroceryItems mirrors the ingredients as grocery items without
// any unit conversion.
func FallbackGroceryItems(ingredients []recipe.Ingredient, sourceRecipeID string) []grocery.Item {
	items := make([]grocery.Item, 0, len(ingredients))
	for _, ing := range ingredients {
		item := grocery.Item{
			IngredientName: ing.Name,
			Quantity:       ing.Quantity,
			Unit:           ing.Unit,
			Category:       CategorizeIngredient(ing.Name),
			SourceRecipeID: sourceRecipeID,
		}
		item.Normalize()
		items = append(items, item)
	}
	return items
}
