package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeDocument is the stored shape of a recipe
type RecipeDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	Ingredients     []IngredientModel  `bson:"ingredients"`
	Steps           []string           `bson:"steps"`
	PrepTimeMinutes *int               `bson:"prepTimeMinutes,omitempty"`
	CookTimeMinutes *int               `bson:"cookTimeMinutes,omitempty"`
	Servings        *int               `bson:"servings,omitempty"`
	Tags            []string           `bson:"tags"`
	Nutrition       *MacroModel        `bson:"nutrition,omitempty"`
	Images          []ImageModel       `bson:"images,omitempty"`
	CreatedAt       string             `bson:"createdAt"`
	UpdatedAt       string             `bson:"updatedAt"`
}

// IngredientModel is an embedded ingredient
type IngredientModel struct {
	ID       string  `bson:"id"`
	Quantity float64 `bson:"quantity"`
	Unit     string  `bson:"unit"`
	Name     string  `bson:"name"`
	Note     string  `bson:"note,omitempty"`
	Tooltip  string  `bson:"tooltip,omitempty"`
}

// MacroModel is embedded nutrition information
type MacroModel struct {
	Calories     float64  `bson:"calories"`
	Protein      *float64 `bson:"protein,omitempty"`
	Carbs        *float64 `bson:"carbs,omitempty"`
	Fat          *float64 `bson:"fat,omitempty"`
	Fiber        *float64 `bson:"fiber,omitempty"`
	Sugar        *float64 `bson:"sugar,omitempty"`
	Sodium       *float64 `bson:"sodium,omitempty"`
	SaturatedFat *float64 `bson:"saturatedFat,omitempty"`
	Cholesterol  *float64 `bson:"cholesterol,omitempty"`
	Potassium    *float64 `bson:"potassium,omitempty"`
	Fallback     bool     `bson:"_fallback,omitempty"`
}

// ImageModel is an embedded attributed photo
type ImageModel struct {
	ID               string `bson:"id"`
	URL              string `bson:"url"`
	ThumbURL         string `bson:"thumbUrl,omitempty"`
	Alt              string `bson:"alt,omitempty"`
	AuthorName       string `bson:"authorName,omitempty"`
	AuthorUsername   string `bson:"authorUsername,omitempty"`
	CreditURL        string `bson:"creditUrl,omitempty"`
	SourceURL        string `bson:"sourceUrl,omitempty"`
	DownloadLocation string `bson:"downloadLocation,omitempty"`
}

// GroceryDocument is the stored shape of a shopping list item. NameKey
// and UnitKey hold the merge key.
type GroceryDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	IngredientName     string             `bson:"ingredientName"`
	NameKey            string             `bson:"nameKey"`
	Quantity           float64            `bson:"quantity"`
	Unit               string             `bson:"unit"`
	UnitKey            string             `bson:"unitKey"`
	PackageDescription string             `bson:"packageDescription,omitempty"`
	Category           string             `bson:"category"`
	Purchased          bool               `bson:"purchased"`
	SourceRecipeID     string             `bson:"sourceRecipeId,omitempty"`
	CreatedAt          string             `bson:"createdAt"`
	UpdatedAt          string             `bson:"updatedAt"`
}
