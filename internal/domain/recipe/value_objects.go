package recipe

import (
	"math"
	"strings"
)

// ToTasteThreshold is the quantity under which an ingredient is read as
// "to taste".
const ToTasteThreshold = 0.01

// Ingredient is one line of a recipe. ID is assigned once and carried
// through every edit so change sets can address it.
type Ingredient struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Name     string  `json:"name"`
	Note     string  `json:"note,omitempty"`
	Tooltip  string  `json:"tooltip,omitempty"`
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrIngredientNameRequired
	}
	if i.Quantity < 0 || math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0) {
		return ErrNegativeQuantity
	}
	return nil
}

// IsToTaste reports whether the quantity means "to taste".
func IsToTaste(quantity float64) bool {
	return quantity < ToTasteThreshold
}

// RecipeImage is an attributed stock photo.
type RecipeImage struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	ThumbURL         string `json:"thumbUrl,omitempty"`
	Alt              string `json:"alt,omitempty"`
	AuthorName       string `json:"authorName,omitempty"`
	AuthorUsername   string `json:"authorUsername,omitempty"`
	CreditURL        string `json:"creditUrl,omitempty"`
	SourceURL        string `json:"sourceUrl,omitempty"`
	DownloadLocation string `json:"downloadLocation,omitempty"`
}

// MacroInformation is nutrition per serving. Only calories is mandatory.
type MacroInformation struct {
	Calories     float64  `json:"calories"`
	Protein      *float64 `json:"protein,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	SaturatedFat *float64 `json:"saturatedFat,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	Potassium    *float64 `json:"potassium,omitempty"`
	// Fallback marks values produced by the keyword heuristic.
	Fallback bool `json:"_fallback,omitempty"`
}

// Clone returns a deep copy.
func (m MacroInformation) Clone() MacroInformation {
	out := m
	out.Protein = cloneFloat(m.Protein)
	out.Carbs = cloneFloat(m.Carbs)
	out.Fat = cloneFloat(m.Fat)
	out.Fiber = cloneFloat(m.Fiber)
	out.Sugar = cloneFloat(m.Sugar)
	out.Sodium = cloneFloat(m.Sodium)
	out.SaturatedFat = cloneFloat(m.SaturatedFat)
	out.Cholesterol = cloneFloat(m.Cholesterol)
	out.Potassium = cloneFloat(m.Potassium)
	return out
}

// FloatPtr is a small helper for the optional nutrient fields.
func FloatPtr(v float64) *float64 {
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
