package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

var (
	// ErrEmptyAnswer is returned when the model answered with nothing usable.
	ErrEmptyAnswer = errors.New("model answer is empty")
	// ErrNotJSON is returned when no JSON could be recovered from the answer.
	ErrNotJSON = errors.New("model answer is not valid JSON")
)

// ShapeError reports a JSON value with the wrong type or a missing field.
type ShapeError struct {
	Path string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected shape at %s: want %s, got %s", e.Path, e.Want, e.Got)
}

// DecodeObject recovers a JSON object from a model answer.
func DecodeObject(raw string) (map[string]interface{}, error) {
	v, err := decode(raw, '{')
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ShapeError{Path: "$", Want: "object", Got: typeName(v)}
	}
	return obj, nil
}

// DecodeArray recovers a JSON array from a model answer. An object with a
// single array-valued field is unwrapped, since JSON mode forces an object
// at the top level.
func DecodeArray(raw string) ([]interface{}, error) {
	v, err := decode(raw, '[')
	if err != nil {
		v, err = decode(raw, '{')
		if err != nil {
			return nil, err
		}
	}
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case map[string]interface{}:
		var found []interface{}
		count := 0
		for _, field := range t {
			if arr, ok := field.([]interface{}); ok {
				found = arr
				count++
			}
		}
		if count == 1 {
			return found, nil
		}
	}
	return nil, &ShapeError{Path: "$", Want: "array", Got: typeName(v)}
}

// decode parses the cleaned answer, then retries once on the first
// balanced substring that starts with open.
func decode(raw string, open byte) (interface{}, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, ErrEmptyAnswer
	}

	var v interface{}
	firstErr := json.Unmarshal([]byte(cleaned), &v)
	if firstErr == nil && startsWith(cleaned, open) {
		return v, nil
	}

	candidate, ok := ExtractBalanced(StripFences(raw), open)
	if !ok {
		if firstErr == nil {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, firstErr)
	}
	var retry interface{}
	if err := json.Unmarshal([]byte(candidate), &retry); err != nil {
		if firstErr == nil {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return retry, nil
}

func startsWith(s string, open byte) bool {
	return len(s) > 0 && s[0] == open
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// field readers. A missing key or a null value reads as absent.

func optString(obj map[string]interface{}, key, path string) (*string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &ShapeError{Path: path + "." + key, Want: "string", Got: typeName(raw)}
	}
	return &s, nil
}

func reqString(obj map[string]interface{}, key, path string) (string, error) {
	s, err := optString(obj, key, path)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", &ShapeError{Path: path + "." + key, Want: "string", Got: "missing"}
	}
	return *s, nil
}

func optNumber(obj map[string]interface{}, key, path string) (*float64, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	n, ok := raw.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &ShapeError{Path: path + "." + key, Want: "number", Got: typeName(raw)}
	}
	return &n, nil
}

func reqNumber(obj map[string]interface{}, key, path string) (float64, error) {
	n, err := optNumber(obj, key, path)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, &ShapeError{Path: path + "." + key, Want: "number", Got: "missing"}
	}
	return *n, nil
}

func optInt(obj map[string]interface{}, key, path string) (*int, error) {
	n, err := optNumber(obj, key, path)
	if err != nil || n == nil {
		return nil, err
	}
	v := int(math.Round(*n))
	return &v, nil
}

func optArray(obj map[string]interface{}, key, path string) ([]interface{}, bool, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, false, &ShapeError{Path: path + "." + key, Want: "array", Got: typeName(raw)}
	}
	return arr, true, nil
}

func stringArray(arr []interface{}, path string) ([]string, error) {
	out := make([]string, 0, len(arr))
	for i, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, &ShapeError{Path: fmt.Sprintf("%s[%d]", path, i), Want: "string", Got: typeName(el)}
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func objectAt(arr []interface{}, i int, path string) (map[string]interface{}, string, error) {
	elPath := fmt.Sprintf("%s[%d]", path, i)
	obj, ok := arr[i].(map[string]interface{})
	if !ok {
		return nil, elPath, &ShapeError{Path: elPath, Want: "object", Got: typeName(arr[i])}
	}
	return obj, elPath, nil
}

// RecipeDraft is a recipe as the model returned it. Nil pointers and false
// Has* flags mark fields the model left out.
type RecipeDraft struct {
	Title           *string
	Description     *string
	Ingredients     []recipe.Ingredient
	HasIngredients  bool
	Steps           []string
	HasSteps        bool
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
	Tags            []string
	HasTags         bool
}

// ParseRecipeDraft validates the shape of a decoded recipe object.
func ParseRecipeDraft(obj map[string]interface{}) (*RecipeDraft, error) {
	d := &RecipeDraft{}
	var err error

	if d.Title, err = optString(obj, "title", "$"); err != nil {
		return nil, err
	}
	if d.Description, err = optString(obj, "description", "$"); err != nil {
		return nil, err
	}
	if d.PrepTimeMinutes, err = optInt(obj, "prepTimeMinutes", "$"); err != nil {
		return nil, err
	}
	if d.CookTimeMinutes, err = optInt(obj, "cookTimeMinutes", "$"); err != nil {
		return nil, err
	}
	if d.Servings, err = optInt(obj, "servings", "$"); err != nil {
		return nil, err
	}

	ingredients, ok, err := optArray(obj, "ingredients", "$")
	if err != nil {
		return nil, err
	}
	if ok {
		d.HasIngredients = true
		d.Ingredients, err = parseIngredients(ingredients, "$.ingredients")
		if err != nil {
			return nil, err
		}
	}

	steps, ok, err := optArray(obj, "steps", "$")
	if err != nil {
		return nil, err
	}
	if ok {
		d.HasSteps = true
		if d.Steps, err = stringArray(steps, "$.steps"); err != nil {
			return nil, err
		}
	}

	tags, ok, err := optArray(obj, "tags", "$")
	if err != nil {
		return nil, err
	}
	if ok {
		d.HasTags = true
		if d.Tags, err = stringArray(tags, "$.tags"); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func parseIngredients(arr []interface{}, path string) ([]recipe.Ingredient, error) {
	out := make([]recipe.Ingredient, 0, len(arr))
	for i := range arr {
		obj, elPath, err := objectAt(arr, i, path)
		if err != nil {
			return nil, err
		}
		name, err := reqString(obj, "name", elPath)
		if err != nil {
			return nil, err
		}
		quantity, err := reqNumber(obj, "quantity", elPath)
		if err != nil {
			return nil, err
		}
		if quantity < 0 {
			return nil, &ShapeError{Path: elPath + ".quantity", Want: "non-negative number", Got: "negative"}
		}
		unit, err := reqString(obj, "unit", elPath)
		if err != nil {
			return nil, err
		}
		ing := recipe.Ingredient{Name: strings.TrimSpace(name), Quantity: quantity, Unit: strings.TrimSpace(unit)}
		for key, dst := range map[string]*string{"id": &ing.ID, "note": &ing.Note, "tooltip": &ing.Tooltip} {
			s, err := optString(obj, key, elPath)
			if err != nil {
				return nil, err
			}
			if s != nil {
				*dst = *s
			}
		}
		if ing.Name == "" {
			return nil, &ShapeError{Path: elPath + ".name", Want: "non-empty string", Got: "empty string"}
		}
		out = append(out, ing)
	}
	return out, nil
}

// ParseMacros validates the shape of a decoded macro object.
func ParseMacros(obj map[string]interface{}) (*recipe.MacroInformation, error) {
	calories, err := reqNumber(obj, "calories", "$")
	if err != nil {
		return nil, err
	}
	m := &recipe.MacroInformation{Calories: math.Round(calories)}
	for key, dst := range map[string]**float64{
		"protein": &m.Protein, "carbs": &m.Carbs, "fat": &m.Fat, "fiber": &m.Fiber,
		"sugar": &m.Sugar, "sodium": &m.Sodium, "saturatedFat": &m.SaturatedFat,
		"cholesterol": &m.Cholesterol, "potassium": &m.Potassium,
	} {
		n, err := optNumber(obj, key, "$")
		if err != nil {
			return nil, err
		}
		if n != nil {
			v := round1(*n)
			*dst = &v
		}
	}
	return m, nil
}

// ParseGroceryItems validates the shape of a decoded conversion array.
func ParseGroceryItems(arr []interface{}) ([]grocery.Item, error) {
	out := make([]grocery.Item, 0, len(arr))
	for i := range arr {
		obj, elPath, err := objectAt(arr, i, "$")
		if err != nil {
			return nil, err
		}
		name, err := reqString(obj, "ingredientName", elPath)
		if err != nil {
			return nil, err
		}
		quantity, err := reqNumber(obj, "quantity", elPath)
		if err != nil {
			return nil, err
		}
		unit, err := reqString(obj, "unit", elPath)
		if err != nil {
			return nil, err
		}
		pkg, err := optString(obj, "packageDescription", elPath)
		if err != nil {
			return nil, err
		}
		category, err := optString(obj, "category", elPath)
		if err != nil {
			return nil, err
		}

		item := grocery.Item{IngredientName: name, Quantity: quantity, Unit: unit}
		if pkg != nil {
			item.PackageDescription = *pkg
		}
		if category != nil {
			item.Category = grocery.Category(*category)
		}
		item.Normalize()
		if err := item.Validate(); err != nil {
			return nil, &ShapeError{Path: elPath, Want: "valid grocery item", Got: err.Error()}
		}
		out = append(out, item)
	}
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
