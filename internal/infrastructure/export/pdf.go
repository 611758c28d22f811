// Package export renders recipes and the shopping list as printable
// documents and share codes.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

const (
	pageMargin = 15.0
	qrSize     = 32.0
	lineHeight = 6.0
)

// ShareQR encodes url as a PNG QR code of size pixels
func ShareQR(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

func newDocument() (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RecipeCardPDF renders an A4 recipe card. A QR code linking to
// shareURL is placed in the top right corner when shareURL is set.
func RecipeCardPDF(r *recipe.Recipe, shareURL string) ([]byte, error) {
	pdf, tr := newDocument()
	pageWidth, _ := pdf.GetPageSize()
	textWidth := pageWidth - 2*pageMargin

	if shareURL != "" {
		png, err := ShareQR(shareURL, 256)
		if err != nil {
			return nil, err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("share-qr", pageWidth-pageMargin-qrSize, pageMargin, qrSize, qrSize, false, opts, 0, shareURL)
		textWidth -= qrSize + 4
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(textWidth, 9, tr(r.Title), "", "L", false)
	if r.Description != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(textWidth, 5.5, tr(r.Description), "", "L", false)
	}

	if facts := recipeFacts(r); facts != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.MultiCell(textWidth, 5, tr(facts), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if shareURL != "" && pdf.GetY() < pageMargin+qrSize+2 {
		pdf.SetY(pageMargin + qrSize + 2)
	}

	fullWidth := pageWidth - 2*pageMargin
	section(pdf, tr, "Ingredients")
	pdf.SetFont("Helvetica", "", 11)
	for _, ing := range r.Ingredients {
		amount := ""
		if !recipe.IsToTaste(ing.Quantity) {
			amount = strings.TrimSpace(formatQuantity(ing.Quantity) + " " + ing.Unit)
		}
		name := ing.Name
		if ing.Note != "" {
			name += ", " + ing.Note
		}
		pdf.CellFormat(30, lineHeight, tr(amount), "B", 0, "R", false, 0, "")
		pdf.CellFormat(4, lineHeight, "", "B", 0, "L", false, 0, "")
		pdf.CellFormat(fullWidth-34, lineHeight, tr(name), "B", 1, "L", false, 0, "")
	}

	section(pdf, tr, "Method")
	for i, step := range r.Steps {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(8, lineHeight, strconv.Itoa(i+1)+".", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(fullWidth-8, lineHeight, tr(step), "", "L", false)
		pdf.Ln(1)
	}

	if r.Nutrition != nil {
		section(pdf, tr, "Nutrition per serving")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(fullWidth, 5, tr(macroLine(r.Nutrition)), "", "L", false)
		if r.Nutrition.Fallback {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.MultiCell(fullWidth, 4, "Estimated from typical values.", "", "L", false)
		}
	}

	return output(pdf)
}

// GroceryListPDF renders the list grouped by category. Purchased items
// are ticked and struck through.
func GroceryListPDF(items []*grocery.Item) ([]byte, error) {
	pdf, tr := newDocument()
	pageWidth, _ := pdf.GetPageSize()
	fullWidth := pageWidth - 2*pageMargin

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(fullWidth, 10, "Shopping list", "", 1, "L", false, 0, "")

	groups := make(map[grocery.Category][]*grocery.Item)
	for _, item := range items {
		cat := item.Category
		if !cat.Valid() {
			cat = grocery.CategoryOther
		}
		groups[cat] = append(groups[cat], item)
	}

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(fullWidth, lineHeight, "Nothing to buy.", "", 1, "L", false, 0, "")
	}

	for _, cat := range grocery.Categories {
		group := groups[cat]
		if len(group) == 0 {
			continue
		}
		section(pdf, tr, categoryTitle(cat))

		for _, item := range group {
			x, y := pdf.GetXY()
			pdf.Rect(x, y+1.5, 3.5, 3.5, "D")
			if item.Purchased {
				pdf.Line(x+0.6, y+3.3, x+1.6, y+4.4)
				pdf.Line(x+1.6, y+4.4, x+3.2, y+1.8)
			}
			pdf.SetX(x + 6)

			style := ""
			if item.Purchased {
				style = "S"
				pdf.SetTextColor(140, 140, 140)
			}
			pdf.SetFont("Helvetica", style, 11)
			pdf.CellFormat(fullWidth-6, lineHeight, tr(groceryLine(item)), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
	}

	return output(pdf)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
}

func recipeFacts(r *recipe.Recipe) string {
	var parts []string
	if r.PrepTimeMinutes != nil && *r.PrepTimeMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Prep %d min", *r.PrepTimeMinutes))
	}
	if r.CookTimeMinutes != nil && *r.CookTimeMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Cook %d min", *r.CookTimeMinutes))
	}
	if r.Servings != nil && *r.Servings > 0 {
		parts = append(parts, fmt.Sprintf("Serves %d", *r.Servings))
	}
	if len(r.Tags) > 0 {
		parts = append(parts, strings.Join(r.Tags, ", "))
	}
	return strings.Join(parts, "  |  ")
}

func macroLine(m *recipe.MacroInformation) string {
	parts := []string{fmt.Sprintf("%s kcal", formatQuantity(m.Calories))}
	add := func(label string, v *float64, unit string) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s %s%s", label, formatQuantity(*v), unit))
		}
	}
	add("protein", m.Protein, "g")
	add("carbs", m.Carbs, "g")
	add("fat", m.Fat, "g")
	add("fiber", m.Fiber, "g")
	add("sugar", m.Sugar, "g")
	add("sodium", m.Sodium, "mg")
	return strings.Join(parts, ", ")
}

func groceryLine(item *grocery.Item) string {
	var parts []string
	for _, part := range []string{formatQuantity(item.Quantity), item.Unit, item.IngredientName} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	line := strings.Join(parts, " ")
	if item.PackageDescription != "" {
		line += " (" + item.PackageDescription + ")"
	}
	return line
}

func categoryTitle(c grocery.Category) string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
