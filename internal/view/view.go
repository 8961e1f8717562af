// Package view renders the recipe page, its fragments and the export formats
// from structured view-models.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/pageza/recipe-assistant/backend/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Tones offered by the page. The server accepts any tone string.
var Tones = []string{"casual", "professional", "fun", "healthy", "gourmet"}

// DefaultTone is preselected on a fresh page
const DefaultTone = "casual"

// CardView is one result card. Saved reflects the save feedback of this page
// and is not persisted.
type CardView struct {
	Recipe model.Recipe `json:"recipe"`
	Saved  bool         `json:"saved"`
}

// SavedItemView is one entry of the saved panel
type SavedItemView struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	CookTime   string `json:"cookTime"`
	Difficulty string `json:"difficulty"`
}

// PageView is everything the page shows.
type PageView struct {
	Ingredients    string          `json:"ingredients"`
	Tone           string          `json:"tone"`
	Tones          []string        `json:"-"`
	Busy           bool            `json:"busy"`
	ResultsVisible bool            `json:"resultsVisible"`
	Cards          []CardView      `json:"cards"`
	Saved          []SavedItemView `json:"saved"`
	SavedPanelOpen bool            `json:"savedPanelOpen"`
	ErrorVisible   bool            `json:"errorVisible"`
	ErrorMessage   string          `json:"errorMessage"`
}

// SavedCountLabel is the text of the saved-panel toggle.
func (p PageView) SavedCountLabel() string {
	return SavedCountLabel(len(p.Saved))
}

// PrintView is the standalone printable document for one recipe
type PrintView struct {
	model.Recipe
}

// SavedCountLabel formats the toggle text for n saved recipes.
func SavedCountLabel(n int) string {
	return fmt.Sprintf("View Saved Recipes (%d)", n)
}

// NewCards builds cards for recipes, marking those whose id is in marked.
func NewCards(recipes []model.Recipe, marked map[int]bool) []CardView {
	cards := make([]CardView, len(recipes))
	for i, r := range recipes {
		cards[i] = CardView{Recipe: r, Saved: marked[r.ID]}
	}
	return cards
}

// NewSavedItems builds saved panel entries in list order.
func NewSavedItems(recipes []model.Recipe) []SavedItemView {
	items := make([]SavedItemView, len(recipes))
	for i, r := range recipes {
		items[i] = SavedItemView{ID: r.ID, Title: r.Title, CookTime: string(r.CookTime), Difficulty: string(r.Difficulty)}
	}
	return items
}

// RenderPage writes the full page.
func RenderPage(w io.Writer, p PageView) error {
	if p.Tones == nil {
		p.Tones = Tones
	}
	if p.Tone == "" {
		p.Tone = DefaultTone
	}
	return templates.ExecuteTemplate(w, "page", p)
}

// RenderCards writes the result card fragment.
func RenderCards(w io.Writer, cards []CardView) error {
	return templates.ExecuteTemplate(w, "cards", cards)
}

// RenderSaved writes the saved list fragment. An empty list renders a placeholder.
func RenderSaved(w io.Writer, items []SavedItemView) error {
	return templates.ExecuteTemplate(w, "saved", items)
}

// RenderPrintable returns the printable HTML document for r.
func RenderPrintable(r model.Recipe) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "print", PrintView{Recipe: r}); err != nil {
		return "", fmt.Errorf("render printable %d: %w", r.ID, err)
	}
	return buf.String(), nil
}

// PrintableMarkdown converts the printable document for r to markdown.
func PrintableMarkdown(r model.Recipe) (string, error) {
	doc, err := RenderPrintable(r)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(doc)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return md, nil
}
