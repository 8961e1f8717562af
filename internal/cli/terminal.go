package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"charm.land/glamour/v2"

	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

// Terminal presents controller state as markdown on a writer. With plain set
// the markdown is written as is, otherwise it is styled by glamour.
type Terminal struct {
	out      io.Writer
	status   io.Writer
	wordWrap int
	plain    bool

	mu        sync.Mutex
	renderer  *glamour.TermRenderer
	saved     []model.Recipe
	lastError string
}

// NewTerminal creates a terminal surface. status receives progress lines.
func NewTerminal(out, status io.Writer, wordWrap int, plain bool) *Terminal {
	return &Terminal{out: out, status: status, wordWrap: wordWrap, plain: plain}
}

func (t *Terminal) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(t.status, "Finding recipes...")
	}
}

func (t *Terminal) ShowError(message string) {
	t.mu.Lock()
	t.lastError = message
	t.mu.Unlock()
}

func (t *Terminal) HideError() {
	t.mu.Lock()
	t.lastError = ""
	t.mu.Unlock()
}

// LastError is the message most recently shown and not hidden.
func (t *Terminal) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastError
}

func (t *Terminal) RenderResults(recipes []model.Recipe) {
	var b strings.Builder
	b.WriteString("# Recipe suggestions\n\n")
	for i, r := range recipes {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		writeRecipe(&b, r)
	}
	t.write(b.String())
}

// RenderSaved only records the list; OpenSavedPanel shows it.
func (t *Terminal) RenderSaved(recipes []model.Recipe) {
	t.mu.Lock()
	t.saved = recipes
	t.mu.Unlock()
}

func (t *Terminal) UpdateSavedCount(int) {}

func (t *Terminal) MarkSaved(id int) {
	fmt.Fprintf(t.status, "✓ Saved! recipe %d\n", id)
}

func (t *Terminal) OpenSavedPanel() {
	t.mu.Lock()
	saved := t.saved
	t.mu.Unlock()
	t.write(savedMarkdown(saved))
}

func (t *Terminal) CloseSavedPanel() {}

// Print shows the printable document converted back to markdown.
func (t *Terminal) Print(recipe model.Recipe, _ string) {
	md, err := view.PrintableMarkdown(recipe)
	if err != nil {
		fmt.Fprintf(t.status, "failed to render recipe %d: %v\n", recipe.ID, err)
		return
	}
	t.write(md + "\n")
}

func (t *Terminal) write(md string) {
	if t.plain {
		io.WriteString(t.out, md)
		return
	}
	r, err := t.termRenderer()
	if err == nil {
		var rendered string
		if rendered, err = r.Render(md); err == nil {
			io.WriteString(t.out, rendered)
			return
		}
	}
	fmt.Fprintf(t.status, "failed to style output: %v\n", err)
	io.WriteString(t.out, md)
}

func (t *Terminal) termRenderer() (*glamour.TermRenderer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.renderer != nil {
		return t.renderer, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(t.wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	t.renderer = r
	return r, nil
}

func writeRecipe(b *strings.Builder, r model.Recipe) {
	fmt.Fprintf(b, "## %d. %s\n\n", r.ID, r.Title)
	if r.Description != "" {
		fmt.Fprintf(b, "%s\n\n", r.Description)
	}
	fmt.Fprintf(b, "*Cook time:* %s | *Difficulty:* %s | *Calories:* %s\n\n", r.CookTime, r.Difficulty, r.Calories)
	b.WriteString("**Ingredients**\n\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(b, "- %s\n", ing)
	}
	b.WriteString("\n**Instructions**\n\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n")
}

func savedMarkdown(saved []model.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", view.SavedCountLabel(len(saved)))
	if len(saved) == 0 {
		b.WriteString("No saved recipes yet\n")
		return b.String()
	}
	for _, item := range view.NewSavedItems(saved) {
		fmt.Fprintf(&b, "- **%d** %s (%s, %s)\n", item.ID, item.Title, item.CookTime, item.Difficulty)
	}
	return b.String()
}
