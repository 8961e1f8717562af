package api

import (
	"sync"

	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/realtime"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

// Publisher delivers page events to a session's open pages
type Publisher interface {
	Publish(sessionID string, ev realtime.Event)
}

// PageSurface keeps the page view-model of one session and pushes every
// change to its open pages.
type PageSurface struct {
	sessionID string
	pub       Publisher

	mu             sync.Mutex
	busy           bool
	errorVisible   bool
	errorMessage   string
	resultsVisible bool
	results        []model.Recipe
	marked         map[int]bool
	saved          []model.Recipe
	panelOpen      bool
	ingredients    string
	tone           string
}

// NewPageSurface creates the surface for sessionID. pub may be nil.
func NewPageSurface(sessionID string, pub Publisher) *PageSurface {
	return &PageSurface{sessionID: sessionID, pub: pub, marked: make(map[int]bool)}
}

func (s *PageSurface) publish(eventType string, data interface{}) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(s.sessionID, realtime.Event{Type: eventType, Data: data})
}

func (s *PageSurface) SetBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	s.mu.Unlock()
	s.publish(realtime.EventBusy, busy)
}

func (s *PageSurface) ShowError(message string) {
	s.mu.Lock()
	s.errorVisible = true
	s.errorMessage = message
	s.mu.Unlock()
	s.publish(realtime.EventError, message)
}

func (s *PageSurface) HideError() {
	s.mu.Lock()
	s.errorVisible = false
	s.mu.Unlock()
	s.publish(realtime.EventErrorHidden, nil)
}

// RenderResults replaces the cards. Save feedback belongs to the old cards
// and is cleared.
func (s *PageSurface) RenderResults(recipes []model.Recipe) {
	s.mu.Lock()
	s.results = recipes
	s.resultsVisible = true
	s.marked = make(map[int]bool)
	s.mu.Unlock()
	s.publish(realtime.EventResults, recipes)
}

func (s *PageSurface) RenderSaved(recipes []model.Recipe) {
	s.mu.Lock()
	s.saved = recipes
	s.mu.Unlock()
	s.publish(realtime.EventSaved, view.NewSavedItems(recipes))
}

func (s *PageSurface) UpdateSavedCount(n int) {
	s.publish(realtime.EventSavedCount, view.SavedCountLabel(n))
}

func (s *PageSurface) MarkSaved(id int) {
	s.mu.Lock()
	s.marked[id] = true
	s.mu.Unlock()
	s.publish(realtime.EventMarkedSaved, id)
}

func (s *PageSurface) OpenSavedPanel() {
	s.setPanel(true)
}

func (s *PageSurface) CloseSavedPanel() {
	s.setPanel(false)
}

func (s *PageSurface) setPanel(open bool) {
	s.mu.Lock()
	s.panelOpen = open
	s.mu.Unlock()
	s.publish(realtime.EventPanel, open)
}

// Print announces the document; the export response carries the document itself.
func (s *PageSurface) Print(recipe model.Recipe, document string) {
	s.publish(realtime.EventPrint, recipe.ID)
}

// RememberForm keeps the last submitted form values so the page can show them again.
func (s *PageSurface) RememberForm(ingredients, tone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients = ingredients
	s.tone = tone
}

// Snapshot returns the current page view-model.
func (s *PageSurface) Snapshot() view.PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.PageView{
		Ingredients:    s.ingredients,
		Tone:           s.tone,
		Busy:           s.busy,
		ResultsVisible: s.resultsVisible,
		Cards:          view.NewCards(s.results, s.marked),
		Saved:          view.NewSavedItems(s.saved),
		SavedPanelOpen: s.panelOpen,
		ErrorVisible:   s.errorVisible,
		ErrorMessage:   s.errorMessage,
	}
}
