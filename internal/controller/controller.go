// Package controller coordinates one browser session: the submit pipeline,
// the saved list and the panel and dialog toggles.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/internal/metrics"
	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/store"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

// FailureMessage is shown for every pipeline failure other than validation.
const FailureMessage = "Failed to generate recipes. Please try again."

// ErrNothingToRetry is returned by Retry before any submission was made.
var ErrNothingToRetry = errors.New("no previous recipe request to retry")

// Deps are the collaborators of a RecipeController
type Deps struct {
	Generator service.Generator
	Extractor service.Extractor
	Store     store.KVStore
	Surface   Surface
	Log       logrus.FieldLogger
	Metrics   *metrics.Metrics
	// Provider labels generation timings
	Provider string
}

// RecipeController owns the current batch and the saved list of one session.
type RecipeController struct {
	generator service.Generator
	extractor service.Extractor
	surface   Surface
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	provider  string

	mu      sync.Mutex
	busy    bool
	current []model.Recipe
	saved   *service.SavedRecipeList
	last    *service.Submission
}

// New loads the saved list from deps.Store and performs the initial render
// of the saved count and list.
func New(ctx context.Context, deps Deps) (*RecipeController, error) {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	saved, err := service.LoadSavedRecipes(ctx, deps.Store, log)
	if err != nil {
		return nil, err
	}

	c := &RecipeController{
		generator: deps.Generator,
		extractor: deps.Extractor,
		surface:   deps.Surface,
		log:       log,
		metrics:   deps.Metrics,
		provider:  deps.Provider,
		saved:     saved,
	}
	c.surface.UpdateSavedCount(saved.Len())
	c.surface.RenderSaved(saved.All())
	return c, nil
}

// Submit runs the submit pipeline: validate, extract the file when present,
// build the prompt, generate, and present the batch. Failures are shown on the
// surface and also returned.
func (c *RecipeController) Submit(ctx context.Context, sub service.Submission) ([]model.Recipe, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.metrics.Submission(metrics.OutcomeInFlight)
		return nil, service.ErrSubmitInFlight
	}
	c.last = &sub
	if err := sub.Validate(); err != nil {
		c.mu.Unlock()
		c.metrics.Submission(metrics.OutcomeValidation)
		c.surface.ShowError(err.Error())
		return nil, err
	}
	c.busy = true
	c.mu.Unlock()

	c.surface.SetBusy(true)
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		c.surface.SetBusy(false)
	}()

	recipes, err := c.run(ctx, sub)
	if err != nil {
		c.log.WithError(err).WithField("tone", sub.Tone).Error("recipe generation failed")
		c.metrics.Submission(metrics.OutcomeFailure)
		c.surface.ShowError(FailureMessage)
		return nil, err
	}

	c.mu.Lock()
	c.current = recipes
	c.mu.Unlock()

	c.metrics.Submission(metrics.OutcomeSuccess)
	c.surface.RenderResults(recipes)
	return recipes, nil
}

func (c *RecipeController) run(ctx context.Context, sub service.Submission) ([]model.Recipe, error) {
	prompt := service.IngredientsPrompt(sub.Ingredients, sub.Tone)
	if sub.File != nil {
		text, err := c.extractor.Extract(ctx, *sub.File)
		if err != nil {
			var extractErr *service.ExtractionError
			if !errors.As(err, &extractErr) {
				err = &service.ExtractionError{File: sub.File.Name, Err: err}
			}
			return nil, err
		}
		prompt = service.DocumentPrompt(text)
	}

	start := time.Now()
	recipes, err := c.generator.Generate(ctx, prompt, sub.Tone)
	c.metrics.ObserveGeneration(c.provider, time.Since(start))
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, nil
}

// Retry hides the error dialog and re-runs the last submission exactly.
func (c *RecipeController) Retry(ctx context.Context) ([]model.Recipe, error) {
	c.surface.HideError()

	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last == nil {
		return nil, ErrNothingToRetry
	}
	return c.Submit(ctx, *last)
}

// Save appends the recipe with id from the current batch to the saved list.
// Unknown or already saved ids are ignored.
func (c *RecipeController) Save(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recipe, ok := model.FindRecipe(c.current, id)
	if !ok {
		return nil
	}
	added, err := c.saved.Add(ctx, recipe)
	if err != nil {
		return pkgerrors.Wrapf(err, "save recipe %d", id)
	}
	if !added {
		return nil
	}

	c.metrics.Saved()
	c.surface.UpdateSavedCount(c.saved.Len())
	c.surface.RenderSaved(c.saved.All())
	c.surface.MarkSaved(id)
	return nil
}

// Remove drops every saved recipe with id. Removing an absent id is a no-op
// apart from re-rendering.
func (c *RecipeController) Remove(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.saved.Remove(ctx, id); err != nil {
		return pkgerrors.Wrapf(err, "remove recipe %d", id)
	}

	c.metrics.Removed()
	c.surface.UpdateSavedCount(c.saved.Len())
	c.surface.RenderSaved(c.saved.All())
	return nil
}

// Export renders the printable document for id and hands it to the surface.
// Only the current batch is searched; ok is false when id is not in it. The
// returned recipe is the one the document was rendered from.
func (c *RecipeController) Export(id int) (recipe model.Recipe, document string, ok bool, err error) {
	c.mu.Lock()
	recipe, found := model.FindRecipe(c.current, id)
	c.mu.Unlock()
	if !found {
		return model.Recipe{}, "", false, nil
	}

	document, err = view.RenderPrintable(recipe)
	if err != nil {
		return model.Recipe{}, "", false, err
	}
	c.metrics.Exported()
	c.surface.Print(recipe, document)
	return recipe, document, true, nil
}

// Recipe returns the recipe with id from the current batch.
func (c *RecipeController) Recipe(id int) (model.Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.FindRecipe(c.current, id)
}

func (c *RecipeController) OpenSavedPanel() {
	c.surface.OpenSavedPanel()
}

func (c *RecipeController) CloseSavedPanel() {
	c.surface.CloseSavedPanel()
}

func (c *RecipeController) ShowError(message string) {
	c.surface.ShowError(message)
}

func (c *RecipeController) HideError() {
	c.surface.HideError()
}

// Current returns a copy of the most recent batch.
func (c *RecipeController) Current() []model.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Recipe, len(c.current))
	copy(out, c.current)
	return out
}

// Saved returns a copy of the saved list.
func (c *RecipeController) Saved() []model.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved.All()
}

// Busy reports whether a submission is running.
func (c *RecipeController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}
