package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-assistant/backend/internal/metrics"
	"github.com/pageza/recipe-assistant/backend/internal/mocks"
	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

type fakeSurface struct {
	mu         sync.Mutex
	busy       []bool
	errors     []string
	hidden     int
	results    [][]model.Recipe
	saved      []model.Recipe
	count      int
	marked     []int
	panelOpen  bool
	printed    []string
	renderedAt int
}

func (f *fakeSurface) SetBusy(busy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = append(f.busy, busy)
}

func (f *fakeSurface) ShowError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func (f *fakeSurface) HideError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden++
}

func (f *fakeSurface) RenderResults(recipes []model.Recipe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, recipes)
}

func (f *fakeSurface) RenderSaved(recipes []model.Recipe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = recipes
	f.renderedAt++
}

func (f *fakeSurface) UpdateSavedCount(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = n
}

func (f *fakeSurface) MarkSaved(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
}

func (f *fakeSurface) OpenSavedPanel()  { f.panelOpen = true }
func (f *fakeSurface) CloseSavedPanel() { f.panelOpen = false }

func (f *fakeSurface) Print(recipe model.Recipe, document string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printed = append(f.printed, recipe.Title)
}

type fixture struct {
	ctrl      *RecipeController
	surface   *fakeSurface
	kv        store.KVStore
	generator service.Generator
	extractor *mocks.MockExtractor
}

func newFixture(t *testing.T, gen service.Generator) *fixture {
	t.Helper()
	if gen == nil {
		gen = service.NewHTTPGenerator("", 1500, nil, nullLogger())
	}
	f := &fixture{
		surface:   &fakeSurface{},
		kv:        store.NewMemory(),
		generator: gen,
		extractor: new(mocks.MockExtractor),
	}
	f.ctrl = f.reload(t)
	return f
}

// reload builds a fresh controller over the same store, as a page reload would.
func (f *fixture) reload(t *testing.T) *RecipeController {
	t.Helper()
	ctrl, err := New(context.Background(), Deps{
		Generator: f.generator,
		Extractor: f.extractor,
		Store:     f.kv,
		Surface:   f.surface,
		Log:       nullLogger(),
		Metrics:   metrics.New(),
		Provider:  "test",
	})
	require.NoError(t, err)
	return ctrl
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestNewRendersInitialState(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, 0, f.surface.count)
	assert.Empty(t, f.surface.saved)
	assert.Equal(t, 1, f.surface.renderedAt)
}

func TestSubmitEmptyInputIsValidationError(t *testing.T) {
	gen := new(mocks.MockGenerator)
	f := newFixture(t, gen)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := f.ctrl.Submit(context.Background(), service.Submission{Ingredients: text, Tone: "casual"})
		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	assert.Empty(t, f.surface.busy)
	assert.Equal(t, []string{
		"Please enter ingredients or upload a PDF file",
		"Please enter ingredients or upload a PDF file",
		"Please enter ingredients or upload a PDF file",
	}, f.surface.errors)
}

func TestSubmitIngredientsPrompt(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, "Create 3 recipe suggestions using these ingredients: eggs, rice. Tone: fun.", "fun").
		Return(service.FallbackRecipes()[:1], nil)
	f := newFixture(t, gen)

	recipes, err := f.ctrl.Submit(context.Background(), service.Submission{Ingredients: " eggs, rice ", Tone: "fun"})
	require.NoError(t, err)
	assert.Len(t, recipes, 1)
	assert.Equal(t, []bool{true, false}, f.surface.busy)
	assert.Equal(t, [][]model.Recipe{recipes}, f.surface.results)
	assert.Equal(t, recipes, f.ctrl.Current())
	gen.AssertExpectations(t)
}

func TestSubmitFileTakesPrecedence(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, "Summarize and create recipes from this PDF content: menu text", "casual").
		Return(service.FallbackRecipes(), nil)
	f := newFixture(t, gen)
	upload := service.Upload{Name: "menu.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	f.extractor.On("Extract", mock.Anything, upload).Return("menu text", nil)

	_, err := f.ctrl.Submit(context.Background(), service.Submission{Ingredients: "ignored", Tone: "casual", File: &upload})
	require.NoError(t, err)
	gen.AssertExpectations(t)
	f.extractor.AssertExpectations(t)
}

func TestSubmitFailuresShowGenericMessage(t *testing.T) {
	tests := []struct {
		name    string
		genErr  error
		extErr  error
		file    bool
		wantErr interface{}
	}{
		{"backend", &service.BackendError{StatusCode: 500, Message: "API error"}, nil, false, &service.BackendError{}},
		{"extraction", nil, errors.New("boom"), true, &service.ExtractionError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockGenerator)
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.genErr)
			f := newFixture(t, gen)
			sub := service.Submission{Ingredients: "eggs", Tone: "casual"}
			if tt.file {
				sub.File = &service.Upload{Name: "a.pdf"}
				f.extractor.On("Extract", mock.Anything, mock.Anything).Return("", tt.extErr)
			}

			_, err := f.ctrl.Submit(context.Background(), sub)
			require.Error(t, err)
			switch tt.wantErr.(type) {
			case *service.BackendError:
				var target *service.BackendError
				assert.ErrorAs(t, err, &target)
			case *service.ExtractionError:
				var target *service.ExtractionError
				assert.ErrorAs(t, err, &target)
				gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			}
			assert.Equal(t, []string{FailureMessage}, f.surface.errors)
			assert.Equal(t, []bool{true, false}, f.surface.busy)
			assert.False(t, f.ctrl.Busy())
			assert.Empty(t, f.surface.results)
		})
	}
}

func TestSubmitRefusesOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(service.FallbackRecipes(), nil).Once()
	f := newFixture(t, gen)

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Submit(context.Background(), service.Submission{Ingredients: "eggs"})
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("generation never started")
	}
	assert.True(t, f.ctrl.Busy())
	_, err := f.ctrl.Submit(context.Background(), service.Submission{Ingredients: "rice"})
	assert.ErrorIs(t, err, service.ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.ctrl.Busy())
}

func TestRetryRepeatsLastSubmission(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, "fancy").Return(nil, &service.BackendError{Message: "down"}).Once()
	gen.On("Generate", mock.Anything, mock.Anything, "fancy").Return(service.FallbackRecipes(), nil).Once()
	f := newFixture(t, gen)

	_, err := f.ctrl.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)

	_, err = f.ctrl.Submit(context.Background(), service.Submission{Ingredients: "tofu", Tone: "fancy"})
	require.Error(t, err)

	recipes, err := f.ctrl.Retry(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
	assert.Equal(t, 2, f.surface.hidden)
	gen.AssertNumberOfCalls(t, "Generate", 2)
	for _, call := range gen.Calls {
		assert.Equal(t, "Create 3 recipe suggestions using these ingredients: tofu. Tone: fancy.", call.Arguments.String(1))
	}
}

func TestPlaceholderBackendReturnsFixedBatch(t *testing.T) {
	f := newFixture(t, nil)
	for _, sub := range []service.Submission{
		{Ingredients: "eggs", Tone: "casual"},
		{Ingredients: "anything at all", Tone: "gourmet"},
	} {
		recipes, err := f.ctrl.Submit(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, service.FallbackRecipes(), recipes)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs"})
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Save(ctx, 1))
	require.NoError(t, f.ctrl.Save(ctx, 1))

	saved := f.ctrl.Saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "Spanish Rice with Eggs", saved[0].Title)
	assert.Equal(t, 1, f.surface.count)
	assert.Equal(t, []int{1}, f.surface.marked)
}

func TestSaveUnknownIDIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// nothing generated yet
	require.NoError(t, f.ctrl.Save(ctx, 1))
	assert.Empty(t, f.ctrl.Saved())

	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs"})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Save(ctx, 99))
	assert.Empty(t, f.ctrl.Saved())
	assert.Empty(t, f.surface.marked)

	_, found, err := f.kv.Get(ctx, service.SavedRecipesKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveTwiceIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs"})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Save(ctx, 1))
	require.NoError(t, f.ctrl.Save(ctx, 3))

	require.NoError(t, f.ctrl.Remove(ctx, 1))
	require.NoError(t, f.ctrl.Remove(ctx, 1))
	require.NoError(t, f.ctrl.Remove(ctx, 42))

	saved := f.ctrl.Saved()
	require.Len(t, saved, 1)
	assert.Equal(t, 3, saved[0].ID)
	assert.Equal(t, 1, f.surface.count)
}

func TestReloadReproducesSavedList(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs"})
	require.NoError(t, err)

	steps := []func() error{
		func() error { return f.ctrl.Save(ctx, 3) },
		func() error { return f.ctrl.Save(ctx, 1) },
		func() error { return f.ctrl.Remove(ctx, 3) },
		func() error { return f.ctrl.Save(ctx, 2) },
		func() error { return f.ctrl.Remove(ctx, 7) },
	}
	for _, step := range steps {
		require.NoError(t, step())
		reloaded := f.reload(t)
		assert.Equal(t, f.ctrl.Saved(), reloaded.Saved())
	}
}

func TestSaveSecondFallbackRecipeSurvivesReload(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.Empty(t, f.ctrl.Saved())

	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs, tomatoes", Tone: "casual"})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Save(ctx, 2))

	reloaded := f.reload(t)
	saved := reloaded.Saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "Tomato Egg Drop Soup", saved[0].Title)
	assert.Equal(t, 1, f.surface.count)
}

func TestExport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, doc, ok, err := f.ctrl.Export(2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, doc)

	_, err = f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs"})
	require.NoError(t, err)

	recipe, doc, ok, err := f.ctrl.Export(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Tomato Egg Drop Soup", recipe.Title)
	assert.Contains(t, doc, "<h1>Tomato Egg Drop Soup</h1>")
	assert.Equal(t, []string{"Tomato Egg Drop Soup"}, f.surface.printed)

	_, _, ok, err = f.ctrl.Export(-1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportReturnsRenderedRecipeWhileBatchChanges(t *testing.T) {
	batch := func(title string) []model.Recipe {
		return []model.Recipe{{ID: 1, Title: title, Ingredients: model.StringList{"eggs"}, Instructions: model.StringList{"cook"}}}
	}
	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, "a").Return(batch("Batch A Omelette"), nil)
	gen.On("Generate", mock.Anything, mock.Anything, "b").Return(batch("Batch B Frittata"), nil)
	f := newFixture(t, gen)
	ctx := context.Background()

	_, err := f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs", Tone: "a"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			tone := "a"
			if i%2 == 0 {
				tone = "b"
			}
			f.ctrl.Submit(ctx, service.Submission{Ingredients: "eggs", Tone: tone})
		}
	}()

	for i := 0; i < 50; i++ {
		recipe, doc, ok, err := f.ctrl.Export(1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, doc, "<h1>"+recipe.Title+"</h1>")
	}
	wg.Wait()
}

func TestToggles(t *testing.T) {
	f := newFixture(t, nil)

	f.ctrl.OpenSavedPanel()
	assert.True(t, f.surface.panelOpen)
	f.ctrl.CloseSavedPanel()
	assert.False(t, f.surface.panelOpen)

	f.ctrl.ShowError("oops")
	f.ctrl.HideError()
	assert.Equal(t, []string{"oops"}, f.surface.errors)
	assert.Equal(t, 1, f.surface.hidden)
}

func TestSaveReportsStoreFailure(t *testing.T) {
	kv := new(mocks.MockKVStore)
	kv.On("Get", mock.Anything, service.SavedRecipesKey).Return("", false, nil)
	kv.On("Set", mock.Anything, service.SavedRecipesKey, mock.Anything).Return(errors.New("disk full"))

	surface := &fakeSurface{}
	ctrl, err := New(context.Background(), Deps{
		Generator: service.NewHTTPGenerator("", 1500, nil, nullLogger()),
		Extractor: new(mocks.MockExtractor),
		Store:     kv,
		Surface:   surface,
		Log:       nullLogger(),
	})
	require.NoError(t, err)

	_, err = ctrl.Submit(context.Background(), service.Submission{Ingredients: "eggs", Tone: "casual"})
	require.NoError(t, err)

	err = ctrl.Save(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, surface.marked)
	kv.AssertExpectations(t)
}

func TestSaveRetriedAfterStoreFailureReachesStore(t *testing.T) {
	mem := store.NewMemory()
	kv := new(mocks.MockKVStore)
	kv.On("Get", mock.Anything, service.SavedRecipesKey).Return("", false, nil)
	kv.On("Set", mock.Anything, service.SavedRecipesKey, mock.Anything).Return(errors.New("disk full")).Once()
	kv.On("Set", mock.Anything, service.SavedRecipesKey, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, mem.Set(context.Background(), args.String(1), args.String(2)))
		}).
		Return(nil)

	surface := &fakeSurface{}
	ctrl, err := New(context.Background(), Deps{
		Generator: service.NewHTTPGenerator("", 1500, nil, nullLogger()),
		Extractor: new(mocks.MockExtractor),
		Store:     kv,
		Surface:   surface,
		Log:       nullLogger(),
	})
	require.NoError(t, err)
	_, err = ctrl.Submit(context.Background(), service.Submission{Ingredients: "eggs", Tone: "casual"})
	require.NoError(t, err)

	require.Error(t, ctrl.Save(context.Background(), 2))
	assert.Empty(t, ctrl.Saved())
	require.NoError(t, ctrl.Save(context.Background(), 2))

	reloaded, err := service.LoadSavedRecipes(context.Background(), mem, nullLogger())
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "Tomato Egg Drop Soup", reloaded.All()[0].Title)
	assert.Equal(t, []int{2}, surface.marked)
}
