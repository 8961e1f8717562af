package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pageza/recipe-assistant/backend/internal/metrics"
	"github.com/pageza/recipe-assistant/backend/internal/middleware"
	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/session"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, prompt, tone string) ([]model.Recipe, error) {
	return nil, &service.BackendError{StatusCode: http.StatusInternalServerError, Message: "API error"}
}

type testEnv struct {
	router  *gin.Engine
	kv      *store.Memory
	cookies []*http.Cookie
}

func newTestEnv(t *testing.T, gen service.Generator) *testEnv {
	t.Helper()
	return newLimitedTestEnv(t, gen, nil)
}

func newLimitedTestEnv(t *testing.T, gen service.Generator, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	if gen == nil {
		gen = service.NewHTTPGenerator("", 1500, nil, log)
	}

	manager, err := session.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	kv := store.NewMemory()
	sessions := NewSessionRegistry(SessionDeps{
		Store:     kv,
		Generator: gen,
		Extractor: service.SimulatedExtractor{},
		Log:       log,
		Metrics:   metrics.New(),
		Provider:  "test",
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session(manager, middleware.SessionOptions{MaxAge: 3600}), middleware.Logger(log), middleware.Recovery())
	NewHandler(sessions, nil, limiter, 1<<20).RegisterRoutes(r)

	return &testEnv{router: r, kv: kv}
}

// do sends a request in the env's browser session.
func (e *testEnv) do(t *testing.T, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		e.cookies = cookies
	}
	return rr
}

func (e *testEnv) submitJSON(t *testing.T, ingredients, tone string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(SuggestionRequest{Ingredients: ingredients, Tone: tone})
	require.NoError(t, err)
	return e.do(t, http.MethodPost, "/api/v1/suggestions", body, "application/json")
}

func decodeRecipes(t *testing.T, rr *httptest.ResponseRecorder) RecipesResponse {
	t.Helper()
	var out RecipesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestSubmitJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.submitJSON(t, "eggs, rice, tomatoes", "casual")
	require.Equal(t, http.StatusOK, rr.Code)
	out := decodeRecipes(t, rr)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, "Tomato Egg Drop Soup", out.Recipes[1].Title)

	rr = env.do(t, http.MethodGet, "/api/v1/recipes", nil, "")
	assert.Equal(t, 3, decodeRecipes(t, rr).Count)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.submitJSON(t, "   ", "casual")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Please enter ingredients or upload a PDF file"}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/v1/state", nil, "")
	var state struct {
		State struct {
			ErrorVisible bool   `json:"errorVisible"`
			ErrorMessage string `json:"errorMessage"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.True(t, state.State.ErrorVisible)
	assert.Equal(t, "Please enter ingredients or upload a PDF file", state.State.ErrorMessage)

	env.do(t, http.MethodPost, "/api/v1/error/dismiss", nil, "")
	rr = env.do(t, http.MethodGet, "/api/v1/state", nil, "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.False(t, state.State.ErrorVisible)
}

func TestSubmitMultipartWithFile(t *testing.T) {
	env := newTestEnv(t, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("tone", "fun"))
	part, err := w.CreateFormFile("pdf", "menu.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.4"))
	require.NoError(t, w.Close())

	rr := env.do(t, http.MethodPost, "/api/v1/suggestions", body.Bytes(), w.FormDataContentType())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decodeRecipes(t, rr).Count)
}

func TestSubmitUrlEncodedForm(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodPost, "/api/v1/suggestions", []byte("ingredients=eggs&tone=casual"), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSubmitBackendFailure(t *testing.T) {
	env := newTestEnv(t, failingGenerator{})

	rr := env.submitJSON(t, "eggs", "casual")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to generate recipes. Please try again."}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/v1/suggestions/retry", nil, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestRetryWithoutSubmission(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodPost, "/api/v1/suggestions/retry", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveRemoveAndReload(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)

	rr := env.do(t, http.MethodPost, "/api/v1/saved/2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeRecipes(t, rr).Count)

	// saving again and saving unknown ids change nothing
	env.do(t, http.MethodPost, "/api/v1/saved/2", nil, "")
	env.do(t, http.MethodPost, "/api/v1/saved/99", nil, "")
	rr = env.do(t, http.MethodGet, "/api/v1/saved", nil, "")
	out := decodeRecipes(t, rr)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Tomato Egg Drop Soup", out.Recipes[0].Title)

	rr = env.do(t, http.MethodGet, "/", nil, "")
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "View Saved Recipes (1)", doc.Find("#toggleSaved").Text())
	assert.Equal(t, "Tomato Egg Drop Soup", doc.Find("#savedList .saved-recipe-title").Text())
	saveBtn := doc.Find(`.recipe-card[data-recipe-id="2"] button[data-action="save"]`)
	_, disabled := saveBtn.Attr("disabled")
	assert.True(t, disabled)

	rr = env.do(t, http.MethodDelete, "/api/v1/saved/2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decodeRecipes(t, rr).Count)
	rr = env.do(t, http.MethodDelete, "/api/v1/saved/2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSavedListIsPerSession(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/saved/1", nil, "").Code)

	other := &testEnv{router: env.router}
	rr := other.do(t, http.MethodGet, "/api/v1/saved", nil, "")
	assert.Equal(t, 0, decodeRecipes(t, rr).Count)
}

func TestInvalidRecipeID(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/saved/abc"},
		{http.MethodDelete, "/api/v1/saved/1.5"},
		{http.MethodGet, "/api/v1/recipes/x/export"},
	} {
		rr := env.do(t, tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, tc.path)
		assert.JSONEq(t, `{"error":"invalid recipe id"}`, rr.Body.String())
	}
}

func TestExportRecipe(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/api/v1/recipes/1/export", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)

	rr = env.do(t, http.MethodGet, "/api/v1/recipes/1/export", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "Spanish Rice with Eggs", doc.Find("h1").Text())

	rr = env.do(t, http.MethodGet, "/api/v1/recipes/3/export?format=md", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# Rice Frittata with Fresh Herbs")

	rr = env.do(t, http.MethodGet, "/api/v1/recipes/3/export?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/recipes/42/export", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestExportSavedWorkbook(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)
	env.do(t, http.MethodPost, "/api/v1/saved/3", nil, "")

	rr := env.do(t, http.MethodGet, "/api/v1/saved/export.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Saved Recipes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rice Frittata with Fresh Herbs", rows[1][1])
}

func TestPanelToggles(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/panel/open", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/", nil, "")
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.True(t, doc.Find("#savedPanel").HasClass("open"))
	assert.Equal(t, "No saved recipes yet", doc.Find("#savedList .empty").Text())

	env.do(t, http.MethodPost, "/api/v1/panel/close", nil, "")
	rr = env.do(t, http.MethodGet, "/", nil, "")
	doc, err = goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.False(t, doc.Find("#savedPanel").HasClass("open"))
}

func TestSessionSurvivesWithCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/", nil, "")
	require.NotEmpty(t, env.cookies)

	require.Equal(t, http.StatusOK, env.submitJSON(t, "eggs", "casual").Code)
	rr := env.do(t, http.MethodGet, "/api/v1/recipes", nil, "")
	assert.Equal(t, 3, decodeRecipes(t, rr).Count)
}
