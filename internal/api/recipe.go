package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-assistant/backend/internal/controller"
	"github.com/pageza/recipe-assistant/backend/internal/middleware"
	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

var errUploadTooLarge = errors.New("uploaded file is too large")

// SuggestionRequest is the JSON form of a recipe request
type SuggestionRequest struct {
	Ingredients string `json:"ingredients" form:"ingredients"`
	Tone        string `json:"tone" form:"tone"`
}

// RecipesResponse wraps a list of recipes
type RecipesResponse struct {
	Recipes []model.Recipe `json:"recipes"`
	Count   int            `json:"count"`
}

func recipesResponse(recipes []model.Recipe) RecipesResponse {
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return RecipesResponse{Recipes: recipes, Count: len(recipes)}
}

// Submit runs the recipe pipeline for a form or JSON request.
func (h *Handler) Submit(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}

	sub, err := h.readSubmission(c)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	sess.Surface.RememberForm(sub.Ingredients, sub.Tone)

	// the page keeps waiting for the result even if this request goes away
	recipes, err := sess.Controller.Submit(context.WithoutCancel(c.Request.Context()), sub)
	h.writeSubmitResult(c, recipes, err)
}

// Retry re-runs the session's last request.
func (h *Handler) Retry(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	recipes, err := sess.Controller.Retry(context.WithoutCancel(c.Request.Context()))
	h.writeSubmitResult(c, recipes, err)
}

func (h *Handler) writeSubmitResult(c *gin.Context, recipes []model.Recipe, err error) {
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, recipesResponse(recipes))
	case errors.As(err, &validationErr):
		middleware.AbortWithError(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrSubmitInFlight):
		middleware.AbortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, controller.ErrNothingToRetry):
		middleware.AbortWithError(c, http.StatusBadRequest, err.Error())
	default:
		// detail is logged by the controller
		middleware.AbortWithError(c, http.StatusBadGateway, controller.FailureMessage)
	}
}

func (h *Handler) readSubmission(c *gin.Context) (service.Submission, error) {
	var req SuggestionRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return service.Submission{}, err
		}
		return service.Submission{Ingredients: req.Ingredients, Tone: req.Tone}, nil
	}

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
	}
	if err := c.ShouldBind(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.Submission{}, errUploadTooLarge
		}
		return service.Submission{}, err
	}
	sub := service.Submission{Ingredients: req.Ingredients, Tone: req.Tone}
	if c.ContentType() != "multipart/form-data" {
		return sub, nil
	}

	header, err := c.FormFile("pdf")
	if errors.Is(err, http.ErrMissingFile) {
		return sub, nil
	}
	if err != nil {
		return service.Submission{}, err
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		return service.Submission{}, errUploadTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return service.Submission{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.Submission{}, err
	}

	sub.File = &service.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return sub, nil
}

// ListRecipes returns the current batch.
func (h *Handler) ListRecipes(c *gin.Context) {
	if sess, ok := h.current(c); ok {
		c.JSON(http.StatusOK, recipesResponse(sess.Controller.Current()))
	}
}

// ExportRecipe returns the printable document for a recipe of the current
// batch, as HTML or markdown. An id outside the batch yields 204.
func (h *Handler) ExportRecipe(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "html")
	if format != "html" && format != "md" {
		middleware.AbortWithError(c, http.StatusBadRequest, "format must be html or md")
		return
	}

	recipe, doc, found, err := sess.Controller.Export(id)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to render printable recipe")
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to export recipe")
		return
	}
	if !found {
		c.Status(http.StatusNoContent)
		return
	}

	if format == "md" {
		md, err := view.PrintableMarkdown(recipe)
		if err != nil {
			middleware.GetLogger(c).WithError(err).Error("failed to convert recipe to markdown")
			middleware.AbortWithError(c, http.StatusInternalServerError, "failed to export recipe")
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

// ListSaved returns the saved list.
func (h *Handler) ListSaved(c *gin.Context) {
	if sess, ok := h.current(c); ok {
		c.JSON(http.StatusOK, recipesResponse(sess.Controller.Saved()))
	}
}

// SaveRecipe saves a recipe of the current batch. Unknown ids leave the list unchanged.
func (h *Handler) SaveRecipe(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := sess.Controller.Save(c.Request.Context(), id); err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to save recipe")
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to save recipe")
		return
	}
	c.JSON(http.StatusOK, recipesResponse(sess.Controller.Saved()))
}

// RemoveRecipe removes a saved recipe. Removing an absent id succeeds.
func (h *Handler) RemoveRecipe(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := sess.Controller.Remove(c.Request.Context(), id); err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to remove recipe")
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to remove recipe")
		return
	}
	c.JSON(http.StatusOK, recipesResponse(sess.Controller.Saved()))
}

// ExportSaved downloads the saved list as a spreadsheet.
func (h *Handler) ExportSaved(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="saved-recipes.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := view.WriteSavedWorkbook(c.Writer, sess.Controller.Saved()); err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to write workbook")
	}
}
