package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-assistant/backend/internal/middleware"
	"github.com/pageza/recipe-assistant/backend/internal/realtime"
	"github.com/pageza/recipe-assistant/backend/internal/session"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

// Handler serves the recipe page, its API and the live update socket
type Handler struct {
	sessions  *session.Registry[*Session]
	hub       *realtime.Hub
	limiter   *middleware.RateLimiter
	maxUpload int64
}

// NewHandler creates a handler. hub and limiter may be nil.
func NewHandler(sessions *session.Registry[*Session], hub *realtime.Hub, limiter *middleware.RateLimiter, maxUpload int64) *Handler {
	return &Handler{sessions: sessions, hub: hub, limiter: limiter, maxUpload: maxUpload}
}

// RegisterRoutes mounts the page, the websocket and /api/v1 on router. The
// session middleware must already be installed.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Page)
	router.GET("/ws", h.Live)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", h.State)

		suggestions := v1.Group("/suggestions")
		suggestions.Use(h.limiter.RateLimitMiddleware())
		{
			suggestions.POST("", h.Submit)
			suggestions.POST("/retry", h.Retry)
		}

		v1.GET("/recipes", h.ListRecipes)
		v1.GET("/recipes/:id/export", h.ExportRecipe)

		saved := v1.Group("/saved")
		{
			saved.GET("", h.ListSaved)
			saved.GET("/export.xlsx", h.ExportSaved)
			saved.POST("/:id", h.SaveRecipe)
			saved.DELETE("/:id", h.RemoveRecipe)
		}

		v1.POST("/panel/open", h.OpenPanel)
		v1.POST("/panel/close", h.ClosePanel)
		v1.POST("/error/dismiss", h.DismissError)
	}
}

// current resolves the caller's session, writing a 500 when it cannot be built.
func (h *Handler) current(c *gin.Context) (*Session, bool) {
	sess, err := h.sessions.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to load session")
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return sess, true
}

// recipeID parses the :id parameter, answering 400 for anything but an integer.
func recipeID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid recipe id")
		return 0, false
	}
	return id, true
}

// Page renders the full page for the caller's session.
func (h *Handler) Page(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := view.RenderPage(&buf, sess.Surface.Snapshot()); err != nil {
		middleware.GetLogger(c).WithError(err).Error("failed to render page")
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// State returns the page view-model as JSON, with the remaining suggestion
// quota when rate limiting is on.
func (h *Handler) State(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	snapshot := sess.Surface.Snapshot()
	resp := gin.H{
		"state":           snapshot,
		"savedCountLabel": snapshot.SavedCountLabel(),
	}
	if h.limiter != nil {
		remaining, reset, err := h.limiter.GetRemainingRequests(c.Request.Context(), sess.ID)
		if err != nil {
			middleware.GetLogger(c).WithError(err).Warn("rate limit lookup failed")
		} else {
			resp["rateLimitRemaining"] = remaining
			resp["rateLimitReset"] = reset.Unix()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Live attaches a websocket that receives the session's page events.
func (h *Handler) Live(c *gin.Context) {
	if h.hub == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "live updates disabled")
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, middleware.GetSessionID(c)); err != nil {
		middleware.GetLogger(c).WithError(err).Debug("websocket upgrade failed")
	}
}

func (h *Handler) OpenPanel(c *gin.Context) {
	if sess, ok := h.current(c); ok {
		sess.Controller.OpenSavedPanel()
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) ClosePanel(c *gin.Context) {
	if sess, ok := h.current(c); ok {
		sess.Controller.CloseSavedPanel()
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) DismissError(c *gin.Context) {
	if sess, ok := h.current(c); ok {
		sess.Controller.HideError()
		c.Status(http.StatusNoContent)
	}
}
