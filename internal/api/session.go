package api

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/internal/controller"
	"github.com/pageza/recipe-assistant/backend/internal/metrics"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/session"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

// Session is the server-side half of one browser session
type Session struct {
	ID         string
	Controller *controller.RecipeController
	Surface    *PageSurface
}

// SessionDeps are shared by every session
type SessionDeps struct {
	Store     store.KVStore
	Generator service.Generator
	Extractor service.Extractor
	Publisher Publisher
	Log       logrus.FieldLogger
	Metrics   *metrics.Metrics
	Provider  string
	// MaxSessions bounds the sessions kept in memory; IdleTimeout drops
	// sessions unused for that long. Saved lists are reloaded from Store.
	MaxSessions int
	IdleTimeout time.Duration
}

// NewSessionRegistry builds sessions on first use, each with its own
// namespace in deps.Store.
func NewSessionRegistry(deps SessionDeps) *session.Registry[*Session] {
	return session.NewRegistry(func(ctx context.Context, id string) (*Session, error) {
		surface := NewPageSurface(id, deps.Publisher)
		ctrl, err := controller.New(ctx, controller.Deps{
			Generator: deps.Generator,
			Extractor: deps.Extractor,
			Store:     store.Namespaced(deps.Store, id),
			Surface:   surface,
			Log:       deps.Log.WithField("session_id", id),
			Metrics:   deps.Metrics,
			Provider:  deps.Provider,
		})
		if err != nil {
			return nil, err
		}
		return &Session{ID: id, Controller: ctrl, Surface: surface}, nil
	}, deps.MaxSessions, deps.IdleTimeout)
}
