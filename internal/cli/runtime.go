package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/logging"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

// Runtime is what a command needs to build a controller.
type Runtime struct {
	Store     store.KVStore
	Generator service.Generator
	Extractor service.Extractor
	Log       logrus.FieldLogger
	Provider  string
	close     func() error
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Loader builds the Runtime for one command invocation.
type Loader func(ctx context.Context) (*Runtime, error)

// LoadRuntime reads the process configuration and opens the configured store,
// generator and extractor. Logs go to stderr.
func LoadRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.NewWithOutput(os.Stderr, cfg.LogLevel, "text")

	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	generator, err := service.NewGenerator(cfg, &http.Client{}, log)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Runtime{
		Store:     backend,
		Generator: generator,
		Extractor: service.NewExtractor(cfg),
		Log:       log,
		Provider:  cfg.GeneratorProvider,
		close:     backend.Close,
	}, nil
}
