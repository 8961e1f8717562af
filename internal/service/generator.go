package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/model"
)

// Generator turns a prompt into a batch of recipe suggestions.
type Generator interface {
	Generate(ctx context.Context, prompt, tone string) ([]model.Recipe, error)
}

// GenerateRequest is the body posted to the generation endpoint
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	Tone      string `json:"tone"`
	MaxTokens int    `json:"max_tokens"`
}

// GenerateResponse is the body expected back from the generation endpoint
type GenerateResponse struct {
	Recipes *[]model.Recipe `json:"recipes"`
}

// HTTPGenerator calls a serverless generation endpoint. While the endpoint is
// the placeholder no request is made and the fallback batch is returned.
type HTTPGenerator struct {
	endpoint  string
	maxTokens int
	client    *http.Client
	log       logrus.FieldLogger
}

// NewHTTPGenerator creates a generator for endpoint. A nil client uses http.DefaultClient.
func NewHTTPGenerator(endpoint string, maxTokens int, client *http.Client, log logrus.FieldLogger) *HTTPGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &HTTPGenerator{endpoint: endpoint, maxTokens: maxTokens, client: client, log: log}
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt, tone string) ([]model.Recipe, error) {
	if config.IsPlaceholder(g.endpoint) {
		g.log.Debug("generation endpoint not configured, serving fallback recipes")
		return FallbackRecipes(), nil
	}

	body, err := json.Marshal(GenerateRequest{Prompt: prompt, Tone: tone, MaxTokens: g.maxTokens})
	if err != nil {
		return nil, &BackendError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &BackendError{Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: "API error"}
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &BackendError{Message: "failed to decode response", Err: err}
	}
	if out.Recipes == nil {
		return nil, &BackendError{Message: "response has no recipes field"}
	}

	g.log.WithField("count", len(*out.Recipes)).Debug("generation endpoint returned recipes")
	return *out.Recipes, nil
}

// NewGenerator picks the generator named by cfg.GeneratorProvider.
func NewGenerator(cfg *config.Config, client *http.Client, log logrus.FieldLogger) (Generator, error) {
	switch cfg.GeneratorProvider {
	case config.ProviderHTTP, "":
		return NewHTTPGenerator(cfg.GeneratorEndpoint, cfg.GeneratorMaxTokens, client, log), nil
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg, client, log)
	}
	return nil, fmt.Errorf("unknown generator provider %q", cfg.GeneratorProvider)
}
