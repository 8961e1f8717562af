package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/model"
)

const recipeSystemPrompt = `You are a cooking assistant. Reply with a single JSON object and nothing else, shaped as
{"recipes":[{"id":1,"title":"","description":"","cookTime":"","difficulty":"","calories":"","ingredients":[""],"instructions":[""]}]}.
cookTime is like "25 min", difficulty is one of Very Easy, Easy, Medium, Hard, calories is a number as a string.
Match the requested tone in titles and descriptions.`

// LLMGenerator asks a chat model for recipes directly.
type LLMGenerator struct {
	model     llms.Model
	maxTokens int
	log       logrus.FieldLogger
}

// NewLLMGenerator wraps any langchaingo model.
func NewLLMGenerator(model llms.Model, maxTokens int, log logrus.FieldLogger) *LLMGenerator {
	return &LLMGenerator{model: model, maxTokens: maxTokens, log: log}
}

// NewOpenAIGenerator builds an LLMGenerator against an OpenAI-compatible API.
func NewOpenAIGenerator(cfg *config.Config, client *http.Client, log logrus.FieldLogger) (*LLMGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.OpenAIKey),
		openai.WithModel(cfg.OpenAIModel),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if client != nil {
		opts = append(opts, openai.WithHTTPClient(client))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return NewLLMGenerator(llm, cfg.GeneratorMaxTokens, log), nil
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, prompt, tone string) ([]model.Recipe, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, recipeSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt+"\nTone: "+tone),
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(g.maxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, &BackendError{Message: "model call failed", Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &BackendError{Message: "empty response from model"}
	}

	recipes, err := ParseRecipes(resp.Choices[0].Content)
	if err != nil {
		return nil, err
	}
	g.log.WithField("count", len(recipes)).Debug("model returned recipes")
	return recipes, nil
}

// ParseRecipes decodes a {"recipes":[...]} document, tolerating a markdown
// code fence around it. Recipes get ids 1..n when any id is missing or repeated.
func ParseRecipes(content string) ([]model.Recipe, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out GenerateResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, &BackendError{Message: "model returned malformed JSON", Err: err}
	}
	if out.Recipes == nil {
		return nil, &BackendError{Message: "model response has no recipes field"}
	}

	recipes := *out.Recipes
	seen := make(map[int]bool, len(recipes))
	renumber := false
	for _, r := range recipes {
		if r.ID <= 0 || seen[r.ID] {
			renumber = true
			break
		}
		seen[r.ID] = true
	}
	if renumber {
		for i := range recipes {
			recipes[i].ID = i + 1
		}
	}
	return recipes, nil
}
