// Package llm extracts child counts from biography text that the
// pattern rules could not parse, using an OpenAI-compatible chat API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/in-rolls/missing-daughters-of-pols/internal/extract"
)

// Config holds the assistant configuration.
type Config struct {
	// Provider name: "openai" or "" (disabled).
	Provider string

	// Model name. Empty means gpt-4o-mini.
	Model string

	// APIKey for the API.
	APIKey string

	// BaseURL for OpenAI-compatible endpoints (e.g. a local server).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for the response.
	MaxTokens int
}

// DefaultConfig returns the assistant defaults. Disabled unless a
// provider is named.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		MaxTokens: 100,
	}
}

// Extractor asks a chat model for son and daughter counts. Counts it
// returns are always marked inferred: the model's reading of the text
// is a guess, not an explicit statement.
type Extractor struct {
	client *openai.Client
	config Config
}

// New creates an extractor from config. A blank provider returns
// (nil, nil): the assistant is disabled and callers skip it.
func New(config Config) (*Extractor, error) {
	switch config.Provider {
	case "":
		return nil, nil
	case "openai":
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", config.Provider)
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("llm provider %q requires an API key", config.Provider)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// IsAvailable checks that the endpoint is reachable and the key works.
func (e *Extractor) IsAvailable(ctx context.Context) bool {
	_, err := e.client.ListModels(ctx)
	return err == nil
}

const systemPrompt = `You extract family details from biographies of Indian legislators. ` +
	`Given a biography, reply with ONLY a JSON object of the form ` +
	`{"sons": <number or null>, "daughters": <number or null>}. ` +
	`Use null when the text does not state the count. Never guess beyond the text.`

// counts is the wire form the model is asked to produce. Pointers keep
// null distinct from zero.
type counts struct {
	Sons      *int `json:"sons"`
	Daughters *int `json:"daughters"`
}

// Children asks the model for the counts stated in text. Both fields
// nil with a nil error means the model found nothing.
func (e *Extractor) Children(ctx context.Context, text string) (extract.Counts, error) {
	var result extract.Counts

	model := e.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := e.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return result, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("empty response from %s", model)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	parsed, err := parseCounts(reply)
	if err != nil {
		return result, fmt.Errorf("parse model reply %q: %w", reply, err)
	}

	result.Sons = parsed.Sons
	result.Daughters = parsed.Daughters
	result.Inferred = result.Sons != nil || result.Daughters != nil
	return result, nil
}

// parseCounts reads the JSON object out of a model reply, tolerating
// markdown fences around it.
func parseCounts(reply string) (counts, error) {
	var c counts

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return c, fmt.Errorf("no JSON object found")
	}

	if err := json.Unmarshal([]byte(reply[start:end+1]), &c); err != nil {
		return c, err
	}
	if c.Sons != nil && *c.Sons < 0 {
		c.Sons = nil
	}
	if c.Daughters != nil && *c.Daughters < 0 {
		c.Daughters = nil
	}
	return c, nil
}
