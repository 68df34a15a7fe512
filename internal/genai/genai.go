// Package genai generates travel insights with the Anthropic API,
// optionally grounded by server-side web search. It implements the insight
// resolver's Generator interface; reachability and fallback policy live in
// the resolver, not here.
package genai

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "claude-sonnet-4-0"

// Config configures New.
type Config struct {
	// APIKey authenticates against the Anthropic API. Required.
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// MaxTokens bounds the response size. Defaults to 1024.
	MaxTokens int64

	// WebSearch lets the model search the web for current information
	// (weather, prices, opening hours) before answering.
	WebSearch bool

	// MaxSearches caps web searches per request. Defaults to 3.
	MaxSearches int64

	// Logger receives request diagnostics. Defaults to stderr.
	Logger *log.Logger
}

// Client calls the Anthropic Messages API to produce insights.
type Client struct {
	api         anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	webSearch   bool
	maxSearches int64
	logger      *log.Logger
}

// New creates a client from the config.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxSearches <= 0 {
		cfg.MaxSearches = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[genai] ", log.LstdFlags)
	}
	return &Client{
		api:         anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       anthropic.Model(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		webSearch:   cfg.WebSearch,
		maxSearches: cfg.MaxSearches,
		logger:      cfg.Logger,
	}, nil
}

// Generate asks the model for a structured insight about the stop.
func (c *Client) Generate(ctx context.Context, stop itinerary.Stop) (insight.Insight, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(stop))),
		},
	}
	if c.webSearch {
		params.Tools = []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(c.maxSearches),
			}},
		}
	}

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return insight.Insight{}, fmt.Errorf("failed to generate insight: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	ins, err := parseInsight(sb.String())
	if err != nil {
		return insight.Insight{}, fmt.Errorf("failed to parse model output: %w", err)
	}

	c.logger.Printf("generated insight for %s in %v", stop.ID, time.Since(start).Round(time.Millisecond))
	ins.GeneratedAt = time.Now().UTC()
	return ins, nil
}
