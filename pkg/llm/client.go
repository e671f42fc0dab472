// Package llm provides the generative-fallback backend: schema-constrained
// JSON generation over the Anthropic API. The backend is treated as
// unreliable, so output is repaired and validated before it is trusted.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the generative operations used by the retrieval tier.
type Client interface {
	// GenerateJSON asks the model for output conforming to the request's
	// schema hint and returns validated JSON. Malformed output that cannot
	// be repaired is an error.
	GenerateJSON(ctx context.Context, req GenerateRequest) (json.RawMessage, TokenUsage, error)
}

// GenerateRequest describes one structured-generation call.
type GenerateRequest struct {
	System      string
	Prompt      string
	Schema      string // JSON shape the response must parse into
	MaxTokens   int64
	Temperature *float64
}

// TokenUsage tracks token consumption for cost attribution.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(o TokenUsage) {
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(u.InputTokens)/1e6)*pricing[0] + (float64(u.OutputTokens)/1e6)*pricing[1]
}

// LogCost logs token usage and estimated cost with structured fields.
func (u TokenUsage) LogCost(model, operation string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("operation", operation),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
	model  string
}

// NewClient creates a generative client backed by the SDK.
func NewClient(apiKey, model string) Client {
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *sdkClient) GenerateJSON(ctx context.Context, req GenerateRequest) (json.RawMessage, TokenUsage, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	prompt := req.Prompt
	if req.Schema != "" {
		prompt += "\n\nReturn ONLY valid JSON matching this shape, no markdown, no prose:\n" + req.Schema
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, TokenUsage{}, eris.Wrap(err, "llm: create message")
	}

	usage := TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	raw, err := CoerceJSON(text.String())
	if err != nil {
		return nil, usage, err
	}
	return raw, usage, nil
}

// CoerceJSON extracts a JSON document from model output: strips code fences,
// then attempts a repair pass for near-JSON (trailing commas, single quotes,
// truncation). Output that still fails to parse is rejected.
func CoerceJSON(s string) (json.RawMessage, error) {
	s = stripFences(strings.TrimSpace(s))
	if s == "" {
		return nil, eris.New("llm: empty response")
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, eris.Wrap(err, "llm: response is not valid JSON and could not be repaired")
	}
	if !json.Valid([]byte(repaired)) {
		return nil, eris.New("llm: repaired response is still not valid JSON")
	}
	return json.RawMessage(repaired), nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
