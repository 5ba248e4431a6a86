// Package anthropic implements the request analyzer on the Anthropic
// Messages API. The model is instructed to answer with a single JSON object
// which is parsed into a core.Analysis; anything unparseable fails with a
// provider.AnalysisError.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

const analysisSystem = `You analyze requests for generated promotional mini-games.
Answer with a single JSON object and nothing else:
{"subject": "<main visual subject>",
 "mechanic": "wheel" | "box" | "scratch" | "loader",
 "theme": "<one-word visual theme>",
 "asset_layers": ["<layer>", ...],
 "confidence": <0.0-1.0>}`

// Options configures the analyzer (model id, token budget, API key).
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Analyzer wraps the Anthropic Messages API behind provider.Analyzer.
type Analyzer struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Analyzer using the official client.
func New(optFns ...func(o *Options)) *Analyzer {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Analyzer{client: &client, opts: opts}
}

// NewFromClient creates an Analyzer from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Analyzer {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Analyzer{client: client, opts: opts}
}

// Analyze implements provider.Analyzer.
func (a *Analyzer) Analyze(ctx context.Context, prompt string, image []byte) (*core.Analysis, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)}
	if len(image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(image)
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", encoded))
	}

	params := anthropic.MessageNewParams{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: analysisSystem}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &provider.AnalysisError{Reason: "request failed", Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return parseAnalysis(text.String())
}

// parseAnalysis extracts the JSON object from the model output, tolerating
// surrounding prose and code fences.
func parseAnalysis(raw string) (*core.Analysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &provider.AnalysisError{Reason: "no JSON object in model output"}
	}

	var analysis core.Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err != nil {
		return nil, &provider.AnalysisError{Reason: "malformed JSON in model output", Err: err}
	}
	if analysis.Subject == "" {
		return nil, &provider.AnalysisError{Reason: "analysis missing subject"}
	}
	if !analysis.Mechanic.Valid() {
		analysis.Mechanic = core.MechanicWheel
	}
	return &analysis, nil
}
