// Package openai implements the code generator and the visual asset
// generator on the OpenAI API (chat completions and image generation
// respectively).
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/playforge/playforge/core"
)

const codegenSystem = `You generate a complete, self-contained mini-game as a single HTML
document with inline CSS and JavaScript. Asset images are provided at runtime under
window.__ASSETS__ keyed by layer name; sounds under window.__ASSETS__.sounds keyed by
category. Use the provided palette colors. Output only the HTML document, no commentary.`

// CodeGenOptions configures the code generator.
type CodeGenOptions struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// CodeGenerator wraps the Chat Completions API behind provider.CodeGenerator.
type CodeGenerator struct {
	client *openai.Client
	opts   CodeGenOptions
}

// NewCodeGenerator creates a CodeGenerator using the official client.
func NewCodeGenerator(optFns ...func(o *CodeGenOptions)) *CodeGenerator {
	client := openai.NewClient()
	return NewCodeGeneratorFromClient(&client, optFns...)
}

// NewCodeGeneratorFromClient creates a CodeGenerator from an existing client.
func NewCodeGeneratorFromClient(client *openai.Client, optFns ...func(o *CodeGenOptions)) *CodeGenerator {
	opts := CodeGenOptions{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.4,
		MaxCompletionTokens: 8192,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CodeGenerator{client: client, opts: opts}
}

// Generate implements provider.CodeGenerator.
func (g *CodeGenerator) Generate(ctx context.Context, analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(codegenSystem),
			openai.UserMessage(buildCodePrompt(analysis, assets, palette)),
		},
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai code generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai code generation: empty response")
	}

	code := stripFences(resp.Choices[0].Message.Content)
	if code == "" {
		return "", fmt.Errorf("openai code generation: empty completion")
	}
	return code, nil
}

// buildCodePrompt summarizes the accumulated run results for the model.
func buildCodePrompt(analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mechanic: %s\nSubject: %s\nTheme: %s\n", analysis.Mechanic, analysis.Subject, analysis.Theme)
	if palette != nil {
		fmt.Fprintf(&b, "Palette: primary=%s secondary=%s accent=%s background=%s\n",
			palette.Primary, palette.Secondary, palette.Accent, palette.Background)
	}
	if assets != nil && len(assets.Layers) > 0 {
		names := make([]string, 0, len(assets.Layers))
		for name := range assets.Layers {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "Asset layers: %s\n", strings.Join(names, ", "))
	} else {
		b.WriteString("No image assets: render everything with CSS.\n")
	}
	return b.String()
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
