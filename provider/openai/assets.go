package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

// AssetGenOptions configures the image asset generator.
type AssetGenOptions struct {
	Model openai.ImageModel
	Size  openai.ImageGenerateParamsSize
}

// AssetGenerator wraps the Images API behind provider.AssetGenerator,
// producing one PNG per requested layer.
type AssetGenerator struct {
	client *openai.Client
	opts   AssetGenOptions
}

// NewAssetGenerator creates an AssetGenerator using the official client.
func NewAssetGenerator(optFns ...func(o *AssetGenOptions)) *AssetGenerator {
	client := openai.NewClient()
	return NewAssetGeneratorFromClient(&client, optFns...)
}

// NewAssetGeneratorFromClient creates an AssetGenerator from an existing client.
func NewAssetGeneratorFromClient(client *openai.Client, optFns ...func(o *AssetGenOptions)) *AssetGenerator {
	opts := AssetGenOptions{
		Model: openai.ImageModelDallE3,
		Size:  openai.ImageGenerateParamsSize1024x1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &AssetGenerator{client: client, opts: opts}
}

// Generate implements provider.AssetGenerator. Layers are generated
// sequentially; the first failure aborts since a partial bundle is not
// usable by the downstream steps.
func (g *AssetGenerator) Generate(ctx context.Context, theme provider.ThemeConfig, layers []string) (*core.AssetBundle, error) {
	bundle := &core.AssetBundle{Layers: make(map[string]*core.Image, len(layers))}
	for _, layer := range layers {
		img, err := g.generateLayer(ctx, theme, layer)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer, err)
		}
		bundle.Layers[layer] = img
	}
	return bundle, nil
}

func (g *AssetGenerator) generateLayer(ctx context.Context, theme provider.ThemeConfig, layer string) (*core.Image, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         layerPrompt(theme, layer),
		Model:          g.opts.Model,
		Size:           g.opts.Size,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai image generation: empty response")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return &core.Image{Data: raw, MIME: "image/png"}, nil
}

func layerPrompt(theme provider.ThemeConfig, layer string) string {
	prompt := fmt.Sprintf(
		"Game asset, %s layer for a %s themed mini-game about %s. Flat vector style, centered, plain solid background.",
		layer, theme.Theme, theme.Subject)
	if theme.Palette != nil {
		prompt += fmt.Sprintf(" Use colors %s, %s and %s.",
			theme.Palette.Primary, theme.Palette.Secondary, theme.Palette.Accent)
	}
	return prompt
}
