package provider

import (
	"context"

	"github.com/playforge/playforge/core"
)

// Function adapters so a plain func can stand in for a collaborator, the
// same way a handler func stands in for an http.Handler. Used heavily in
// tests and handy for small custom collaborators.

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, prompt string, image []byte) (*core.Analysis, error)

// Analyze calls the wrapped function.
func (f AnalyzerFunc) Analyze(ctx context.Context, prompt string, image []byte) (*core.Analysis, error) {
	return f(ctx, prompt, image)
}

// ReferenceSearcherFunc adapts a function to the ReferenceSearcher interface.
type ReferenceSearcherFunc func(ctx context.Context, query string) (*core.Image, error)

// FindReference calls the wrapped function.
func (f ReferenceSearcherFunc) FindReference(ctx context.Context, query string) (*core.Image, error) {
	return f(ctx, query)
}

// PaletteExtractorFunc adapts a function to the PaletteExtractor interface.
type PaletteExtractorFunc func(ctx context.Context, image []byte) (*core.Palette, error)

// Extract calls the wrapped function.
func (f PaletteExtractorFunc) Extract(ctx context.Context, image []byte) (*core.Palette, error) {
	return f(ctx, image)
}

// AssetGeneratorFunc adapts a function to the AssetGenerator interface.
type AssetGeneratorFunc func(ctx context.Context, theme ThemeConfig, layers []string) (*core.AssetBundle, error)

// Generate calls the wrapped function.
func (f AssetGeneratorFunc) Generate(ctx context.Context, theme ThemeConfig, layers []string) (*core.AssetBundle, error) {
	return f(ctx, theme, layers)
}

// BackgroundRemoverFunc adapts a function to the BackgroundRemover interface.
type BackgroundRemoverFunc func(ctx context.Context, image []byte) ([]byte, error)

// Remove calls the wrapped function.
func (f BackgroundRemoverFunc) Remove(ctx context.Context, image []byte) ([]byte, error) {
	return f(ctx, image)
}

// SoundProviderFunc adapts a function to the SoundProvider interface.
type SoundProviderFunc func(ctx context.Context, theme string) (core.SoundSet, error)

// FindSounds calls the wrapped function.
func (f SoundProviderFunc) FindSounds(ctx context.Context, theme string) (core.SoundSet, error) {
	return f(ctx, theme)
}

// CodeGeneratorFunc adapts a function to the CodeGenerator interface.
type CodeGeneratorFunc func(ctx context.Context, analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) (string, error)

// Generate calls the wrapped function.
func (f CodeGeneratorFunc) Generate(ctx context.Context, analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) (string, error) {
	return f(ctx, analysis, assets, palette)
}

// AssemblerFunc adapts a function to the Assembler interface.
type AssemblerFunc func(ctx context.Context, code string, assets *core.AssetBundle) (*core.Artifact, error)

// Assemble calls the wrapped function.
func (f AssemblerFunc) Assemble(ctx context.Context, code string, assets *core.AssetBundle) (*core.Artifact, error) {
	return f(ctx, code, assets)
}
