package provider

import (
	"context"
	"fmt"

	"github.com/playforge/playforge/core"
)

// Analyzer interprets a free-text prompt (plus optional reference image)
// into a structured Analysis. Malformed or unusable provider output fails
// with an *AnalysisError.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string, image []byte) (*core.Analysis, error)
}

// ReferenceSearcher finds reference imagery for the analyzed subject.
// A nil image with a nil error means no result.
type ReferenceSearcher interface {
	FindReference(ctx context.Context, query string) (*core.Image, error)
}

// PaletteExtractor derives a color palette from an image payload.
type PaletteExtractor interface {
	Extract(ctx context.Context, image []byte) (*core.Palette, error)
}

// ThemeConfig carries the visual direction for asset generation.
type ThemeConfig struct {
	Subject string
	Theme   string
	Palette *core.Palette
}

// AssetGenerator produces one image per requested layer name.
type AssetGenerator interface {
	Generate(ctx context.Context, theme ThemeConfig, layers []string) (*core.AssetBundle, error)
}

// BackgroundRemover post-processes an image into a transparent version.
type BackgroundRemover interface {
	Remove(ctx context.Context, image []byte) ([]byte, error)
}

// SoundProvider resolves a sound reference per category for the theme.
type SoundProvider interface {
	FindSounds(ctx context.Context, theme string) (core.SoundSet, error)
}

// CodeGenerator produces the game markup/script from the accumulated
// results. Assets may be nil for code-only mechanics.
type CodeGenerator interface {
	Generate(ctx context.Context, analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) (string, error)
}

// Assembler combines code and assets into the final deliverable.
type Assembler interface {
	Assemble(ctx context.Context, code string, assets *core.AssetBundle) (*core.Artifact, error)
}

// AnalysisError indicates the analyzer call failed or returned an unusable
// shape. Analysis failures are always fatal to the run.
type AnalysisError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("analysis failed: %s", e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *AnalysisError) Unwrap() error { return e.Err }

// themedPalettes are the built-in fallbacks keyed by theme keyword.
var themedPalettes = map[string]core.Palette{
	"ocean":  {Primary: "#1565C0", Secondary: "#4FC3F7", Accent: "#FFD54F", Background: "#E1F5FE"},
	"forest": {Primary: "#2E7D32", Secondary: "#81C784", Accent: "#FF8F00", Background: "#F1F8E9"},
	"sunset": {Primary: "#E65100", Secondary: "#FF7043", Accent: "#7E57C2", Background: "#FFF3E0"},
	"neon":   {Primary: "#D500F9", Secondary: "#00E5FF", Accent: "#76FF03", Background: "#1A1A2E"},
	"candy":  {Primary: "#EC407A", Secondary: "#F8BBD0", Accent: "#7C4DFF", Background: "#FFF0F5"},
}

// DefaultPalette returns the process-wide fallback palette for a theme.
// Unknown themes get a neutral default. The result is a copy safe for
// caller mutation.
func DefaultPalette(theme string) *core.Palette {
	if p, ok := themedPalettes[theme]; ok {
		cp := p
		return &cp
	}
	return &core.Palette{
		Primary:    "#3F51B5",
		Secondary:  "#7986CB",
		Accent:     "#FFC107",
		Background: "#FAFAFA",
	}
}

// soundCategories are the categories every mechanic's runtime expects.
var soundCategories = []string{"spin", "win", "lose", "click"}

// SoundCategories returns the categories resolved per run.
func SoundCategories() []string {
	out := make([]string, len(soundCategories))
	copy(out, soundCategories)
	return out
}

// FallbackSounds returns the local sound set substituted when no sound
// provider is configured or the lookup fails.
func FallbackSounds() core.SoundSet {
	set := make(core.SoundSet, len(soundCategories))
	for _, cat := range soundCategories {
		set[cat] = core.SoundRef{
			Category: cat,
			Name:     cat,
			URL:      "sounds/" + cat + ".mp3",
			Fallback: true,
		}
	}
	return set
}
