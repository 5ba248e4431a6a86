package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

// step describes one pipeline stage: the state it enters, the progress
// reported on entry, whether its failure terminates the run, and the work
// itself. Progress values in a plan must be ascending; a descriptor whose
// default would regress relies on re-entry keeping the current value.
type step struct {
	state    core.State
	progress int
	fatal    bool
	run      func(ctx context.Context, p *Pipeline, r *run) error
}

// run accumulates intermediate results while a plan executes.
type run struct {
	sess      *core.Session
	req       Request
	analysis  *core.Analysis
	reference *core.Image
	palette   *core.Palette
	assets    *core.AssetBundle
	code      string
	artifact  *core.Artifact
}

// assetPlan is the full visual pipeline shared by the asset-bearing
// mechanics. The sound sub-phase re-enters StateGeneratingAssets after
// background removal, matching the progress interleaving clients observe.
var assetPlan = []step{
	{core.StateFetchingReference, 10, false, stepFetchReference},
	{core.StateExtractingPalette, 20, false, stepExtractPalette},
	{core.StateGeneratingAssets, 30, true, stepGenerateAssets},
	{core.StateRemovingBackgrounds, 55, false, stepRemoveBackgrounds},
	{core.StateGeneratingAssets, 60, false, stepFindSounds},
	{core.StateGeneratingCode, 70, true, stepGenerateCode},
	{core.StateAssembling, 90, true, stepAssemble},
}

// loaderPlan is the code-only pipeline: no imagery, no sounds.
var loaderPlan = []step{
	{core.StateGeneratingCode, 70, true, stepGenerateCode},
	{core.StateAssembling, 90, true, stepAssemble},
}

var plans = map[core.Mechanic][]step{
	core.MechanicWheel:   assetPlan,
	core.MechanicBox:     assetPlan,
	core.MechanicScratch: assetPlan,
	core.MechanicLoader:  loaderPlan,
}

func planFor(m core.Mechanic) []step {
	if plan, ok := plans[m]; ok {
		return plan
	}
	return assetPlan
}

// defaultLayers lists the asset layers generated when the analysis does not
// name its own.
var defaultLayers = map[core.Mechanic][]string{
	core.MechanicWheel:   {"wheel", "pointer", "background", "button"},
	core.MechanicBox:     {"box", "lid", "background", "button"},
	core.MechanicScratch: {"card", "cover", "background"},
}

func stepFetchReference(ctx context.Context, p *Pipeline, r *run) error {
	if p.collab.Reference == nil {
		return nil
	}
	img, err := p.collab.Reference.FindReference(ctx, r.analysis.Subject)
	if err != nil {
		return fmt.Errorf("reference search: %w", err)
	}
	r.reference = img
	return nil
}

// stepExtractPalette always leaves a palette on the session: extraction
// failure or a missing reference degrades to the themed default, never to
// an error state.
func stepExtractPalette(ctx context.Context, p *Pipeline, r *run) error {
	if r.reference != nil && len(r.reference.Data) > 0 && p.collab.Palette != nil {
		pal, err := p.collab.Palette.Extract(ctx, r.reference.Data)
		if err == nil && pal != nil {
			r.palette = pal
			r.sess.SetPalette(pal)
			return nil
		}
		r.palette = provider.DefaultPalette(r.analysis.Theme)
		r.sess.SetPalette(r.palette)
		if err != nil {
			return fmt.Errorf("palette extraction: %w", err)
		}
		return nil
	}
	r.palette = provider.DefaultPalette(r.analysis.Theme)
	r.sess.SetPalette(r.palette)
	return nil
}

func stepGenerateAssets(ctx context.Context, p *Pipeline, r *run) error {
	if p.collab.Assets == nil {
		return fmt.Errorf("no asset generator configured")
	}
	layers := r.analysis.AssetLayers
	if len(layers) == 0 {
		layers = defaultLayers[r.analysis.Mechanic]
	}
	theme := provider.ThemeConfig{
		Subject: r.analysis.Subject,
		Theme:   r.analysis.Theme,
		Palette: r.palette,
	}
	bundle, err := p.collab.Assets.Generate(ctx, theme, layers)
	if err != nil {
		return fmt.Errorf("asset generation: %w", err)
	}
	if bundle == nil || len(bundle.Layers) == 0 {
		return fmt.Errorf("asset generation produced no layers")
	}
	r.assets = bundle
	r.sess.SetAssets(bundle)
	if p.artifacts != nil {
		for name, img := range bundle.Layers {
			if img != nil {
				p.artifacts.SaveFile(r.sess.ID, name+".png", img.Data)
			}
		}
	}
	return nil
}

// stepRemoveBackgrounds processes each generated layer; a failing layer
// keeps its unprocessed image.
func stepRemoveBackgrounds(ctx context.Context, p *Pipeline, r *run) error {
	if p.collab.Backgrounds == nil || r.assets == nil {
		return nil
	}
	names := make([]string, 0, len(r.assets.Layers))
	for name := range r.assets.Layers {
		names = append(names, name)
	}
	sort.Strings(names)

	var lastErr error
	for _, name := range names {
		img := r.assets.Layers[name]
		if img == nil || len(img.Data) == 0 {
			continue
		}
		out, err := p.collab.Backgrounds.Remove(ctx, img.Data)
		if err != nil {
			lastErr = fmt.Errorf("background removal for %q: %w", name, err)
			continue
		}
		img.Data = out
		if p.artifacts != nil {
			p.artifacts.SaveFile(r.sess.ID, name+".png", out)
		}
	}
	return lastErr
}

// stepFindSounds is the sound sub-phase embedded in StateGeneratingAssets.
// Failures degrade to the local fallback set and are never surfaced.
func stepFindSounds(ctx context.Context, p *Pipeline, r *run) error {
	sounds := provider.FallbackSounds()
	if p.collab.Sounds != nil {
		found, err := p.collab.Sounds.FindSounds(ctx, r.analysis.Theme)
		if err != nil {
			p.logger.Warn("sound lookup degraded to fallback session_id=%s: %v", r.sess.ID, err)
		} else if len(found) > 0 {
			sounds = found
		}
	}
	if r.assets != nil {
		r.assets.Sounds = sounds
		r.sess.SetAssets(r.assets)
	}
	return r.sess.SetState(core.StateGeneratingAssets,
		core.WithProgress(68),
		core.WithMessage("Adding sound effects..."))
}

func stepGenerateCode(ctx context.Context, p *Pipeline, r *run) error {
	if p.collab.Code == nil {
		return fmt.Errorf("no code generator configured")
	}
	code, err := p.collab.Code.Generate(ctx, r.analysis, r.assets, r.palette)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("code generation produced empty output")
	}
	r.code = code
	return nil
}

func stepAssemble(ctx context.Context, p *Pipeline, r *run) error {
	if p.collab.Assembler == nil {
		return fmt.Errorf("no assembler configured")
	}
	art, err := p.collab.Assembler.Assemble(ctx, r.code, r.assets)
	if err != nil {
		return err
	}
	if art == nil || len(art.Data) == 0 {
		return fmt.Errorf("assembly produced empty artifact")
	}
	r.artifact = art
	if p.artifacts != nil {
		p.artifacts.SaveArtifact(r.sess.ID, art)
	}
	return nil
}
