package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/playforge/playforge/artifact"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/logging"
	"github.com/playforge/playforge/provider"
)

// Request is the payload driving one generation run.
type Request struct {
	// Prompt is the free-text description of the desired game.
	Prompt string
	// Image is an optional reference image supplied by the user.
	Image []byte
	// Mechanic optionally forces the mechanic instead of the analyzer's pick.
	Mechanic core.Mechanic
}

// Collaborators bundles the external services invoked by the steps.
// Analyzer, Code and Assembler are required; the rest are optional and
// their steps degrade to fallbacks when unset.
type Collaborators struct {
	Analyzer    provider.Analyzer
	Reference   provider.ReferenceSearcher
	Palette     provider.PaletteExtractor
	Assets      provider.AssetGenerator
	Backgrounds provider.BackgroundRemover
	Sounds      provider.SoundProvider
	Code        provider.CodeGenerator
	Assembler   provider.Assembler
}

// Options holds construction overrides for New.
type Options struct {
	// Artifacts receives generated layer files and the final deliverable.
	Artifacts *artifact.Store
	// Logger receives step and degradation messages.
	Logger logging.Logger
}

// Pipeline sequences collaborator calls for a session, advancing its state
// after each step. Safe for concurrent use across sessions; per-session
// serialization is enforced by the session's run guard.
type Pipeline struct {
	collab    Collaborators
	artifacts *artifact.Store
	logger    logging.Logger
}

// New constructs a Pipeline with optional overrides.
func New(collab Collaborators, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		Artifacts: artifact.NewStore(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Pipeline{collab: collab, artifacts: opts.Artifacts, logger: opts.Logger}
}

// Artifacts returns the store receiving generated outputs.
func (p *Pipeline) Artifacts() *artifact.Store { return p.artifacts }

// Run drives sess through the pipeline for req. At most one run per session
// is admitted: a second invocation against a session past StateIdle fails
// with core.ErrPipelineActive without mutating state. Fatal step failures
// are recorded as a StateError transition and returned; degradable failures
// are logged and substituted. Deleting the session mid-run stops the
// remaining steps quietly.
func (p *Pipeline) Run(ctx context.Context, sess *core.Session, req Request) error {
	if sess == nil {
		return core.ErrNotFound
	}
	if err := sess.Begin(); err != nil {
		return err
	}
	defer sess.End()

	r := &run{sess: sess, req: req}

	// Analysis always runs first and is always fatal: its result fixes the
	// mechanic and therefore the rest of the plan.
	if err := sess.SetState(core.StateAnalyzing, core.WithProgress(5)); err != nil {
		return err
	}
	started := time.Now()
	analysis, err := p.collab.Analyzer.Analyze(ctx, req.Prompt, req.Image)
	if err != nil {
		p.logStep("analyze", time.Since(started), false, err)
		return p.fail(sess, err)
	}
	if analysis == nil || analysis.Subject == "" {
		err := &provider.AnalysisError{Reason: "unusable analysis result"}
		return p.fail(sess, err)
	}
	p.logStep("analyze", time.Since(started), true, nil)

	if req.Mechanic != "" {
		analysis.Mechanic = req.Mechanic
	}
	if !analysis.Mechanic.Valid() {
		analysis.Mechanic = core.MechanicWheel
	}
	r.analysis = analysis
	sess.SetAnalysis(analysis)

	for _, st := range planFor(analysis.Mechanic) {
		if err := ctx.Err(); err != nil {
			return p.fail(sess, err)
		}
		if sess.Closed() {
			p.logger.Debug("session deleted mid-run, stopping session_id=%s", sess.ID)
			return nil
		}
		if err := p.enter(sess, st); err != nil {
			return err
		}
		started := time.Now()
		err := st.run(ctx, p, r)
		p.logStep(string(st.state), time.Since(started), err == nil, err)
		if err == nil {
			continue
		}
		if st.fatal {
			return p.fail(sess, err)
		}
		p.logger.Warn("step %s degraded session_id=%s: %v", st.state, sess.ID, err)
	}

	if sess.Closed() {
		return nil
	}
	return sess.SetState(core.StateComplete)
}

// enter transitions into a step's state with its declared progress.
func (p *Pipeline) enter(sess *core.Session, st step) error {
	err := sess.SetState(st.state, core.WithProgress(st.progress))
	if err != nil {
		// Transition table and plan ordering make this unreachable in a valid
		// plan; surface it rather than continuing with a desynced session.
		return fmt.Errorf("entering %s: %w", st.state, err)
	}
	return nil
}

// logStep routes step metrics to the ForgeLogger helper when one is wired,
// otherwise falls back to plain leveled messages.
func (p *Pipeline) logStep(step string, dur time.Duration, success bool, err error) {
	if fl, ok := p.logger.(*logging.ForgeLogger); ok {
		fl.LogStep(step, dur, success, err)
		return
	}
	if success {
		p.logger.Debug("step %s completed in %s", step, dur)
	} else {
		p.logger.Warn("step %s failed after %s: %v", step, dur, err)
	}
}

// fail records err as the session's terminal error, preserving the
// collaborator's message verbatim, and returns it.
func (p *Pipeline) fail(sess *core.Session, err error) error {
	if serr := sess.SetState(core.StateError, core.WithError(err.Error())); serr != nil {
		p.logger.Error("failed to record pipeline error session_id=%s: %v", sess.ID, serr)
	}
	return err
}
