// Package playforge provides a high-level façade over the session registry
// and the generation pipeline. Most applications interact with this package
// by:
//  1. Creating a Forge via New() with their collaborator set
//  2. Creating sessions per user request (CreateSession)
//  3. Running the pipeline (Run) while observing progress through session
//     listeners or the relay hub
//  4. Fetching the finished deliverable (Artifact)
//
// All defaults are safe for local development and testing; production
// deployments typically supply configured collaborators and a structured
// logger.
package playforge

import (
	"context"
	"time"

	"github.com/playforge/playforge/artifact"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/logging"
	"github.com/playforge/playforge/pipeline"
	"github.com/playforge/playforge/session"
)

// Options configures the Forge instance.
type Options struct {
	// SessionTTL bounds each session's lifetime from creation.
	SessionTTL time.Duration
	// MaxSessionsPerUser caps concurrent sessions per user; the oldest is
	// evicted to make room.
	MaxSessionsPerUser int
	// ReapInterval is the period of the background expiry sweep.
	ReapInterval time.Duration

	// Collaborators are the external services invoked by pipeline steps.
	Collaborators pipeline.Collaborators

	// Artifacts receives generated files and final deliverables (defaults
	// to a fresh in-memory store).
	Artifacts *artifact.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Forge is the high-level façade aggregating the session registry, the
// pipeline and the artifact store.
type Forge struct {
	opts      Options
	registry  *session.Registry
	pipeline  *pipeline.Pipeline
	artifacts *artifact.Store
}

// New creates a Forge with optional overrides.
func New(optFns ...func(o *Options)) *Forge {
	opts := Options{
		SessionTTL:         2 * time.Hour,
		MaxSessionsPerUser: 3,
		ReapInterval:       5 * time.Minute,
		Artifacts:          artifact.NewStore(),
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Artifacts == nil {
		opts.Artifacts = artifact.NewStore()
	}

	registry := session.NewRegistry(func(o *session.Options) {
		o.TTL = opts.SessionTTL
		o.MaxSessionsPerUser = opts.MaxSessionsPerUser
		o.ReapInterval = opts.ReapInterval
		o.Logger = opts.Logger
	})
	pipe := pipeline.New(opts.Collaborators, func(o *pipeline.Options) {
		o.Artifacts = opts.Artifacts
		o.Logger = opts.Logger
	})

	return &Forge{
		opts:      opts,
		registry:  registry,
		pipeline:  pipe,
		artifacts: opts.Artifacts,
	}
}

// CreateSession allocates a session for the given user. The user id may be
// a string, an integer or anything implementing fmt.Stringer; invalid ids
// fail with core.ErrInvalidUserID.
func (f *Forge) CreateSession(userID any) (*core.Session, error) {
	uid, err := core.ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	return f.registry.Create(uid)
}

// GetSession returns the live session for id, or core.ErrNotFound.
func (f *Forge) GetSession(id string) (*core.Session, error) {
	return f.registry.Get(id)
}

// DeleteSession removes the session and everything stored for it. An
// in-flight pipeline run for the session stops quietly. Idempotent.
func (f *Forge) DeleteSession(id string) {
	f.registry.Delete(id)
	f.artifacts.Drop(id)
}

// Run executes the generation pipeline for the session. At most one run per
// session is admitted; a second invocation fails with
// core.ErrPipelineActive.
func (f *Forge) Run(ctx context.Context, sessionID string, req pipeline.Request) error {
	sess, err := f.registry.Get(sessionID)
	if err != nil {
		return err
	}
	return f.pipeline.Run(ctx, sess, req)
}

// Artifact returns the session's finished deliverable, or
// artifact.ErrNotFound while the run has not completed.
func (f *Forge) Artifact(sessionID string) (*core.Artifact, error) {
	return f.artifacts.GetArtifact(sessionID)
}

// Artifacts exposes the underlying store for serving generated files.
func (f *Forge) Artifacts() *artifact.Store { return f.artifacts }

// Health reports the façade's operational snapshot.
type Health struct {
	// ActiveSessions is the number of live sessions in the registry.
	ActiveSessions int
	// Collaborators maps each pipeline collaborator to whether it is wired.
	Collaborators map[string]bool
}

// CheckHealth reports the number of active sessions and which collaborators
// are wired. Unwired optional collaborators are normal; their steps degrade.
func (f *Forge) CheckHealth() Health {
	c := f.opts.Collaborators
	return Health{
		ActiveSessions: f.registry.Len(),
		Collaborators: map[string]bool{
			"analyzer":           c.Analyzer != nil,
			"reference_search":   c.Reference != nil,
			"palette_extractor":  c.Palette != nil,
			"asset_generator":    c.Assets != nil,
			"background_remover": c.Backgrounds != nil,
			"sound_provider":     c.Sounds != nil,
			"code_generator":     c.Code != nil,
			"assembler":          c.Assembler != nil,
		},
	}
}

// Close stops the background reaper. Live sessions remain accessible.
func (f *Forge) Close() {
	f.registry.Close()
}
