package playforge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/playforge/artifact"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/pipeline"
	"github.com/playforge/playforge/provider"
)

func testCollaborators() pipeline.Collaborators {
	return pipeline.Collaborators{
		Analyzer: provider.AnalyzerFunc(func(ctx context.Context, prompt string, image []byte) (*core.Analysis, error) {
			return &core.Analysis{Subject: "css loader", Mechanic: core.MechanicLoader, Theme: "neon"}, nil
		}),
		Code: provider.CodeGeneratorFunc(func(ctx context.Context, analysis *core.Analysis, assets *core.AssetBundle, palette *core.Palette) (string, error) {
			return "<html><head></head><body>loader</body></html>", nil
		}),
		Assembler: provider.AssemblerFunc(func(ctx context.Context, code string, assets *core.AssetBundle) (*core.Artifact, error) {
			return &core.Artifact{Name: "game.html", MIME: "text/html", Data: []byte(code), CreatedAt: time.Now()}, nil
		}),
	}
}

func newTestForge() *Forge {
	return New(func(o *Options) {
		o.Collaborators = testCollaborators()
		o.ReapInterval = 0
	})
}

func TestForgeSessionLifecycle(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	sess, err := f.CreateSession("alice")
	require.NoError(t, err)
	assert.Equal(t, core.StateIdle, sess.State())

	got, err := f.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	f.DeleteSession(sess.ID)
	_, err = f.GetSession(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, sess.Closed())

	// Idempotent.
	f.DeleteSession(sess.ID)
}

func TestForgeCreateSessionNormalizesUserIDs(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	sess, err := f.CreateSession(42)
	require.NoError(t, err)
	assert.Equal(t, core.UserID("42"), sess.UserID)

	sess, err = f.CreateSession(float64(7))
	require.NoError(t, err)
	assert.Equal(t, core.UserID("7"), sess.UserID)

	_, err = f.CreateSession("")
	assert.ErrorIs(t, err, core.ErrInvalidUserID)
	_, err = f.CreateSession(3.14)
	assert.ErrorIs(t, err, core.ErrInvalidUserID)
}

func TestForgeRun(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	sess, err := f.CreateSession("alice")
	require.NoError(t, err)

	_, err = f.Artifact(sess.ID)
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	require.NoError(t, f.Run(context.Background(), sess.ID, pipeline.Request{Prompt: "css loader"}))
	assert.Equal(t, core.StateComplete, sess.State())
	assert.Equal(t, 100, sess.Progress())

	art, err := f.Artifact(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "game.html", art.Name)
	assert.Equal(t, "text/html", art.MIME)

	// A second run against the same session is rejected.
	err = f.Run(context.Background(), sess.ID, pipeline.Request{Prompt: "again"})
	assert.ErrorIs(t, err, core.ErrPipelineActive)
}

func TestForgeRunUnknownSession(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	err := f.Run(context.Background(), "no-such-id", pipeline.Request{Prompt: "spin"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestForgeDeleteDropsArtifacts(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	sess, err := f.CreateSession("alice")
	require.NoError(t, err)
	require.NoError(t, f.Run(context.Background(), sess.ID, pipeline.Request{Prompt: "loader"}))

	f.DeleteSession(sess.ID)
	_, err = f.Artifact(sess.ID)
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestForgeCheckHealth(t *testing.T) {
	f := newTestForge()
	defer f.Close()

	_, err := f.CreateSession("alice")
	require.NoError(t, err)
	_, err = f.CreateSession("bob")
	require.NoError(t, err)

	h := f.CheckHealth()
	assert.Equal(t, 2, h.ActiveSessions)
	assert.True(t, h.Collaborators["analyzer"])
	assert.True(t, h.Collaborators["code_generator"])
	assert.True(t, h.Collaborators["assembler"])
	assert.False(t, h.Collaborators["reference_search"])
	assert.False(t, h.Collaborators["asset_generator"])
	assert.False(t, h.Collaborators["background_remover"])
	assert.False(t, h.Collaborators["sound_provider"])
	assert.False(t, h.Collaborators["palette_extractor"])
}

func TestForgeSessionQuota(t *testing.T) {
	f := New(func(o *Options) {
		o.Collaborators = testCollaborators()
		o.MaxSessionsPerUser = 1
		o.ReapInterval = 0
	})
	defer f.Close()

	first, err := f.CreateSession("alice")
	require.NoError(t, err)
	second, err := f.CreateSession("alice")
	require.NoError(t, err)

	_, err = f.GetSession(first.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.GetSession(second.ID)
	assert.NoError(t, err)
}
