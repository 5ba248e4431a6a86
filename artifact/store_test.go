package artifact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/playforge/core"
)

func TestStoreFiles(t *testing.T) {
	s := NewStore()

	_, err := s.GetFile("sess-1", "wheel.png")
	assert.ErrorIs(t, err, ErrNotFound)

	data := []byte{1, 2, 3}
	s.SaveFile("sess-1", "wheel.png", data)

	got, err := s.GetFile("sess-1", "wheel.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Stored bytes are isolated from caller mutation on both sides.
	data[0] = 9
	got[1] = 9
	again, err := s.GetFile("sess-1", "wheel.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)

	// Overwrite.
	s.SaveFile("sess-1", "wheel.png", []byte{7})
	got, err = s.GetFile("sess-1", "wheel.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, got)
}

func TestStoreList(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.List("sess-1"))

	s.SaveFile("sess-1", "wheel.png", []byte{1})
	s.SaveFile("sess-1", "button.png", []byte{2})
	s.SaveFile("sess-2", "card.png", []byte{3})

	assert.Equal(t, []string{"button.png", "wheel.png"}, s.List("sess-1"))
	assert.Equal(t, []string{"card.png"}, s.List("sess-2"))
}

func TestStoreArtifact(t *testing.T) {
	s := NewStore()

	_, err := s.GetArtifact("sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	art := &core.Artifact{Name: "game.html", MIME: "text/html", Data: []byte("<html>"), CreatedAt: time.Now()}
	s.SaveArtifact("sess-1", art)

	got, err := s.GetArtifact("sess-1")
	require.NoError(t, err)
	assert.Same(t, art, got)
}

func TestStoreDrop(t *testing.T) {
	s := NewStore()
	s.SaveFile("sess-1", "wheel.png", []byte{1})
	s.SaveArtifact("sess-1", &core.Artifact{Name: "game.html"})

	s.Drop("sess-1")

	_, err := s.GetFile("sess-1", "wheel.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetArtifact("sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Idempotent.
	s.Drop("sess-1")
}
