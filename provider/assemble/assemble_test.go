package assemble

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/playforge/core"
)

func TestAssembleInjectsManifest(t *testing.T) {
	bundle := &core.AssetBundle{
		Layers: map[string]*core.Image{
			"wheel": {Data: []byte{1, 2, 3}, MIME: "image/png"},
		},
		Sounds: core.SoundSet{
			"spin": {Category: "spin", Name: "spin", URL: "sounds/spin.mp3", Fallback: true},
		},
	}
	code := "<html><head><title>Game</title></head><body></body></html>"

	art, err := New().Assemble(context.Background(), code, bundle)
	require.NoError(t, err)

	assert.Equal(t, "game.html", art.Name)
	assert.Equal(t, "text/html", art.MIME)
	assert.False(t, art.CreatedAt.IsZero())

	doc := string(art.Data)
	assert.Contains(t, doc, "window.__ASSETS__=")
	assert.Contains(t, doc, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
	assert.Contains(t, doc, "sounds/spin.mp3")
	// Manifest sits inside head, before the game script runs.
	assert.Less(t, strings.Index(doc, "window.__ASSETS__"), strings.Index(doc, "<body>"))
}

func TestAssembleWrapsFragment(t *testing.T) {
	art, err := New().Assemble(context.Background(), "<div id=\"loader\"></div>", nil)
	require.NoError(t, err)

	doc := string(art.Data)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "window.__ASSETS__={}")
	assert.Contains(t, doc, "<div id=\"loader\"></div>")
}

func TestAssembleSkipsEmptyLayers(t *testing.T) {
	bundle := &core.AssetBundle{
		Layers: map[string]*core.Image{
			"wheel": {Data: []byte{1}, MIME: "image/png"},
			"empty": {},
			"nil":   nil,
		},
	}
	art, err := New().Assemble(context.Background(), "<html><head></head></html>", bundle)
	require.NoError(t, err)

	doc := string(art.Data)
	assert.Contains(t, doc, "\"wheel\"")
	assert.NotContains(t, doc, "\"empty\"")
	assert.NotContains(t, doc, "\"nil\"")
}

func TestAssembleRejectsEmptyCode(t *testing.T) {
	_, err := New().Assemble(context.Background(), "   \n", nil)
	assert.Error(t, err)
}
