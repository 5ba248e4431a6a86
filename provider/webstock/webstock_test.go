package webstock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", func(o *Options) { o.BaseURL = srv.URL })
}

func TestUnconfiguredClientDegrades(t *testing.T) {
	c := New("")
	assert.False(t, c.Configured())

	img, err := c.FindReference(context.Background(), "pirate")
	require.NoError(t, err)
	assert.Nil(t, img)

	set, err := c.FindSounds(context.Background(), "ocean")
	require.NoError(t, err)
	require.Len(t, set, 4)
	assert.True(t, set["spin"].Fallback)
}

func TestFindReference(t *testing.T) {
	var imageURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/search":
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "pirate ship", r.URL.Query().Get("query"))
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{{"name": "ship", "url": imageURL}},
			})
		case "/image.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpeg-bytes"))
		default:
			http.NotFound(w, r)
		}
	})
	imageURL = c.baseURL + "/image.jpg"

	img, err := c.FindReference(context.Background(), "pirate ship")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, []byte("jpeg-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIME)
	assert.Equal(t, imageURL, img.SourceURL)
}

func TestFindReferenceNoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	img, err := c.FindReference(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestFindReferenceServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FindReference(context.Background(), "pirate")
	assert.Error(t, err)
}

func TestFindSoundsOverridesFallbacks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sounds/search", r.URL.Path)
		if r.URL.Query().Get("query") == "ocean spin" {
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{{"name": "waves", "url": "https://cdn/waves.mp3"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	set, err := c.FindSounds(context.Background(), "ocean")
	require.NoError(t, err)
	require.Len(t, set, 4)

	assert.Equal(t, "waves", set["spin"].Name)
	assert.Equal(t, "https://cdn/waves.mp3", set["spin"].URL)
	assert.False(t, set["spin"].Fallback)
	// Categories without a hit keep their fallback refs.
	assert.True(t, set["win"].Fallback)
	assert.True(t, set["click"].Fallback)
}
