// Package assemble implements the final assembly collaborator: it packages
// generated markup and assets into one self-contained HTML document, with
// images inlined as data URIs under window.__ASSETS__.
package assemble

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/playforge/playforge/core"
)

// Assembler implements provider.Assembler locally.
type Assembler struct{}

// New returns a new Assembler.
func New() *Assembler { return &Assembler{} }

// Assemble implements provider.Assembler. The generated code is expected to
// be a full HTML document; the asset manifest script is injected ahead of
// it so window.__ASSETS__ is populated before the game script runs.
func (a *Assembler) Assemble(_ context.Context, code string, assets *core.AssetBundle) (*core.Artifact, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("assembly: no code to package")
	}

	manifest, err := buildManifest(assets)
	if err != nil {
		return nil, fmt.Errorf("assembly: %w", err)
	}

	doc := injectManifest(code, manifest)
	return &core.Artifact{
		Name:      "game.html",
		MIME:      "text/html",
		Data:      []byte(doc),
		CreatedAt: time.Now(),
	}, nil
}

// buildManifest renders the asset bundle as a script tag assigning
// window.__ASSETS__. A nil bundle yields an empty manifest so code-only
// mechanics still get a defined object.
func buildManifest(assets *core.AssetBundle) (string, error) {
	payload := map[string]any{}
	if assets != nil {
		for name, img := range assets.Layers {
			if img == nil || len(img.Data) == 0 {
				continue
			}
			mime := img.MIME
			if mime == "" {
				mime = "image/png"
			}
			payload[name] = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
		}
		if len(assets.Sounds) > 0 {
			payload["sounds"] = assets.Sounds
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "<script>window.__ASSETS__=" + string(data) + ";</script>", nil
}

// injectManifest places the manifest directly after <head> when the code is
// a full document, otherwise wraps the fragment in a minimal page.
func injectManifest(code, manifest string) string {
	lower := strings.ToLower(code)
	if i := strings.Index(lower, "<head>"); i >= 0 {
		at := i + len("<head>")
		return code[:at] + "\n" + manifest + code[at:]
	}
	if strings.Contains(lower, "<html") {
		// Document without a head: prepend the manifest.
		return manifest + "\n" + code
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n" +
		manifest + "\n</head>\n<body>\n" + code + "\n</body>\n</html>\n"
}
