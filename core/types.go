package core

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a collision-free identifier for sessions and events.
func NewID() string { return uuid.NewString() }

// Mechanic is the category of deliverable being generated. It determines
// which pipeline steps run for a session.
type Mechanic string

const (
	// MechanicWheel is a spinning prize wheel game.
	MechanicWheel Mechanic = "wheel"
	// MechanicBox is a box-reveal game.
	MechanicBox Mechanic = "box"
	// MechanicScratch is a scratch-card game.
	MechanicScratch Mechanic = "scratch"
	// MechanicLoader is a code-only animated loader; it skips asset steps.
	MechanicLoader Mechanic = "loader"
)

// Valid reports whether m is a known mechanic.
func (m Mechanic) Valid() bool {
	switch m {
	case MechanicWheel, MechanicBox, MechanicScratch, MechanicLoader:
		return true
	}
	return false
}

// CodeOnly reports whether the mechanic needs no generated imagery.
func (m Mechanic) CodeOnly() bool { return m == MechanicLoader }

// Analysis is the structured interpretation of a generation request produced
// by the analyzer collaborator. It is the first result slot populated on a
// session and is included in every subsequent state event snapshot.
type Analysis struct {
	Subject     string   `json:"subject"`
	Mechanic    Mechanic `json:"mechanic"`
	Theme       string   `json:"theme"`
	AssetLayers []string `json:"asset_layers,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// Palette holds the four hex colors driving asset and code generation.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
}

// Image is a generated or fetched image payload.
type Image struct {
	Data      []byte `json:"-"`
	MIME      string `json:"mime"`
	SourceURL string `json:"source_url,omitempty"`
}

// SoundRef points at an audio asset for one category (spin, win, ...).
// Fallback marks refs substituted from the local set.
type SoundRef struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Fallback bool   `json:"fallback,omitempty"`
}

// SoundSet maps sound categories to their resolved references.
type SoundSet map[string]SoundRef

// AssetBundle collects the per-layer images and sounds generated for a
// session. Layers is keyed by layer name ("wheel", "pointer", ...).
type AssetBundle struct {
	Layers map[string]*Image `json:"layers"`
	Sounds SoundSet          `json:"sounds,omitempty"`
}

// Artifact is the final assembled deliverable.
type Artifact struct {
	Name      string    `json:"name"`
	MIME      string    `json:"mime"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
