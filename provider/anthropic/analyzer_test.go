package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{"subject": "pirate treasure", "mechanic": "wheel", "theme": "ocean",
	"asset_layers": ["wheel", "pointer"], "confidence": 0.92}`

	analysis, err := parseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "pirate treasure", analysis.Subject)
	assert.Equal(t, core.MechanicWheel, analysis.Mechanic)
	assert.Equal(t, "ocean", analysis.Theme)
	assert.Equal(t, []string{"wheel", "pointer"}, analysis.AssetLayers)
	assert.InDelta(t, 0.92, analysis.Confidence, 1e-9)
}

func TestParseAnalysisToleratesProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" +
		`{"subject": "candy drop", "mechanic": "box", "theme": "candy", "confidence": 0.8}` +
		"\n```\nLet me know if you need anything else."

	analysis, err := parseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "candy drop", analysis.Subject)
	assert.Equal(t, core.MechanicBox, analysis.Mechanic)
}

func TestParseAnalysisUnknownMechanicDefaultsToWheel(t *testing.T) {
	raw := `{"subject": "spinner", "mechanic": "roulette", "theme": "neon", "confidence": 0.5}`

	analysis, err := parseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, core.MechanicWheel, analysis.Mechanic)
}

func TestParseAnalysisFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON", "sorry, I cannot help with that"},
		{"malformed JSON", `{"subject": "x", "confidence": }`},
		{"missing subject", `{"mechanic": "wheel", "theme": "ocean"}`},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnalysis(tt.raw)
			var aerr *provider.AnalysisError
			require.ErrorAs(t, err, &aerr)
		})
	}
}
