package core

// State enumerates the lifecycle of a generation session, in pipeline order.
type State string

const (
	// StateIdle is the initial state of a freshly created session.
	StateIdle State = "idle"
	// StateAnalyzing covers the request analysis step.
	StateAnalyzing State = "analyzing"
	// StateFetchingReference covers the reference imagery lookup.
	StateFetchingReference State = "fetching_reference"
	// StateExtractingPalette covers color palette extraction.
	StateExtractingPalette State = "extracting_palette"
	// StateGeneratingAssets covers visual asset generation, including the
	// embedded sound sub-phase that re-enters this state late in the run.
	StateGeneratingAssets State = "generating_assets"
	// StateRemovingBackgrounds covers background removal post-processing.
	StateRemovingBackgrounds State = "removing_backgrounds"
	// StateGeneratingCode covers markup/script generation.
	StateGeneratingCode State = "generating_code"
	// StateAssembling covers final artifact assembly.
	StateAssembling State = "assembling"
	// StateComplete is terminal: the deliverable is ready.
	StateComplete State = "complete"
	// StateError is terminal: the run failed at a fatal step.
	StateError State = "error"
)

// transitions is the legal transition table. Re-entry into the same state is
// allowed for every non-terminal state so a step can refine its progress.
// GeneratingAssets and RemovingBackgrounds admit each other in both
// directions because the sound sub-phase interleaves with post-processing.
// StateError is reachable from every non-terminal state; nothing leaves a
// terminal state.
var transitions = map[State][]State{
	StateIdle:                {StateAnalyzing},
	StateAnalyzing:           {StateAnalyzing, StateFetchingReference, StateExtractingPalette, StateGeneratingAssets, StateGeneratingCode},
	StateFetchingReference:   {StateFetchingReference, StateExtractingPalette, StateGeneratingAssets},
	StateExtractingPalette:   {StateExtractingPalette, StateGeneratingAssets, StateGeneratingCode},
	StateGeneratingAssets:    {StateGeneratingAssets, StateRemovingBackgrounds, StateGeneratingCode},
	StateRemovingBackgrounds: {StateRemovingBackgrounds, StateGeneratingAssets, StateGeneratingCode},
	StateGeneratingCode:      {StateGeneratingCode, StateAssembling},
	StateAssembling:          {StateAssembling, StateComplete},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StateError {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions may leave the state.
func IsTerminal(s State) bool {
	return s == StateComplete || s == StateError
}

// ProgressRange is the advisory progress window a state reports within.
// Ranges overlap where sub-phases interleave; only monotonicity is enforced.
type ProgressRange struct {
	Min int
	Max int
}

var progressRanges = map[State]ProgressRange{
	StateAnalyzing:           {5, 10},
	StateFetchingReference:   {10, 20},
	StateExtractingPalette:   {20, 30},
	StateGeneratingAssets:    {30, 70},
	StateRemovingBackgrounds: {55, 65},
	StateGeneratingCode:      {70, 90},
	StateAssembling:          {90, 95},
	StateComplete:            {100, 100},
}

// RangeFor returns the advisory progress range for a state. States without a
// range (idle, error) report a zero range.
func RangeFor(s State) ProgressRange {
	return progressRanges[s]
}

// DefaultProgress returns the progress reported on entry into a state when
// the caller supplies none: the floor of its range. Entering StateError
// yields 0 so the session keeps whatever progress it had reached.
func DefaultProgress(s State) int {
	return progressRanges[s].Min
}

// StateMessage produces the user-facing status line for a state. For
// StateError the stored error text is embedded; clients display this string
// verbatim, so the wording is part of the contract.
func StateMessage(s State, errText string) string {
	switch s {
	case StateIdle:
		return "Waiting to start"
	case StateAnalyzing:
		return "Analyzing your request..."
	case StateFetchingReference:
		return "Finding reference imagery..."
	case StateExtractingPalette:
		return "Extracting color palette..."
	case StateGeneratingAssets:
		return "Generating visual assets..."
	case StateRemovingBackgrounds:
		return "Removing backgrounds..."
	case StateGeneratingCode:
		return "Generating game code..."
	case StateAssembling:
		return "Assembling your game..."
	case StateComplete:
		return "Your game is ready!"
	case StateError:
		return "Generation failed: " + errText
	default:
		return string(s)
	}
}
