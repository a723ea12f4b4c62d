package domain

import "time"

type Stage string

const (
	StagePre  Stage = "pre"
	StagePost Stage = "post"
	StageBoth Stage = "both"
)

// ParseStage falls back to StageBoth for unknown values.
func ParseStage(s string) Stage {
	switch Stage(s) {
	case StagePre, StagePost, StageBoth:
		return Stage(s)
	default:
		return StageBoth
	}
}

// RunsPost reports whether post-correction applies to the stage.
func (s Stage) RunsPost() bool {
	return s == StagePost || s == StageBoth
}

// KNoteState is the outcome of format enforcement for one candidate.
type KNoteState string

const (
	// KNoteUnchanged: no qualifying hint or no locatable span.
	KNoteUnchanged KNoteState = "unchanged"
	// KNoteAligned: the candidate already announced the phrase on line 1;
	// only its second line was given a connector.
	KNoteAligned KNoteState = "noted_aligned"
	// KNoteSynthesized: the canonical line was written by the enforcer and
	// prepended to the candidate.
	KNoteSynthesized KNoteState = "noted_synthesized"
)

type CorrectionResult struct {
	FinalText      string        `json:"final_text"`
	RawText        string        `json:"raw_text"`
	HintsUsed      []Hint        `json:"hints_used"`
	KNote          KNoteState    `json:"k_note"`
	Candidates     []Candidate   `json:"candidates,omitempty"`
	Model          string        `json:"model_used"`
	ProcessingTime time.Duration `json:"-"`
}

// GenerationRequest is what the core hands to the external generation engine.
type GenerationRequest struct {
	SystemPrompt string
	UserText     string
	N            int
	// Suppress lists phrases the generator must not emit verbatim.
	Suppress []string
}

type IndexStats struct {
	Entries     int  `json:"entries"`
	Vocabulary  int  `json:"vocabulary"`
	WithContext bool `json:"with_context"`
	Loaded      bool `json:"loaded"`
}
