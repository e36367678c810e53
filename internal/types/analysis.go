package types

import (
	"github.com/google/uuid"

	"github.com/halsokollen/ingredicheck/backend/internal/reference"
)

// Dataset identifies which reference dataset a piece of evidence came from.
type Dataset string

const (
	DatasetSubstanceGuide Dataset = "substance_guide"
	DatasetNovelFood      Dataset = "novel_food"
)

// MatchKind describes how a search term was associated with a reference
// entry, ordered roughly by decreasing reliability.
type MatchKind string

const (
	MatchExact           MatchKind = "exact"
	MatchKnownSafe       MatchKind = "known_safe"
	MatchTranslatedExact MatchKind = "translated_exact"
	MatchSemantic        MatchKind = "semantic"
	MatchFuzzyAuto       MatchKind = "fuzzy_auto"
	MatchFuzzyManual     MatchKind = "fuzzy_manual"
	MatchUserSelected    MatchKind = "user_selected"
)

// Status is the regulatory verdict for one ingredient.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusDanger  Status = "danger"
	StatusUnknown Status = "unknown"
)

// Translation is the outcome of a translation collaborator call.
type Translation struct {
	OriginalText     string `json:"original_text"`
	TranslatedText   string `json:"translated_text"`
	DetectedLanguage string `json:"detected_language"`
}

// MatchEvidence is one candidate association between a search term and a
// reference entry. Evidence is append-only: once created it is never edited.
type MatchEvidence struct {
	Term       string    `json:"term"`
	Dataset    Dataset   `json:"dataset"`
	Kind       MatchKind `json:"kind"`
	Confidence int       `json:"confidence"`

	EntryID   string `json:"entry_id"`
	EntryName string `json:"entry_name"`

	// Substance guide attributes.
	IsMedicine bool   `json:"is_medicine,omitempty"`
	Comment    string `json:"comment,omitempty"`

	// Novel food attributes.
	NovelFoodStatus reference.NovelFoodStatus `json:"novel_food_status,omitempty"`

	// Translation provenance, set on translated_exact evidence.
	TranslatedFrom string `json:"translated_from,omitempty"`
	TranslatedTo   string `json:"translated_to,omitempty"`
}

// FuzzyCandidate is one shortlist entry offered for user disambiguation.
type FuzzyCandidate struct {
	Dataset     Dataset `json:"dataset"`
	EntryID     string  `json:"entry_id"`
	EntryName   string  `json:"entry_name"`
	MatchedText string  `json:"matched_text"`
	Confidence  int     `json:"confidence"`
}

// Resolution is the full evidence bundle the cascade produced for one
// ingredient entry.
type Resolution struct {
	PharmaMatches []MatchEvidence `json:"pharma_matches"`
	NovelMatches  []MatchEvidence `json:"novel_matches"`

	// Candidates is the fuzzy shortlist when no tier produced a match but
	// plausible near-misses exist.
	Candidates []FuzzyCandidate `json:"candidates,omitempty"`
	// NeedsSelection distinguishes "ambiguous, pick one" from "no match".
	NeedsSelection bool `json:"needs_selection"`

	// AttemptedTranslation records a translation that yielded no match, so
	// the rationale can surface it.
	AttemptedTranslation *Translation `json:"attempted_translation,omitempty"`
}

// LabelOverride is the community verdict the core receives as its effective
// override: the top net-vote-ranked label, already resolved by the store.
type LabelOverride struct {
	ID          uuid.UUID `json:"id"`
	Status      Status    `json:"status"`
	CustomText  string    `json:"custom_text,omitempty"`
	CustomColor string    `json:"custom_color,omitempty"`
	NetVotes    int       `json:"net_votes"`
}

// Verdict is the classifier output.
type Verdict struct {
	Status     Status `json:"status"`
	StatusText string `json:"status_text"`
	Rationale  string `json:"rationale,omitempty"`
}

// ClassificationResult is the per-ingredient outcome returned to callers.
type ClassificationResult struct {
	Ingredient    string   `json:"ingredient"`
	MainName      string   `json:"main_name"`
	Parenthetical string   `json:"parenthetical,omitempty"`
	SearchTerms   []string `json:"search_terms"`

	Status     Status `json:"status"`
	StatusText string `json:"status_text"`
	Rationale  string `json:"rationale,omitempty"`

	Evidence       Resolution     `json:"evidence"`
	HasManualLabel bool           `json:"has_manual_label"`
	TopLabel       *LabelOverride `json:"top_label,omitempty"`
}

// AnalysisOverrides are the per-request knobs callers may override.
type AnalysisOverrides struct {
	EnableTranslation    *bool `json:"enable_translation,omitempty"`
	FuzzyConfidenceFloor *int  `json:"fuzzy_confidence_floor,omitempty"`
	AutoAcceptThreshold  *int  `json:"auto_accept_threshold,omitempty"`
}

// Progress is a coarse user-facing progress signal: entries classified so
// far out of the run's total.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
