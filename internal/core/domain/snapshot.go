package domain

import "time"

// AnalysisRun is the persisted record of one precomputed analysis pass.
type AnalysisRun struct {
	ID             string          `json:"id"`
	CaseID         string          `json:"case_id"`
	OrgID          string          `json:"org_id"`
	Fingerprint    string          `json:"fingerprint"`
	Score          int             `json:"score"`
	CapabilityTier CapabilityTier  `json:"capability_tier"`
	Report         *StrategyReport `json:"report,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CaseSnapshot is the composed read model exposed to callers. The two
// visibility booleans are independent by design: CanShowFull concerns the
// existence of strategy data, not numeric confidence in it, which stays
// gated per angle. Collapsing them into one "ready" flag produced incorrect
// displays in the past and must not happen again.
type CaseSnapshot struct {
	Case      CaseFile          `json:"case"`
	Charges   []Charge          `json:"charges"`
	Hearings  []Hearing         `json:"hearings"`
	Documents []DocumentSummary `json:"documents"`

	Evidence  []EvidenceItem     `json:"evidence"`
	Coverage  BundleCompleteness `json:"coverage"`
	Admission AnalysisAdmission  `json:"admission"`
	Strategy  *StrategyReport    `json:"strategy,omitempty"`
	Options   *OptionAssessment  `json:"options,omitempty"`
	PriorRun  *AnalysisRun       `json:"prior_run,omitempty"`

	CanShowPreview bool `json:"can_show_preview"`
	CanShowFull    bool `json:"can_show_full"`
	// ConfidenceCap bounds any displayed probability; 100 unless extraction
	// quality was below the guard floor.
	ConfidenceCap int `json:"confidence_cap"`
}

// DocumentSummary is the snapshot's lightweight document view; raw text never
// leaves the engine through the snapshot.
type DocumentSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MimeType   string     `json:"mime_type"`
	TextStatus TextStatus `json:"text_status"`
	RawChars   int        `json:"raw_chars"`
}
