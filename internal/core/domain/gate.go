package domain

// Fixed admission and gating constants. These are product decisions carried
// from the original thresholds, deliberately not configurable.
const (
	// Analysis guard.
	MinAnalysisDocuments = 2
	MinTotalRawChars     = 1200
	// Avg extracted chars per document under which a set with stored blobs
	// is treated as scanned without an OCR layer.
	SuspectedScannedAvgChars = 200

	// Confidence cap applied to displayed probabilities when extraction
	// quality is below the guard floor but existing strategy data is shown.
	LowExtractionConfidenceCap = 65
)

// GateDecision is the probability gate's verdict. Show=false always carries
// a reason; Show=true never does.
type GateDecision struct {
	Show   bool   `json:"show"`
	Reason string `json:"reason,omitempty"`
}

// AnalysisAdmission is the analysis guard's verdict for a case document set.
// Denials carry a user-facing banner; diagnostics are always populated.
type AnalysisAdmission struct {
	CanGenerateAnalysis bool                `json:"can_generate_analysis"`
	Banner              string              `json:"banner,omitempty"`
	Diagnostics         DocumentDiagnostics `json:"diagnostics"`
}

// GateError converts a denied admission into the typed gate signal.
// Returns nil for admitted sets.
func (a AnalysisAdmission) GateError() *AnalysisGateError {
	if a.CanGenerateAnalysis {
		return nil
	}
	return &AnalysisGateError{Banner: a.Banner, Diagnostics: a.Diagnostics}
}
