package domain

// InferredAngle is the raw, untrusted shape returned by the generative
// collaborator. AngleType is a free string here; the fallback usecase maps
// it onto the closed catalogue before anything downstream sees it.
type InferredAngle struct {
	AngleType string `json:"angle_type"`
	Title     string `json:"title"`
	Severity  string `json:"severity"`
	Rationale string `json:"rationale"`
}
