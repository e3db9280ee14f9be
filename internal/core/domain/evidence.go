package domain

type EvidenceStatus string

const (
	EvidencePresent EvidenceStatus = "present"
	EvidencePartial EvidenceStatus = "partial"
	EvidenceMissing EvidenceStatus = "missing"
	EvidenceUnknown EvidenceStatus = "unknown"
)

// EvidenceCategory names one of the fixed evidence dimensions the signal
// extractor scans for. The set is closed; the scorer treats every category
// uniformly.
type EvidenceCategory string

const (
	EvidenceChargeSheet        EvidenceCategory = "charge_sheet"
	EvidenceWitnessStatements  EvidenceCategory = "witness_statements"
	EvidenceIdentification     EvidenceCategory = "identification"
	EvidenceCCTV               EvidenceCategory = "cctv"
	EvidenceBodyWornVideo      EvidenceCategory = "body_worn_video"
	EvidenceInterviewRecord    EvidenceCategory = "interview_record"
	EvidenceCustodyRecord      EvidenceCategory = "custody_record"
	EvidenceDisclosureSchedule EvidenceCategory = "disclosure_schedule"
	EvidenceForensics          EvidenceCategory = "forensic_exhibits"
	EvidenceMedical            EvidenceCategory = "medical_evidence"
	EvidenceDigitalDevices     EvidenceCategory = "digital_devices"
	EvidenceContinuity         EvidenceCategory = "exhibit_continuity"
)

// EvidenceItem is the extractor's verdict for one category. Supporting
// evidence carries the literal matched phrases or document names so a user
// can see why the category was marked.
type EvidenceItem struct {
	ID                 string           `json:"id"`
	Category           EvidenceCategory `json:"category"`
	Label              string           `json:"label"`
	Status             EvidenceStatus   `json:"status"`
	SupportingEvidence []string         `json:"supporting_evidence,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

type CapabilityTier string

const (
	TierThin    CapabilityTier = "thin"
	TierPartial CapabilityTier = "partial"
	TierFull    CapabilityTier = "full"
)

// BundleCompleteness is the bounded coverage summary derived from the
// evidence items. Score is monotonic non-decreasing in the number of
// present/partial items.
type BundleCompleteness struct {
	Score          int            `json:"score"`
	Flags          []string       `json:"flags,omitempty"`
	CapabilityTier CapabilityTier `json:"capability_tier"`
}

// HasFlag reports whether a named indicator is set.
func (b BundleCompleteness) HasFlag(name string) bool {
	for _, f := range b.Flags {
		if f == name {
			return true
		}
	}
	return false
}
