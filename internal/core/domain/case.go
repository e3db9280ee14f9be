package domain

import (
	"strings"
	"time"
)

type PracticeArea string

const (
	PracticeCriminal    PracticeArea = "criminal"
	PracticeFamily      PracticeArea = "family"
	PracticeImmigration PracticeArea = "immigration"
	PracticeCivil       PracticeArea = "civil"
)

// CaseCategory is the offence/claim taxonomy used to select strategy
// catalogues. Unrecognized values resolve to CategoryOther; the engine never
// works with a category outside this set.
type CaseCategory string

const (
	CategoryAssault       CaseCategory = "assault"
	CategoryTheft         CaseCategory = "theft"
	CategoryDrugs         CaseCategory = "drugs"
	CategoryDriving       CaseCategory = "driving"
	CategoryFraud         CaseCategory = "fraud"
	CategoryPublicOrder   CaseCategory = "public_order"
	CategoryDomesticAbuse CaseCategory = "domestic_abuse"
	CategoryOther         CaseCategory = "other"
)

// ResolveCategory maps free-form charge metadata onto the closed taxonomy.
func ResolveCategory(raw string) CaseCategory {
	normalized := CaseCategory(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case CategoryAssault, CategoryTheft, CategoryDrugs, CategoryDriving,
		CategoryFraud, CategoryPublicOrder, CategoryDomesticAbuse:
		return normalized
	default:
		return CategoryOther
	}
}

// AnalysisMode is the case-level entitlement for analytical output.
type AnalysisMode string

const (
	AnalysisModeNone    AnalysisMode = "none"
	AnalysisModePreview AnalysisMode = "preview"
	AnalysisModeFull    AnalysisMode = "full"
)

// AtLeastPreview reports whether the mode permits preview-level output.
func (m AnalysisMode) AtLeastPreview() bool {
	return m == AnalysisModePreview || m == AnalysisModeFull
}

type CaseFile struct {
	ID           string       `json:"id"`
	OrgID        string       `json:"org_id"`
	Reference    string       `json:"reference"`
	ClientName   string       `json:"client_name"`
	PracticeArea PracticeArea `json:"practice_area"`
	Category     CaseCategory `json:"category"`
	AnalysisMode AnalysisMode `json:"analysis_mode"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Charge struct {
	ID        string     `json:"id"`
	CaseID    string     `json:"case_id"`
	Offence   string     `json:"offence"`
	Statute   string     `json:"statute,omitempty"`
	Plea      string     `json:"plea,omitempty"`
	ChargedAt *time.Time `json:"charged_at,omitempty"`
}

type Hearing struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Court       string    `json:"court"`
	HearingType string    `json:"hearing_type"`
	ListedAt    time.Time `json:"listed_at"`
}
