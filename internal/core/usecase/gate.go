package usecase

import (
	"fmt"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// practiceGate fixes the probability-gate floor and critical-missing ceiling
// for one practice area.
type practiceGate struct {
	completenessFloor      int
	criticalMissingCeiling int
	critical               []domain.EvidenceCategory
}

var practiceGates = map[domain.PracticeArea]practiceGate{
	domain.PracticeCriminal: {
		completenessFloor:      45,
		criticalMissingCeiling: 2,
		critical: []domain.EvidenceCategory{
			domain.EvidenceChargeSheet,
			domain.EvidenceWitnessStatements,
			domain.EvidenceInterviewRecord,
			domain.EvidenceDisclosureSchedule,
		},
	},
	domain.PracticeFamily: {
		completenessFloor:      50,
		criticalMissingCeiling: 2,
		critical: []domain.EvidenceCategory{
			domain.EvidenceWitnessStatements,
			domain.EvidenceMedical,
		},
	},
}

// defaultGate applies to practice areas without a dedicated entry.
var defaultGate = practiceGate{
	completenessFloor:      55,
	criticalMissingCeiling: 1,
	critical: []domain.EvidenceCategory{
		domain.EvidenceWitnessStatements,
	},
}

func gateFor(area domain.PracticeArea) practiceGate {
	if g, ok := practiceGates[area]; ok {
		return g
	}
	return defaultGate
}

// CriticalMissingCount counts evidence categories essential to the practice
// area that the extractor marked missing.
func CriticalMissingCount(area domain.PracticeArea, extraction Extraction) int {
	g := gateFor(area)
	count := 0
	for _, category := range g.critical {
		if extraction.StatusOf(category) == domain.EvidenceMissing {
			count++
		}
	}
	return count
}

// DecideProbabilityGate is the single choke point before any numeric
// probability reaches a caller. Total: every input yields exactly one
// decision, and Show=false always carries a reason.
func DecideProbabilityGate(area domain.PracticeArea, completeness domain.BundleCompleteness, criticalMissing int) domain.GateDecision {
	g := gateFor(area)
	if completeness.Score < g.completenessFloor {
		return domain.GateDecision{
			Show: false,
			Reason: fmt.Sprintf("evidence coverage %d%% is below the %d%% floor for %s matters",
				completeness.Score, g.completenessFloor, displayArea(area)),
		}
	}
	if criticalMissing > g.criticalMissingCeiling {
		return domain.GateDecision{
			Show: false,
			Reason: fmt.Sprintf("%d critical evidence categories are missing (limit %d)",
				criticalMissing, g.criticalMissingCeiling),
		}
	}
	return domain.GateDecision{Show: true}
}

func displayArea(area domain.PracticeArea) string {
	if area == "" {
		return "general"
	}
	return string(area)
}

// CheckAdmission is the analysis guard: case-level admission control over
// document volume and extraction quality. It never errors; denial is a
// value. Callers that must refuse wrap it via AnalysisAdmission.GateError.
func CheckAdmission(diag domain.DocumentDiagnostics) domain.AnalysisAdmission {
	admission := domain.AnalysisAdmission{Diagnostics: diag}

	switch {
	case diag.DocumentCount < domain.MinAnalysisDocuments:
		admission.Banner = fmt.Sprintf(
			"Add at least %d case documents to unlock analysis (%d uploaded so far).",
			domain.MinAnalysisDocuments, diag.DocumentCount)
	case diag.TotalRawChars < domain.MinTotalRawChars:
		if diag.SuspectedScanned {
			admission.Banner = "These documents look like scans without a text layer. Upload text-based copies or run OCR to unlock analysis."
		} else {
			admission.Banner = "The uploaded documents contain too little text to analyse reliably."
		}
	default:
		admission.CanGenerateAnalysis = true
	}
	return admission
}
