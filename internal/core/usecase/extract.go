package usecase

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// maxSupportingPhrases caps the audit trail kept per evidence item.
const maxSupportingPhrases = 12

// Extraction is the signal extractor's full output for one document set.
type Extraction struct {
	Items []domain.EvidenceItem
	// BreachSignals are the distinct procedural-breach kinds detected in the
	// set. Angle viability predicates count them.
	BreachSignals []string

	statuses map[domain.EvidenceCategory]domain.EvidenceStatus
}

// StatusOf returns the extracted status for a category, EvidenceUnknown if
// the category was never scanned.
func (e Extraction) StatusOf(category domain.EvidenceCategory) domain.EvidenceStatus {
	if s, ok := e.statuses[category]; ok {
		return s
	}
	return domain.EvidenceUnknown
}

type phraseGroup []string

// categoryRule describes how one evidence category is detected. A structured
// signal wins outright; otherwise phrase groups are matched over the
// lowercased concatenated text. A category is present when at least one
// group matched two distinct phrases, or when minGroups is two or more and
// that many distinct groups each matched at least once. Any weaker single
// match is partial, and absentStatus covers no match at all.
type categoryRule struct {
	category     domain.EvidenceCategory
	label        string
	structured   func(*domain.StructuredExtract) []string
	groups       []phraseGroup
	minGroups    int
	absentStatus domain.EvidenceStatus
}

var categoryRules = []categoryRule{
	{
		category: domain.EvidenceChargeSheet,
		label:    "Charge sheet / postal requisition",
		structured: func(s *domain.StructuredExtract) []string {
			if s.ChargeSheet != "" {
				return []string{"structured:charge_sheet"}
			}
			return nil
		},
		groups: []phraseGroup{
			{"charge sheet", "postal requisition", "written charge", "charged with the offence"},
			{"mg4", "mg5", "case summary"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceWitnessStatements,
		label:    "Witness statements",
		structured: func(s *domain.StructuredExtract) []string {
			if len(s.Parties) > 1 {
				return []string{"structured:parties"}
			}
			return nil
		},
		groups: []phraseGroup{
			{"witness statement", "section 9 statement", "mg11", "statement of witness"},
			{"i saw", "i witnessed", "first account"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceIdentification,
		label:    "Identification material",
		groups: []phraseGroup{
			{"identification procedure", "video identification", "viper", "identity parade"},
			{"identified the defendant", "picked out", "recognised the male", "recognised the female"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceCCTV,
		label:    "CCTV / video evidence",
		groups: []phraseGroup{
			{"cctv", "video footage", "camera footage", "recording shows"},
			{"footage seized", "downloaded the footage", "still images"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceBodyWornVideo,
		label:    "Body-worn video",
		groups: []phraseGroup{
			{"body worn video", "body-worn video", "bwv", "body camera"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceInterviewRecord,
		label:    "Interview under caution",
		structured: func(s *domain.StructuredExtract) []string {
			if s.InterviewSummary != "" {
				return []string{"structured:interview_summary"}
			}
			return nil
		},
		groups: []phraseGroup{
			{"interview under caution", "record of interview", "roti", "no comment interview"},
			{"interview commenced", "interview concluded", "solicitor present"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceCustodyRecord,
		label:    "Custody record",
		structured: func(s *domain.StructuredExtract) []string {
			if s.CustodyRecord != "" {
				return []string{"structured:custody_record"}
			}
			return nil
		},
		groups: []phraseGroup{
			{"custody record", "detention log", "custody sergeant", "booked into custody"},
			{"detention authorised", "rights and entitlements", "appropriate adult"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		category: domain.EvidenceDisclosureSchedule,
		label:    "Unused material schedule",
		structured: func(s *domain.StructuredExtract) []string {
			if len(s.DisclosureItems) > 0 {
				return []string{"structured:disclosure_items"}
			}
			return nil
		},
		groups: []phraseGroup{
			{"unused material", "mg6c", "mg6d", "disclosure schedule"},
			{"schedule of non-sensitive", "disclosure officer"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		// Absence of forensics is not informative: the category may simply
		// not apply to the case.
		category: domain.EvidenceForensics,
		label:    "Forensic exhibits",
		groups: []phraseGroup{
			{"forensic", "dna", "fingerprint", "swab", "sgm plus"},
			{"exhibit reference", "forensic submission", "streamlined forensic report", "sfr1"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceUnknown,
	},
	{
		category: domain.EvidenceMedical,
		label:    "Medical evidence",
		groups: []phraseGroup{
			{"medical report", "medical examination", "a&e attendance", "injury record"},
			{"bruising", "laceration", "fracture", "x-ray"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceUnknown,
	},
	{
		category: domain.EvidenceDigitalDevices,
		label:    "Digital / device evidence",
		groups: []phraseGroup{
			{"phone download", "mobile phone examination", "extraction report", "cell site"},
			{"messages recovered", "call data", "whatsapp", "text messages"},
		},
		minGroups:    1,
		absentStatus: domain.EvidenceMissing,
	},
	{
		// Continuity needs corroboration from two different angles of the
		// record, so two groups must match simultaneously.
		category: domain.EvidenceContinuity,
		label:    "Exhibit continuity",
		groups: []phraseGroup{
			{"continuity statement", "chain of custody", "exhibit log"},
			{"sealed bag", "exhibit label", "produced as exhibit", "bagged and tagged"},
		},
		minGroups:    2,
		absentStatus: domain.EvidenceUnknown,
	},
}

// breachRule detects one distinct procedural-breach signal in the text.
type breachRule struct {
	name    string
	phrases []string
}

var breachRules = []breachRule{
	{"late_disclosure", []string{"late disclosure", "served late", "disclosure outstanding", "failed to disclose"}},
	{"no_solicitor_access", []string{"without a solicitor", "solicitor refused", "legal advice declined by police", "denied legal advice"}},
	{"no_appropriate_adult", []string{"no appropriate adult", "appropriate adult not present", "without an appropriate adult"}},
	{"custody_time_limit", []string{"custody time limit", "detention exceeded", "review not carried out", "pace clock"}},
	{"continuity_gap", []string{"continuity gap", "exhibit unaccounted", "seal broken", "not exhibited"}},
	{"id_procedure_breach", []string{"no identification procedure", "procedure not held", "breach of code d", "code d"}},
	{"missed_statutory_warning", []string{"statutory warning", "warning not given", "not cautioned", "caution not administered"}},
}

// ExtractSignals scans a case's document set for every evidence category.
// Pure function of its input: no I/O, no clock, no randomness beyond item
// ids.
func ExtractSignals(docs []domain.Document) Extraction {
	text := concatenateText(docs)

	out := Extraction{
		Items:    make([]domain.EvidenceItem, 0, len(categoryRules)),
		statuses: make(map[domain.EvidenceCategory]domain.EvidenceStatus, len(categoryRules)),
	}

	for _, rule := range categoryRules {
		item := evaluateRule(rule, docs, text)
		out.statuses[rule.category] = item.Status
		out.Items = append(out.Items, item)
	}

	out.BreachSignals = detectBreaches(text)
	return out
}

func evaluateRule(rule categoryRule, docs []domain.Document, text string) domain.EvidenceItem {
	item := domain.EvidenceItem{
		ID:       uuid.NewString(),
		Category: rule.category,
		Label:    rule.label,
	}

	// Structured signal wins over pattern detection.
	if rule.structured != nil {
		for _, doc := range docs {
			if doc.Structured == nil {
				continue
			}
			if keys := rule.structured(doc.Structured); len(keys) > 0 {
				item.Status = domain.EvidencePresent
				item.SupportingEvidence = capPhrases(append(keys, doc.Name))
				return item
			}
		}
	}

	matchedGroups := 0
	strongGroups := 0
	var matched []string
	for _, group := range rule.groups {
		hits := 0
		for _, phrase := range group {
			if strings.Contains(text, phrase) {
				hits++
				matched = append(matched, phrase)
			}
		}
		if hits > 0 {
			matchedGroups++
		}
		if hits >= 2 {
			strongGroups++
		}
	}

	switch {
	case rule.minGroups >= 2 && matchedGroups >= rule.minGroups:
		// Corroboration across distinct groups is sufficient on its own;
		// no single group needs two phrases.
		item.Status = domain.EvidencePresent
	case strongGroups >= 1 && matchedGroups >= rule.minGroups:
		item.Status = domain.EvidencePresent
	case matchedGroups >= 1:
		item.Status = domain.EvidencePartial
	default:
		item.Status = rule.absentStatus
		if rule.absentStatus == domain.EvidenceUnknown {
			item.Notes = "absence not informative for this category"
		}
	}
	item.SupportingEvidence = capPhrases(matched)
	return item
}

func detectBreaches(text string) []string {
	var found []string
	for _, rule := range breachRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				found = append(found, rule.name)
				break
			}
		}
	}
	sort.Strings(found)
	return found
}

func concatenateText(docs []domain.Document) string {
	var b strings.Builder
	for _, doc := range docs {
		b.WriteString(strings.ToLower(doc.RawText))
		b.WriteString("\n")
	}
	return b.String()
}

func capPhrases(phrases []string) []string {
	if len(phrases) > maxSupportingPhrases {
		return phrases[:maxSupportingPhrases]
	}
	return phrases
}
