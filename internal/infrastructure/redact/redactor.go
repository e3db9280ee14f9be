package redact

import (
	"regexp"
	"strings"
)

// Redactor strips direct identifiers from document text before it leaves the
// boundary toward the generative collaborator. The patterns are deliberately
// aggressive: losing a phone number from a prompt is free, leaking one is
// not.
type Redactor struct {
	rules []rule
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

func New() *Redactor {
	return &Redactor{rules: []rule{
		{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[EMAIL]"},
		// UK phone numbers, with or without country code.
		{regexp.MustCompile(`(?:\+44\s?|0)\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}`), "[PHONE]"},
		// National insurance numbers.
		{regexp.MustCompile(`\b[A-CEGHJ-PR-TW-Z]{2}\s?\d{2}\s?\d{2}\s?\d{2}\s?[A-D]\b`), "[NINO]"},
		// UK postcodes.
		{regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}\b`), "[POSTCODE]"},
		// Dates of birth spelled out near a DOB label.
		{regexp.MustCompile(`(?i)(date of birth|d\.?o\.?b\.?)[:\s]+\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`), "[DOB]"},
		// Titled personal names (Mr J Smith, Mrs Jane Smith-Jones).
		{regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Miss|Dr|Master)\.?\s+(?:[A-Z][a-z'-]*\.?\s+)?[A-Z][A-Za-z'-]+\b`), "[NAME]"},
	}}
}

func (r *Redactor) Redact(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out := text
	for _, rule := range r.rules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}
