package ollama

import (
	"fmt"
	"strings"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

func buildAnglePrompt(category domain.CaseCategory, docs []domain.Document, allowedTags []string, snippetChars int) string {
	var contextBuilder strings.Builder
	remaining := snippetChars
	for _, doc := range docs {
		if remaining <= 0 {
			break
		}
		text := strings.TrimSpace(doc.RawText)
		if text == "" {
			continue
		}
		if len(text) > remaining {
			text = text[:remaining]
		}
		remaining -= len(text)
		contextBuilder.WriteString(fmt.Sprintf("[%s]\n%s\n\n", doc.Name, text))
	}

	return fmt.Sprintf(`You are a defence case analyst for a %s matter.
Identify weaknesses in the prosecution material below.
Return a strict JSON object: {"angles":[{"angle_type":string,"title":string,"severity":string,"rationale":string}]}.
angle_type must be one of: %s.
severity must be one of: LOW, MEDIUM, HIGH, CRITICAL.
At most 5 angles. No markdown, no extra keys.

Material:
%s`, category, strings.Join(allowedTags, ", "), contextBuilder.String())
}
