package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CacheKey identifies one memoized generative result. Two keys are equal
// exactly when the same analysis was requested for the same document set of
// the same case.
type CacheKey struct {
	OrgID        string
	CaseID       string
	Fingerprint  string
	AnalysisName string
}

func (k CacheKey) String() string {
	return strings.Join([]string{"analysis", k.OrgID, k.CaseID, k.Fingerprint, k.AnalysisName}, ":")
}

// FingerprintDocuments computes a stable hash over a document set: invariant
// under reordering, sensitive to any id or content change.
func FingerprintDocuments(docs []Document) string {
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		content := sha256.Sum256([]byte(doc.RawText + "\x00" + structuredDigest(doc.Structured)))
		lines = append(lines, doc.ID+":"+hex.EncodeToString(content[:]))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func structuredDigest(s *StructuredExtract) string {
	if s == nil {
		return ""
	}
	// json.Marshal is deterministic for struct fields and sorts map keys.
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("unmarshalable:%v", err)
	}
	return string(raw)
}
