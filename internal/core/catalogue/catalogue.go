package catalogue

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

//go:embed angles.yaml
var anglesYAML []byte

//go:embed options.yaml
var optionsYAML []byte

// Requirement is the declarative viability predicate attached to an angle or
// option. All populated clauses must hold simultaneously.
type Requirement struct {
	PresentAny       []domain.EvidenceCategory `yaml:"present_any"`
	PartialAny       []domain.EvidenceCategory `yaml:"partial_any"`
	MissingAny       []domain.EvidenceCategory `yaml:"missing_any"`
	MinBreachSignals int                       `yaml:"min_breach_signals"`
}

// AngleSpec is one closed-catalogue candidate angle. Categories empty means
// generic: the angle is a candidate for every category.
type AngleSpec struct {
	Type         domain.AngleType      `yaml:"type"`
	Title        string                `yaml:"title"`
	Severity     domain.Severity       `yaml:"severity"`
	LegalBasis   string                `yaml:"legal_basis"`
	HowToExploit string                `yaml:"how_to_exploit"`
	Loophole     domain.LoopholeType   `yaml:"loophole"`
	Categories   []domain.CaseCategory `yaml:"categories"`
	Requires     Requirement           `yaml:"requires"`
}

// OptionRequirement gates a nuclear option on the derived angle set.
type OptionRequirement struct {
	AngleTypesAny []domain.AngleType    `yaml:"angle_types_any"`
	LoopholesAny  []domain.LoopholeType `yaml:"loopholes_any"`
	MinAngles     int                   `yaml:"min_angles"`
}

// OptionSpec is one statically catalogued high-risk procedural option.
type OptionSpec struct {
	Option         string                `yaml:"option"`
	Risk           domain.RiskLevel      `yaml:"risk"`
	Reward         string                `yaml:"reward"`
	WhenToUse      string                `yaml:"when_to_use"`
	ReadyToUseText string                `yaml:"ready_to_use_text"`
	Categories     []domain.CaseCategory `yaml:"categories"`
	Requires       OptionRequirement     `yaml:"requires"`
}

// Catalogue is the versioned, closed strategy space. It is loaded once from
// the embedded tables; a malformed catalogue is a hard startup error, never
// a degraded result.
type Catalogue struct {
	Version string
	angles  []AngleSpec
	options []OptionSpec

	knownAngles map[domain.AngleType]struct{}
}

type anglesFile struct {
	Version string      `yaml:"version"`
	Angles  []AngleSpec `yaml:"angles"`
}

type optionsFile struct {
	Options []OptionSpec `yaml:"options"`
}

var validAngleTypes = map[domain.AngleType]struct{}{
	domain.AngleProceduralDelay:       {},
	domain.AngleDisclosureFailure:     {},
	domain.AngleWitnessCredibility:    {},
	domain.AngleEvidenceGap:           {},
	domain.AngleInterviewBreach:       {},
	domain.AngleIdentificationFlaw:    {},
	domain.AngleAbuseOfProcess:        {},
	domain.AngleContinuityBreak:       {},
	domain.AngleSelfDefence:           {},
	domain.AngleLackOfIntent:          {},
	domain.AngleInjuryCausation:       {},
	domain.AngleDishonestyTest:        {},
	domain.AngleClaimOfRight:          {},
	domain.AnglePossessionAttribution: {},
	domain.AngleSearchLegality:        {},
	domain.AngleDeviceCalibration:     {},
	domain.AngleStatutoryProcedure:    {},
	domain.AngleRepresentationDispute: {},
	domain.AngleConsentEvidence:       {},
	domain.AngleComplainantRetraction: {},
}

var validSeverities = map[domain.Severity]struct{}{
	domain.SeverityLow:      {},
	domain.SeverityMedium:   {},
	domain.SeverityHigh:     {},
	domain.SeverityCritical: {},
}

var validRisks = map[domain.RiskLevel]struct{}{
	domain.RiskHigh:     {},
	domain.RiskVeryHigh: {},
	domain.RiskExtreme:  {},
}

// Load parses and validates the embedded catalogue tables.
func Load() (*Catalogue, error) {
	var af anglesFile
	if err := yaml.Unmarshal(anglesYAML, &af); err != nil {
		return nil, domain.WrapError(domain.ErrCatalogue, "parse angle catalogue", err)
	}
	var of optionsFile
	if err := yaml.Unmarshal(optionsYAML, &of); err != nil {
		return nil, domain.WrapError(domain.ErrCatalogue, "parse option catalogue", err)
	}

	cat := &Catalogue{
		Version:     af.Version,
		angles:      af.Angles,
		options:     of.Options,
		knownAngles: make(map[domain.AngleType]struct{}, len(af.Angles)),
	}
	if cat.Version == "" {
		return nil, domain.WrapError(domain.ErrCatalogue, "validate angle catalogue", fmt.Errorf("missing version"))
	}
	for i, spec := range af.Angles {
		if err := validateAngle(spec); err != nil {
			return nil, domain.WrapError(domain.ErrCatalogue, fmt.Sprintf("validate angle %d (%s)", i, spec.Type), err)
		}
		cat.knownAngles[spec.Type] = struct{}{}
	}
	for i, spec := range of.Options {
		if err := validateOption(spec); err != nil {
			return nil, domain.WrapError(domain.ErrCatalogue, fmt.Sprintf("validate option %d (%s)", i, spec.Option), err)
		}
	}
	return cat, nil
}

func validateAngle(spec AngleSpec) error {
	if _, ok := validAngleTypes[spec.Type]; !ok {
		return fmt.Errorf("unknown angle type %q", spec.Type)
	}
	if spec.Title == "" || spec.LegalBasis == "" {
		return fmt.Errorf("title and legal_basis are required")
	}
	if _, ok := validSeverities[spec.Severity]; !ok {
		return fmt.Errorf("unknown severity %q", spec.Severity)
	}
	if spec.Loophole == "" {
		return fmt.Errorf("loophole mapping is required")
	}
	for _, cat := range spec.Categories {
		if domain.ResolveCategory(string(cat)) != cat {
			return fmt.Errorf("unknown category %q", cat)
		}
	}
	return nil
}

func validateOption(spec OptionSpec) error {
	if spec.Option == "" {
		return fmt.Errorf("option name is required")
	}
	if _, ok := validRisks[spec.Risk]; !ok {
		return fmt.Errorf("unknown risk level %q", spec.Risk)
	}
	for _, t := range spec.Requires.AngleTypesAny {
		if _, ok := validAngleTypes[t]; !ok {
			return fmt.Errorf("requirement references unknown angle type %q", t)
		}
	}
	for _, cat := range spec.Categories {
		if domain.ResolveCategory(string(cat)) != cat {
			return fmt.Errorf("unknown category %q", cat)
		}
	}
	return nil
}

// Candidates returns the generic angles plus the ones declared for the given
// category, in catalogue order.
func (c *Catalogue) Candidates(category domain.CaseCategory) []AngleSpec {
	out := make([]AngleSpec, 0, len(c.angles))
	for _, spec := range c.angles {
		if len(spec.Categories) == 0 || containsCategory(spec.Categories, category) {
			out = append(out, spec)
		}
	}
	return out
}

// OptionsFor returns the nuclear options applicable to a category.
func (c *Catalogue) OptionsFor(category domain.CaseCategory) []OptionSpec {
	out := make([]OptionSpec, 0, len(c.options))
	for _, spec := range c.options {
		if len(spec.Categories) == 0 || containsCategory(spec.Categories, category) {
			out = append(out, spec)
		}
	}
	return out
}

// AngleSpecFor looks up the catalogue entry for a type. Used by the
// generative fallback to re-anchor model output onto the closed set.
func (c *Catalogue) AngleSpecFor(t domain.AngleType) (AngleSpec, bool) {
	for _, spec := range c.angles {
		if spec.Type == t {
			return spec, true
		}
	}
	return AngleSpec{}, false
}

// IsKnownAngleType reports whether t appears in the catalogue.
func (c *Catalogue) IsKnownAngleType(t domain.AngleType) bool {
	_, ok := c.knownAngles[t]
	return ok
}

// AngleTypeTags lists every catalogue angle type in definition order, as raw
// strings. The generative inferrer uses this as its closed output vocabulary.
func (c *Catalogue) AngleTypeTags() []string {
	tags := make([]string, 0, len(c.angles))
	for _, spec := range c.angles {
		tags = append(tags, string(spec.Type))
	}
	return tags
}

// LoopholeTypeFor returns the fixed projection for an angle type, collapsing
// unmapped types to the catch-all.
func (c *Catalogue) LoopholeTypeFor(t domain.AngleType) domain.LoopholeType {
	if spec, ok := c.AngleSpecFor(t); ok && spec.Loophole != "" {
		return spec.Loophole
	}
	return domain.LoopholeOther
}

func containsCategory(list []domain.CaseCategory, category domain.CaseCategory) bool {
	for _, c := range list {
		if c == category {
			return true
		}
	}
	return false
}
