package domain

// AngleType tags a candidate strategy argument. The set of valid tags is the
// closed catalogue shipped with the binary; anything else is a programming
// error (ErrCatalogue) or, when it arrives from the generative fallback, is
// collapsed to the catch-all by validation.
type AngleType string

const (
	// Generic angles, candidates for every category.
	AngleProceduralDelay    AngleType = "procedural_delay"
	AngleDisclosureFailure  AngleType = "disclosure_failure"
	AngleWitnessCredibility AngleType = "witness_credibility"
	AngleEvidenceGap        AngleType = "evidence_gap"
	AngleInterviewBreach    AngleType = "interview_breach"
	AngleIdentificationFlaw AngleType = "identification_flaw"
	AngleAbuseOfProcess     AngleType = "abuse_of_process"
	AngleContinuityBreak    AngleType = "continuity_break"

	// Category-specific angles.
	AngleSelfDefence           AngleType = "self_defence"
	AngleLackOfIntent          AngleType = "lack_of_intent"
	AngleInjuryCausation       AngleType = "injury_causation"
	AngleDishonestyTest        AngleType = "dishonesty_test"
	AngleClaimOfRight          AngleType = "claim_of_right"
	AnglePossessionAttribution AngleType = "possession_attribution"
	AngleSearchLegality        AngleType = "search_legality"
	AngleDeviceCalibration     AngleType = "device_calibration"
	AngleStatutoryProcedure    AngleType = "statutory_procedure"
	AngleRepresentationDispute AngleType = "representation_dispute"
	AngleConsentEvidence       AngleType = "consent_evidence"
	AngleComplainantRetraction AngleType = "complainant_retraction"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// StrategyAngle is one derived candidate argument. WinProbability is nil
// unless the probability gate allowed disclosure; nil means "not disclosed",
// never zero.
type StrategyAngle struct {
	ID             string    `json:"id"`
	AngleType      AngleType `json:"angle_type"`
	Title          string    `json:"title"`
	Severity       Severity  `json:"severity"`
	WinProbability *int      `json:"win_probability,omitempty"`
	LegalBasis     string    `json:"legal_basis"`
	HowToExploit   string    `json:"how_to_exploit"`
}

// LoopholeType is the fixed display taxonomy angles project into.
type LoopholeType string

const (
	LoopholeProcedural     LoopholeType = "procedural"
	LoopholeDisclosure     LoopholeType = "disclosure"
	LoopholeIdentification LoopholeType = "identification"
	LoopholeForensic       LoopholeType = "forensic"
	LoopholeRightsBreach   LoopholeType = "rights_breach"
	LoopholeEvidential     LoopholeType = "evidential"
	LoopholeTechnical      LoopholeType = "technical"
	LoopholeOther          LoopholeType = "other"
)

// Loophole is the user-facing projection of an angle.
type Loophole struct {
	ID             string       `json:"id"`
	Type           LoopholeType `json:"type"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Severity       Severity     `json:"severity"`
	WinProbability *int         `json:"win_probability,omitempty"`
	SourceAngleID  string       `json:"source_angle_id,omitempty"`
}

type RiskLevel string

const (
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
	RiskExtreme  RiskLevel = "EXTREME"
)

// NuclearOption is a statically catalogued high-risk procedural option.
type NuclearOption struct {
	Option         string    `json:"option"`
	Risk           RiskLevel `json:"risk"`
	Reward         string    `json:"reward"`
	WhenToUse      string    `json:"when_to_use"`
	ReadyToUseText string    `json:"ready_to_use_text"`
}

// OptionAssessment is the ranking stage output. Recommended is nil when no
// option is viable.
type OptionAssessment struct {
	Viable      []NuclearOption `json:"viable"`
	Recommended *NuclearOption  `json:"recommended,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// StrategySource records how a strategy report was produced.
type StrategySource string

const (
	StrategySourceDeterministic StrategySource = "deterministic"
	StrategySourceGenerative    StrategySource = "generative"
	StrategySourceEmpty         StrategySource = "empty"
)

// StrategyReport is the derivation engine's output for one case.
type StrategyReport struct {
	CaseID           string          `json:"case_id"`
	Category         CaseCategory    `json:"category"`
	CatalogueVersion string          `json:"catalogue_version"`
	Source           StrategySource  `json:"source"`
	Angles           []StrategyAngle `json:"angles"`
	Loopholes        []Loophole      `json:"loopholes"`
	DocumentCount    int             `json:"document_count"`
}
