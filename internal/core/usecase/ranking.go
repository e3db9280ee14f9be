package usecase

import (
	"context"
	"fmt"

	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/domain"
)

// RiskPolicy is the ordering used to pick the headline recommendation among
// viable options. The default prefers the highest risk tier. That is a
// product decision, not a correctness property, which is why the policy is a
// named value callers can replace rather than a comparator buried in sort code.
type RiskPolicy struct {
	Name string
	rank map[domain.RiskLevel]int
}

// PreferHighestRisk recommends EXTREME over VERY_HIGH over HIGH.
var PreferHighestRisk = RiskPolicy{
	Name: "prefer_highest_risk",
	rank: map[domain.RiskLevel]int{
		domain.RiskHigh:     1,
		domain.RiskVeryHigh: 2,
		domain.RiskExtreme:  3,
	},
}

// PreferLowestRisk is the conservative alternative ordering.
var PreferLowestRisk = RiskPolicy{
	Name: "prefer_lowest_risk",
	rank: map[domain.RiskLevel]int{
		domain.RiskHigh:     3,
		domain.RiskVeryHigh: 2,
		domain.RiskExtreme:  1,
	},
}

// PolicyByName resolves a configured policy name, defaulting to the
// highest-risk ordering for unknown values.
func PolicyByName(name string) RiskPolicy {
	if name == PreferLowestRisk.Name {
		return PreferLowestRisk
	}
	return PreferHighestRisk
}

// Prefer reports whether a should be recommended over b. Equal ranks keep
// the earlier option (catalogue order is the tie-break).
func (p RiskPolicy) Prefer(a, b domain.RiskLevel) bool {
	return p.rank[a] > p.rank[b]
}

// RankOptions filters the per-category option catalogue by viability over
// the derived angles and selects one recommendation under the policy.
// It never recommends an option whose predicate does not hold.
func RankOptions(
	cat *catalogue.Catalogue,
	category domain.CaseCategory,
	report *domain.StrategyReport,
	policy RiskPolicy,
) domain.OptionAssessment {
	assessment := domain.OptionAssessment{Viable: []domain.NuclearOption{}}

	var angles []domain.StrategyAngle
	if report != nil {
		angles = report.Angles
	}

	for _, spec := range cat.OptionsFor(category) {
		if !optionViable(cat, spec.Requires, angles) {
			continue
		}
		assessment.Viable = append(assessment.Viable, domain.NuclearOption{
			Option:         spec.Option,
			Risk:           spec.Risk,
			Reward:         spec.Reward,
			WhenToUse:      spec.WhenToUse,
			ReadyToUseText: spec.ReadyToUseText,
		})
	}

	if len(assessment.Viable) == 0 {
		assessment.Warnings = append(assessment.Warnings,
			"no high-risk procedural options are viable on the current evidence")
		return assessment
	}

	recommended := assessment.Viable[0]
	for _, option := range assessment.Viable[1:] {
		if policy.Prefer(option.Risk, recommended.Risk) {
			recommended = option
		}
	}
	assessment.Recommended = &recommended

	if recommended.Risk == domain.RiskExtreme {
		assessment.Warnings = append(assessment.Warnings,
			"the recommended option carries extreme risk; counsel sign-off is required before filing")
	}
	return assessment
}

func optionViable(cat *catalogue.Catalogue, req catalogue.OptionRequirement, angles []domain.StrategyAngle) bool {
	minAngles := req.MinAngles
	if minAngles <= 0 {
		minAngles = 1
	}

	matching := 0
	for _, angle := range angles {
		if matchesOptionRequirement(cat, req, angle) {
			matching++
		}
	}
	return matching >= minAngles
}

func matchesOptionRequirement(cat *catalogue.Catalogue, req catalogue.OptionRequirement, angle domain.StrategyAngle) bool {
	if len(req.AngleTypesAny) == 0 && len(req.LoopholesAny) == 0 {
		return true
	}
	for _, t := range req.AngleTypesAny {
		if angle.AngleType == t {
			return true
		}
	}
	loophole := cat.LoopholeTypeFor(angle.AngleType)
	for _, l := range req.LoopholesAny {
		if loophole == l {
			return true
		}
	}
	return false
}

// RankingUseCase exposes option ranking over a stored case.
type RankingUseCase struct {
	strategy *StrategyUseCase
	cat      *catalogue.Catalogue
	policy   RiskPolicy
}

func NewRankingUseCase(strategy *StrategyUseCase, cat *catalogue.Catalogue, policy RiskPolicy) *RankingUseCase {
	return &RankingUseCase{strategy: strategy, cat: cat, policy: policy}
}

func (uc *RankingUseCase) RankOptions(ctx context.Context, orgID, caseID string) (*domain.OptionAssessment, error) {
	report, err := uc.strategy.DeriveStrategy(ctx, orgID, caseID)
	if err != nil {
		return nil, fmt.Errorf("derive strategy for ranking: %w", err)
	}
	assessment := RankOptions(uc.cat, report.Category, report, uc.policy)
	return &assessment, nil
}
