// Package modeltest provides ready-made analyses and clauses for tests.
package modeltest

import (
	"fmt"

	"github.com/ppiankov/clausegen/internal/model"
)

// EmployerClaim is the canonical strong-true fact claim with one piece of evidence
func EmployerClaim() model.Claim {
	return model.Claim{
		ClaimID:     "①",
		Agent:       "Employer",
		Proposition: "12-month restriction is industry standard",
		Belief:      model.BeliefStrongTrue,
		Value:       model.ValueApprove,
		ClaimType:   model.ClaimTypeFact,
		Evidence: []model.EvidenceCitation{
			{Source: model.SourceIndustryPractice, Strength: model.StrengthStrong, Description: "common in tech"},
		},
	}
}

// Chain returns a three-claim chain with a supports path ① ⟶ ③, ② ⟶ ③ and an attack ② ⟞ ①
func Chain() model.ReasoningChain {
	return model.ReasoningChain{
		Claims: []model.Claim{
			EmployerClaim(),
			{
				ClaimID:     "②",
				Agent:       "Employer",
				Proposition: "Courts favour narrow restrictions",
				Belief:      model.BeliefLeanTrue,
				Value:       model.ValueMixed,
				ClaimType:   model.ClaimTypeValue,
				Evidence: []model.EvidenceCitation{
					{Source: model.SourceLegalPrecedent, Strength: model.StrengthVeryStrong, Description: "reasonableness test"},
					{Source: model.SourceRisk, Strength: model.StrengthWeak, Description: "litigation exposure"},
				},
			},
			{
				ClaimID:     "③",
				Agent:       "Employer",
				Proposition: "Should adopt a 12-month term",
				Belief:      model.BeliefStrongTrue,
				Value:       model.ValueApprove,
				ClaimType:   model.ClaimTypePolicy,
			},
		},
		Links: []model.ArgumentLink{
			{FromClaim: "①", ToClaim: "③", Relation: model.RelationSupports, Explanation: "Industry practice supports policy choice"},
			{FromClaim: "②", ToClaim: "③", Relation: model.RelationSupports},
			{FromClaim: "②", ToClaim: "①", Relation: model.RelationAttacks},
		},
		ProseSummary: "A 12-month term is standard and defensible.",
	}
}

// Analysis returns a valid two-variation analysis
func Analysis() *model.NegotiationAnalysis {
	variation := func(id string, rank int, score float64) model.ClauseVariation {
		return model.ClauseVariation{
			VariationID:   id,
			VariationText: fmt.Sprintf("Variation %s text", id),
			Rank:          rank,
			ValueScore:    score,
			Reasoning: model.VariationReasoning{
				ReasoningChain:           Chain(),
				KeyAdvantages:            []string{"predictable"},
				KeyDisadvantages:         []string{"limits mobility"},
				EnforceabilityConfidence: model.BeliefLeanTrue,
				BusinessRiskLevel:        model.RiskModerate,
			},
		}
	}

	return &model.NegotiationAnalysis{
		OriginalClause: "Employee shall not solicit clients for 12 months.",
		Context: model.NegotiationContext{
			ObserverRole:      "Employer",
			ObserverInterests: "Protect the client base",
		},
		Variations: []model.ClauseVariation{
			variation("A", 1, 82.5),
			variation("B", 2, 40),
		},
		ComparativeAnalysis: model.ComparativeAnalysis{
			ReasoningChain:           Chain(),
			StrategicRecommendations: []string{"Lead with A", "Concede to B only for seniority"},
		},
	}
}

// Clause returns an input clause whose text is suffixed with n
func Clause(n int) model.ClauseData {
	return model.ClauseData{
		model.FieldClause:     fmt.Sprintf("The Employee shall not solicit clients (%d).", n),
		model.FieldDate:       "2019-04-02",
		model.FieldAreaOfLaw:  "Employment Law",
		model.FieldLocation:   "California",
		model.FieldIndustry:   "Software",
		model.FieldClauseType: "Non-Solicitation Clause",
	}
}
