package model

import (
	"errors"
	"fmt"
)

// Bounds on generated analyses
const (
	MinVariations      = 2
	MaxVariations      = 4
	MaxKeyPoints       = 5
	MinRecommendations = 2
	MaxRecommendations = 5
)

var ErrInvalidAnalysis = errors.New("invalid negotiation analysis")

// NegotiationAnalysis is the structured payload the generator returns for one clause
type NegotiationAnalysis struct {
	OriginalClause      string              `json:"original_clause"`
	Context             NegotiationContext  `json:"context"`
	Variations          []ClauseVariation   `json:"variations"`
	ComparativeAnalysis ComparativeAnalysis `json:"comparative_analysis"`
}

// NegotiationContext is the observer perspective the analysis is written from
type NegotiationContext struct {
	ObserverRole      string `json:"observer_role"`
	ObserverInterests string `json:"observer_interests"`
}

// ClauseVariation is one alternative drafting of the input clause
type ClauseVariation struct {
	VariationID   string             `json:"variation_id"`
	VariationText string             `json:"variation_text"`
	Rank          int                `json:"rank"`        // 1 = most preferred
	ValueScore    float64            `json:"value_score"` // 0-100
	Reasoning     VariationReasoning `json:"reasoning"`
}

// VariationReasoning explains a variation's rank
type VariationReasoning struct {
	ReasoningChain           ReasoningChain `json:"reasoning_chain"`
	KeyAdvantages            []string       `json:"key_advantages"`
	KeyDisadvantages         []string       `json:"key_disadvantages"`
	EnforceabilityConfidence BeliefStrength `json:"enforceability_confidence"`
	BusinessRiskLevel        RiskLevel      `json:"business_risk_level"`
}

// ComparativeAnalysis reasons across all variations
type ComparativeAnalysis struct {
	ReasoningChain           ReasoningChain `json:"reasoning_chain"`
	StrategicRecommendations []string       `json:"strategic_recommendations"`
}

// Validate rejects payloads that do not conform to the schema, including
// unrecognized category values anywhere in the tree
func (a *NegotiationAnalysis) Validate() error {
	if a.Context.ObserverRole == "" {
		return fmt.Errorf("%w: observer_role is empty", ErrInvalidAnalysis)
	}
	if n := len(a.Variations); n < MinVariations || n > MaxVariations {
		return fmt.Errorf("%w: %d variations (want %d-%d)", ErrInvalidAnalysis, n, MinVariations, MaxVariations)
	}

	ids := make(map[string]bool, len(a.Variations))
	for _, v := range a.Variations {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: variation %s: %w", ErrInvalidAnalysis, v.VariationID, err)
		}
		if ids[v.VariationID] {
			return fmt.Errorf("%w: duplicate variation_id %s", ErrInvalidAnalysis, v.VariationID)
		}
		ids[v.VariationID] = true
	}

	comp := a.ComparativeAnalysis
	if err := comp.ReasoningChain.Validate(); err != nil {
		return fmt.Errorf("%w: comparative analysis: %w", ErrInvalidAnalysis, err)
	}
	if n := len(comp.StrategicRecommendations); n < MinRecommendations || n > MaxRecommendations {
		return fmt.Errorf("%w: %d strategic recommendations (want %d-%d)", ErrInvalidAnalysis, n, MinRecommendations, MaxRecommendations)
	}
	return nil
}

// Validate checks a single variation
func (v ClauseVariation) Validate() error {
	if v.VariationID == "" {
		return errors.New("variation_id is empty")
	}
	if v.Rank < 1 {
		return fmt.Errorf("rank %d must be >= 1", v.Rank)
	}
	if v.ValueScore < 0 || v.ValueScore > 100 {
		return fmt.Errorf("value_score %.1f outside [0,100]", v.ValueScore)
	}

	r := v.Reasoning
	if err := r.ReasoningChain.Validate(); err != nil {
		return err
	}
	if len(r.KeyAdvantages) > MaxKeyPoints {
		return fmt.Errorf("%d key advantages (max %d)", len(r.KeyAdvantages), MaxKeyPoints)
	}
	if len(r.KeyDisadvantages) > MaxKeyPoints {
		return fmt.Errorf("%d key disadvantages (max %d)", len(r.KeyDisadvantages), MaxKeyPoints)
	}
	if !r.EnforceabilityConfidence.IsValid() {
		return fmt.Errorf("enforceability_confidence %q: %w", r.EnforceabilityConfidence, ErrInvalidCategory)
	}
	if !r.BusinessRiskLevel.IsValid() {
		return fmt.Errorf("business_risk_level %q: %w", r.BusinessRiskLevel, ErrInvalidCategory)
	}
	return nil
}

// Chains returns every reasoning chain in the analysis, variations first
func (a *NegotiationAnalysis) Chains() []*ReasoningChain {
	chains := make([]*ReasoningChain, 0, len(a.Variations)+1)
	for i := range a.Variations {
		chains = append(chains, &a.Variations[i].Reasoning.ReasoningChain)
	}
	return append(chains, &a.ComparativeAnalysis.ReasoningChain)
}
