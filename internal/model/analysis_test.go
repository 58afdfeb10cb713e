package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/model/modeltest"
)

func TestNegotiationAnalysis_ValidFixture(t *testing.T) {
	require.NoError(t, modeltest.Analysis().Validate())
}

func TestNegotiationAnalysis_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *model.NegotiationAnalysis)
	}{
		{"missing observer", func(a *model.NegotiationAnalysis) { a.Context.ObserverRole = "" }},
		{"one variation", func(a *model.NegotiationAnalysis) { a.Variations = a.Variations[:1] }},
		{"five variations", func(a *model.NegotiationAnalysis) {
			for len(a.Variations) < 5 {
				v := a.Variations[0]
				v.VariationID = string(rune('A' + len(a.Variations)))
				a.Variations = append(a.Variations, v)
			}
		}},
		{"duplicate variation id", func(a *model.NegotiationAnalysis) { a.Variations[1].VariationID = "A" }},
		{"score above 100", func(a *model.NegotiationAnalysis) { a.Variations[0].ValueScore = 100.5 }},
		{"negative score", func(a *model.NegotiationAnalysis) { a.Variations[0].ValueScore = -1 }},
		{"rank zero", func(a *model.NegotiationAnalysis) { a.Variations[0].Rank = 0 }},
		{"unknown risk", func(a *model.NegotiationAnalysis) { a.Variations[0].Reasoning.BusinessRiskLevel = "extreme" }},
		{"unknown enforceability", func(a *model.NegotiationAnalysis) {
			a.Variations[1].Reasoning.EnforceabilityConfidence = "probably"
		}},
		{"too many advantages", func(a *model.NegotiationAnalysis) {
			a.Variations[0].Reasoning.KeyAdvantages = []string{"1", "2", "3", "4", "5", "6"}
		}},
		{"empty variation chain", func(a *model.NegotiationAnalysis) {
			a.Variations[0].Reasoning.ReasoningChain.Claims = nil
		}},
		{"one recommendation", func(a *model.NegotiationAnalysis) {
			a.ComparativeAnalysis.StrategicRecommendations = []string{"only"}
		}},
		{"comparative chain unknown claim type", func(a *model.NegotiationAnalysis) {
			a.ComparativeAnalysis.ReasoningChain.Claims[0].ClaimType = "opinion"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := modeltest.Analysis()
			tt.mutate(a)
			err := a.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidAnalysis), "got %v", err)
		})
	}
}

func TestNegotiationAnalysis_UnknownEnumWrapsCategoryError(t *testing.T) {
	a := modeltest.Analysis()
	a.Variations[0].Reasoning.ReasoningChain.Claims[0].Evidence[0].Strength = "medium"
	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCategory)
	assert.ErrorIs(t, err, model.ErrInvalidAnalysis)
}

func TestNegotiationAnalysis_DecodeKeepsUnknownEnums(t *testing.T) {
	// decoding must not fail on unknown values so stored records stay inspectable
	raw := []byte(`{"claims":[{"claim_id":"①","agent":"X","proposition":"p","belief":"somewhat","value":"approve","claim_type":"fact"}],"links":[],"prose_summary":""}`)
	var chain model.ReasoningChain
	require.NoError(t, json.Unmarshal(raw, &chain))
	assert.Equal(t, model.BeliefStrength("somewhat"), chain.Claims[0].Belief)
	assert.ErrorIs(t, chain.Validate(), model.ErrInvalidCategory)
}

func TestNegotiationAnalysis_Chains(t *testing.T) {
	a := modeltest.Analysis()
	chains := a.Chains()
	require.Len(t, chains, len(a.Variations)+1)
	assert.Same(t, &a.ComparativeAnalysis.ReasoningChain, chains[len(chains)-1])
}

func TestClauseData_Field(t *testing.T) {
	data := model.ClauseData{
		"clause": "text",
		"year":   json.Number("2020"),
		"score":  1.5,
		"flag":   true,
		"null":   nil,
		"nested": map[string]any{"a": "b"},
	}

	assert.Equal(t, "text", data.Field("clause"))
	assert.Equal(t, "2020", data.Field("year"))
	assert.Equal(t, "1.5", data.Field("score"))
	assert.Equal(t, "true", data.Field("flag"))
	assert.Equal(t, "", data.Field("null"))
	assert.Equal(t, "", data.Field("absent"))
	assert.Equal(t, `{"a":"b"}`, data.Field("nested"))
	assert.Equal(t, "Unknown", data.FieldOr("absent", "Unknown"))
	assert.Equal(t, "text", data.FieldOr("clause", "Unknown"))
}
