package generate

import (
	"encoding/json"
	"sort"

	"github.com/ppiankov/clausegen/internal/model"
)

// SchemaName identifies the response schema to providers that need a name
const SchemaName = "negotiation_analysis"

// object builds a closed JSON Schema object; every property is required, as
// strict structured-output modes demand
func object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func str() map[string]any {
	return map[string]any{"type": "string"}
}

func enum[T ~string](values []T) map[string]any {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return map[string]any{"type": "string", "enum": out}
}

func array(items map[string]any, minItems, maxItems int) map[string]any {
	a := map[string]any{"type": "array", "items": items}
	if minItems > 0 {
		a["minItems"] = minItems
	}
	if maxItems > 0 {
		a["maxItems"] = maxItems
	}
	return a
}

func chainSchema() map[string]any {
	evidence := object(map[string]any{
		"source":      enum(model.AllEvidenceSources()),
		"strength":    enum(model.AllEvidenceStrengths()),
		"description": str(),
	})
	claim := object(map[string]any{
		"claim_id":    str(),
		"agent":       str(),
		"proposition": str(),
		"belief":      enum(model.AllBeliefStrengths()),
		"value":       enum(model.AllValueAttitudes()),
		"claim_type":  enum(model.AllClaimTypes()),
		"evidence":    array(evidence, 0, 0),
	})
	link := object(map[string]any{
		"from_claim":  str(),
		"to_claim":    str(),
		"relation":    enum(model.AllRelationTypes()),
		"explanation": str(),
	})
	return object(map[string]any{
		"claims":        array(claim, 1, model.MaxChainClaims),
		"links":         array(link, 0, 0),
		"prose_summary": str(),
	})
}

// Schema returns the JSON Schema of model.NegotiationAnalysis. The enums are
// generated from the notation vocabulary so the two cannot drift apart.
func Schema() json.RawMessage {
	variation := object(map[string]any{
		"variation_id":   str(),
		"variation_text": str(),
		"rank":           map[string]any{"type": "integer", "minimum": 1},
		"value_score":    map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		"reasoning": object(map[string]any{
			"reasoning_chain":           chainSchema(),
			"key_advantages":            array(str(), 0, model.MaxKeyPoints),
			"key_disadvantages":         array(str(), 0, model.MaxKeyPoints),
			"enforceability_confidence": enum(model.AllBeliefStrengths()),
			"business_risk_level":       enum(model.AllRiskLevels()),
		}),
	})

	schema := object(map[string]any{
		"original_clause": str(),
		"context": object(map[string]any{
			"observer_role":      str(),
			"observer_interests": str(),
		}),
		"variations": array(variation, model.MinVariations, model.MaxVariations),
		"comparative_analysis": object(map[string]any{
			"reasoning_chain":           chainSchema(),
			"strategic_recommendations": array(str(), model.MinRecommendations, model.MaxRecommendations),
		}),
	})

	raw, err := json.Marshal(schema)
	if err != nil {
		// only maps, slices, strings and ints above
		panic(err)
	}
	return raw
}
