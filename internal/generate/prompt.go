package generate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/notation"
)

var beliefMeaning = map[model.BeliefStrength]string{
	model.BeliefCertainTrue:  "Certain it's true",
	model.BeliefStrongTrue:   "Strongly believe true",
	model.BeliefLeanTrue:     "Leaning toward true",
	model.BeliefUndecided:    "Unsure",
	model.BeliefLeanFalse:    "Leaning toward false",
	model.BeliefCertainFalse: "Certain it's false",
}

var valueMeaning = map[model.ValueAttitude]string{
	model.ValueApprove:    "Good from this perspective",
	model.ValueDisapprove: "Bad from this perspective",
	model.ValueMixed:      "Depends on context",
	model.ValueNeutral:    "No value judgment",
}

var claimTypeMeaning = map[model.ClaimType]string{
	model.ClaimTypeFact:       "Factual/empirical claim",
	model.ClaimTypeValue:      "Value/ethical judgment",
	model.ClaimTypePolicy:     "Policy/action recommendation",
	model.ClaimTypePreference: "Personal preference",
}

var sourceMeaning = map[model.EvidenceSource]string{
	model.SourceLegalPrecedent:   "Case law",
	model.SourceStatute:          "Statutory law",
	model.SourceData:             "Empirical data/statistics",
	model.SourceTheory:           "Legal theory/doctrine",
	model.SourceObservation:      "Direct observation",
	model.SourceTestimony:        "Expert testimony",
	model.SourceIndustryPractice: "Industry standards",
	model.SourceEconomic:         "Economic analysis",
	model.SourceRisk:             "Risk assessment",
}

var strengthMeaning = map[model.EvidenceStrength]string{
	model.StrengthVeryStrong: "Well-established, authoritative",
	model.StrengthStrong:     "Solid, reliable",
	model.StrengthWeak:       "Suggestive, limited",
	model.StrengthVeryWeak:   "Anecdotal, speculative",
}

var relationMeaning = map[model.RelationType]string{
	model.RelationSupports:   "Claim A supports/strengthens claim B",
	model.RelationAttacks:    "Claim A undermines/challenges claim B",
	model.RelationExplains:   "Claim A explains why claim B",
	model.RelationEquivalent: "Claims are equivalent/mutually reinforcing",
}

type symbolic interface {
	~string
	Symbol() string
}

func legendSection[T symbolic](b *strings.Builder, title string, values []T, meaning map[T]string) {
	fmt.Fprintf(b, "### %s:\n", title)
	for _, v := range values {
		fmt.Fprintf(b, "- %s → %s  (%s)\n", string(v), v.Symbol(), meaning[v])
	}
	b.WriteString("\n")
}

// exampleChain is rendered into the system prompt so the model sees the
// notation its output will be inspected in
func exampleChain() *model.ReasoningChain {
	return &model.ReasoningChain{
		Claims: []model.Claim{
			{
				ClaimID: "①", Agent: "Employer", Proposition: "12-month restriction is industry standard",
				Belief: model.BeliefStrongTrue, Value: model.ValueApprove, ClaimType: model.ClaimTypeFact,
				Evidence: []model.EvidenceCitation{
					{Source: model.SourceIndustryPractice, Strength: model.StrengthStrong},
					{Source: model.SourceData, Strength: model.StrengthWeak},
				},
			},
			{
				ClaimID: "②", Agent: "Employer", Proposition: "Industry standards suggest reasonableness",
				Belief: model.BeliefStrongTrue, Value: model.ValueApprove, ClaimType: model.ClaimTypeValue,
				Evidence: []model.EvidenceCitation{
					{Source: model.SourceLegalPrecedent, Strength: model.StrengthVeryStrong},
				},
			},
			{
				ClaimID: "③", Agent: "Employer", Proposition: "Should adopt 12-month term",
				Belief: model.BeliefStrongTrue, Value: model.ValueApprove, ClaimType: model.ClaimTypePolicy,
			},
		},
		Links: []model.ArgumentLink{
			{FromClaim: "①", ToClaim: "③", Relation: model.RelationSupports, Explanation: "Industry practice supports policy choice"},
			{FromClaim: "②", ToClaim: "③", Relation: model.RelationSupports, Explanation: "Legal reasonableness supports policy choice"},
		},
	}
}

// SystemPrompt returns the instructions shared by every clause: the analyst
// role, the notation legend and the reasoning structure expected per variation
func SystemPrompt() string {
	var b strings.Builder

	b.WriteString(`You are an expert legal negotiation advisor with deep knowledge of contract drafting and negotiation strategy.

Your task is to analyze a clause from one stakeholder perspective and generate negotiation variations with STRUCTURED REASONING.

## Reasoning Notation System

Your structured reasoning will be rendered in a compact notation for analysis. Use the exact category values on the left.

`)
	legendSection(&b, "Belief Strength (Epistemic Confidence)", model.AllBeliefStrengths(), beliefMeaning)
	legendSection(&b, "Value Attitude (Normative Stance)", model.AllValueAttitudes(), valueMeaning)
	legendSection(&b, "Claim Types", model.AllClaimTypes(), claimTypeMeaning)
	legendSection(&b, "Evidence Sources", model.AllEvidenceSources(), sourceMeaning)
	legendSection(&b, "Evidence Strength", model.AllEvidenceStrengths(), strengthMeaning)
	legendSection(&b, "Argument Relations", model.AllRelationTypes(), relationMeaning)

	b.WriteString("### Example Notation:\n```\n")
	b.WriteString(notation.Chain(exampleChain()))
	b.WriteString("\n```\n\n")

	fmt.Fprintf(&b, `## Process:

1. Understand context: area of law, location, industry, clause type
2. Adopt ONE observer perspective and use it consistently as the claim agent
3. Generate %d-%d variations, each a meaningful negotiation position, ranked 1 (most preferred) onward with a value_score from 0 to 100
4. For EACH variation provide a reasoning chain of 1-%d claims:
   - claim_id: short unique ID within the chain such as "①", "②" or "A1"
   - FACT claims about what the variation does, backed by evidence citations
   - VALUE claims about whether that is good or bad for the observer
   - POLICY claims with the strategic recommendation
   - links from claims to claims they support, attack, explain or match (only between claim_ids of the same chain)
   - a prose_summary synthesizing the chain
   - up to %d key advantages and %d key disadvantages, an enforceability_confidence belief value and a business_risk_level (%s)
5. Finish with a comparative analysis: one reasoning chain comparing ALL variations and %d-%d strategic recommendations

## Key Principles:

1. Be specific: claims should be concrete, not vague
2. Show confidence: use belief strength appropriately
3. Cite evidence: each factual claim needs evidence support
4. Map arguments: facts support values, values support policy
5. Think strategically: consider negotiation dynamics, not just legal correctness
`,
		model.MinVariations, model.MaxVariations, model.MaxChainClaims,
		model.MaxKeyPoints, model.MaxKeyPoints, joinValues(model.AllRiskLevels()),
		model.MinRecommendations, model.MaxRecommendations)

	return b.String()
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// observerRule maps clause-type keywords to the usual opposing parties
type observerRule struct {
	keywords []string
	roles    []string
}

var observerRules = []observerRule{
	{keywords: []string{"landlord", "tenant", "lease"}, roles: []string{"Landlord", "Tenant"}},
	{keywords: []string{"employment", "non-compete", "non-solicitation"}, roles: []string{"Employer", "Employee"}},
	{keywords: []string{"vendor", "supplier"}, roles: []string{"Buyer", "Seller"}},
	{keywords: []string{"confidentiality", "nda"}, roles: []string{"Disclosing Party", "Receiving Party"}},
	{keywords: []string{"indemnification"}, roles: []string{"Indemnitor", "Indemnitee"}},
	{keywords: []string{"termination"}, roles: []string{"Service Provider", "Client"}},
}

var defaultObservers = []string{"Party A (Stronger)", "Party B (Weaker)"}

// ObserverHints returns the candidate observer roles for a clause type.
// The first matching rule wins; matching is case-insensitive on substrings.
func ObserverHints(clauseType string) []string {
	lower := strings.ToLower(clauseType)
	for _, rule := range observerRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.roles
			}
		}
	}
	return defaultObservers
}

// UserPrompt builds the per-clause request
func UserPrompt(data model.ClauseData) string {
	clauseType := data.FieldOr(model.FieldClauseType, "Unknown")

	return fmt.Sprintf(`Analyze this clause and generate negotiation variations with STRUCTURED REASONING:

**Original Clause:**
%s

**Metadata:**
- Clause Type: %s
- Area of Law: %s
- Location: %s
- Industry: %s
- Date Context: %s

**Observer Selection:**
Select ONE observer perspective from: %s
(or suggest another appropriate role for this %s)

Focus on practical negotiation strategy, risk allocation, and enforceability considerations.`,
		data.Field(model.FieldClause),
		clauseType,
		data.FieldOr(model.FieldAreaOfLaw, "Unknown"),
		data.FieldOr(model.FieldLocation, "Unknown"),
		data.FieldOr(model.FieldIndustry, "Unknown"),
		data.FieldOr(model.FieldDate, "Unknown"),
		strings.Join(ObserverHints(clauseType), ", "),
		clauseType,
	)
}

// retryPrompt appends the reason the previous answer was rejected
func retryPrompt(prompt string, rejection error) string {
	return fmt.Sprintf("%s\n\nYour previous answer was rejected: %v\nReturn a corrected analysis that satisfies every constraint.", prompt, rejection)
}
