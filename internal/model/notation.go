package model

// SymbolPlaceholder is rendered for category values that have no symbol
const SymbolPlaceholder = "?"

// BeliefStrength is the epistemic confidence in a claim's truth
type BeliefStrength string

const (
	BeliefCertainTrue  BeliefStrength = "certain_true"  // ⬤
	BeliefStrongTrue   BeliefStrength = "strong_true"   // ●
	BeliefLeanTrue     BeliefStrength = "lean_true"     // ◐
	BeliefUndecided    BeliefStrength = "undecided"     // ◌
	BeliefLeanFalse    BeliefStrength = "lean_false"    // ◑
	BeliefCertainFalse BeliefStrength = "certain_false" // ○
)

var beliefSymbols = map[BeliefStrength]string{
	BeliefCertainTrue:  "⬤",
	BeliefStrongTrue:   "●",
	BeliefLeanTrue:     "◐",
	BeliefUndecided:    "◌",
	BeliefLeanFalse:    "◑",
	BeliefCertainFalse: "○",
}

// AllBeliefStrengths returns the scale from definite-true to definite-false
func AllBeliefStrengths() []BeliefStrength {
	return []BeliefStrength{
		BeliefCertainTrue, BeliefStrongTrue, BeliefLeanTrue,
		BeliefUndecided, BeliefLeanFalse, BeliefCertainFalse,
	}
}

// IsValid reports whether b is a known belief strength
func (b BeliefStrength) IsValid() bool {
	_, ok := beliefSymbols[b]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (b BeliefStrength) Symbol() string {
	return symbolOr(beliefSymbols, b)
}

// ValueAttitude is the normative stance toward a state of affairs
type ValueAttitude string

const (
	ValueApprove    ValueAttitude = "approve"    // ⬆
	ValueDisapprove ValueAttitude = "disapprove" // ⬇
	ValueMixed      ValueAttitude = "mixed"      // ⇆
	ValueNeutral    ValueAttitude = "neutral"    // ⟂
)

var valueSymbols = map[ValueAttitude]string{
	ValueApprove:    "⬆",
	ValueDisapprove: "⬇",
	ValueMixed:      "⇆",
	ValueNeutral:    "⟂",
}

// AllValueAttitudes returns every value attitude
func AllValueAttitudes() []ValueAttitude {
	return []ValueAttitude{ValueApprove, ValueDisapprove, ValueMixed, ValueNeutral}
}

// IsValid reports whether v is a known value attitude
func (v ValueAttitude) IsValid() bool {
	_, ok := valueSymbols[v]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (v ValueAttitude) Symbol() string {
	return symbolOr(valueSymbols, v)
}

// ClaimType is the pragmatic category of an assertion
type ClaimType string

const (
	ClaimTypeFact       ClaimType = "fact"       // ⧈ descriptive/empirical
	ClaimTypeValue      ClaimType = "value"      // ⚖ ethical/normative
	ClaimTypePolicy     ClaimType = "policy"     // ⏵ action recommendation
	ClaimTypePreference ClaimType = "preference" // ✦ taste
)

var claimTypeSymbols = map[ClaimType]string{
	ClaimTypeFact:       "⧈",
	ClaimTypeValue:      "⚖",
	ClaimTypePolicy:     "⏵",
	ClaimTypePreference: "✦",
}

// AllClaimTypes returns every claim type
func AllClaimTypes() []ClaimType {
	return []ClaimType{ClaimTypeFact, ClaimTypeValue, ClaimTypePolicy, ClaimTypePreference}
}

// IsValid reports whether t is a known claim type
func (t ClaimType) IsValid() bool {
	_, ok := claimTypeSymbols[t]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (t ClaimType) Symbol() string {
	return symbolOr(claimTypeSymbols, t)
}

// EvidenceSource classifies where a piece of evidence comes from
type EvidenceSource string

const (
	SourceLegalPrecedent   EvidenceSource = "legal_precedent"   // case law
	SourceStatute          EvidenceSource = "statute"           // statutory authority
	SourceData             EvidenceSource = "data"              // data/statistics
	SourceTheory           EvidenceSource = "theory"            // theory/literature
	SourceObservation      EvidenceSource = "observation"       // direct observation
	SourceTestimony        EvidenceSource = "testimony"         // expert/authority testimony
	SourceIndustryPractice EvidenceSource = "industry_practice" // standard industry practice
	SourceEconomic         EvidenceSource = "economic"          // economic/cost analysis
	SourceRisk             EvidenceSource = "risk"              // risk analysis
)

var sourceSymbols = map[EvidenceSource]string{
	SourceLegalPrecedent:   "⚖️",
	SourceStatute:          "📜",
	SourceData:             "📊",
	SourceTheory:           "📚",
	SourceObservation:      "👁",
	SourceTestimony:        "🗣",
	SourceIndustryPractice: "🏢",
	SourceEconomic:         "💰",
	SourceRisk:             "⚠",
}

// AllEvidenceSources returns every evidence source
func AllEvidenceSources() []EvidenceSource {
	return []EvidenceSource{
		SourceLegalPrecedent, SourceStatute, SourceData, SourceTheory, SourceObservation,
		SourceTestimony, SourceIndustryPractice, SourceEconomic, SourceRisk,
	}
}

// IsValid reports whether s is a known evidence source
func (s EvidenceSource) IsValid() bool {
	_, ok := sourceSymbols[s]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (s EvidenceSource) Symbol() string {
	return symbolOr(sourceSymbols, s)
}

// EvidenceStrength is a strictly ordered discrete scale
type EvidenceStrength string

const (
	StrengthVeryStrong EvidenceStrength = "very_strong" // ★★★
	StrengthStrong     EvidenceStrength = "strong"      // ★★
	StrengthWeak       EvidenceStrength = "weak"        // ★
	StrengthVeryWeak   EvidenceStrength = "very_weak"   // ☆
)

var strengthSymbols = map[EvidenceStrength]string{
	StrengthVeryStrong: "★★★",
	StrengthStrong:     "★★",
	StrengthWeak:       "★",
	StrengthVeryWeak:   "☆",
}

// AllEvidenceStrengths returns the scale from strongest to weakest
func AllEvidenceStrengths() []EvidenceStrength {
	return []EvidenceStrength{StrengthVeryStrong, StrengthStrong, StrengthWeak, StrengthVeryWeak}
}

// IsValid reports whether s is a known evidence strength
func (s EvidenceStrength) IsValid() bool {
	_, ok := strengthSymbols[s]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (s EvidenceStrength) Symbol() string {
	return symbolOr(strengthSymbols, s)
}

// Rank orders strengths: very_strong=4 down to very_weak=1, unknown=0
func (s EvidenceStrength) Rank() int {
	switch s {
	case StrengthVeryStrong:
		return 4
	case StrengthStrong:
		return 3
	case StrengthWeak:
		return 2
	case StrengthVeryWeak:
		return 1
	default:
		return 0
	}
}

// RelationType is the kind of edge between two claims
type RelationType string

const (
	RelationSupports   RelationType = "supports"   // ⟶
	RelationAttacks    RelationType = "attacks"    // ⟞
	RelationExplains   RelationType = "explains"   // ⇢
	RelationEquivalent RelationType = "equivalent" // ⟺
)

var relationSymbols = map[RelationType]string{
	RelationSupports:   "⟶",
	RelationAttacks:    "⟞",
	RelationExplains:   "⇢",
	RelationEquivalent: "⟺",
}

// AllRelationTypes returns every relation type
func AllRelationTypes() []RelationType {
	return []RelationType{RelationSupports, RelationAttacks, RelationExplains, RelationEquivalent}
}

// IsValid reports whether r is a known relation type
func (r RelationType) IsValid() bool {
	_, ok := relationSymbols[r]
	return ok
}

// Symbol returns the notation glyph, or SymbolPlaceholder for unknown values
func (r RelationType) Symbol() string {
	return symbolOr(relationSymbols, r)
}

// RiskLevel grades business risk of a variation
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// AllRiskLevels returns every risk level, lowest first
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskVeryLow, RiskLow, RiskModerate, RiskHigh, RiskVeryHigh}
}

// IsValid reports whether r is a known risk level
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskVeryLow, RiskLow, RiskModerate, RiskHigh, RiskVeryHigh:
		return true
	default:
		return false
	}
}

func symbolOr[K ~string](table map[K]string, key K) string {
	if sym, ok := table[key]; ok {
		return sym
	}
	return SymbolPlaceholder
}
