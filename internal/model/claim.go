package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyClaimID     = errors.New("claim_id is empty")
	ErrDuplicateClaimID = errors.New("duplicate claim_id")
	ErrNoClaims         = errors.New("reasoning chain has no claims")
	ErrTooManyClaims    = errors.New("reasoning chain has too many claims")
	ErrInvalidCategory  = errors.New("unrecognized category value")
)

// Claim is a single assertion held by one stakeholder
type Claim struct {
	ClaimID     string             `json:"claim_id"`           // Short identifier, e.g. "①" or "A1"
	Agent       string             `json:"agent"`              // Who holds the view, e.g. "Landlord"
	Proposition string             `json:"proposition"`        // The claim in natural language
	Belief      BeliefStrength     `json:"belief"`             // Confidence in truth
	Value       ValueAttitude      `json:"value"`              // Normative stance, independent of belief
	ClaimType   ClaimType          `json:"claim_type"`         // Pragmatic category
	Evidence    []EvidenceCitation `json:"evidence,omitempty"` // Ordered citations
}

// Validate checks the claim's identifier and every categorical field.
// Belief, value and claim type are orthogonal: any valid combination passes.
func (c Claim) Validate() error {
	if c.ClaimID == "" {
		return ErrEmptyClaimID
	}
	if !c.Belief.IsValid() {
		return fmt.Errorf("claim %s: belief %q: %w", c.ClaimID, c.Belief, ErrInvalidCategory)
	}
	if !c.Value.IsValid() {
		return fmt.Errorf("claim %s: value %q: %w", c.ClaimID, c.Value, ErrInvalidCategory)
	}
	if !c.ClaimType.IsValid() {
		return fmt.Errorf("claim %s: claim_type %q: %w", c.ClaimID, c.ClaimType, ErrInvalidCategory)
	}
	for i, ev := range c.Evidence {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("claim %s: evidence %d: %w", c.ClaimID, i, err)
		}
	}
	return nil
}

// ArgumentLink is a directed edge between two claims of the same chain.
// Endpoints are not required to resolve; unresolved ones are skipped by traversal.
type ArgumentLink struct {
	FromClaim   string       `json:"from_claim"`
	ToClaim     string       `json:"to_claim"`
	Relation    RelationType `json:"relation"`
	Explanation string       `json:"explanation,omitempty"`
}

// Validate checks the relation value only
func (l ArgumentLink) Validate() error {
	if !l.Relation.IsValid() {
		return fmt.Errorf("link %s->%s: relation %q: %w", l.FromClaim, l.ToClaim, l.Relation, ErrInvalidCategory)
	}
	return nil
}
