package model

import "fmt"

// MaxChainClaims bounds the size of a reasoning chain
const MaxChainClaims = 10

// ReasoningChain is a bounded set of claims, the links between them and a
// prose synthesis. It is built once and not modified afterwards; the link list
// is the only record of graph structure.
type ReasoningChain struct {
	Claims       []Claim        `json:"claims"`
	Links        []ArgumentLink `json:"links"`
	ProseSummary string         `json:"prose_summary"`
}

// NewReasoningChain builds a validated chain. Claim IDs must be unique;
// link endpoints are not checked against the claim set.
func NewReasoningChain(claims []Claim, links []ArgumentLink, proseSummary string) (*ReasoningChain, error) {
	chain := &ReasoningChain{
		Claims:       append([]Claim(nil), claims...),
		Links:        append([]ArgumentLink(nil), links...),
		ProseSummary: proseSummary,
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

// Validate enforces the 1..MaxChainClaims bound, unique claim IDs and known
// category values on every claim and link
func (c *ReasoningChain) Validate() error {
	if len(c.Claims) == 0 {
		return ErrNoClaims
	}
	if len(c.Claims) > MaxChainClaims {
		return fmt.Errorf("%d claims (max %d): %w", len(c.Claims), MaxChainClaims, ErrTooManyClaims)
	}

	seen := make(map[string]bool, len(c.Claims))
	for _, claim := range c.Claims {
		if err := claim.Validate(); err != nil {
			return err
		}
		if seen[claim.ClaimID] {
			return fmt.Errorf("claim %s: %w", claim.ClaimID, ErrDuplicateClaimID)
		}
		seen[claim.ClaimID] = true
	}

	for _, link := range c.Links {
		if err := link.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindClaim returns the claim with the given ID
func (c *ReasoningChain) FindClaim(id string) (Claim, bool) {
	for _, claim := range c.Claims {
		if claim.ClaimID == id {
			return claim, true
		}
	}
	return Claim{}, false
}

// SupportersOf returns the claims linked to id by a supports edge
func (c *ReasoningChain) SupportersOf(id string) []Claim {
	return c.Neighbors(id, RelationSupports)
}

// AttackersOf returns the claims linked to id by an attacks edge
func (c *ReasoningChain) AttackersOf(id string) []Claim {
	return c.Neighbors(id, RelationAttacks)
}

// Neighbors returns every claim X with a link X -> id of the given relation,
// in chain storage order. Link sources that match no claim are dropped.
func (c *ReasoningChain) Neighbors(id string, relation RelationType) []Claim {
	from := make(map[string]bool)
	for _, link := range c.Links {
		if link.ToClaim == id && link.Relation == relation {
			from[link.FromClaim] = true
		}
	}
	if len(from) == 0 {
		return nil
	}

	var out []Claim
	for _, claim := range c.Claims {
		if from[claim.ClaimID] {
			out = append(out, claim)
		}
	}
	return out
}

// DanglingLinks returns links with at least one endpoint that matches no claim
func (c *ReasoningChain) DanglingLinks() []ArgumentLink {
	ids := make(map[string]bool, len(c.Claims))
	for _, claim := range c.Claims {
		ids[claim.ClaimID] = true
	}

	var out []ArgumentLink
	for _, link := range c.Links {
		if !ids[link.FromClaim] || !ids[link.ToClaim] {
			out = append(out, link)
		}
	}
	return out
}
