package model

import "fmt"

// EvidenceCitation is one piece of evidence backing a claim
type EvidenceCitation struct {
	Source      EvidenceSource   `json:"source"`      // Type/source of evidence
	Strength    EvidenceStrength `json:"strength"`    // How strong it is
	Description string           `json:"description"` // What it shows
}

// Validate checks source and strength against the closed vocabularies
func (e EvidenceCitation) Validate() error {
	if !e.Source.IsValid() {
		return fmt.Errorf("source %q: %w", e.Source, ErrInvalidCategory)
	}
	if !e.Strength.IsValid() {
		return fmt.Errorf("strength %q: %w", e.Strength, ErrInvalidCategory)
	}
	return nil
}
