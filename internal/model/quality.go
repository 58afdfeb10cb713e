package model

// Score is a transparent support breakdown for one generated analysis.
// It describes how well the reasoning is backed, not whether it is right.
type Score struct {
	Index      int      `json:"index"`      // Overall support index (0-100)
	Confidence string   `json:"confidence"` // "low", "low-medium", "medium", "high"
	Signals    []Signal `json:"signals"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"` // Inputs and formula behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalEvidenceCoverage SignalType = "evidence_coverage" // Citations per claim
	SignalEvidenceStrength SignalType = "evidence_strength" // Strength distribution of citations
	SignalConnectivity     SignalType = "connectivity"      // Claims taking part in a link
	SignalRankConsistency  SignalType = "rank_consistency"  // Rank order agrees with value scores
	SignalDanglingLinks    SignalType = "dangling_links"    // Links to claims that do not exist
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
