// Package score grades how well a generated analysis backs its claims:
// citation coverage and strength, link connectivity and rank consistency.
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/clausegen/internal/model"
)

// danglingPenalty is subtracted once when any chain has a dangling link
const danglingPenalty = 10

// Scorer calculates the support index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores every reasoning chain of the analysis together
func (s *Scorer) Calculate(a *model.NegotiationAnalysis) model.Score {
	if a == nil {
		return model.Score{Confidence: "low"}
	}
	chains := a.Chains()

	var claims []model.Claim
	var evidence []model.EvidenceCitation
	for _, c := range chains {
		claims = append(claims, c.Claims...)
		for _, claim := range c.Claims {
			evidence = append(evidence, claim.Evidence...)
		}
	}

	var signals []model.Signal

	// 1. Evidence Coverage (0-40 points)
	coverageScore, coverageSignal := s.calculateCoverage(len(claims), len(evidence))
	signals = append(signals, coverageSignal)

	// 2. Evidence Strength (0-30 points)
	strengthScore, strengthSignal := s.calculateStrength(evidence)
	signals = append(signals, strengthSignal)

	// 3. Connectivity (0-20 points)
	connectivityScore, connectivitySignal := s.calculateConnectivity(chains)
	signals = append(signals, connectivitySignal)

	// 4. Rank consistency (0-10 points)
	rankScore, rankSignal := s.calculateRankConsistency(a.Variations)
	signals = append(signals, rankSignal)

	// 5. Dangling links (penalty)
	dangling, danglingSignal := s.detectDangling(chains)
	if dangling {
		signals = append(signals, danglingSignal)
	}

	totalScore := coverageScore + strengthScore + connectivityScore + rankScore
	if dangling {
		totalScore = max(totalScore-danglingPenalty, 0)
	}

	return model.Score{
		Index:      totalScore,
		Confidence: s.determineConfidence(totalScore, len(claims), dangling),
		Signals:    signals,
	}
}

// calculateCoverage calculates evidence coverage score (0-40 points)
func (s *Scorer) calculateCoverage(claimCount, evidenceCount int) (int, model.Signal) {
	if claimCount == 0 {
		return 0, model.Signal{
			Type:        model.SignalEvidenceCoverage,
			Severity:    model.SeverityCritical,
			Description: "No claims in any reasoning chain",
			Data:        map[string]any{"claims": 0, "evidence": evidenceCount},
		}
	}

	ratio := float64(evidenceCount) / float64(claimCount)
	score := int(math.Min(ratio*40, 40))

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalEvidenceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence-to-claim ratio: %.2f", ratio),
		Data: map[string]any{
			"claims":   claimCount,
			"evidence": evidenceCount,
			"ratio":    ratio,
			"score":    score,
			"formula":  "min(evidence_count / claim_count * 40, 40)",
		},
	}
}

// calculateStrength calculates evidence strength score (0-30 points)
func (s *Scorer) calculateStrength(evidence []model.EvidenceCitation) (int, model.Signal) {
	if len(evidence) == 0 {
		return 0, model.Signal{
			Type:        model.SignalEvidenceStrength,
			Severity:    model.SeverityWarning,
			Description: "No evidence cited",
			Data:        map[string]any{"cited": 0},
		}
	}

	counts := make(map[model.EvidenceStrength]int)
	weightedSum := 0
	for _, e := range evidence {
		counts[e.Strength]++
		weightedSum += e.Strength.Rank()
	}

	maxPossible := len(evidence) * model.StrengthVeryStrong.Rank()
	score := int(float64(weightedSum) / float64(maxPossible) * 30)

	strong := counts[model.StrengthVeryStrong] + counts[model.StrengthStrong]
	weak := counts[model.StrengthWeak] + counts[model.StrengthVeryWeak]

	severity := model.SeverityInfo
	if strong == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalEvidenceStrength,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence strength: %d strong, %d weak", strong, weak),
		Data: map[string]any{
			"very_strong": counts[model.StrengthVeryStrong],
			"strong":      counts[model.StrengthStrong],
			"weak":        counts[model.StrengthWeak],
			"very_weak":   counts[model.StrengthVeryWeak],
			"total":       len(evidence),
			"score":       score,
			"formula":     "(very_strong*4 + strong*3 + weak*2 + very_weak*1) / (total*4) * 30",
		},
	}
}

// calculateConnectivity calculates the share of claims joined by a resolved link (0-20 points)
func (s *Scorer) calculateConnectivity(chains []*model.ReasoningChain) (int, model.Signal) {
	total, linked := 0, 0
	for _, c := range chains {
		touched := make(map[string]bool)
		for _, link := range c.Links {
			_, fromOK := c.FindClaim(link.FromClaim)
			_, toOK := c.FindClaim(link.ToClaim)
			if fromOK && toOK {
				touched[link.FromClaim] = true
				touched[link.ToClaim] = true
			}
		}
		for _, claim := range c.Claims {
			total++
			if touched[claim.ClaimID] {
				linked++
			}
		}
	}

	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalConnectivity,
			Severity:    model.SeverityWarning,
			Description: "No claims to connect",
			Data:        map[string]any{"claims": 0},
		}
	}

	ratio := float64(linked) / float64(total)
	score := int(ratio * 20)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalConnectivity,
		Severity:    severity,
		Description: fmt.Sprintf("Linked claims: %d/%d (%.0f%%)", linked, total, ratio*100),
		Data: map[string]any{
			"linked":  linked,
			"claims":  total,
			"ratio":   ratio,
			"score":   score,
			"formula": "(linked_claims / claims) * 20",
		},
	}
}

// calculateRankConsistency checks that better ranks carry higher value scores (0-10 points)
func (s *Scorer) calculateRankConsistency(variations []model.ClauseVariation) (int, model.Signal) {
	ranked := make([]model.ClauseVariation, len(variations))
	copy(ranked, variations)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })

	pairs, inversions := 0, 0
	for i := range ranked {
		for j := i + 1; j < len(ranked); j++ {
			pairs++
			if ranked[i].ValueScore < ranked[j].ValueScore {
				inversions++
			}
		}
	}

	score := 10
	if pairs > 0 {
		score = int(10 * (1 - float64(inversions)/float64(pairs)))
	}

	severity := model.SeverityInfo
	if inversions > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalRankConsistency,
		Severity:    severity,
		Description: fmt.Sprintf("Rank/score inversions: %d of %d pairs", inversions, pairs),
		Data: map[string]any{
			"variations": len(variations),
			"pairs":      pairs,
			"inversions": inversions,
			"score":      score,
			"formula":    "10 * (1 - inversions / pairs)",
		},
	}
}

// detectDangling reports links whose endpoints match no claim in their chain
func (s *Scorer) detectDangling(chains []*model.ReasoningChain) (bool, model.Signal) {
	count := 0
	for _, c := range chains {
		count += len(c.DanglingLinks())
	}
	if count == 0 {
		return false, model.Signal{}
	}

	return true, model.Signal{
		Type:        model.SignalDanglingLinks,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d link(s) reference claims that do not exist", count),
		Data: map[string]any{
			"links":   count,
			"penalty": danglingPenalty,
		},
	}
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score int, claimCount int, dangling bool) string {
	if dangling {
		return "low-medium"
	}

	if claimCount < 3 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	}
	return "low"
}
