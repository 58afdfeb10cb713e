package notation

import (
	"fmt"
	"strings"

	"github.com/ppiankov/clausegen/internal/model"
)

const (
	rule       = "================================================================================"
	thinRule   = "--------------------------------------------------------------------------------"
	clauseCap  = 200
	variantCap = 300
)

// AnalysisOptions controls record inspection output
type AnalysisOptions struct {
	// ShowOriginal prints the original clause metadata block
	ShowOriginal bool
}

// Analysis renders a stored record as a full human-readable report
func Analysis(rec *model.ClauseRecord, opts AnalysisOptions) string {
	var w report
	w.line(rule)
	w.line("NEGOTIATION VARIATION ANALYSIS")
	w.line(rule)
	w.blank()

	if opts.ShowOriginal {
		data := rec.OriginalClauseData
		w.line("ORIGINAL CLAUSE:")
		w.linef("  Type: %s", data.Field(model.FieldClauseType))
		w.linef("  Area: %s", data.Field(model.FieldAreaOfLaw))
		w.linef("  Location: %s", data.Field(model.FieldLocation))
		w.linef("  Industry: %s", data.Field(model.FieldIndustry))
		w.blank()
		w.linef("  Text: %s", truncate(data.Field(model.FieldClause), clauseCap))
		w.blank()
	}

	a := rec.NegotiationAnalysis
	if a == nil {
		w.line("(no analysis)")
		w.blank()
		w.line(rule)
		return w.String()
	}

	w.linef("OBSERVER: «%s»", a.Context.ObserverRole)
	w.linef("Interests: %s", a.Context.ObserverInterests)
	w.blank()
	w.line(thinRule)

	for _, v := range a.Variations {
		w.blank()
		w.linef("VARIATION %s (Rank #%d, Score: %.1f)", v.VariationID, v.Rank, v.ValueScore)
		w.line(rule)
		w.blank()
		w.line("Text:")
		w.linef("  %s", truncate(v.VariationText, variantCap))
		w.blank()

		r := v.Reasoning
		w.line("STRUCTURED REASONING:")
		w.blank()
		w.chain(&r.ReasoningChain)

		if len(r.KeyAdvantages) > 0 {
			w.blank()
			w.line("Key Advantages:")
			for _, adv := range r.KeyAdvantages {
				w.linef("  + %s", adv)
			}
		}
		if len(r.KeyDisadvantages) > 0 {
			w.blank()
			w.line("Key Disadvantages:")
			for _, dis := range r.KeyDisadvantages {
				w.linef("  - %s", dis)
			}
		}

		w.blank()
		w.linef("Enforceability Confidence: %s (%s)", r.EnforceabilityConfidence.Symbol(), r.EnforceabilityConfidence)
		w.linef("Business Risk: %s", orNA(string(r.BusinessRiskLevel)))
		w.blank()
		w.line(thinRule)
	}

	comp := a.ComparativeAnalysis
	w.blank()
	w.line("COMPARATIVE ANALYSIS")
	w.line(rule)
	w.blank()
	w.chain(&comp.ReasoningChain)

	if len(comp.StrategicRecommendations) > 0 {
		w.blank()
		w.line("Strategic Recommendations:")
		for i, advice := range comp.StrategicRecommendations {
			w.linef("  %d. %s", i+1, advice)
		}
	}

	w.blank()
	w.line(rule)
	return w.String()
}

type report struct {
	lines []string
}

func (r *report) line(s string) { r.lines = append(r.lines, s) }

func (r *report) linef(format string, args ...any) { r.line(fmt.Sprintf(format, args...)) }

func (r *report) blank() { r.line("") }

func (r *report) String() string { return strings.Join(r.lines, "\n") }

// chain writes indented claims with evidence descriptions, links and the prose summary
func (r *report) chain(c *model.ReasoningChain) {
	for _, claim := range c.Claims {
		r.line("  " + ClaimLine(claim))
		for _, ev := range claim.Evidence {
			r.linef("    → %s", ev.Description)
		}
	}

	if len(c.Links) > 0 {
		r.blank()
		r.line("  " + linksHeader)
		for _, l := range c.Links {
			r.line("  " + LinkLine(l))
		}
	}

	r.blank()
	r.line("PROSE SUMMARY:")
	r.linef("  %s", orNA(c.ProseSummary))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
