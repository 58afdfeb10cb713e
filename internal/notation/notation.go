// Package notation renders reasoning chains into the compact symbolic
// notation and renders stored records for human inspection.
//
// Rendering is deterministic: output depends only on the input values and
// their storage order. Unknown category values render as model.SymbolPlaceholder.
package notation

import (
	"strings"

	"github.com/ppiankov/clausegen/internal/model"
)

const (
	evidenceSeparator = " ⋀ "
	entailment        = "⊢"
	linksHeader       = "Links:"
)

// EvidenceLine renders a citation as <source><strength> with no separator
func EvidenceLine(e model.EvidenceCitation) string {
	return e.Source.Symbol() + e.Strength.Symbol()
}

// ClaimLine renders one claim:
//
//	<id> «<agent>» <belief><value> <type> "<proposition>" ⊢ <ev> ⋀ <ev>
func ClaimLine(c model.Claim) string {
	var b strings.Builder
	b.WriteString(c.ClaimID)
	b.WriteString(" «")
	b.WriteString(c.Agent)
	b.WriteString("» ")
	b.WriteString(c.Belief.Symbol())
	b.WriteString(c.Value.Symbol())
	b.WriteString(" ")
	b.WriteString(c.ClaimType.Symbol())
	b.WriteString(` "`)
	b.WriteString(c.Proposition)
	b.WriteString(`"`)

	if len(c.Evidence) > 0 {
		b.WriteString(" ")
		b.WriteString(entailment)
		b.WriteString(" ")
		for i, ev := range c.Evidence {
			if i > 0 {
				b.WriteString(evidenceSeparator)
			}
			b.WriteString(EvidenceLine(ev))
		}
	}
	return b.String()
}

// LinkLine renders one link, with "  // <explanation>" when present
func LinkLine(l model.ArgumentLink) string {
	line := l.FromClaim + " " + l.Relation.Symbol() + " " + l.ToClaim
	if l.Explanation != "" {
		line += "  // " + l.Explanation
	}
	return line
}

// Chain renders claims then, if any, a blank line, "Links:" and the links,
// all in storage order and joined by newlines
func Chain(chain *model.ReasoningChain) string {
	lines := make([]string, 0, len(chain.Claims)+len(chain.Links)+2)
	for _, c := range chain.Claims {
		lines = append(lines, ClaimLine(c))
	}

	if len(chain.Links) > 0 {
		lines = append(lines, "", linksHeader)
		for _, l := range chain.Links {
			lines = append(lines, LinkLine(l))
		}
	}
	return strings.Join(lines, "\n")
}
