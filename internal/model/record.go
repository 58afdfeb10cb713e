package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Input clause fields read by the core. Everything else in ClauseData is passed through.
const (
	FieldClause     = "clause"
	FieldDate       = "date"
	FieldAreaOfLaw  = "area_of_law"
	FieldLocation   = "location"
	FieldIndustry   = "industry"
	FieldClauseType = "clause_type"
)

// ClauseData is one taxonomy-sampled input clause, kept as an opaque blob.
// Decode it with json.Decoder.UseNumber so numbers round-trip unchanged.
type ClauseData map[string]any

// Field returns the named field as a string; absent or null fields yield ""
func (d ClauseData) Field(name string) string {
	v, ok := d[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// FieldOr returns the named field, or fallback when it is empty
func (d ClauseData) FieldOr(name, fallback string) string {
	if s := d.Field(name); s != "" {
		return s
	}
	return fallback
}

// ClauseRecord is one line of the output log. It is written once and never updated.
type ClauseRecord struct {
	ClauseHash          string               `json:"clause_hash"`
	OriginalClauseData  ClauseData           `json:"original_clause_data"`
	NegotiationAnalysis *NegotiationAnalysis `json:"negotiation_analysis"`
	Timestamp           time.Time            `json:"timestamp"`
}
