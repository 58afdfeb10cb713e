// Package ledger fingerprints input clauses and tracks which fingerprints
// already have a record in the output log.
package ledger

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/ppiankov/clausegen/internal/model"
)

// DigestSize is the BLAKE2b digest length in bytes
const DigestSize = 16

// fingerprintFields are hashed in this order, joined by "|"
var fingerprintFields = []string{
	model.FieldClause,
	model.FieldDate,
	model.FieldAreaOfLaw,
	model.FieldLocation,
	model.FieldIndustry,
	model.FieldClauseType,
}

// Fingerprint returns the 32-char lowercase hex identity of a clause.
// Only the clause text and its five metadata fields contribute; absent fields
// hash as empty strings.
func Fingerprint(data model.ClauseData) string {
	parts := make([]string, len(fingerprintFields))
	for i, name := range fingerprintFields {
		parts[i] = data.Field(name)
	}

	h, err := blake2b.New(DigestSize, nil)
	if err != nil {
		// only reachable with an invalid size or key
		panic(err)
	}
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
