// Package store reads clause inputs and reads/appends the JSONL output log.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/clausegen/internal/model"
)

// ScanLines calls fn for every non-blank line of r with its 1-based line number.
// Lines of any length are supported. A non-nil error from fn stops the scan.
func ScanLines(r io.Reader, fn func(lineNum int, line []byte) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	lineNum := 0
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				if ferr := fn(lineNum, trimmed); ferr != nil {
					return ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", lineNum+1, err)
		}
	}
}

// Decode unmarshals one JSON line, keeping numbers as json.Number
func Decode(line []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	return dec.Decode(v)
}

// ReadClauses loads input clauses from a JSONL file. Lines that are not JSON
// objects are skipped with a warning.
func ReadClauses(path string, logger *zap.Logger) ([]model.ClauseData, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var clauses []model.ClauseData
	err = ScanLines(f, func(lineNum int, line []byte) error {
		var data model.ClauseData
		if err := Decode(line, &data); err != nil || data == nil {
			logger.Warn("skipping malformed input line",
				zap.String("path", path), zap.Int("line", lineNum), zap.Error(err))
			return nil
		}
		clauses = append(clauses, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return clauses, nil
}

// Window applies a start offset and an optional cap (max <= 0 means no cap)
func Window(clauses []model.ClauseData, offset, max int) []model.ClauseData {
	if offset > 0 {
		if offset >= len(clauses) {
			return nil
		}
		clauses = clauses[offset:]
	}
	if max > 0 && max < len(clauses) {
		clauses = clauses[:max]
	}
	return clauses
}

// ReadRecords loads every well-formed record from an output log. Malformed
// lines are skipped with a warning.
func ReadRecords(path string, logger *zap.Logger) ([]model.ClauseRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	var records []model.ClauseRecord
	err = ScanLines(f, func(lineNum int, line []byte) error {
		var rec model.ClauseRecord
		if err := Decode(line, &rec); err != nil {
			logger.Warn("skipping malformed record",
				zap.String("path", path), zap.Int("line", lineNum), zap.Error(err))
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	return records, nil
}
