package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/model/modeltest"
)

func TestFingerprint_KnownValues(t *testing.T) {
	// hashes already present in existing output logs
	assert.Equal(t, "d4b7af1b84ddbee4a4a38dec51d6b577", Fingerprint(modeltest.Clause(1)))
	assert.Equal(t, "6a9739069fbabf5be0735a7b2bc3b4da", Fingerprint(model.ClauseData{}))
}

func TestFingerprint_Shape(t *testing.T) {
	fp := Fingerprint(modeltest.Clause(7))
	assert.Len(t, fp, 2*DigestSize)
	assert.Regexp(t, "^[0-9a-f]+$", fp)
}

func TestFingerprint_IgnoresNonKeyFields(t *testing.T) {
	a := modeltest.Clause(1)
	b := modeltest.Clause(1)
	b["source_id"] = "xyz"
	b["notes"] = map[string]any{"k": 1}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_SensitiveToEachKeyField(t *testing.T) {
	base := Fingerprint(modeltest.Clause(1))
	for _, field := range fingerprintFields {
		t.Run(field, func(t *testing.T) {
			d := modeltest.Clause(1)
			d[field] = "changed"
			assert.NotEqual(t, base, Fingerprint(d))
		})
	}
}

func TestFingerprint_AbsentEqualsEmpty(t *testing.T) {
	a := modeltest.Clause(1)
	delete(a, model.FieldIndustry)
	b := modeltest.Clause(1)
	b[model.FieldIndustry] = ""
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestLedger_ReserveAddRelease(t *testing.T) {
	l := New()

	assert.True(t, l.Reserve("a"))
	assert.False(t, l.Reserve("a"), "second reservation must fail while in flight")
	assert.False(t, l.Contains("a"))

	l.Release("a")
	assert.True(t, l.Reserve("a"), "released fingerprint can be reserved again")

	l.Add("a")
	assert.True(t, l.Contains("a"))
	assert.False(t, l.Reserve("a"), "committed fingerprint cannot be reserved")
	assert.Equal(t, 1, l.Len())
}

func TestLedger_ConcurrentReserveSingleWinner(t *testing.T) {
	l := New()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Reserve("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestLedger_ClaimWaitsForInflight(t *testing.T) {
	tests := []struct {
		name   string
		finish func(l *Ledger)
		want   bool
	}{
		{name: "released", finish: func(l *Ledger) { l.Release("a") }, want: true},
		{name: "committed", finish: func(l *Ledger) { l.Add("a") }, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			ok, err := l.Claim(context.Background(), "a")
			require.NoError(t, err)
			require.True(t, ok)

			type result struct {
				ok  bool
				err error
			}
			got := make(chan result, 1)
			go func() {
				ok, err := l.Claim(context.Background(), "a")
				got <- result{ok, err}
			}()

			select {
			case r := <-got:
				t.Fatalf("claim returned %v while the fingerprint was in flight", r.ok)
			case <-time.After(20 * time.Millisecond):
			}

			tt.finish(l)
			r := <-got
			require.NoError(t, r.err)
			assert.Equal(t, tt.want, r.ok)
		})
	}
}

func TestLedger_ClaimCancelled(t *testing.T) {
	l := New()
	require.True(t, l.Reserve("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := l.Claim(ctx, "a")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)

	l.Release("a")
	ok, err = l.Claim(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func recordLine(t *testing.T, data model.ClauseData, hash string) string {
	t.Helper()
	raw, err := json.Marshal(model.ClauseRecord{ClauseHash: hash, OriginalClauseData: data})
	require.NoError(t, err)
	return string(raw)
}

func TestLoadLedger_MissingFileIsEmpty(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "absent.jsonl"), nil)
	require.NoError(t, err)
	assert.Zero(t, l.Len())
}

func TestLoadLedger_RecomputesAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "out.jsonl",
		recordLine(t, modeltest.Clause(1), "stale-hash-is-ignored"),
		"{not json",
		"",
		`{"clause_hash":"x"}`,
		recordLine(t, modeltest.Clause(2), ""),
	)

	l, err := LoadLedger(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Contains(Fingerprint(modeltest.Clause(1))))
	assert.True(t, l.Contains(Fingerprint(modeltest.Clause(2))))
	assert.False(t, l.Contains("stale-hash-is-ignored"))
}

func TestLoadLedger_NumericFieldsMatchInput(t *testing.T) {
	// a numeric date in the input must fingerprint the same after a round trip
	dir := t.TempDir()
	path := writeLog(t, dir, "out.jsonl",
		`{"clause_hash":"h","original_clause_data":{"clause":"c","date":2019}}`)

	l, err := LoadLedger(path, nil)
	require.NoError(t, err)
	assert.True(t, l.Contains(Fingerprint(model.ClauseData{"clause": "c", "date": json.Number("2019")})))
}

func TestLoadLedgers_MergesAndReportsStats(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 3 {
		paths = append(paths, writeLog(t, dir, fmt.Sprintf("out%d.jsonl", i),
			recordLine(t, modeltest.Clause(i), ""),
			recordLine(t, modeltest.Clause(100), ""),
			recordLine(t, modeltest.Clause(100), ""),
			"garbage",
		))
	}

	l, stats, err := LoadLedgers(context.Background(), paths, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 4, l.Len())
	require.Len(t, stats, 3)
	for i, s := range stats {
		assert.Equal(t, paths[i], s.Path)
		assert.Equal(t, 3, s.Records)
		assert.Equal(t, 1, s.Malformed)
		assert.Equal(t, 2, s.Unique)
	}
}

func TestLoadLedgers_WarnsPerMalformedFile(t *testing.T) {
	dir := t.TempDir()
	clean := writeLog(t, dir, "clean.jsonl", recordLine(t, modeltest.Clause(1), ""))
	broken := writeLog(t, dir, "broken.jsonl", recordLine(t, modeltest.Clause(2), ""), "garbage", "{")

	core, logs := observer.New(zapcore.WarnLevel)
	_, _, err := LoadLedgers(context.Background(), []string{clean, broken}, zap.New(core))
	require.NoError(t, err)

	warned := logs.FilterMessage("skipped malformed output lines").All()
	require.Len(t, warned, 1)
	fields := warned[0].ContextMap()
	assert.Equal(t, broken, fields["path"])
	assert.Equal(t, int64(2), fields["count"])
}

func TestLoadLedgers_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	path := writeLog(t, dir, "out.jsonl", recordLine(t, modeltest.Clause(1), ""))
	_, _, err := LoadLedgers(ctx, []string{path}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
