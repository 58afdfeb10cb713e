package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/model/modeltest"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanLines_SkipsBlankAndHandlesMissingNewline(t *testing.T) {
	var got []string
	var nums []int
	err := ScanLines(strings.NewReader("a\n\n  \nb\nc"), func(n int, line []byte) error {
		nums = append(nums, n)
		got = append(got, string(line))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []int{1, 4, 5}, nums)
}

func TestScanLines_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	var size int
	require.NoError(t, ScanLines(strings.NewReader(long+"\n"), func(_ int, line []byte) error {
		size = len(line)
		return nil
	}))
	assert.Equal(t, len(long), size)
}

func TestReadClauses_SkipsMalformed(t *testing.T) {
	path := writeFile(t, `{"clause":"one","date":2020}
not json
[1,2]
{"clause":"two"}
`)
	clauses, err := ReadClauses(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, "one", clauses[0].Field(model.FieldClause))
	assert.Equal(t, "2020", clauses[0].Field(model.FieldDate))
	assert.Equal(t, json.Number("2020"), clauses[0]["date"])
	assert.Equal(t, "two", clauses[1].Field(model.FieldClause))
}

func TestReadClauses_MissingFile(t *testing.T) {
	_, err := ReadClauses(filepath.Join(t.TempDir(), "nope.jsonl"), nil)
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	in := []model.ClauseData{modeltest.Clause(0), modeltest.Clause(1), modeltest.Clause(2), modeltest.Clause(3)}

	assert.Len(t, Window(in, 0, 0), 4)
	assert.Len(t, Window(in, 1, 0), 3)
	assert.Len(t, Window(in, 1, 2), 2)
	assert.Equal(t, in[1], Window(in, 1, 2)[0])
	assert.Empty(t, Window(in, 10, 0))
	assert.Len(t, Window(in, 0, 10), 4)
}

func TestOutputLog_AppendWritesCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	out, err := OpenOutput(path, true)
	require.NoError(t, err)

	rec := &model.ClauseRecord{
		ClauseHash:          "h1",
		OriginalClauseData:  modeltest.Clause(1),
		NegotiationAnalysis: modeltest.Analysis(),
		Timestamp:           time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, out.Append(rec))
	require.NoError(t, out.Append(rec))
	require.NoError(t, out.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "\n"))
	assert.Equal(t, 2, strings.Count(string(raw), "\n"))
	assert.Contains(t, string(raw), `"clause_hash":"h1"`)
	assert.Contains(t, string(raw), `"timestamp":"2025-01-02T03:04:05Z"`)

	records, err := ReadRecords(path, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Employer", records[0].NegotiationAnalysis.Context.ObserverRole)
}

func TestOpenOutput_ResumeAppendsAndFreshTruncates(t *testing.T) {
	path := writeFile(t, "{\"clause_hash\":\"old\"}\n")

	out, err := OpenOutput(path, true)
	require.NoError(t, err)
	require.NoError(t, out.Append(&model.ClauseRecord{ClauseHash: "new"}))
	require.NoError(t, out.Close())

	records, err := ReadRecords(path, nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	out, err = OpenOutput(path, false)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestReadRecords_SkipsMalformed(t *testing.T) {
	path := writeFile(t, "{\"clause_hash\":\"a\"}\n{broken\n{\"clause_hash\":\"b\"}\n")
	records, err := ReadRecords(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1].ClauseHash)
}

func TestDefaultOutputName(t *testing.T) {
	name := DefaultOutputName(time.Date(2025, 3, 9, 14, 5, 6, 0, time.UTC))
	assert.Equal(t, "variations_20250309_140506.jsonl", name)
}
