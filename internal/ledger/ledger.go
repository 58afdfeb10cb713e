package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/store"
)

// Ledger is the set of fingerprints that already have an output record, plus
// the set currently being generated. It only grows during a run.
type Ledger struct {
	mu   sync.Mutex
	done map[string]struct{}

	// inflight channels are closed when the reservation is committed or released
	inflight map[string]chan struct{}
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{
		done:     make(map[string]struct{}),
		inflight: make(map[string]chan struct{}),
	}
}

// Contains reports whether fp already has a committed record
func (l *Ledger) Contains(fp string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[fp]
	return ok
}

// Add marks fp as committed and clears any reservation
func (l *Ledger) Add(fp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[fp] = struct{}{}
	l.unreserve(fp)
}

// Len returns the number of committed fingerprints
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// Reserve claims fp for generation. It returns false if fp is committed or
// already reserved by another worker.
func (l *Ledger) Reserve(fp string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.done[fp]; ok {
		return false
	}
	if _, ok := l.inflight[fp]; ok {
		return false
	}
	l.inflight[fp] = make(chan struct{})
	return true
}

// Claim reserves fp like Reserve, but when another worker holds the
// reservation it waits for that worker to commit or release before deciding.
// It returns false only when fp is committed, so a duplicate input is
// attempted again after a failed first attempt.
func (l *Ledger) Claim(ctx context.Context, fp string) (bool, error) {
	for {
		l.mu.Lock()
		if _, ok := l.done[fp]; ok {
			l.mu.Unlock()
			return false, nil
		}
		wait, busy := l.inflight[fp]
		if !busy {
			l.inflight[fp] = make(chan struct{})
			l.mu.Unlock()
			return true, nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Release drops a reservation without committing, after a failed generation
func (l *Ledger) Release(fp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unreserve(fp)
}

func (l *Ledger) unreserve(fp string) {
	if ch, ok := l.inflight[fp]; ok {
		close(ch)
		delete(l.inflight, fp)
	}
}

// FileStats summarizes one scanned output log
type FileStats struct {
	Path      string
	Records   int
	Malformed int
	Unique    int
}

// seedRecord is the part of a stored record needed to recompute its fingerprint
type seedRecord struct {
	OriginalClauseData model.ClauseData `json:"original_clause_data"`
}

// LoadLedger seeds a ledger from an existing output log. Fingerprints are
// recomputed from original_clause_data rather than trusted from clause_hash.
// A missing file yields an empty ledger.
func LoadLedger(path string, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := New()
	stats, err := l.seed(path, logger)
	if err != nil {
		return nil, err
	}
	warnMalformed(logger, stats)
	return l, nil
}

// LoadLedgers scans several output logs in parallel into one ledger
func LoadLedgers(ctx context.Context, paths []string, logger *zap.Logger) (*Ledger, []FileStats, error) {
	l := New()
	stats := make([]FileStats, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := l.seed(path, logger)
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	for _, st := range stats {
		warnMalformed(logger, st)
	}
	return l, stats, nil
}

func warnMalformed(logger *zap.Logger, stats FileStats) {
	if logger == nil || stats.Malformed == 0 {
		return
	}
	logger.Warn("skipped malformed output lines",
		zap.String("path", stats.Path), zap.Int("count", stats.Malformed))
}

func (l *Ledger) seed(path string, logger *zap.Logger) (FileStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := FileStats{Path: path}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("open output log: %w", err)
	}
	defer f.Close()

	unique := make(map[string]struct{})
	err = store.ScanLines(f, func(lineNum int, line []byte) error {
		var rec seedRecord
		if err := store.Decode(line, &rec); err != nil || rec.OriginalClauseData == nil {
			stats.Malformed++
			logger.Debug("skipping malformed output line",
				zap.String("path", path), zap.Int("line", lineNum), zap.Error(err))
			return nil
		}
		fp := Fingerprint(rec.OriginalClauseData)
		unique[fp] = struct{}{}
		l.Add(fp)
		stats.Records++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("scan output log %s: %w", path, err)
	}

	stats.Unique = len(unique)
	return stats, nil
}
