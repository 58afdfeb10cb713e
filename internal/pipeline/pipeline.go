// Package pipeline drives generation over a batch of input clauses: it skips
// clauses that already have an output record, generates the rest and appends
// each success to the output log as soon as it completes.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clausegen/internal/generate"
	"github.com/ppiankov/clausegen/internal/ledger"
	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/store"
	"github.com/ppiankov/clausegen/internal/worker"
)

// Status is the terminal state of one input clause in a run
type Status string

const (
	StatusSucceeded   Status = "succeeded"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusInterrupted Status = "interrupted" // generation cut short by cancellation
)

// Outcome describes what happened to one input clause
type Outcome struct {
	Index       int // position in the processed window
	Fingerprint string
	Status      Status
	Err         error
}

// OutcomeRecorder receives every outcome, for example a run journal.
// Recorder errors are logged and never stop the run.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome Outcome) error
}

// RecordWriter appends one record to the output log
type RecordWriter interface {
	Append(rec *model.ClauseRecord) error
}

// Summary counts outcomes of a run
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	Interrupted int
}

// Options configures an Orchestrator
type Options struct {
	// Workers <= 1 processes clauses sequentially in input order
	Workers int

	Recorder OutcomeRecorder
	Logger   *zap.Logger

	// Now stamps records; defaults to time.Now
	Now func() time.Time
}

// Orchestrator runs a Generator over input clauses
type Orchestrator struct {
	gen    generate.Generator
	opts   Options
	logger *zap.Logger
}

// New creates an orchestrator around gen
func New(gen generate.Generator, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{gen: gen, opts: opts, logger: opts.Logger}
}

// PrepareOutput opens the output log and the ledger that goes with it. With
// resume the ledger is seeded from the existing log and new records are
// appended; without it the log is truncated and the ledger starts empty.
func PrepareOutput(path string, resume bool, logger *zap.Logger) (*store.OutputLog, *ledger.Ledger, error) {
	led := ledger.New()
	if resume {
		var err error
		led, err = ledger.LoadLedger(path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("seed ledger: %w", err)
		}
	}

	out, err := store.OpenOutput(path, resume)
	if err != nil {
		return nil, nil, err
	}
	return out, led, nil
}

// Run processes clauses, writing successes to out and consulting led for
// clauses that are already done. Per-clause generation failures are counted
// and never stop the batch; an output write failure is returned at once.
// When ctx is cancelled no new clause is started and ctx.Err() is returned
// together with the counts so far.
func (o *Orchestrator) Run(ctx context.Context, clauses []model.ClauseData, out RecordWriter, led *ledger.Ledger) (Summary, error) {
	s := &sink{
		out:      out,
		ledger:   led,
		recorder: o.opts.Recorder,
		logger:   o.logger,
	}
	s.summary.Total = len(clauses)

	var err error
	if o.opts.Workers <= 1 {
		err = o.runSequential(ctx, clauses, s)
	} else {
		err = o.runBounded(ctx, clauses, s)
	}

	summary := s.snapshot()
	if err != nil {
		return summary, err
	}
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, clauses []model.ClauseData, s *sink) error {
	for i, data := range clauses {
		if ctx.Err() != nil {
			return nil
		}
		if err := o.process(ctx, s, i, data); err != nil {
			return err
		}
	}
	return nil
}

type jobResult struct {
	err error
}

func (r jobResult) GetError() error {
	return r.err
}

// runBounded feeds clauses to a worker pool. Results are drained while jobs
// are submitted; the first fatal error cancels the pool.
func (o *Orchestrator) runBounded(ctx context.Context, clauses []model.ClauseData, s *sink) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := worker.NewPool(ctx, o.opts.Workers)
	pool.Start()

	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		defer pool.Close()
		for i, data := range clauses {
			job := worker.JobFunc(func(ctx context.Context) worker.Result {
				return jobResult{err: o.process(ctx, s, i, data)}
			})
			if !pool.Submit(job) {
				return
			}
		}
	}()

	var fatal error
	for res := range pool.Results() {
		if err := res.GetError(); err != nil && fatal == nil {
			fatal = err
			cancel()
		}
	}
	<-submitted
	return fatal
}

// process takes one clause through Pending -> Skipped | Generating -> Succeeded | Failed.
// Only an output write failure is returned.
func (o *Orchestrator) process(ctx context.Context, s *sink, index int, data model.ClauseData) error {
	fp := ledger.Fingerprint(data)
	log := o.logger.With(zap.Int("index", index), zap.String("fingerprint", fp))

	claimed, err := s.claim(ctx, fp)
	if err != nil {
		log.Info("interrupted waiting for duplicate")
		s.finish(ctx, Outcome{Index: index, Fingerprint: fp, Status: StatusInterrupted, Err: err})
		return nil
	}
	if !claimed {
		log.Debug("already processed, skipping")
		s.finish(ctx, Outcome{Index: index, Fingerprint: fp, Status: StatusSkipped})
		return nil
	}

	analysis, err := o.gen.Generate(ctx, data)
	if err != nil {
		s.release(fp)
		status := StatusFailed
		if ctx.Err() != nil {
			status = StatusInterrupted
			log.Info("generation interrupted")
		} else {
			log.Warn("generation failed", zap.Error(err))
		}
		s.finish(ctx, Outcome{Index: index, Fingerprint: fp, Status: status, Err: err})
		return nil
	}

	rec := &model.ClauseRecord{
		ClauseHash:          fp,
		OriginalClauseData:  data,
		NegotiationAnalysis: analysis,
		Timestamp:           o.opts.Now().UTC(),
	}
	if err := s.commit(rec); err != nil {
		return fmt.Errorf("append record %d: %w", index, err)
	}

	log.Info("generated",
		zap.String("observer", analysis.Context.ObserverRole), zap.Int("variations", len(analysis.Variations)))
	s.finish(ctx, Outcome{Index: index, Fingerprint: fp, Status: StatusSucceeded})
	return nil
}

// sink serializes every ledger and output-log mutation of a run
type sink struct {
	mu      sync.Mutex
	out     RecordWriter
	ledger  *ledger.Ledger
	summary Summary

	recorder OutcomeRecorder
	logger   *zap.Logger
}

// claim waits outside s.mu: the holder of a duplicate needs it to commit.
func (s *sink) claim(ctx context.Context, fp string) (bool, error) {
	return s.ledger.Claim(ctx, fp)
}

func (s *sink) release(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Release(fp)
}

// commit appends the record and marks its fingerprint done. On a write
// failure the reservation is dropped so the clause stays pending.
func (s *sink) commit(rec *model.ClauseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.out.Append(rec); err != nil {
		s.ledger.Release(rec.ClauseHash)
		return err
	}
	s.ledger.Add(rec.ClauseHash)
	return nil
}

func (s *sink) finish(ctx context.Context, outcome Outcome) {
	s.mu.Lock()
	switch outcome.Status {
	case StatusSucceeded:
		s.summary.Succeeded++
	case StatusFailed:
		s.summary.Failed++
	case StatusSkipped:
		s.summary.Skipped++
	case StatusInterrupted:
		s.summary.Interrupted++
	}
	s.mu.Unlock()

	if s.recorder == nil {
		return
	}
	// the journal should still see outcomes of a cancelled run
	if err := s.recorder.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		s.logger.Warn("record outcome", zap.String("fingerprint", outcome.Fingerprint), zap.Error(err))
	}
}

func (s *sink) snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
