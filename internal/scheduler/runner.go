package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/edutrack/internal/apperror"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker for the given period.
type TickerFactory func(period time.Duration) Ticker

// NewRealTicker is the TickerFactory backed by time.Ticker.
func NewRealTicker(period time.Duration) Ticker {
	return realTicker{time.NewTicker(period)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Job is one recurring trigger.
type Job struct {
	Name     string
	Interval time.Duration

	// Run receives the tick instant. A returned error is logged and the job
	// keeps its schedule.
	Run func(ctx context.Context, now time.Time) error
}

// ErrAlreadyStarted is returned when Start is called on a running Runner.
var ErrAlreadyStarted = errors.New("scheduler: runner already started")

// Runner owns a set of independent recurring jobs. Each job runs once when
// the runner starts and then on every tick of its own ticker. Ticks of one
// job never wait for another job.
type Runner struct {
	logger    *zap.Logger
	newTicker TickerFactory
	now       func() time.Time
	jobs      []Job

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner constructs a Runner. A nil factory uses real tickers and a nil
// now uses time.Now.
func NewRunner(logger *zap.Logger, factory TickerFactory, now func() time.Time, jobs ...Job) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = NewRealTicker
	}
	if now == nil {
		now = time.Now
	}
	return &Runner{
		logger:    logger.With(zap.String("component", "scheduler")),
		newTicker: factory,
		now:       now,
		jobs:      append([]Job(nil), jobs...),
	}
}

// Start launches every job. The jobs stop when ctx is canceled or Stop is
// called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	for _, job := range r.jobs {
		ticker := r.newTicker(job.Interval)
		r.wg.Add(1)
		go r.loop(runCtx, job, ticker)
	}
	r.logger.Info("scheduler started", zap.Int("jobs", len(r.jobs)))
	return nil
}

// Stop cancels every job and waits for in-flight runs to return. It is safe
// to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.logger.Info("scheduler stopped")
}

func (r *Runner) loop(ctx context.Context, job Job, ticker Ticker) {
	defer r.wg.Done()
	defer ticker.Stop()

	r.runOnce(ctx, job, r.now())
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-ticker.C():
			r.runOnce(ctx, job, at)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job, at time.Time) {
	if ctx.Err() != nil {
		return
	}
	if err := job.Run(ctx, at); err != nil {
		r.logger.Error("scheduled job failed",
			zap.String("job", job.Name),
			zap.String("error_kind", apperror.Kind(err)),
			zap.Error(err),
		)
	}
}
