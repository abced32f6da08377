package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/types"
	"github.com/geoattest/sdk-go/internal/metrics"
)

// DefaultWatchSchedule polls every 30 seconds. Schedules use the six-field
// cron syntax with a leading seconds field.
const DefaultWatchSchedule = "*/30 * * * * *"

// Handler receives one previously unseen attestation. Handlers run on the
// watcher's polling goroutine, so slow handlers delay the next poll.
type Handler func(ctx context.Context, record types.AttestationRecord)

// Watcher polls an indexer on a cron schedule and delivers new
// attestations to a handler. Records are deduplicated by UID for the
// lifetime of the watcher; the first poll delivers everything the filter
// matches, so callers wanting only go-forward records should bound the
// filter by date.
type Watcher struct {
	client   *Client
	filter   QueryFilter
	handler  Handler
	schedule string
	logger   *zap.Logger
	metrics  metrics.Recorder

	cron *cron.Cron

	// firstPoll tracks the immediate poll each Start launches; Stop waits
	// for it alongside the cron-scheduled polls.
	firstPoll sync.WaitGroup

	mu        sync.Mutex
	seen      map[string]struct{}
	running   bool
	scheduled bool
	// gen counts Start calls; a cancelled context from an earlier run must
	// not take down a restarted watcher.
	gen int
	// ctx is the active run's polling context. Cron fires resolve it at
	// tick time so a restarted watcher polls under its new context.
	ctx context.Context
}

// WatcherOption adjusts watcher construction.
type WatcherOption func(*Watcher)

// WithSchedule overrides DefaultWatchSchedule.
func WithSchedule(schedule string) WatcherOption {
	return func(w *Watcher) {
		if schedule != "" {
			w.schedule = schedule
		}
	}
}

// WithWatcherLogger sets the logger; default is a no-op logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatcherMetrics sets the metrics recorder; default records nothing.
func WithWatcherMetrics(rec metrics.Recorder) WatcherOption {
	return func(w *Watcher) {
		if rec != nil {
			w.metrics = rec
		}
	}
}

// NewWatcher builds a watcher over client for the records filter matches.
func NewWatcher(client *Client, filter QueryFilter, handler Handler, opts ...WatcherOption) (*Watcher, error) {
	if client == nil {
		return nil, types.NewError(types.KindConfig, "watcher", "client is nil")
	}
	if handler == nil {
		return nil, types.NewError(types.KindConfig, "watcher", "handler is nil")
	}
	w := &Watcher{
		client:   client,
		filter:   filter,
		handler:  handler,
		schedule: DefaultWatchSchedule,
		logger:   zap.NewNop(),
		metrics:  metrics.NewNoOp(),
		cron: cron.New(cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		seen: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins polling. The first poll runs immediately; subsequent polls
// follow the schedule until Stop or ctx cancellation. A stopped watcher
// may be started again; its dedup memory carries over.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return types.NewError(types.KindInternal, "watcher", "watcher already started")
	}

	// The schedule entry is registered once; restarts reuse it.
	if !w.scheduled {
		if _, err := w.cron.AddFunc(w.schedule, func() { w.poll(w.activeCtx()) }); err != nil {
			w.mu.Unlock()
			return types.WrapError(types.KindConfig, "watcher",
				"invalid watch schedule "+w.schedule, err)
		}
		w.scheduled = true
	}

	w.ctx = ctx
	w.gen++
	gen := w.gen
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watcher starting", zap.String("schedule", w.schedule))
	w.firstPoll.Add(1)
	go func() {
		defer w.firstPoll.Done()
		w.poll(ctx)
	}()
	w.cron.Start()

	go func() {
		<-ctx.Done()
		w.stop(gen)
	}()
	return nil
}

func (w *Watcher) activeCtx() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

// Stop halts polling and waits for in-flight polls, the immediate first
// poll included, to finish. Safe to call more than once, and Start may be
// called again afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	gen := w.gen
	w.mu.Unlock()
	w.stop(gen)
}

func (w *Watcher) stop(gen int) {
	w.mu.Lock()
	if !w.running || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	<-w.cron.Stop().Done()
	w.firstPoll.Wait()
	w.logger.Info("watcher stopped")
}

// Seen reports how many distinct attestation UIDs the watcher has
// delivered.
func (w *Watcher) Seen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

func (w *Watcher) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()

	result, err := w.client.ListAttestations(ctx, w.filter)
	if err != nil {
		w.logger.Warn("watcher poll failed",
			zap.String("error_type", metrics.ClassifyError(err)),
			zap.Error(err))
		return
	}

	fresh := w.markNew(result.Attestations)
	w.metrics.RecordWatcherPoll(ctx, len(fresh), time.Since(start))
	if len(fresh) > 0 {
		w.logger.Debug("watcher delivering new attestations", zap.Int("count", len(fresh)))
	}
	for _, rec := range fresh {
		if ctx.Err() != nil {
			return
		}
		w.handler(ctx, rec)
	}
}

// markNew records unseen UIDs and returns their records in arrival order.
// Records without a UID are passed through every poll rather than silently
// dropped.
func (w *Watcher) markNew(records []types.AttestationRecord) []types.AttestationRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []types.AttestationRecord
	for _, rec := range records {
		if rec.UID != "" {
			if _, ok := w.seen[rec.UID]; ok {
				continue
			}
			w.seen[rec.UID] = struct{}{}
		}
		fresh = append(fresh, rec)
	}
	return fresh
}
