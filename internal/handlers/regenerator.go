package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/anistrm/internal/events"
	"github.com/vmunix/anistrm/internal/tasks"
)

// Defaults for the regeneration queue.
const (
	DefaultQueueSize = 64
	DefaultWorkers   = 2
)

// Regeneration outcomes reported to the observer.
const (
	OutcomeRegenerated = "regenerated"
	OutcomeFailed      = "failed"
	OutcomeCoalesced   = "coalesced"
)

// TitleSyncer regenerates one title.
type TitleSyncer interface {
	Sync(ctx context.Context, id int) (tasks.TitleOutcome, error)
}

// RegenerationObserver is notified once per handled TitleChanged event.
type RegenerationObserver interface {
	ObserveRegeneration(outcome string)
}

// Regenerator drains TitleChanged events with a fixed pool of workers.
// Events that arrive while the bounded queue is full are dropped by the bus.
type Regenerator struct {
	*BaseHandler
	syncer    TitleSyncer
	queueSize int
	workers   int
	observer  RegenerationObserver

	inflight inflight
	ready    chan struct{}
}

// RegeneratorOption configures a Regenerator.
type RegeneratorOption func(*Regenerator)

// WithQueueSize sets the subscription buffer.
func WithQueueSize(n int) RegeneratorOption {
	return func(r *Regenerator) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) RegeneratorOption {
	return func(r *Regenerator) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRegenerationObserver sets the outcome observer.
func WithRegenerationObserver(o RegenerationObserver) RegeneratorOption {
	return func(r *Regenerator) { r.observer = o }
}

// NewRegenerator creates a regeneration handler.
func NewRegenerator(bus *events.Bus, syncer TitleSyncer, logger *slog.Logger, opts ...RegeneratorOption) *Regenerator {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Regenerator{
		BaseHandler: NewBaseHandler(bus, logger.With("component", "regenerator")),
		syncer:      syncer,
		queueSize:   DefaultQueueSize,
		workers:     DefaultWorkers,
		inflight:    inflight{running: make(map[int]bool)},
		ready:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the handler name.
func (r *Regenerator) Name() string {
	return "regenerator"
}

// Start subscribes to TitleChanged and runs the workers until ctx is done.
func (r *Regenerator) Start(ctx context.Context) error {
	queue := r.Bus().Subscribe(events.EventTitleChanged, r.queueSize)
	defer r.Bus().Unsubscribe(queue)
	close(r.ready)

	r.Logger().Info("regenerator started", "workers", r.workers, "queue_size", r.queueSize)

	g, ctx := errgroup.WithContext(ctx)
	for range r.workers {
		g.Go(func() error {
			for {
				select {
				case e, ok := <-queue:
					if !ok {
						return nil // Bus closed
					}
					if tc, ok := e.(*events.TitleChanged); ok {
						r.handle(ctx, tc.TitleID(), tc.Source)
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}
	return g.Wait()
}

func (r *Regenerator) handle(ctx context.Context, id int, source string) {
	// A second change for a title that is already being regenerated is
	// folded into one more pass by the worker holding it.
	if !r.inflight.acquire(id) {
		r.Logger().Debug("regeneration already in progress, queued rerun", "title_id", id)
		r.observe(OutcomeCoalesced)
		return
	}
	for {
		r.regenerate(ctx, id, source)
		if ctx.Err() != nil || !r.inflight.release(id) {
			r.inflight.forget(id)
			return
		}
	}
}

func (r *Regenerator) regenerate(ctx context.Context, id int, source string) {
	log := r.Logger().With("title_id", id, "source", source)

	var (
		out tasks.TitleOutcome
		err error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		out, err = r.syncer.Sync(ctx, id)
	}()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("title regeneration failed", "error", err)
		r.Bus().Publish(ctx, events.NewTitleRegenerationFailed(id, err))
		r.observe(OutcomeFailed)
		return
	}

	log.Info("title regenerated", "targets", out.Targets, "written", out.Written)
	r.Bus().Publish(ctx, events.NewTitleRegenerated(id, out.Targets, out.Written))
	r.observe(OutcomeRegenerated)
}

func (r *Regenerator) observe(outcome string) {
	if r.observer != nil {
		r.observer.ObserveRegeneration(outcome)
	}
}

// inflight tracks titles being regenerated. The value records whether
// another change arrived meanwhile.
type inflight struct {
	mu      sync.Mutex
	running map[int]bool
}

func (f *inflight) acquire(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.running[id]; ok {
		f.running[id] = true
		return false
	}
	f.running[id] = false
	return true
}

// release reports whether the title must be regenerated again. When it
// returns false the title is no longer tracked.
func (f *inflight) release(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running[id] {
		f.running[id] = false
		return true
	}
	delete(f.running, id)
	return false
}

func (f *inflight) forget(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, id)
}
