// Package poller implements the shared refresh loop used to keep derived
// review state current while submissions are still moving through the
// pipeline. It is one state machine with two states, Idle and Polling,
// parameterized by a fetch function and an "is this item active" predicate
// so every consumer shares the same lifecycle instead of hand-rolling its
// own interval loop.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the poller lifecycle state.
type State string

// State constants.
const (
	StateIdle    State = "idle"
	StatePolling State = "polling"
)

// DefaultInterval is the silent re-fetch period while Polling.
const DefaultInterval = 5 * time.Second

// Poller periodically re-fetches a collection while any element of the
// last result is active, and stops itself once nothing is. Fetch errors
// during background refreshes are logged and swallowed; transient failures
// must not disturb passive polling.
type Poller[T any] struct {
	fetch    func(ctx context.Context) ([]T, error)
	active   func(T) bool
	onResult func([]T)
	logger   *zap.Logger
	interval time.Duration

	mu    sync.Mutex
	state State

	kick chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithInterval overrides the polling interval.
func WithInterval[T any](d time.Duration) Option[T] {
	return func(p *Poller[T]) { p.interval = d }
}

// WithOnResult registers an observer invoked with every fetch result,
// including results from kicks and the initial fetch.
func WithOnResult[T any](fn func([]T)) Option[T] {
	return func(p *Poller[T]) { p.onResult = fn }
}

// New creates a poller over fetch, using active to decide whether any
// fetched item still warrants polling.
func New[T any](fetch func(ctx context.Context) ([]T, error), active func(T) bool, logger *zap.Logger, opts ...Option[T]) *Poller[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller[T]{
		fetch:    fetch,
		active:   active,
		logger:   logger,
		interval: DefaultInterval,
		state:    StateIdle,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Poller[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Kick requests one immediate silent re-fetch, independent of the
// interval. Used when the caller has reason to believe state moved
// underneath it (a mutation completed, the process regained attention
// after a stall). Coalesces if a kick is already pending.
func (p *Poller[T]) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Close tears down the poller. Safe to call more than once.
func (p *Poller[T]) Close() {
	p.once.Do(func() { close(p.done) })
}

// Run performs the initial fetch and then services the interval timer and
// kicks until ctx is cancelled or Close is called. It blocks; run it on
// its own goroutine.
func (p *Poller[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch decides whether we start Polling at all.
	p.refresh(ctx)

	for {
		var tick <-chan time.Time
		if p.State() == StatePolling {
			tick = ticker.C
		}
		// A nil tick channel blocks forever, which is exactly Idle:
		// only a kick or shutdown wakes us.

		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-p.kick:
			p.refresh(ctx)
		case <-tick:
			p.refresh(ctx)
		}
	}
}

// refresh fetches once and recomputes the lifecycle state from the result.
func (p *Poller[T]) refresh(ctx context.Context) {
	items, err := p.fetch(ctx)
	if err != nil {
		p.logger.Warn("background refresh failed", zap.Error(err))
		return
	}

	if p.onResult != nil {
		p.onResult(items)
	}

	anyActive := false
	for _, item := range items {
		if p.active(item) {
			anyActive = true
			break
		}
	}

	p.mu.Lock()
	prev := p.state
	if anyActive {
		p.state = StatePolling
	} else {
		p.state = StateIdle
	}
	next := p.state
	p.mu.Unlock()

	if prev != next {
		p.logger.Info("poller state changed",
			zap.String("from", string(prev)),
			zap.String("to", string(next)),
			zap.Int("items", len(items)),
		)
	}
}
