package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"sahay/internal/identity"
	id "sahay/pkg/domain"
	"sahay/pkg/platform/circuit"
	"sahay/pkg/platform/sentinel"
)

// DefaultProbeInterval is how often an open breaker lets one call through
// to check whether the backing store has recovered.
const DefaultProbeInterval = 5 * time.Second

// Resilient wraps a view cache with a circuit breaker. When the backing
// store keeps failing the breaker opens and operations degrade to misses,
// so a Redis outage costs extra database reads instead of per-request error
// handling. While open, one probe call per interval is let through; enough
// successful probes close the breaker again. Entries are short-lived, so
// skipping Invalidate while the breaker is open cannot leave a view stale
// past the TTL.
type Resilient struct {
	inner   identity.ViewCache
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	probeEach time.Duration
	lastProbe time.Time
	now       func() time.Time
}

type ResilientOption func(*Resilient)

// WithProbeInterval overrides how often an open breaker probes the backend.
func WithProbeInterval(d time.Duration) ResilientOption {
	return func(r *Resilient) {
		r.probeEach = d
	}
}

// WithResilientClock overrides the time source, for tests.
func WithResilientClock(now func() time.Time) ResilientOption {
	return func(r *Resilient) {
		r.now = now
	}
}

func NewResilient(inner identity.ViewCache, logger *slog.Logger, opts ...ResilientOption) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resilient{
		inner:     inner,
		breaker:   circuit.New("view-cache", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:    logger,
		probeEach: DefaultProbeInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// allow reports whether this call may reach the backing cache.
func (r *Resilient) allow() bool {
	if !r.breaker.IsOpen() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Sub(r.lastProbe) < r.probeEach {
		return false
	}
	r.lastProbe = r.now()
	return true
}

func (r *Resilient) Get(ctx context.Context, accountID id.AccountID) (*identity.CombinedView, error) {
	if !r.allow() {
		return nil, sentinel.ErrNotFound
	}
	view, err := r.inner.Get(ctx, accountID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		r.recordFailure(err)
		return nil, sentinel.ErrNotFound
	}
	r.recordSuccess()
	return view, err
}

func (r *Resilient) Set(ctx context.Context, accountID id.AccountID, view *identity.CombinedView) error {
	if !r.allow() {
		return nil
	}
	if err := r.inner.Set(ctx, accountID, view); err != nil {
		r.recordFailure(err)
		return nil
	}
	r.recordSuccess()
	return nil
}

func (r *Resilient) Invalidate(ctx context.Context, accountID id.AccountID) error {
	if !r.allow() {
		return nil
	}
	if err := r.inner.Invalidate(ctx, accountID); err != nil {
		r.recordFailure(err)
		return nil
	}
	r.recordSuccess()
	return nil
}

func (r *Resilient) recordFailure(err error) {
	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.logger.Warn("view cache circuit opened", "error", err)
	}
}

func (r *Resilient) recordSuccess() {
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.Info("view cache circuit closed")
	}
}
