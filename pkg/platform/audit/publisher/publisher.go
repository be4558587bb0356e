// Package publisher captures structured audit events. It is append-only and
// delegates persistence to a Store so tests and deployments can swap sinks.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "sahay/pkg/domain"
	audit "sahay/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the inbox is full
// and the event had to be dropped.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	// async mode
	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with a
// bounded inbox of the given size. Emit never blocks; when the inbox is
// full the event is dropped and ErrBufferFull returned.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event. The timestamp is stamped on entry when the
// caller did not set one, so stored events keep emission order.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.Warn("audit event dropped", "action", event.Action)
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	return p.store.ListByAccount(ctx, accountID)
}

// Close stops the background worker, draining any buffered events first.
// Safe to call multiple times.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			p.append(event)
		case <-p.done:
			for {
				select {
				case event := <-p.inbox:
					p.append(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) append(event audit.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Error("append audit event", "action", event.Action, "error", err)
	}
}
