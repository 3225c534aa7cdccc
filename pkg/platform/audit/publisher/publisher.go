package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
)

var errClosed = errors.New("audit publisher is closed")

// Publisher writes audit events to a store, either synchronously or through a
// buffered channel drained by a background goroutine.
//
// The registry emits under its single-writer lock, so events arrive here in
// the global mutation order; both modes preserve that order because a single
// goroutine performs the appends.
type Publisher struct {
	store audit.Store
	log   *slog.Logger

	inbox chan audit.Event
	wg    sync.WaitGroup

	// mu guards closed against the async inbox send so Emit never races a
	// channel close.
	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. Emit blocks only when the buffer is full, keeping
// backpressure instead of dropping events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used to report append failures in async mode.
func WithLogger(log *slog.Logger) Option {
	return func(p *Publisher) {
		p.log = log
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit appends an event. In sync mode failures surface to the caller; in
// async mode Emit only fails when the publisher is closed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errClosed
	}
	p.inbox <- event
	return nil
}

// List returns the events recorded for one principal in append order.
func (p *Publisher) List(ctx context.Context, principal id.Principal) ([]audit.Event, error) {
	return p.store.ListByPrincipal(ctx, principal)
}

// ListAll returns the whole event stream in append order.
func (p *Publisher) ListAll(ctx context.Context) ([]audit.Event, error) {
	return p.store.ListAll(ctx)
}

// Close drains any buffered events and stops the background goroutine.
// Further async Emits fail instead of panicking.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox != nil {
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.log.Error("audit append failed",
				"action", event.Action,
				"principal", event.Principal.String(),
				"error", err,
			)
		}
	}
}
