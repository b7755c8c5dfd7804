// Package events delivers document lifecycle events without blocking the
// operation that emits them.
//
// Publish enqueues onto a bounded channel and returns immediately; a single
// goroutine drains the queue into a Sink. A full queue or a closed
// publisher yields internalerr.ErrUnavailable, which callers log and drop.
package events

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// DefaultBuffer is the queue size used when Options.Buffer is not positive.
const DefaultBuffer = 256

// Sink receives delivered events. store.EventLog satisfies it.
type Sink interface {
	AppendEvent(ctx context.Context, e store.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e store.Event) error

// AppendEvent implements Sink.
func (f SinkFunc) AppendEvent(ctx context.Context, e store.Event) error { return f(ctx, e) }

// Options configures a Publisher.
type Options struct {
	Buffer int
	Logger *slog.Logger
	Now    func() time.Time
}

// Publisher is an asynchronous, best-effort event publisher.
type Publisher struct {
	sink   Sink
	log    *slog.Logger
	now    func() time.Time
	queue  chan store.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewPublisher starts a publisher delivering into sink.
func NewPublisher(sink Sink, opts Options) *Publisher {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Publisher{
		sink:    sink,
		log:     opts.Logger,
		now:     opts.Now,
		queue:   make(chan store.Event, opts.Buffer),
		done:    make(chan struct{}),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	go p.run()
	return p
}

// Publish enqueues an event for docID. It never blocks.
func (p *Publisher) Publish(t store.EventType, docID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("publish %s for %s: publisher closed: %w", t, docID, internalerr.ErrUnavailable)
	}

	at := p.now()
	e := store.Event{
		ID:         p.newID(at),
		DocumentID: docID,
		Type:       t,
		At:         at,
	}

	select {
	case p.queue <- e:
		return nil
	default:
		return fmt.Errorf("publish %s for %s: queue full: %w", t, docID, internalerr.ErrUnavailable)
	}
}

func (p *Publisher) newID(at time.Time) string {
	p.idMu.Lock()
	defer p.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), p.entropy).String()
}

func (p *Publisher) run() {
	defer close(p.done)
	for e := range p.queue {
		if err := p.sink.AppendEvent(context.Background(), e); err != nil {
			p.log.Warn("event delivery failed",
				slog.String("type", string(e.Type)),
				slog.String("document", e.DocumentID),
				slog.Any("error", err))
		}
	}
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
