package publisher

import (
	"context"
	"log/slog"
	"time"

	"canopy/pkg/platform/audit"
)

// Sink receives committed audit events. The memory and postgres stores and the
// Kafka forwarder all satisfy it.
type Sink interface {
	Append(ctx context.Context, event audit.Event) error
}

// Publisher fans events out to every configured sink. In sync mode Emit
// appends inline; with an async buffer Emit enqueues and a single worker
// drains, so slow sinks never sit on the mutation path.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger
	queue  chan audit.Event
	done   chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given queue capacity. When the queue is full, Emit drops the event and logs
// rather than blocking the caller.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.queue = make(chan audit.Event, n)
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a publisher over the given sinks.
func NewPublisher(sinks []Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		go p.drain()
	}
	return p
}

// Emit records the event. Delivery failures are logged, never returned to the
// mutation that emitted the event: the mutation has already committed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.queue == nil {
		p.deliver(ctx, event)
		return
	}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("audit queue full, dropping event",
			"action", event.Action,
			"actor", event.ActorID,
		)
	}
}

// Close stops the async worker after draining queued events. Safe to call on
// a sync publisher.
func (p *Publisher) Close() {
	if p.queue != nil {
		close(p.queue)
		<-p.done
		return
	}
	close(p.done)
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		p.deliver(context.Background(), event)
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) {
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logger.Error("audit sink append failed",
				"action", event.Action,
				"actor", event.ActorID,
				"error", err,
			)
		}
	}
}
