// Package event runs posted callbacks on one dedicated goroutine so that
// notifications raised from worker goroutines reach listeners in order.
package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Flush when the pump stops before the flush
// marker is processed.
var ErrStopped = errors.New("event pump stopped")

// DefaultCapacity is the queue depth used when New is given zero.
const DefaultCapacity = 256

// Pump delivers posted callbacks in FIFO order on its own goroutine.
// Messages posted while the pump is stopped wait for the next Start.
type Pump struct {
	logger *slog.Logger
	queue  chan func()

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a stopped pump.
func New(logger *slog.Logger, capacity int) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pump{logger: logger, queue: make(chan func(), capacity)}
}

// Start launches the delivery goroutine. It is a no-op when already running.
func (p *Pump) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
}

// Running reports whether the delivery goroutine is active.
func (p *Pump) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop halts delivery and waits for the goroutine to exit. Messages still
// queued stay queued. Call Flush first to deliver them.
func (p *Pump) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done
}

// Post queues fn for delivery. It blocks while the queue is full.
func (p *Pump) Post(fn func()) {
	if fn == nil {
		return
	}
	p.queue <- fn
}

// Flush waits until every message posted before the call has been
// delivered.
func (p *Pump) Flush(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	running := p.running
	p.mu.Unlock()
	if !running {
		return ErrStopped
	}

	ack := make(chan struct{})
	select {
	case p.queue <- func() { close(ack) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case fn := <-p.queue:
			p.deliver(fn)
		}
	}
}

func (p *Pump) deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panicked", "panic", r)
		}
	}()
	fn()
}
