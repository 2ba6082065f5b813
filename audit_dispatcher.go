package goShield

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples the gate hot path from sink latency: Emit hands
// the event to a buffered queue and a single worker forwards to the sink.
// With DropIfFull set, a full queue sheds events instead of stalling
// admission; the shed count is visible through Dropped.
type auditDispatcher struct {
	sink       AuditSink
	queue      chan AuditEvent
	quit       chan struct{}
	dropIfFull bool

	worker sync.WaitGroup
	lost   atomic.Uint64

	closed  atomic.Bool
	stopped sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:       sink,
		queue:      make(chan AuditEvent, buffer),
		quit:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}

	d.worker.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.worker.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever Close left in the queue so accepted events are
// never silently discarded on shutdown.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues the event. After Close it is a no-op; in drop mode a full
// queue increments the lost counter instead of blocking the caller.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.lost.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops accepting events, drains the queue into the sink, and waits
// for the worker to exit. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopped.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.worker.Wait()
	})
}

// Dropped reports how many events were shed because the queue was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.lost.Load()
}
