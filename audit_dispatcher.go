package goUmroh

import (
	"context"
	"sync"
	"sync/atomic"

	ilog "github.com/MrEthical07/goUmroh/internal/logger"
	"go.uber.org/zap"
)

// auditDispatcher delivers audit events to the sink on a single goroutine.
// Every accepted event is stamped with the install id and the next sequence
// number, so a sink that sees a gap in Seq knows events were lost.
type auditDispatcher struct {
	sink       AuditSink
	logger     *zap.Logger
	installID  string
	dropIfFull bool

	// mu guards ch against a send after Close.
	mu     sync.RWMutex
	ch     chan AuditEvent
	closed bool
	wg     sync.WaitGroup

	seq       atomic.Uint64
	dropped   atomic.Uint64
	delivered atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, installID string, logger *zap.Logger) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &auditDispatcher{
		sink:       sink,
		logger:     ilog.WithComponent(logger, "audit"),
		installID:  installID,
		dropIfFull: cfg.DropIfFull,
		ch:         make(chan AuditEvent, cfg.BufferSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()
	for event := range d.ch {
		d.deliver(event)
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("audit sink panicked",
				zap.String("event_type", event.EventType),
				zap.Uint64("seq", event.Seq),
				zap.Any("panic", r),
			)
		}
	}()
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

// Emit queues event. With dropIfFull it never blocks; otherwise it waits for
// buffer space or ctx. Events not queued count as dropped.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	event.InstallID = d.installID
	event.Seq = d.seq.Add(1)

	if d.dropIfFull {
		select {
		case d.ch <- event:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.drop(event)
	}
}

func (d *auditDispatcher) drop(event AuditEvent) {
	if d.dropped.Add(1) == 1 {
		d.logger.Warn("audit buffer full; dropping events",
			zap.String("event_type", event.EventType),
			zap.Int("buffer", cap(d.ch)),
		)
	}
}

// Close stops accepting events, waits for queued ones to reach the sink and
// reports losses.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	d.wg.Wait()

	if n := d.dropped.Load(); n > 0 {
		d.logger.Warn("audit events dropped",
			zap.Uint64("dropped", n),
			zap.Uint64("delivered", d.delivered.Load()),
		)
	}
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
