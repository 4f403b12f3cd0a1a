package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/api/metrics"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the session ID, preserving per-session event ordering.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	service ports.AuditService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channel and stop
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an event on the worker responsible for its session. It
// never blocks: when the worker channel is full the event is dropped.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.SessionID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("session", event.SessionID).
			Str("action", string(event.Action)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a session ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

// drain flushes whatever is still queued on shutdown.
func (d *Dispatcher) drain(id int, ch <-chan domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.process(ctx, id, event)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuditEvent) {
	if err := d.service.Process(ctx, event); err != nil {
		metrics.AuditEventsErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("session", event.SessionID).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("audit event processing failed")
	}
}
