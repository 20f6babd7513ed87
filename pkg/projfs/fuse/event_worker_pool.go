package fuse

import (
	"context"
	"sync"
	"syscall"

	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

var (
	eventWorkerPoolPrometheusMetrics sync.Once

	eventWorkerPoolHandlerDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "projfs",
			Name:      "event_worker_pool_handler_duration_seconds",
			Help:      "Amount of time spent waiting for event handlers to complete, in seconds.",
			Buckets:   util.DecimalExponentialBuckets(-3, 6, 2),
		},
		[]string{"event", "outcome"})
)

// eventKind holds references to Prometheus metrics for a single type
// of event handler.
type eventKind struct {
	ok      prometheus.Observer
	allow   prometheus.Observer
	deny    prometheus.Observer
	failure prometheus.ObserverVec
}

func newEventKind(event string) eventKind {
	return eventKind{
		ok:      eventWorkerPoolHandlerDurationSeconds.WithLabelValues(event, "OK"),
		allow:   eventWorkerPoolHandlerDurationSeconds.WithLabelValues(event, "Allow"),
		deny:    eventWorkerPoolHandlerDurationSeconds.WithLabelValues(event, "Deny"),
		failure: eventWorkerPoolHandlerDurationSeconds.MustCurryWith(map[string]string{"event": event}),
	}
}

func (k *eventKind) observe(r int32, d float64) {
	switch {
	case r == 0:
		k.ok.Observe(d)
	case r == projfs.PermissionAllow:
		k.allow.Observe(d)
	case r == projfs.PermissionDeny:
		k.deny.Observe(d)
	default:
		// Use unix.ErrnoName(), so that labels don't depend
		// on the locale or OS specific error messages.
		k.failure.WithLabelValues(unix.ErrnoName(syscall.Errno(-r))).Observe(d)
	}
}

var (
	eventKindProjection   = newEventKind("Projection")
	eventKindNotification = newEventKind("Notification")
	eventKindPermission   = newEventKind("Permission")
)

type eventRequest struct {
	ctx     context.Context
	handler projfs.EventHandler
	record  []byte
	reply   chan<- int32
}

// eventWorkerPool invokes event handlers on a fixed number of
// goroutines. Goroutines processing FUSE requests block until the
// handler of the event they generated has completed.
type eventWorkerPool struct {
	clock    clock.Clock
	requests chan eventRequest
	group    errgroup.Group

	lock    sync.RWMutex
	stopped bool
}

func newEventWorkerPool(clock clock.Clock, workerCount int) *eventWorkerPool {
	eventWorkerPoolPrometheusMetrics.Do(func() {
		prometheus.MustRegister(eventWorkerPoolHandlerDurationSeconds)
	})

	p := &eventWorkerPool{
		clock:    clock,
		requests: make(chan eventRequest),
	}
	for i := 0; i < workerCount; i++ {
		p.group.Go(func() error {
			for request := range p.requests {
				request.reply <- request.handler(request.ctx, request.record)
			}
			return nil
		})
	}
	return p
}

// submit hands a request to one of the workers. The lock is only held
// until a worker has picked up the request, so that stop() never
// waits for handlers that are still running.
func (p *eventWorkerPool) submit(ctx context.Context, request eventRequest) int32 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.stopped {
		return -int32(syscall.ENODEV)
	}
	select {
	case p.requests <- request:
		return 0
	case <-ctx.Done():
		return -int32(syscall.EINTR)
	}
}

// call hands an event record to one of the workers and waits for the
// handler's return value. Requests that are interrupted before a
// worker picks them up fail with EINTR.
func (p *eventWorkerPool) call(ctx context.Context, kind *eventKind, handler projfs.EventHandler, record []byte) int32 {
	timeStart := p.clock.Now()
	reply := make(chan int32, 1)
	if r := p.submit(ctx, eventRequest{
		ctx:     ctx,
		handler: handler,
		record:  record,
		reply:   reply,
	}); r != 0 {
		return r
	}
	r := <-reply
	kind.observe(r, p.clock.Now().Sub(timeStart).Seconds())
	return r
}

// stop waits for all pending calls to complete and terminates the
// workers. Calls made afterwards fail with ENODEV.
func (p *eventWorkerPool) stop() {
	p.lock.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.requests)
	}
	p.lock.Unlock()
	p.group.Wait()
}
