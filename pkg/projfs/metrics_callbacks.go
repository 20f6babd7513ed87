package projfs

import (
	"context"
	"sync"

	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	callbacksPrometheusMetrics sync.Once

	callbacksHydrationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "projfs",
			Name:      "callbacks_hydration_duration_seconds",
			Help:      "Amount of time spent by the provider enumerating directories and filling files, in seconds.",
			Buckets:   util.DecimalExponentialBuckets(-3, 6, 2),
		},
		[]string{"callback", "result"})
	callbacksNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "projfs",
			Name:      "callbacks_notifications_total",
			Help:      "Total number of notifications delivered to the provider.",
		},
		[]string{"callback", "result"})
)

// hydrationHistogram holds references to Prometheus metrics for a
// single hydration callback.
type hydrationHistogram struct {
	success prometheus.Observer
	failure prometheus.ObserverVec
}

func newHydrationHistogram(callback string) hydrationHistogram {
	return hydrationHistogram{
		success: callbacksHydrationDurationSeconds.WithLabelValues(callback, ResultSuccess.String()),
		failure: callbacksHydrationDurationSeconds.MustCurryWith(map[string]string{"callback": callback}),
	}
}

func (m *hydrationHistogram) observe(r Result, d float64) {
	if r == ResultSuccess {
		m.success.Observe(d)
	} else {
		m.failure.WithLabelValues(r.String()).Observe(d)
	}
}

var (
	hydrationHistogramEnumerateDirectory = newHydrationHistogram("EnumerateDirectory")
	hydrationHistogramGetFileStream      = newHydrationHistogram("GetFileStream")
)

type metricsCallbacks struct {
	base  Callbacks
	clock clock.Clock
}

// NewMetricsCallbacks creates a decorator for Callbacks that exposes
// Prometheus metrics on the duration of directory enumeration and file
// content requests, and on the number of notifications delivered.
func NewMetricsCallbacks(base Callbacks, clock clock.Clock) Callbacks {
	callbacksPrometheusMetrics.Do(func() {
		prometheus.MustRegister(callbacksHydrationDurationSeconds)
		prometheus.MustRegister(callbacksNotifications)
	})

	return &metricsCallbacks{
		base:  base,
		clock: clock,
	}
}

func (c *metricsCallbacks) OnEnumerateDirectory(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) Result {
	timeStart := c.clock.Now()
	r := c.base.OnEnumerateDirectory(ctx, commandID, relativePath, triggeringProcessID, triggeringProcessName)
	hydrationHistogramEnumerateDirectory.observe(r, c.clock.Now().Sub(timeStart).Seconds())
	return r
}

func (c *metricsCallbacks) OnGetFileStream(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) Result {
	timeStart := c.clock.Now()
	r := c.base.OnGetFileStream(ctx, commandID, relativePath, providerID, contentID, triggeringProcessID, triggeringProcessName, fd)
	hydrationHistogramGetFileStream.observe(r, c.clock.Now().Sub(timeStart).Seconds())
	return r
}

func (c *metricsCallbacks) OnLogError(message string) {
	c.base.OnLogError(message)
}

func (c *metricsCallbacks) OnPreDelete(relativePath string, isDirectory bool) Result {
	r := c.base.OnPreDelete(relativePath, isDirectory)
	callbacksNotifications.WithLabelValues("PreDelete", r.String()).Inc()
	return r
}

func (c *metricsCallbacks) OnFileModified(relativePath string) {
	c.base.OnFileModified(relativePath)
	callbacksNotifications.WithLabelValues("FileModified", ResultSuccess.String()).Inc()
}

func (c *metricsCallbacks) OnNewFileCreated(relativePath string, isDirectory bool) {
	c.base.OnNewFileCreated(relativePath, isDirectory)
	callbacksNotifications.WithLabelValues("NewFileCreated", ResultSuccess.String()).Inc()
}

func (c *metricsCallbacks) OnFileRenamed(relativePath string, isDirectory bool) {
	c.base.OnFileRenamed(relativePath, isDirectory)
	callbacksNotifications.WithLabelValues("FileRenamed", ResultSuccess.String()).Inc()
}

func (c *metricsCallbacks) OnHardLinkCreated(relativePath string) {
	c.base.OnHardLinkCreated(relativePath)
	callbacksNotifications.WithLabelValues("HardLinkCreated", ResultSuccess.String()).Inc()
}

func (c *metricsCallbacks) OnFilePreConvertToFull(relativePath string) Result {
	r := c.base.OnFilePreConvertToFull(relativePath)
	callbacksNotifications.WithLabelValues("FilePreConvertToFull", r.String()).Inc()
	return r
}
