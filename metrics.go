package raleighsl

import (
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/raleighsl/internal/constants"
)

const numLatencyBuckets = constants.NumLatencyBuckets

// Metrics tracks operational statistics for a store: per-kind
// operation counters, commit/rollback counts, and a latency histogram,
// the same shape as the teacher's device Metrics but counting object
// operations instead of block I/O.
type Metrics struct {
	Gets    atomic.Uint64
	Sets    atomic.Uint64
	Commits atomic.Uint64
	Aborts  atomic.Uint64

	Errors atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordGet records a read-only object operation.
func (m *Metrics) RecordGet(latencyNs uint64, success bool) {
	m.Gets.Add(1)
	if !success {
		m.Errors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordSet records a mutating object operation.
func (m *Metrics) RecordSet(latencyNs uint64, success bool) {
	m.Sets.Add(1)
	if !success {
		m.Errors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordCommit records a transaction commit.
func (m *Metrics) RecordCommit(latencyNs uint64, success bool) {
	m.Commits.Add(1)
	if !success {
		m.Errors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordAbort records a transaction rollback.
func (m *Metrics) RecordAbort() {
	m.Aborts.Add(1)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range constants.LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the store as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics, safe to read
// without further synchronization.
type MetricsSnapshot struct {
	Gets    uint64
	Sets    uint64
	Commits uint64
	Aborts  uint64
	Errors  uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TotalOps  uint64
	ErrorRate float64
}

// Snapshot creates a point-in-time snapshot of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Gets:    m.Gets.Load(),
		Sets:    m.Sets.Load(),
		Commits: m.Commits.Load(),
		Aborts:  m.Aborts.Load(),
		Errors:  m.Errors.Load(),
	}
	snap.TotalOps = snap.Gets + snap.Sets + snap.Commits

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.TotalOps > 0 {
		snap.ErrorRate = float64(snap.Errors) / float64(snap.TotalOps) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile
// (0.0-1.0) using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}

	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range constants.LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return constants.LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes all counters and restarts the uptime clock, useful in
// tests that assert on a clean metrics instance.
func (m *Metrics) Reset() {
	m.Gets.Store(0)
	m.Sets.Store(0)
	m.Commits.Store(0)
	m.Aborts.Store(0)
	m.Errors.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection; the dispatcher reports
// every object operation, commit and abort to it.
type Observer interface {
	ObserveGet(latencyNs uint64, success bool)
	ObserveSet(latencyNs uint64, success bool)
	ObserveCommit(latencyNs uint64, success bool)
	ObserveAbort()
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveGet(uint64, bool)    {}
func (NoOpObserver) ObserveSet(uint64, bool)    {}
func (NoOpObserver) ObserveCommit(uint64, bool) {}
func (NoOpObserver) ObserveAbort()              {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveGet(latencyNs uint64, success bool) {
	o.metrics.RecordGet(latencyNs, success)
}

func (o *MetricsObserver) ObserveSet(latencyNs uint64, success bool) {
	o.metrics.RecordSet(latencyNs, success)
}

func (o *MetricsObserver) ObserveCommit(latencyNs uint64, success bool) {
	o.metrics.RecordCommit(latencyNs, success)
}

func (o *MetricsObserver) ObserveAbort() {
	o.metrics.RecordAbort()
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
