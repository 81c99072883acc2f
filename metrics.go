package lightfs

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordMutation is called after each metadata mutation
	// (create, rename, delete). op names the operation.
	RecordMutation(op string, duration time.Duration, err error)

	// RecordWrite is called after each content write. bytes is the content
	// length attempted.
	RecordWrite(bytes int64, duration time.Duration, err error)

	// RecordRead is called after each content read. bytes is the content
	// length returned (0 on error).
	RecordRead(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMutation(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordWrite(int64, time.Duration, error)     {}
func (NoopMetricsCollector) RecordRead(int64, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MutationCount  atomic.Int64
	MutationErrors atomic.Int64
	WriteCount     atomic.Int64
	WriteErrors    atomic.Int64
	WriteBytes     atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
}

func (c *BasicMetricsCollector) RecordMutation(_ string, _ time.Duration, err error) {
	c.MutationCount.Add(1)
	if err != nil {
		c.MutationErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordWrite(bytes int64, _ time.Duration, err error) {
	c.WriteCount.Add(1)
	if err != nil {
		c.WriteErrors.Add(1)
		return
	}
	c.WriteBytes.Add(bytes)
}

func (c *BasicMetricsCollector) RecordRead(bytes int64, _ time.Duration, err error) {
	c.ReadCount.Add(1)
	if err != nil {
		c.ReadErrors.Add(1)
		return
	}
	c.ReadBytes.Add(bytes)
}
