package bigfield

import (
	"sync/atomic"
	"time"
)

// MetricsObserver receives operation metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics/prometheus provides a Prometheus implementation.
type MetricsObserver interface {
	// OnSet is called after each Set. changed is false when the bit was
	// already set.
	OnSet(duration time.Duration, changed bool, err error)

	// OnGet is called after each Get.
	OnGet(duration time.Duration, err error)

	// OnSplit is called after a leaf split. leaves is the new leaf count.
	OnSplit(leaves int)

	// OnCommit is called after each Commit.
	OnCommit(duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnSet(time.Duration, bool, error) {}
func (NoopMetricsObserver) OnGet(time.Duration, error)       {}
func (NoopMetricsObserver) OnSplit(int)                      {}
func (NoopMetricsObserver) OnCommit(time.Duration, error)    {}

// BasicMetricsObserver provides simple in-memory metrics collection.
type BasicMetricsObserver struct {
	SetCount         atomic.Int64
	SetChanged       atomic.Int64
	SetErrors        atomic.Int64
	SetTotalNanos    atomic.Int64
	GetCount         atomic.Int64
	GetErrors        atomic.Int64
	GetTotalNanos    atomic.Int64
	SplitCount       atomic.Int64
	Leaves           atomic.Int64
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	CommitTotalNanos atomic.Int64
}

// OnSet implements MetricsObserver.
func (b *BasicMetricsObserver) OnSet(duration time.Duration, changed bool, err error) {
	b.SetCount.Add(1)
	b.SetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SetErrors.Add(1)
	} else if changed {
		b.SetChanged.Add(1)
	}
}

// OnGet implements MetricsObserver.
func (b *BasicMetricsObserver) OnGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// OnSplit implements MetricsObserver.
func (b *BasicMetricsObserver) OnSplit(leaves int) {
	b.SplitCount.Add(1)
	b.Leaves.Store(int64(leaves))
}

// OnCommit implements MetricsObserver.
func (b *BasicMetricsObserver) OnCommit(duration time.Duration, err error) {
	b.CommitCount.Add(1)
	b.CommitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsObserver) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SetCount:       b.SetCount.Load(),
		SetChanged:     b.SetChanged.Load(),
		SetErrors:      b.SetErrors.Load(),
		SetAvgNanos:    avg(b.SetTotalNanos.Load(), b.SetCount.Load()),
		GetCount:       b.GetCount.Load(),
		GetErrors:      b.GetErrors.Load(),
		GetAvgNanos:    avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		SplitCount:     b.SplitCount.Load(),
		Leaves:         b.Leaves.Load(),
		CommitCount:    b.CommitCount.Load(),
		CommitErrors:   b.CommitErrors.Load(),
		CommitAvgNanos: avg(b.CommitTotalNanos.Load(), b.CommitCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsObserver state.
type BasicMetricsStats struct {
	SetCount       int64
	SetChanged     int64
	SetErrors      int64
	SetAvgNanos    int64
	GetCount       int64
	GetErrors      int64
	GetAvgNanos    int64
	SplitCount     int64
	Leaves         int64
	CommitCount    int64
	CommitErrors   int64
	CommitAvgNanos int64
}
