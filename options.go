package bigfield

import (
	"log/slog"

	"github.com/hupe1980/bigfield/amt"
)

const (
	// DefaultSplitFactor is the run count at which a leaf is split.
	DefaultSplitFactor = 4
	// MinSplitFactor is the smallest split factor that makes progress.
	MinSplitFactor = 2
	// MaxSplitFactor is the largest split factor for which a full leaf is
	// guaranteed to encode within rle.MaxEncodedSize. A run costs at most
	// two 10-byte varints plus tags, about 164 bits.
	MaxSplitFactor = 1024
)

type options struct {
	splitFactor     int
	bitWidth        uint
	logger          *Logger
	metricsObserver MetricsObserver
	verifyOnLoad    bool
}

func defaultOptions() options {
	return options{
		splitFactor:     DefaultSplitFactor,
		bitWidth:        amt.DefaultBitWidth,
		logger:          NoopLogger(),
		metricsObserver: NoopMetricsObserver{},
	}
}

// Option configures New and Load.
type Option func(*options)

// WithSplitFactor sets the run count at which a leaf is split in two. It
// must lie in [MinSplitFactor, MaxSplitFactor].
// Load ignores it and uses the split factor stored in the root.
func WithSplitFactor(n int) Option {
	return func(o *options) {
		o.splitFactor = n
	}
}

// WithBitWidth sets the node bit width of the leaf array. Load ignores it
// and uses the bit width stored in the array root.
func WithBitWidth(w uint) Option {
	return func(o *options) {
		o.bitWidth = w
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs human-readable text at level to stderr.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsObserver configures an observer for operation metrics.
// Pass nil to disable metrics.
//
// Example with BasicMetricsObserver:
//
//	metrics := &bigfield.BasicMetricsObserver{}
//	bf, _ := bigfield.New(store, bigfield.WithMetricsObserver(metrics))
//	// ... operations ...
//	stats := metrics.GetStats()
func WithMetricsObserver(m MetricsObserver) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsObserver{}
		}
		o.metricsObserver = m
	}
}

// WithVerifyOnLoad makes Load read every leaf and check it against the
// range index. Without it Load only checks the index itself.
func WithVerifyOnLoad(enabled bool) Option {
	return func(o *options) {
		o.verifyOnLoad = enabled
	}
}
