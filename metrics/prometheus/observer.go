package prometheus

import (
	"time"

	"github.com/hupe1980/bigfield"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bigfield"

// Observer implements bigfield.MetricsObserver with Prometheus collectors.
type Observer struct {
	opLatency *prometheus.HistogramVec
	sets      *prometheus.CounterVec
	splits    prometheus.Counter
	leaves    prometheus.Gauge
}

// Option configures NewObserver.
type Option func(*config)

type config struct {
	constLabels prometheus.Labels
	buckets     []float64
}

// WithConstLabels attaches labels to every exported series, e.g. to tell
// several bitfields in one process apart.
func WithConstLabels(l prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = l
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(b []float64) Option {
	return func(c *config) {
		c.buckets = b
	}
}

// NewObserver creates an Observer and registers its collectors with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewObserver(reg prometheus.Registerer, opts ...Option) (*Observer, error) {
	cfg := config{buckets: prometheus.ExponentialBuckets(1e-6, 4, 10)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "operation_latency_seconds",
			Help:        "Latency of bitfield operations.",
			Buckets:     cfg.buckets,
			ConstLabels: cfg.constLabels,
		}, []string{"op", "status"}),
		sets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sets_total",
			Help:        "Set calls by outcome: changed, unchanged or error.",
			ConstLabels: cfg.constLabels,
		}, []string{"result"}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "splits_total",
			Help:        "Leaf splits performed.",
			ConstLabels: cfg.constLabels,
		}),
		leaves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "leaves",
			Help:        "Descriptors in the range index after the last split.",
			ConstLabels: cfg.constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{o.opLatency, o.sets, o.splits, o.leaves} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// OnSet implements bigfield.MetricsObserver.
func (o *Observer) OnSet(d time.Duration, changed bool, err error) {
	o.opLatency.WithLabelValues("set", status(err)).Observe(d.Seconds())
	switch {
	case err != nil:
		o.sets.WithLabelValues("error").Inc()
	case changed:
		o.sets.WithLabelValues("changed").Inc()
	default:
		o.sets.WithLabelValues("unchanged").Inc()
	}
}

// OnGet implements bigfield.MetricsObserver.
func (o *Observer) OnGet(d time.Duration, err error) {
	o.opLatency.WithLabelValues("get", status(err)).Observe(d.Seconds())
}

// OnSplit implements bigfield.MetricsObserver.
func (o *Observer) OnSplit(leaves int) {
	o.splits.Inc()
	o.leaves.Set(float64(leaves))
}

// OnCommit implements bigfield.MetricsObserver.
func (o *Observer) OnCommit(d time.Duration, err error) {
	o.opLatency.WithLabelValues("commit", status(err)).Observe(d.Seconds())
}

var _ bigfield.MetricsObserver = (*Observer)(nil)
