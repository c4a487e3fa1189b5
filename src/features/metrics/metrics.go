package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tubequeue"

// Collector holds the Prometheus instruments of the bot.
// All methods are safe to call on a nil *Collector, which records nothing.
type Collector struct {
	songsAdded      prometheus.Counter
	queueFull       prometheus.Counter
	songsSkipped    prometheus.Counter
	resolveDuration *prometheus.HistogramVec
	downloads       *prometheus.CounterVec
}

// NewCollector creates the instruments and registers them on reg.
// activeQueues is sampled on every scrape.
func NewCollector(reg prometheus.Registerer, activeQueues func() int) *Collector {
	c := &Collector{
		songsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_added_total",
			Help:      "Songs successfully added to a conversation queue.",
		}),
		queueFull: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_full_total",
			Help:      "Add attempts rejected because the queue was at capacity.",
		}),
		songsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_skipped_total",
			Help:      "Songs popped from a queue with skip.",
		}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent in the media resolver.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"op"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Audio downloads by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.songsAdded, c.queueFull, c.songsSkipped, c.resolveDuration, c.downloads)
	if activeQueues != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_queues",
			Help:      "Conversations with a queue.",
		}, func() float64 { return float64(activeQueues()) }))
	}
	return c
}

func (c *Collector) SongAdded() {
	if c == nil {
		return
	}
	c.songsAdded.Inc()
}

func (c *Collector) QueueFull() {
	if c == nil {
		return
	}
	c.queueFull.Inc()
}

func (c *Collector) SongSkipped() {
	if c == nil {
		return
	}
	c.songsSkipped.Inc()
}

// ObserveResolve records how long a resolver operation took.
func (c *Collector) ObserveResolve(op string, started time.Time) {
	if c == nil {
		return
	}
	c.resolveDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// Download counts a finished download; result is "ok", "invalid" or "error".
func (c *Collector) Download(result string) {
	if c == nil {
		return
	}
	c.downloads.WithLabelValues(result).Inc()
}
