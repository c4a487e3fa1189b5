package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, func() int { return 3 })

	c.SongAdded()
	c.SongAdded()
	c.QueueFull()
	c.SongSkipped()
	c.Download("ok")
	c.ObserveResolve("search", time.Now())

	if got := testutil.ToFloat64(c.songsAdded); got != 2 {
		t.Errorf("songs_added_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.queueFull); got != 1 {
		t.Errorf("queue_full_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.downloads.WithLabelValues("ok")); got != 1 {
		t.Errorf("downloads_total{result=ok} = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tubequeue_active_queues" {
			found = true
			if v := f.GetMetric()[0].GetGauge().GetValue(); v != 3 {
				t.Errorf("active_queues = %v, want 3", v)
			}
		}
	}
	if !found {
		t.Error("tubequeue_active_queues not registered")
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.SongAdded()
	c.QueueFull()
	c.SongSkipped()
	c.Download("error")
	c.ObserveResolve("info", time.Now())
}
