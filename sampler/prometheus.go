package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the sampler's latest readings as Prometheus gauges so
// a run can be watched live. Scrapes read series snapshots only; they
// never feed back into sampling.
func (s *Sampler) Collector() prometheus.Collector {
	return &samplerCollector{
		sampler: s,
		last: prometheus.NewDesc(
			prometheus.BuildFQName("edgebench", "probe", "last_value"),
			"Most recent reading of a probe.",
			[]string{"probe"},
			nil,
		),
		count: prometheus.NewDesc(
			prometheus.BuildFQName("edgebench", "probe", "readings_total"),
			"Number of successful readings collected for a probe.",
			[]string{"probe"},
			nil,
		),
	}
}

type samplerCollector struct {
	sampler *Sampler
	last    *prometheus.Desc
	count   *prometheus.Desc
}

func (c *samplerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.last
	ch <- c.count
}

func (c *samplerCollector) Collect(ch chan<- prometheus.Metric) {
	for name, series := range c.sampler.AllSeries() {
		ch <- prometheus.MustNewConstMetric(c.count, prometheus.CounterValue, float64(series.Len()), name)

		reading, ok := series.LastReading()
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.last, prometheus.GaugeValue, reading.Value, name)
	}
}
