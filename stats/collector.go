package stats

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes an Aggregator to Prometheus.
type Collector struct {
	agg *Aggregator

	bursts    *prometheus.Desc
	framed    *prometheus.Desc
	bitErrors *prometheus.Desc
	bits      *prometheus.Desc
	failures  *prometheus.Desc
	prr       *prometheus.Desc
	frames    *prometheus.Desc
}

func NewCollector(agg *Aggregator, namespace string) *Collector {
	return &Collector{
		agg: agg,
		bursts: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bursts_total"),
			"Bursts repaired, by frame kind.", []string{"kind"}, nil),
		framed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "framed_bursts_total"),
			"Bursts whose payload was repaired block by block.", nil, nil),
		bitErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bit_errors_total"),
			"Corrected bit errors including the unique word.", nil, nil),
		bits: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bits_total"),
			"Bits received.", nil, nil),
		failures: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "failures_total"),
			"Bursts that could not be repaired, by reason.", []string{"reason"}, nil),
		prr: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "prr"),
			"Mean packet reception rate per SNR bucket.", []string{"snr_db"}, nil),
		frames: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "snr_frames"),
			"Bursts per SNR bucket.", []string{"snr_db"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bursts
	ch <- c.framed
	ch <- c.bitErrors
	ch <- c.bits
	ch <- c.failures
	ch <- c.prr
	ch <- c.frames
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.agg.Summary()
	for kind, n := range s.ByKind {
		ch <- prometheus.MustNewConstMetric(c.bursts, prometheus.CounterValue, float64(n), string(kind))
	}
	ch <- prometheus.MustNewConstMetric(c.framed, prometheus.CounterValue, float64(s.Framed))
	ch <- prometheus.MustNewConstMetric(c.bitErrors, prometheus.CounterValue, float64(s.BitErrors))
	ch <- prometheus.MustNewConstMetric(c.bits, prometheus.CounterValue, float64(s.Bits))
	for reason, n := range s.Failures {
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(n), reason)
	}
	for _, b := range s.Buckets {
		snr := fmt.Sprintf("%.1f", b.SNR)
		ch <- prometheus.MustNewConstMetric(c.prr, prometheus.GaugeValue, b.PRR, snr)
		ch <- prometheus.MustNewConstMetric(c.frames, prometheus.GaugeValue, float64(b.Frames), snr)
	}
}
