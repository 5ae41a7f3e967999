package exporter

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/jenkins-exporter/pkg/translate"
)

// scrapeErrorDesc labels the invalid metric sent when a scrape fails.
var scrapeErrorDesc = prometheus.NewDesc(
	"jenkins_exporter_scrape_error",
	"Jenkins scrape failed",
	nil, nil,
)

// Describe sends nothing. The families depend on what Jenkins reports, so the
// Exporter registers as an unchecked collector.
func (e *Exporter) Describe(chan<- *prometheus.Desc) {}

// Collect runs a scrape bounded by the configured scrape timeout and sends the
// result. A fatal scrape sends an invalid metric so the HTTP handler fails the
// request instead of serving partial data.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.RLock()
	timeout := e.cfg.ScrapeTimeout
	e.mu.RUnlock()

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := e.Scrape(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(scrapeErrorDesc, err)
		return
	}

	for _, f := range res.Families {
		e.send(ch, f)
	}
}

// send converts one family into const metrics.
func (e *Exporter) send(ch chan<- prometheus.Metric, f translate.Family) {
	desc := prometheus.NewDesc(f.Name, f.Help, f.LabelNames, nil)
	vt := valueType(f.Kind)

	for _, s := range f.Samples {
		m, err := prometheus.NewConstMetric(desc, vt, s.Value, s.LabelValues...)
		if err != nil {
			e.logger.Warn("skipping sample", "name", f.Name, "labels", s.LabelValues, "error", err)
			continue
		}
		ch <- m
	}
}

func valueType(k translate.Kind) prometheus.ValueType {
	if k == translate.KindCounter {
		return prometheus.CounterValue
	}
	return prometheus.GaugeValue
}
