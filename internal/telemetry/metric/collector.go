package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// ExpiryCollector reports how long the active token remains valid.
// The value is computed at collection time, so a textfile written at exit
// reflects the token that was finally persisted.
type ExpiryCollector struct {
	source func() string
	now    func() time.Time
	desc   *prometheus.Desc
}

// NewExpiryCollector creates a collector reading the token from source.
func NewExpiryCollector(source func() string) *ExpiryCollector {
	return &ExpiryCollector{
		source: source,
		now:    time.Now,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "token_expires_in_seconds"),
			"Remaining validity of the active token; 0 if expired or undecodable",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *ExpiryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector. Nothing is emitted while there
// is no token.
func (c *ExpiryCollector) Collect(ch chan<- prometheus.Metric) {
	token := c.source()
	if token == "" {
		return
	}
	remaining := domain.ExpiresIn(token, c.now())
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, remaining.Seconds())
}
