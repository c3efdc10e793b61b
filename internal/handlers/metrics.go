package handlers

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type uploadMetrics struct {
	requests *prometheus.CounterVec
	sizes    prometheus.Histogram
}

func newUploadMetrics(reg prometheus.Registerer) (*uploadMetrics, error) {
	if reg == nil {
		return nil, nil
	}
	m := &uploadMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shotbox",
			Name:      "upload_requests_total",
			Help:      "Upload requests by response status.",
		}, []string{"status"}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shotbox",
			Name:      "upload_size_bytes",
			Help:      "Size of successfully stored uploads.",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		}),
	}
	for _, collector := range []prometheus.Collector{m.requests, m.sizes} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register upload metric: %w", err)
		}
	}
	return m, nil
}

func (m *uploadMetrics) observe(status int, size int64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	if size > 0 {
		m.sizes.Observe(float64(size))
	}
}
