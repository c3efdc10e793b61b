package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for container operations.
type Observer interface {
	RecordCreate(duration time.Duration, err error)
	RecordPut(duration time.Duration, sizeBytes int, err error)
}

// PrometheusObserver exports container metrics to Prometheus.
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	bytes    prometheus.Counter
}

func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "shotbox_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	observer := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of blob container operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed blob container operations.",
		}, []string{"operation"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_bytes_total",
			Help:      "Cumulative payload size written to the container.",
		}),
	}

	collectors := []prometheus.Collector{observer.duration, observer.errors, observer.bytes}
	for i, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, fmt.Errorf("register storage metric: %w", err)
			}
			collectors[i] = are.ExistingCollector
		}
	}
	observer.duration = collectors[0].(*prometheus.HistogramVec)
	observer.errors = collectors[1].(*prometheus.CounterVec)
	observer.bytes = collectors[2].(prometheus.Counter)
	return observer, nil
}

func (o *PrometheusObserver) RecordCreate(duration time.Duration, err error) {
	o.record("create", duration, err)
}

func (o *PrometheusObserver) RecordPut(duration time.Duration, sizeBytes int, err error) {
	o.record("put", duration, err)
	if err == nil && o != nil {
		o.bytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) record(operation string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(operation).Inc()
	}
}

// Instrument wraps a container so every call is reported to observer.
func Instrument(container Container, observer Observer) Container {
	if observer == nil {
		return container
	}
	return &instrumented{Container: container, observer: observer}
}

type instrumented struct {
	Container
	observer Observer
}

func (i *instrumented) CreateIfNotExists(ctx context.Context) error {
	start := time.Now()
	err := i.Container.CreateIfNotExists(ctx)
	i.observer.RecordCreate(time.Since(start), err)
	return err
}

func (i *instrumented) Put(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	start := time.Now()
	err := i.Container.Put(ctx, name, data, contentType, metadata)
	i.observer.RecordPut(time.Since(start), len(data), err)
	return err
}

// Ping forwards to the wrapped container when it supports health checks.
func (i *instrumented) Ping(ctx context.Context) error {
	if p, ok := i.Container.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
