package storage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedContainerRecordsPuts(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test_storage", reg)
	require.NoError(t, err)

	container := Instrument(NewMemoryContainer("rawimages"), observer)
	ctx := context.Background()

	require.Error(t, container.Put(ctx, "early.png", []byte("abc"), "image/png", nil))
	require.NoError(t, container.CreateIfNotExists(ctx))
	require.NoError(t, container.Put(ctx, "ok.png", make([]byte, 1024), "image/png", nil))

	assert.Equal(t, float64(1024), testutil.ToFloat64(observer.bytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(observer.errors.WithLabelValues("put")))

	again, err := NewPrometheusObserver("test_storage", reg)
	require.NoError(t, err, "re-registering reuses the existing collectors")
	assert.Same(t, observer.bytes, again.bytes)
}
