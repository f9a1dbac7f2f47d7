package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/cityhall/employee-registry/internal/metrics"
	"github.com/cityhall/employee-registry/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronService(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := metrics.New(prometheus.NewRegistry())

	store := session.NewMemoryStore(time.Millisecond)
	require.NoError(t, store.Save(context.Background(), &session.Session{ID: "old"}))
	time.Sleep(5 * time.Millisecond)

	service := NewCronService(store, time.Minute, m, logger)

	t.Run("Start", func(t *testing.T) {
		require.NoError(t, service.Start())
		assert.Equal(t, 1, service.JobCount())
	})

	t.Run("Run Sweep Now", func(t *testing.T) {
		assert.Equal(t, 1, service.RunSweepNow())
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsSwept))
	})

	service.Stop()
}

func TestCronService_InvalidInterval(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewCronService(session.NewMemoryStore(time.Hour), 0, metrics.New(prometheus.NewRegistry()), logger)
	assert.Error(t, service.Start())
}
