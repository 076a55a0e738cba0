package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	pc := NewPrometheusCollector("cashora")
	registry := prometheus.NewRegistry()
	require.NoError(t, pc.Register(registry))

	pc.RequestCreated("deposit")
	pc.RequestCreated("deposit")
	pc.RequestDecided("withdrawal", "rejected")
	pc.ChatMessage("fees")
	pc.SetPending("send", 4)
	pc.EmailSent(true)
	pc.EmailSent(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(pc.requestsCreated.WithLabelValues("deposit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.requestsDecided.WithLabelValues("withdrawal", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.chatMessages.WithLabelValues("fees")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pc.pending.WithLabelValues("send")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.emails.WithLabelValues("failed")))
}

func TestPrometheusCollector_DoubleRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, NewPrometheusCollector("cashora").Register(registry))
	assert.Error(t, NewPrometheusCollector("cashora").Register(registry))
}

func TestNoOpCollector(t *testing.T) {
	var c Collector = NoOpCollector{}
	c.RequestCreated("deposit")
	c.SetPending("deposit", 1)
}
