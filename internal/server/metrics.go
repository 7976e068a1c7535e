package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a per-server registry so several servers can
// live in one process
type metrics struct {
	registry          *prometheus.Registry
	messagesTotal     *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	wsConnections     prometheus.Gauge
	connectionsDenied *prometheus.CounterVec
}

func newMetrics(cellCount func() float64) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hexward_messages_total",
			Help: "Client messages handled, by type",
		}, []string{"type"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hexward_errors_total",
			Help: "Error replies sent to clients, by code",
		}, []string{"code"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hexward_ws_connections_active",
			Help: "Open WebSocket connections",
		}),
		connectionsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hexward_connections_denied_total",
			Help: "WebSocket connections refused before upgrade, by reason",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		m.messagesTotal,
		m.errorsTotal,
		m.wsConnections,
		m.connectionsDenied,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "hexward_map_cells",
			Help: "Cells stored in the shared map",
		}, cellCount),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
