// Package metrics registers the service's Prometheus collectors.
//
// Exposed series:
//   - deck_provider_requests_total{provider,op,outcome} – upstream calls by outcome (ok|error)
//   - deck_fallbacks_total{op}                          – degradations to mock data
//   - deck_http_requests_total{path,status}             – API requests served
//   - deck_http_request_seconds{path}                   – API latency histogram
//   - deck_ideas_total{strategy}                        – strategy ideas generated
//   - deck_alerts_triggered_total                       – alerts fired
//   - deck_ws_clients                                   – connected WebSocket clients (gauge)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_provider_requests_total",
			Help: "Upstream provider calls by outcome",
		},
		[]string{"provider", "op", "outcome"},
	)

	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_fallbacks_total",
			Help: "Requests served from mock data after a live failure",
		},
		[]string{"op"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_http_requests_total",
			Help: "API requests served",
		},
		[]string{"path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_http_request_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	Ideas = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_ideas_total",
			Help: "Strategy ideas generated",
		},
		[]string{"strategy"},
	)

	AlertsTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deck_alerts_triggered_total",
			Help: "Alerts fired",
		},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deck_ws_clients",
			Help: "Connected WebSocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequests,
		Fallbacks,
		HTTPRequests,
		HTTPDuration,
		Ideas,
		AlertsTriggered,
		WSClients,
	)
}
