package api

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	reg             *prometheus.Registry
	filterRequests  *prometheus.CounterVec
	favoriteToggles *prometheus.CounterVec
	catalogSize     prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		filterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herbal",
			Name:      "filter_requests_total",
			Help:      "Catalog filter requests by search mode.",
		}, []string{"mode"}),
		favoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herbal",
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by outcome (added, removed, error).",
		}, []string{"result"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "herbal",
			Name:      "catalog_plants",
			Help:      "Plants in the loaded catalog.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "herbal",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	m.reg.MustRegister(m.filterRequests, m.favoriteToggles, m.catalogSize, m.requestDuration)
	return m
}
