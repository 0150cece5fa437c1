package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_ingest_batches_total",
			Help: "Total number of telemetry batches received",
		},
		[]string{"status"},
	)

	recordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_ingest_records_total",
			Help: "Total number of telemetry records by outcome",
		},
		[]string{"outcome"},
	)

	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_directory_lookups_total",
			Help: "Tracker to vehicle lookups by result",
		},
		[]string{"result"},
	)

	publishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_publish_errors_total",
			Help: "Total number of failed broadcasts",
		},
		[]string{"facility"},
	)

	pacingWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_publish_pacing_wait_seconds",
			Help:    "Time spent waiting on the publish rate limiter",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)

	hubClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_websocket_clients",
			Help: "Connected websocket subscribers",
		},
	)
)
