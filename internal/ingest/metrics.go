package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness_service",
		Subsystem: "ingest",
		Name:      "requests_processed_total",
		Help:      "Number of sync requests successfully handled.",
	}, []string{"topic"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness_service",
		Subsystem: "ingest",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors per topic.",
	}, []string{"topic"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness_service",
		Subsystem: "ingest",
		Name:      "decode_errors_total",
		Help:      "Number of decode failures per topic.",
	}, []string{"topic"})

	droppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness_service",
		Subsystem: "ingest",
		Name:      "requests_dropped_total",
		Help:      "Number of sync requests dropped because the batch was malformed.",
	}, []string{"topic"})

	lastRequestGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "wellness_service",
		Subsystem: "ingest",
		Name:      "last_request_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed sync request per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter, droppedCounter, lastRequestGauge)
}

func recordProcessed(req Request) {
	processedCounter.WithLabelValues(req.Topic).Inc()
	if !req.Timestamp.IsZero() {
		lastRequestGauge.WithLabelValues(req.Topic).Set(float64(req.Timestamp.Unix()))
	}
}

func recordHandlerError(topic string) {
	handlerErrorCounter.WithLabelValues(topic).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordDropped(topic string) {
	droppedCounter.WithLabelValues(topic).Inc()
}
