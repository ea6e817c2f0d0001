package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentalbloom_analyses_total",
			Help: "Total number of text analyses performed",
		},
		[]string{"kind"},
	)

	EmergenciesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentalbloom_emergencies_detected_total",
			Help: "Total number of messages flagged as emergencies",
		},
	)

	BatchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentalbloom_batch_items_total",
			Help: "Batch analysis items by outcome",
		},
		[]string{"outcome"},
	)

	ChatTurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "mentalbloom_chat_turn_duration_seconds",
			Help: "End-to-end duration of a chat turn in seconds",
		},
	)

	DocumentsRetrieved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentalbloom_documents_retrieved",
			Help:    "Number of documents retrieved per chat turn",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 10},
		},
	)
)
