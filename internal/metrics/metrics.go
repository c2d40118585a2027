package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts telegram updates by kind (message, callback, other).
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teadiary_updates_total",
			Help: "Telegram updates received by kind",
		},
		[]string{"kind"},
	)

	HandlerErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teadiary_handler_errors_total",
			Help: "Update handlers that returned an error",
		},
	)

	HandlerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teadiary_handler_duration_seconds",
			Help:    "Time spent handling one update",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	TastingsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teadiary_tastings_saved_total",
			Help: "Tastings saved by the questionnaire",
		},
	)

	// EventsTotal counts analytics events by name and result (ok, error).
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teadiary_events_total",
			Help: "Analytics events by event and status",
		},
		[]string{"event", "status"},
	)

	AlbumsFlushedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teadiary_albums_flushed_total",
			Help: "Photo albums collected and delivered to the conversation",
		},
	)
)
