package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Telegram updates picked up by a worker.",
	})
	updatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_updates_dropped_total",
		Help: "Updates dropped because the per-chat worker queue was full.",
	})
	updateErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_update_errors_total",
		Help: "Updates whose handling returned an error.",
	})
)
