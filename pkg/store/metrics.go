package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAtomic    = "atomic"
	outcomeFallback  = "fallback"
	outcomeFailed    = "failed"
	outcomeAbandoned = "abandoned"
)

var (
	// savesTotal is the total number of configuration saves by outcome.
	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_config_saves_total",
			Help: "Total number of configuration saves",
		},
		[]string{"outcome"},
	)

	// saveLatency is the duration of configuration saves.
	saveLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "store_config_save_latency",
			Help: "Duration of configuration saves",
		},
	)

	// backupFailures is the total number of backups that could not be created.
	backupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_config_backup_failures_total",
			Help: "Total number of failed configuration backups",
		},
	)

	// loadsTotal is the total number of configuration loads.
	loadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_config_loads_total",
			Help: "Total number of configuration loads",
		},
	)

	// loadFailures is the total number of loads that fell back to an empty configuration.
	loadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_config_load_failures_total",
			Help: "Total number of configuration loads that fell back to an empty configuration",
		},
	)
)
