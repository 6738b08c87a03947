package ticketing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	denialDuplicate    = "duplicate"
	denialClaimed      = "already_claimed"
	denialUnauthorized = "unauthorized"
	denialNotATicket   = "not_a_ticket"
)

var (
	// ticketTransitions is the total number of ticket transitions by kind.
	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_transitions_total",
			Help: "Total number of ticket transitions",
		},
		[]string{"transition"},
	)

	// ticketDenials is the total number of refused ticket operations by reason.
	ticketDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_denials_total",
			Help: "Total number of refused ticket operations",
		},
		[]string{"reason"},
	)

	// orphansRemoved is the total number of registry entries removed because their channel is gone.
	orphansRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_orphans_removed_total",
			Help: "Total number of orphaned registry entries removed",
		},
	)

	// entriesMigrated is the total number of registry entries rekeyed from channel names to channel IDs.
	entriesMigrated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_entries_migrated_total",
			Help: "Total number of registry entries migrated to channel ID keys",
		},
	)

	// entriesDropped is the total number of legacy registry entries that could not be migrated.
	entriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_entries_dropped_total",
			Help: "Total number of legacy registry entries dropped during migration",
		},
	)

	// reconcileLatency is the duration of guild reconciliations.
	reconcileLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ticketing_reconcile_latency",
			Help: "Duration of guild reconciliations",
		},
	)

	// platformFailures is the total number of failed platform calls by operation.
	platformFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_platform_failures_total",
			Help: "Total number of failed platform calls",
		},
		[]string{"op"},
	)
)
