// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PastesCreated counts successfully created pastes.
	PastesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_pastes_created_total",
		Help: "Total number of pastes created.",
	})

	// Views counts view attempts by outcome: served, not_found, expired,
	// view_limit.
	Views = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastebin_views_total",
		Help: "Total number of paste view attempts by outcome.",
	}, []string{"outcome"})

	// StorageErrors counts storage failures by operation.
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastebin_storage_errors_total",
		Help: "Total number of storage failures by operation.",
	}, []string{"operation"})

	// IDCollisions counts generated ids that were already taken. A non-zero
	// rate means the slug length is too short for the paste volume.
	IDCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_id_collisions_total",
		Help: "Total number of paste id collisions during creation.",
	})

	// PastesPurged counts pastes removed by the background janitor.
	PastesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_pastes_purged_total",
		Help: "Total number of expired pastes removed by the janitor.",
	})
)
