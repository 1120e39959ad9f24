package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courseplan_loads_total",
		Help: "Total number of catalog load attempts by result.",
	}, []string{"result"})

	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courseplan_load_seconds",
		Help:    "Time spent loading the catalog from its source file.",
		Buckets: prometheus.DefBuckets,
	})

	LinesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courseplan_lines_skipped_total",
		Help: "Total number of malformed input lines dropped during loads.",
	})

	RecordsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courseplan_records_loaded_total",
		Help: "Total number of course records accepted across all loads.",
	})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courseplan_catalog_size",
		Help: "Number of courses in the catalog after the last load.",
	})

	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courseplan_lookups_total",
		Help: "Total number of course lookups by result.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courseplan_watcher_events_total",
		Help: "Total number of file system events received for the catalog source.",
	})

	WatcherReloadsDeferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courseplan_watcher_reloads_deferred_total",
		Help: "Total number of reloads deferred by the rate limiter.",
	})
)
