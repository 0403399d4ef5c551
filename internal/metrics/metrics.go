package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Total store operations by type",
	}, []string{"op"})

	StoreOperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "store",
		Name:      "operation_errors_total",
		Help:      "Store operations rejected on a precondition, by type",
	}, []string{"op"})

	StoreRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dappstate",
		Subsystem: "store",
		Name:      "records",
		Help:      "Number of records currently held",
	})

	StoreSnapshotsOutstanding = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dappstate",
		Subsystem: "store",
		Name:      "snapshots_outstanding",
		Help:      "Records with an unresolved speculative edit",
	})

	StoreRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "store",
		Name:      "rollbacks_total",
		Help:      "Speculative edits rolled back",
	})

	NotifyShownTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "notify",
		Name:      "shown_total",
		Help:      "Notifications that became visible, by lane and kind",
	}, []string{"lane", "kind"})

	NotifyDismissedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "notify",
		Name:      "dismissed_total",
		Help:      "Notifications removed, by lane and kind",
	}, []string{"lane", "kind"})

	NotifyCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "notify",
		Name:      "cancelled_total",
		Help:      "Pending notifications cancelled before ever becoming visible",
	})

	NotifyLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dappstate",
		Subsystem: "notify",
		Name:      "live_entries",
		Help:      "Pending plus visible notification entries",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Metadata cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Metadata cache misses",
	})

	JournalAppendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "journal",
		Name:      "appends_total",
		Help:      "Journal entries written, by record type",
	}, []string{"type"})

	JournalReplayEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dappstate",
		Subsystem: "journal",
		Name:      "replay_entries",
		Help:      "Entries read during the last replay",
	})

	PollCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "poll",
		Name:      "cycles_total",
		Help:      "Completed refresh cycles",
	})

	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstate",
		Subsystem: "poll",
		Name:      "errors_total",
		Help:      "Refresh cycles that failed to fetch",
	})
)
