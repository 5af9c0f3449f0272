package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindReset = "reset"
	kindMore  = "more"

	resultOK    = "ok"
	resultError = "error"
	resultStale = "stale"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_page_fetches_total",
		Help: "Page fetches by resource, kind (reset, more) and result (ok, error, stale)",
	}, []string{"resource", "kind", "result"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homi_page_fetch_duration_seconds",
		Help:    "Page fetch duration by resource and kind",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource", "kind"})

	staleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_stale_responses_total",
		Help: "Responses discarded because a newer reset fetch superseded them",
	}, []string{"resource"})

	sentinelTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_sentinel_triggers_total",
		Help: "Sentinel intersections by outcome (advanced, guarded, below_threshold)",
	}, []string{"outcome"})

	batchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_batch_pages_total",
		Help: "Pages fetched by the batch fetcher by result",
	}, []string{"result"})
)
