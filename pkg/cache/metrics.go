package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homi_cache_hits_total",
		Help: "Total number of list responses served from Redis",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homi_cache_misses_total",
		Help: "Total number of list cache misses",
	})

	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "homi_cache_size_bytes",
		Help: "Approximate bytes written to the list cache",
	})

	NotModifiedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homi_cache_not_modified_total",
		Help: "Total number of 304 Not Modified revalidations",
	})

	ConditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homi_cache_conditional_requests_total",
		Help: "Total number of conditional list requests sent",
	})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}) // get, set, delete
)
