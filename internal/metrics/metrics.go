package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Estimation metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"strategy", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	TradeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_trade_requests_total",
			Help: "Total number of trade requests",
		},
		[]string{"strategy", "status"},
	)

	TradeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_trade_duration_seconds",
			Help:    "Trade request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// Request coalescing metrics
	SharedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_shared_requests_total",
			Help: "Total number of requests attached to an in-flight computation",
		},
		[]string{"label"},
	)

	// Cache metrics
	CacheRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricer_cache_refreshes_total",
		Help: "Total number of cache slot refreshes",
	})

	// Pool fetcher metrics
	PoolsFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricer_pools_fetched",
		Help:    "Number of pools returned per snapshot",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
