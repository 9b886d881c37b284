package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Shortens = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorten_requests_total",
		Help: "Total shorten requests.",
	})
	ShortensRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shorten_rejected_total",
		Help: "Shorten requests rejected by validation.",
	}, []string{"kind"})
	Redirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_requests_total",
		Help: "Total redirect requests.",
	})
	RedirectsNotFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_not_found_total",
		Help: "Redirect requests for unknown or inactive codes.",
	})
	CacheHit = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hit_total",
		Help: "Cache hits.",
	}, []string{"kind"})
	CacheMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_miss_total",
		Help: "Cache misses.",
	}, []string{"kind"})
	CodeRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "short_code_retries_total",
		Help: "Short code generation retries after collisions.",
	})
	GeoLookupErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo_lookup_errors_total",
		Help: "Geolocation lookups that failed or timed out.",
	})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

func init() {
	prometheus.MustRegister(
		Shortens, ShortensRejected,
		Redirects, RedirectsNotFound,
		CacheHit, CacheMiss,
		CodeRetries, GeoLookupErrors, RateLimited,
	)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
