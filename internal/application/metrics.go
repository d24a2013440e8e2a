package application

import "expvar"

// counters exposed on /debug/vars
var metrics = expvar.NewMap("users")

const (
	metricCreated     = "created"
	metricUpdated     = "updated"
	metricDeleted     = "deleted"
	metricLoginOK     = "logins_succeeded"
	metricLoginFailed = "logins_failed"
	metricCacheHit    = "cache_hits"
	metricCacheMiss   = "cache_misses"
)
