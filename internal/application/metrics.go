package application

import "expvar"

// Counters exposed on /api/debug/vars.
var (
	metricSignups = expvar.NewInt("signups")
	metricLogins  = expvar.NewInt("logins")
	metricLevels  = expvar.NewInt("levels_completed")
	metricBadges  = expvar.NewInt("badges_awarded")
)
