// Package telemetry registers the bot's Prometheus collectors.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	PollCycles        prometheus.Counter
	LiveNotifications prometheus.Counter
	TwitchErrors      prometheus.Counter
	ReactionGrants    prometheus.Counter
	ReactionRevokes   prometheus.Counter

	// Gauges
	TrackedStreamers prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		PollCycles = promauto.NewCounter(prometheus.CounterOpts{Name: "darky_poll_cycles_total", Help: "Number of presence watcher poll cycles"})
		LiveNotifications = promauto.NewCounter(prometheus.CounterOpts{Name: "darky_live_notifications_total", Help: "Number of went-live notifications sent"})
		TwitchErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "darky_twitch_errors_total", Help: "Number of failed Twitch liveness queries"})
		ReactionGrants = promauto.NewCounter(prometheus.CounterOpts{Name: "darky_reaction_grants_total", Help: "Number of roles granted from reactions"})
		ReactionRevokes = promauto.NewCounter(prometheus.CounterOpts{Name: "darky_reaction_revokes_total", Help: "Number of roles revoked from reactions"})
		TrackedStreamers = promauto.NewGauge(prometheus.GaugeOpts{Name: "darky_tracked_streamers", Help: "Current number of tracked streamers"})
	})
}

// AddCounter increments c if metrics are initialized.
func AddCounter(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// SetTrackedStreamers records the current tracked-table size.
func SetTrackedStreamers(n int) {
	if TrackedStreamers != nil {
		TrackedStreamers.Set(float64(n))
	}
}
