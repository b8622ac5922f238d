// Package metrics exposes the engine's operational counters.
// Everything is optional: a nil *Metrics is a valid no-op sink, so tests
// and embedders that don't care pay nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	hitsByTier      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	damageEvents    *prometheus.CounterVec
	syncOutcomes    *prometheus.CounterVec
	knockbacks      prometheus.Counter
	trackedPlayers  prometheus.Gauge
	tickDuration    prometheus.Histogram
	auditQueueDrops prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hitsByTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelpvp_hits_total",
			Help: "Validated hits by snapshot tier (primary, limit, fallback). The limit/fallback share is the lenient-envelope fraction operators tune against.",
		}, []string{"tier"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelpvp_hit_rejections_total",
			Help: "Silently rejected attack packets by reason (reach, angle, occluded, dead, removed).",
		}, []string{"reason"}),
		damageEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelpvp_damage_events_total",
			Help: "Damage pipeline outcomes (applied, replaced, cancelled, bypassed).",
		}, []string{"outcome"}),
		syncOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelpvp_knockback_sync_total",
			Help: "Knockback sync compensation outcomes (applied, skipped_airborne, skipped_rewind, skipped_history).",
		}, []string{"outcome"}),
		knockbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelpvp_knockbacks_total",
			Help: "Knockback velocities dispatched.",
		}),
		trackedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelpvp_tracked_players",
			Help: "Players with live combat state.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxelpvp_tick_duration_seconds",
			Help:    "Wall time of one tick-loop iteration.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		auditQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelpvp_audit_queue_drops_total",
			Help: "Audit records dropped because the async write queue was full.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.hitsByTier, m.rejections, m.damageEvents, m.syncOutcomes,
			m.knockbacks, m.trackedPlayers, m.tickDuration, m.auditQueueDrops,
		)
	}
	return m
}

// HitTier counts a validated hit by tier label.
func (m *Metrics) HitTier(tier string) {
	if m == nil {
		return
	}
	m.hitsByTier.WithLabelValues(tier).Inc()
}

// Rejection counts a silent attack reject.
func (m *Metrics) Rejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// DamageOutcome counts one damage pipeline outcome.
func (m *Metrics) DamageOutcome(outcome string) {
	if m == nil {
		return
	}
	m.damageEvents.WithLabelValues(outcome).Inc()
}

// SyncOutcome counts one knockback sync decision.
func (m *Metrics) SyncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.syncOutcomes.WithLabelValues(outcome).Inc()
}

// Knockback counts one dispatched knockback.
func (m *Metrics) Knockback() {
	if m == nil {
		return
	}
	m.knockbacks.Inc()
}

// SetTrackedPlayers records the live player count.
func (m *Metrics) SetTrackedPlayers(n int) {
	if m == nil {
		return
	}
	m.trackedPlayers.Set(float64(n))
}

// ObserveTick records one tick's wall time in seconds.
func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(seconds)
}

// AuditDrop counts one dropped audit record.
func (m *Metrics) AuditDrop() {
	if m == nil {
		return
	}
	m.auditQueueDrops.Inc()
}
