package knockback

import (
	"log/slog"
	"math"
	"time"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/model"
)

// Sync rewinds the victim's position by the estimated round-trip latency
// and rewrites the knockback direction from the rewound position, so the
// imparted direction matches what the victim saw on its screen.
//
// Only the direction rotates: the horizontal magnitude and the vertical
// component of the base knockback are preserved exactly.
type Sync struct {
	cfg     config.KnockbackSync
	history *History
	pings   *PingTracker
	metrics *metrics.Metrics

	now func() int64
}

// NewSync creates the compensation component.
func NewSync(cfg config.KnockbackSync, history *History, pings *PingTracker, m *metrics.Metrics) *Sync {
	return &Sync{
		cfg:     cfg,
		history: history,
		pings:   pings,
		metrics: m,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// SetNow overrides the clock. Tests only.
func (s *Sync) SetNow(now func() int64) { s.now = now }

// History returns the position history fed by the session layer.
func (s *Sync) History() *History { return s.history }

// Pings returns the ping tracker.
func (s *Sync) Pings() *PingTracker { return s.pings }

// RewindMillis computes the rewind window for a hit of attacker → victim.
func (s *Sync) RewindMillis(victimID uint32, attackerID uint32, attackerIsPlayer bool) int64 {
	total := s.pings.Estimate(victimID)
	if attackerIsPlayer {
		total += s.pings.Estimate(attackerID)
	}
	rewind := int64(float64(total) * s.cfg.InterpolationFactor)
	if rewind < 0 {
		rewind = 0
	}
	return rewind
}

// Compensate rewrites base's horizontal direction from the victim's
// rewound position relative to the attacker's current position. Returns
// base unchanged when compensation is skipped.
func (s *Sync) Compensate(victim *model.Player, attackerPos model.Vec3, attackerID uint32, attackerIsPlayer bool, base model.Vec3) model.Vec3 {
	if !s.cfg.Enabled {
		return base
	}
	if !s.cfg.OffGroundSync && !victim.OnGround() {
		s.metrics.SyncOutcome("skipped_airborne")
		return base
	}

	rewind := s.RewindMillis(victim.ID(), attackerID, attackerIsPlayer)
	if rewind == 0 || rewind > s.cfg.MaxRewindMillis {
		s.metrics.SyncOutcome("skipped_rewind")
		return base
	}

	target := s.now() - rewind
	before, after, ok := s.history.Straddling(victim.ID(), target)
	if !ok {
		s.metrics.SyncOutcome("skipped_history")
		return base
	}

	rewound := interpolate(before, after, target)

	dir := rewound.Pos.Sub(attackerPos).Horizontal()
	if dir.LengthSquared() < minKnockbackDistance*minKnockbackDistance {
		s.metrics.SyncOutcome("skipped_history")
		return base
	}
	dir = dir.Normalize()

	horizontal := base.HorizontalLength()
	out := model.Vec3{
		X: dir.X * horizontal,
		Y: base.Y,
		Z: dir.Z * horizontal,
	}

	s.metrics.SyncOutcome("applied")
	slog.Debug("knockback sync applied",
		"victim", victim.ID(),
		"rewind_ms", rewind,
		"rewound_x", rewound.Pos.X,
		"rewound_z", rewound.Pos.Z)
	return out
}

// interpolate linearly blends the straddling snapshots at time t.
// Yaw wraps at 360°.
func interpolate(a, b PositionSnapshot, t int64) PositionSnapshot {
	span := b.TimestampMS - a.TimestampMS
	if span <= 0 {
		return b
	}
	f := float64(t-a.TimestampMS) / float64(span)

	return PositionSnapshot{
		Pos: model.Vec3{
			X: a.Pos.X + (b.Pos.X-a.Pos.X)*f,
			Y: a.Pos.Y + (b.Pos.Y-a.Pos.Y)*f,
			Z: a.Pos.Z + (b.Pos.Z-a.Pos.Z)*f,
		},
		Yaw:         lerpAngle(a.Yaw, b.Yaw, f),
		OnGround:    a.OnGround,
		TimestampMS: t,
	}
}

// lerpAngle interpolates degrees along the shortest arc.
func lerpAngle(a, b, f float64) float64 {
	diff := math.Mod(b-a, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	out := math.Mod(a+diff*f, 360)
	if out < 0 {
		out += 360
	}
	return out
}
