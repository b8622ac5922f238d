// Package hitdetect decides which entity a swing or attack packet may
// legitimately hit: server-side target search, client packet reach/angle
// validation, and per-victim hit snapshots.
package hitdetect

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/geom"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// Validation failures. Always consumed as silent rejects: no damage event,
// no client message, never fatal.
var (
	ErrOutOfReach = errors.New("target out of reach")
	ErrAngle      = errors.New("target outside view angle")
	ErrDeadTarget = errors.New("target is dead")
)

// Tier records which hitbox envelope a validated hit needed.
type Tier int

const (
	// TierPrimary is the tight envelope.
	TierPrimary Tier = iota

	// TierLimit is the lenient envelope, tried when primary misses.
	TierLimit

	// TierFallback is a straight eye-to-center line, no raycast.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierLimit:
		return "limit"
	default:
		return "fallback"
	}
}

// Snapshot captures one validated hit for post-hoc analysis.
// Last-one-wins per victim; logic never reads it back.
type Snapshot struct {
	RayDistance float64
	Tier        Tier
	AttackerEye model.Vec3
	VictimPos   model.Vec3
	TimestampMS int64
}

// Detector performs both hit-detection entry points.
type Detector struct {
	cfg     config.HitDetection
	world   *world.World
	metrics *metrics.Metrics

	snapshots sync.Map // victimID → Snapshot

	// observer is called for every retained hit snapshot. Nil unless the
	// host wires a sink.
	observer func(attackerID, victimID uint32, snap Snapshot)

	// now is swappable for tests.
	now func() int64
}

// NewDetector creates a detector and registers its cleanup with the world.
func NewDetector(cfg config.HitDetection, w *world.World, m *metrics.Metrics) *Detector {
	d := &Detector{
		cfg:     cfg,
		world:   w,
		metrics: m,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
	w.OnRemove(d.forget)
	return d
}

// Eye returns the attacker's current eye position.
func (d *Detector) Eye(p *model.Player) model.Vec3 {
	return geom.EyePosition(p.Position(), p.Sneaking(),
		d.cfg.EyeHeightStanding, d.cfg.EyeHeightSneaking)
}

// Look returns the attacker's normalized look direction.
func (d *Detector) Look(p *model.Player) model.Vec3 {
	yaw, pitch := p.Rotation()
	return geom.DirectionFromRotation(yaw, pitch)
}

// SwingSearch finds the server-side target of a swing packet: the living
// entity whose PRIMARY-expanded hitbox the attacker's look ray crosses
// first, within server-side reach. Returns false when nothing is hit or
// a solid block occludes the candidate.
func (d *Detector) SwingSearch(attacker *model.Player) (*model.Entity, bool) {
	eye := d.Eye(attacker)
	look := d.Look(attacker)

	var (
		best  *model.Entity
		bestT = math.Inf(1)
	)
	d.world.ForEachLiving(func(e *model.Entity) {
		if e.ID() == attacker.ID() || e.IsDead() {
			return
		}
		box := e.BoundingBox().Expand(d.cfg.HitboxExpansionPrimary)
		hit, ok := geom.RayAABB(eye, look, box)
		if !ok || hit.T > d.cfg.ServerSideReach {
			return
		}
		if hit.T < bestT {
			best, bestT = e, hit.T
		}
	})

	if best == nil {
		return nil, false
	}

	if geom.Occluded(eye, look, bestT, d.world.Solid()) {
		d.metrics.Rejection("occluded")
		slog.Debug("swing occluded by block", "attacker", attacker.ID(), "target", best.ID())
		return nil, false
	}

	return best, true
}

// ValidateAttack validates a client-declared attack of attacker → victim:
// reach against the LIMIT-expanded hitbox, optionally the view angle, then
// computes and stores the precise snapshot. A nil error means the hit is
// geometrically legitimate.
func (d *Detector) ValidateAttack(attacker *model.Player, victim *model.Entity) error {
	if victim.IsDead() || victim.IsRemoved() {
		d.metrics.Rejection("dead")
		return ErrDeadTarget
	}

	eye := d.Eye(attacker)
	limitBox := victim.BoundingBox().Expand(d.cfg.HitboxExpansionLimit)

	if limitBox.DistanceTo(eye) > d.cfg.AttackPacketReach {
		d.metrics.Rejection("reach")
		return ErrOutOfReach
	}

	if d.cfg.EnableAngleValidation {
		toVictim := victim.BoundingBox().Center().Sub(eye)
		if geom.AngleBetween(d.Look(attacker), toVictim) > d.cfg.AngleThreshold {
			d.metrics.Rejection("angle")
			return ErrAngle
		}
	}

	snap := d.snapshot(attacker, victim, eye)
	d.metrics.HitTier(snap.Tier.String())
	if d.cfg.TrackHitSnapshots {
		d.snapshots.Store(victim.ID(), snap)
		if d.observer != nil {
			d.observer(attacker.ID(), victim.ID(), snap)
		}
	}
	return nil
}

// SetObserver installs a callback for retained hit snapshots. The host
// uses it to feed external sinks; the detector itself never writes
// anywhere.
func (d *Detector) SetObserver(fn func(attackerID, victimID uint32, snap Snapshot)) {
	d.observer = fn
}

// snapshot raycasts PRIMARY first, then LIMIT, then falls back to the
// straight eye-to-center distance.
func (d *Detector) snapshot(attacker *model.Player, victim *model.Entity, eye model.Vec3) Snapshot {
	look := d.Look(attacker)
	box := victim.BoundingBox()

	snap := Snapshot{
		AttackerEye: eye,
		VictimPos:   victim.Position(),
		TimestampMS: d.now(),
	}

	if hit, ok := geom.RayAABB(eye, look, box.Expand(d.cfg.HitboxExpansionPrimary)); ok {
		snap.RayDistance = hit.T
		snap.Tier = TierPrimary
		return snap
	}
	if hit, ok := geom.RayAABB(eye, look, box.Expand(d.cfg.HitboxExpansionLimit)); ok {
		snap.RayDistance = hit.T
		snap.Tier = TierLimit
		return snap
	}

	snap.RayDistance = box.Center().Sub(eye).Length()
	snap.Tier = TierFallback
	return snap
}

// Snapshot returns the last stored snapshot for a victim.
func (d *Detector) Snapshot(victimID uint32) (Snapshot, bool) {
	v, ok := d.snapshots.Load(victimID)
	if !ok {
		return Snapshot{}, false
	}
	return v.(Snapshot), true
}

// SetNow overrides the clock. Tests only.
func (d *Detector) SetNow(now func() int64) { d.now = now }

func (d *Detector) forget(id uint32) {
	d.snapshots.Delete(id)
}
