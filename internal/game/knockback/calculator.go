package knockback

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/gameserver"
	"github.com/udisondev/voxelpvp/internal/gameserver/serverpackets"
	"github.com/udisondev/voxelpvp/internal/geom"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// Hit carries everything the engine needs for one knockback application.
// The sprint flag is captured at packet ingest, not re-read here.
type Hit struct {
	Victim *model.Entity

	// Attacker entity, nil for environmental knockback.
	Attacker *model.Entity

	// AttackerPlayer is non-nil when the attacker is a player.
	AttackerPlayer *model.Player

	Kind   Kind
	Weapon *model.ItemStack

	// SprintAtSwing is the attacker's sprint flag at swing time.
	SprintAtSwing bool

	// DirectionOrigin overrides the direction source point (projectile
	// origin modes). Nil means attacker feet.
	DirectionOrigin *model.Vec3

	// BlockH/BlockV are the blocking attenuation multipliers, 1 when the
	// victim is not blocking, 0 when unset.
	BlockH float64
	BlockV float64
}

// Result is the observable outcome of one application. Tests hook it via
// SetObserver.
type Result struct {
	VictimID  uint32
	Direction model.Vec3
	H, V      float64
	Velocity  model.Vec3
	Synced    bool
}

// Engine is the single knockback component: direction, strength,
// modifiers, composition and packet emission.
type Engine struct {
	base     config.Knockback
	world    *world.World
	sync     *Sync
	sessions *gameserver.Sessions
	metrics  *metrics.Metrics

	// tickRate is the per-tick rate factor T of the composition formula.
	tickRate float64

	observer func(Result)

	// jitter is swappable for deterministic tests.
	jitter func() model.Vec3
}

// NewEngine creates the knockback engine.
// sessions may be nil (headless tests); sync may be nil to disable
// compensation entirely.
func NewEngine(
	base config.Knockback,
	tickRate float64,
	w *world.World,
	sync *Sync,
	sessions *gameserver.Sessions,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		base:     base,
		world:    w,
		sync:     sync,
		sessions: sessions,
		metrics:  m,
		tickRate: tickRate,
		jitter: func() model.Vec3 {
			return model.Vec3{
				X: (rand.Float64() - 0.5) * 0.01,
				Z: (rand.Float64() - 0.5) * 0.01,
			}
		},
	}
}

// SetObserver installs a result callback (nil in production).
func (e *Engine) SetObserver(fn func(Result)) { e.observer = fn }

// SetJitter overrides the stacked-entity jitter. Tests only.
func (e *Engine) SetJitter(fn func() model.Vec3) { e.jitter = fn }

// Apply resolves the per-hit config, computes the final velocity and
// dispatches it to the victim.
func (e *Engine) Apply(hit Hit) model.Vec3 {
	var attackerTags *model.TagStore
	if hit.Attacker != nil {
		attackerTags = hit.Attacker.Tags()
	}
	cfg := ResolveConfig(e.base, hit.Kind, hit.Weapon, attackerTags, hit.Victim.Tags(), e.world.Tags())

	dir := e.direction(hit, cfg)
	h, v := e.strength(hit, cfg)

	// Air multipliers.
	if !hit.Victim.OnGround() {
		h *= cfg.AirMultiplierH
		v *= cfg.AirMultiplierV
	}

	// Victim resistance.
	r := hit.Victim.Attribute(model.AttrKnockbackResistance)
	if r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}
	h *= 1 - r
	v *= 1 - r

	// Blocking attenuation sits between resistance and the vertical
	// clamp.
	if hit.BlockH != 0 || hit.BlockV != 0 {
		h *= hit.BlockH
		v *= hit.BlockV
	}

	// Falling floor, then vertical clamp.
	oldVel := hit.Victim.Velocity()
	falling := !hit.Victim.OnGround() && oldVel.Y < fallingVelocityThreshold*e.tickRate
	if falling && v < minFallingKnockback {
		v = minFallingKnockback
	}
	if v > cfg.VerticalLimit {
		v = cfg.VerticalLimit
	}

	velocity := e.compose(hit.Victim, dir, h, v, falling)

	synced := false
	if e.sync != nil && cfg.KnockbackSyncSupported && hit.Attacker != nil {
		if victim, ok := e.world.Player(hit.Victim.ID()); ok {
			attackerPos := hit.Attacker.Position()
			if hit.DirectionOrigin != nil {
				attackerPos = *hit.DirectionOrigin
			}
			compensated := e.sync.Compensate(victim, attackerPos, hit.Attacker.ID(), hit.AttackerPlayer != nil, velocity)
			synced = compensated != velocity
			velocity = compensated
		}
	}

	e.emit(hit.Victim, velocity)
	e.metrics.Knockback()

	if e.observer != nil {
		e.observer(Result{
			VictimID:  hit.Victim.ID(),
			Direction: dir,
			H:         h,
			V:         v,
			Velocity:  velocity,
			Synced:    synced,
		})
	}

	slog.Debug("knockback applied",
		"victim", hit.Victim.ID(),
		"kind", hit.Kind,
		"h", h,
		"v", v,
		"synced", synced)
	return velocity
}

// direction computes the normalized horizontal knockback direction.
func (e *Engine) direction(hit Hit, cfg config.Knockback) model.Vec3 {
	var from model.Vec3
	switch {
	case hit.DirectionOrigin != nil:
		from = *hit.DirectionOrigin
	case hit.Attacker != nil:
		from = hit.Attacker.Position()
	default:
		// Environmental knockback pushes straight up; horizontal zero.
		return model.Vec3{}
	}

	dir := hit.Victim.Position().Sub(from).Horizontal()
	if dir.LengthSquared() < minKnockbackDistance*minKnockbackDistance {
		// Stacked entities: break symmetry before normalizing.
		dir = dir.Add(e.jitter())
	}
	dir = dir.Normalize()

	if cfg.LookWeight > 0 && hit.AttackerPlayer != nil && hit.Kind != KindProjectile {
		yaw, pitch := hit.AttackerPlayer.Rotation()
		look := geom.DirectionFromRotation(yaw, pitch).Horizontal().Normalize()
		w := cfg.LookWeight
		dir = dir.Mul(1 - w).Add(look.Mul(w)).Normalize()
	}
	return dir
}

// strength computes the pre-clamp (h, v) pair.
func (e *Engine) strength(hit Hit, cfg config.Knockback) (h, v float64) {
	h, v = cfg.Horizontal, cfg.Vertical

	if hit.SprintAtSwing && (hit.Kind == KindAttack || hit.Kind == KindDamage) {
		h += cfg.SprintBonusH
		// The vertical bonus lifts airborne victims only; a grounded
		// victim keeps the base vertical.
		if !hit.Victim.OnGround() {
			v += cfg.SprintBonusV
		}
		if hit.AttackerPlayer != nil {
			hit.AttackerPlayer.ClearSprint()
		}
	}

	if hit.Kind == KindSweeping {
		h /= 2
		v /= 2
	}

	if hit.Kind != KindProjectile {
		if level := hit.Weapon.EnchantLevel(EnchantKnockback); level > 0 {
			h += enchantBonusH * float64(level)
			v += enchantBonusV * float64(level)
		}
	}
	return h, v
}

// compose folds the knockback into the victim's existing velocity with
// the legacy formula. This is the single owner of the vertical branch.
func (e *Engine) compose(victim *model.Entity, dir model.Vec3, h, v float64, falling bool) model.Vec3 {
	old := victim.Velocity()
	t := e.tickRate

	// Ground correction: keep genuine upward motion, zero residual
	// downward velocity before composing.
	if victim.OnGround() && old.Y <= groundCorrectionThreshold*t && old.Y < 0 {
		old.Y = 0
	}

	out := model.Vec3{
		X: old.X/2 + dir.X*h*t,
		Z: old.Z/2 + dir.Z*h*t,
	}
	switch {
	case victim.OnGround():
		out.Y = old.Y/2 + v*t
	case falling:
		out.Y = max(v*t, minFallingKnockback*t)
	default:
		out.Y = old.Y/2 + v*t
	}
	return out
}

// emit sets the authoritative velocity and pushes it to player victims.
func (e *Engine) emit(victim *model.Entity, velocity model.Vec3) {
	victim.SetVelocity(velocity)
	if e.sessions == nil {
		return
	}
	if victim.Type() != model.TypePlayer {
		return
	}
	pkt := serverpackets.NewEntityVelocity(victim.ID(), velocity, e.tickRate)
	if err := e.sessions.Send(victim.ID(), pkt); err != nil {
		slog.Debug("velocity packet not delivered", "victim", victim.ID(), "error", err)
	}
}
