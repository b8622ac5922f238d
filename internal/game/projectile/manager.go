// Package projectile owns the projectile impact path: launch with
// per-shot velocity config, flight integration, shooter attribution and
// routing of impacts into the damage and knockback pipelines.
package projectile

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/damage"
	"github.com/udisondev/voxelpvp/internal/game/knockback"
	"github.com/udisondev/voxelpvp/internal/game/tags"
	"github.com/udisondev/voxelpvp/internal/game/tick"
	"github.com/udisondev/voxelpvp/internal/geom"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// velocityResolver resolves the per-shot flight config. Component order:
// speed, gravity, drag, spreadDegrees, spawnOffset.
var velocityResolver = tags.Resolver[config.ProjectileVelocity]{
	ToVec: func(v config.ProjectileVelocity) []float64 {
		return []float64{v.Speed, v.Gravity, v.Drag, v.SpreadDegrees, v.SpawnOffset}
	},
	FromVec: func(v config.ProjectileVelocity, c []float64) config.ProjectileVelocity {
		v.Speed, v.Gravity, v.Drag, v.SpreadDegrees, v.SpawnOffset = c[0], c[1], c[2], c[3], c[4]
		return v
	},
	Clamp: func(v config.ProjectileVelocity) config.ProjectileVelocity {
		if v.Speed < 0 {
			v.Speed = 0
		}
		if v.Drag < 0 {
			v.Drag = 0
		} else if v.Drag > 1 {
			v.Drag = 1
		}
		if v.SpreadDegrees < 0 {
			v.SpreadDegrees = 0
		}
		return v
	},
}

// velocityKeys is custom-only: flight behavior is granted wholesale
// ("laser", "heavy rock", "grapple"), not nudged per component.
var velocityKeys = tags.Keys{Custom: model.TagProjectileVelocityCustom}

// Manager drives projectiles through flight and impact.
type Manager struct {
	cfg   config.Projectile
	world *world.World

	pipeline  *damage.Pipeline
	knockback *knockback.Engine

	tps  float64
	mode tick.ScalingMode

	currentTick func() int64
}

// NewManager creates the projectile manager.
func NewManager(
	cfg config.Projectile,
	w *world.World,
	pipeline *damage.Pipeline,
	kb *knockback.Engine,
	tps float64,
	mode tick.ScalingMode,
	currentTick func() int64,
) *Manager {
	return &Manager{
		cfg:         cfg,
		world:       w,
		pipeline:    pipeline,
		knockback:   kb,
		tps:         tps,
		mode:        mode,
		currentTick: currentTick,
	}
}

// ResolveVelocity resolves the per-shot flight config for a weapon.
func (m *Manager) ResolveVelocity(weapon *model.ItemStack, shooterTags *model.TagStore) config.ProjectileVelocity {
	layers := tags.Gather(velocityKeys, weapon, shooterTags, nil, m.world.Tags())
	return velocityResolver.Resolve(m.cfg.Velocity, layers)
}

// Launch spawns a projectile from a shooter's eye line and registers it
// in the world.
func (m *Manager) Launch(shooter *model.Entity, eye model.Vec3, look model.Vec3, kind model.ProjectileKind, weapon *model.ItemStack) *model.Projectile {
	vcfg := m.ResolveVelocity(weapon, shooter.Tags())

	p := model.NewProjectile(
		m.world.IDs().NextProjectileID(),
		kind,
		shooter.ID(),
		shooter.Position(),
		m.currentTick(),
	)
	p.Weapon = weapon

	dir := spread(look, vcfg.SpreadDegrees)
	p.SetPosition(eye.Add(model.Vec3{Y: vcfg.SpawnOffset}), false)
	p.SetVelocity(dir.Mul(vcfg.Speed))

	m.world.AddProjectile(p)
	slog.Debug("projectile launched",
		"id", p.ID(),
		"kind", kind,
		"shooter", shooter.ID(),
		"speed", vcfg.Speed)
	return p
}

// Tick advances one projectile by one tick: integrate flight, look for a
// living-entity collision, route the impact. Returns false when the
// projectile should be removed.
func (m *Manager) Tick(p *model.Projectile) bool {
	vcfg := m.ResolveVelocity(p.Weapon, nil)

	vel := p.Velocity()
	vel.Y -= tick.PerTick(vcfg.Gravity, m.tps, m.mode) * m.tps
	vel = vel.Mul(tick.Retention(vcfg.Drag, m.tps, m.mode))

	from := p.Position()
	step := vel.Mul(1 / m.tps)
	to := from.Add(step)

	if victim, ok := m.findCollision(p, from, step); ok {
		m.Impact(p, victim)
		return false
	}

	grounded := m.world.Solid() != nil && m.world.Solid()(to)
	p.SetPosition(to, grounded)
	p.SetVelocity(vel)
	return !grounded || p.Kind == model.ProjectileBobber
}

// findCollision walks the tick's movement segment against living-entity
// hitboxes. Collisions with the shooter are ignored during the grace
// window after launch.
func (m *Manager) findCollision(p *model.Projectile, from, step model.Vec3) (*model.Entity, bool) {
	dist := step.Length()
	if dist == 0 {
		return nil, false
	}
	dir := step.Normalize()

	graceTicks := int64(tick.Ticks(m.cfg.ShooterCollisionDelayTicks, m.tps, m.mode))
	inGrace := m.currentTick()-p.SpawnTick < graceTicks

	var (
		best  *model.Entity
		bestT = math.Inf(1)
	)
	m.world.ForEachLiving(func(e *model.Entity) {
		if e.IsDead() {
			return
		}
		if e.ID() == p.ShooterID && inGrace {
			return
		}
		hit, ok := geom.RayAABB(from, dir, e.BoundingBox())
		if !ok || hit.T > dist {
			return
		}
		if hit.T < bestT {
			best, bestT = e, hit.T
		}
	})
	return best, best != nil
}

// Impact routes a projectile hit through the damage pipeline and, when
// the hit lands, the knockback engine.
func (m *Manager) Impact(p *model.Projectile, victim *model.Entity) {
	shooter, shooterFound := m.world.Entity(p.ShooterID)
	var shooterPlayer *model.Player
	if shooterFound {
		shooterPlayer, _ = playerOf(m.world, shooter)
	}

	amount := p.BaseDamage
	switch p.Kind {
	case model.ProjectileArrow:
		// Arrow damage scales with impact speed, in blocks per tick.
		amount = p.BaseDamage * p.Velocity().Length() / m.tps
	case model.ProjectileThrown:
		amount = m.cfg.ThrownDamage
	}

	res := m.pipeline.Apply(damage.Event{
		Victim:         victim,
		Attacker:       attackerOrNil(shooterFound, shooter),
		AttackerPlayer: shooterPlayer,
		Weapon:         p.Weapon,
		Kind:           config.KindProjectile,
		Amount:         amount,
	})
	if !res.Knockback {
		m.world.Remove(p.ID())
		return
	}

	origin := m.directionOrigin(p, shooterFound, shooter)
	blockH, blockV := m.pipeline.KnockbackAttenuation(victim.ID())
	if !res.Blocked {
		blockH, blockV = 1, 1
	}

	m.knockback.Apply(knockback.Hit{
		Victim:          victim,
		Attacker:        attackerOrNil(shooterFound, shooter),
		AttackerPlayer:  shooterPlayer,
		Kind:            knockback.KindProjectile,
		Weapon:          p.Weapon,
		DirectionOrigin: &origin,
		BlockH:          blockH,
		BlockV:          blockV,
	})

	m.world.Remove(p.ID())
	slog.Debug("projectile impact",
		"projectile", p.ID(),
		"victim", victim.ID(),
		"kind", p.Kind,
		"damage", res.Damage)
}

// directionOrigin picks the point knockback direction is computed from.
// A dropped shooter degrades SHOOTER_ORIGIN to the projectile position.
func (m *Manager) directionOrigin(p *model.Projectile, shooterFound bool, shooter *model.Entity) model.Vec3 {
	mode := m.cfg.Origin
	if p.Kind == model.ProjectileBobber {
		mode = m.cfg.BobberOrigin
	}
	switch mode {
	case config.OriginShooter:
		if shooterFound {
			return p.ShooterOrigin
		}
		return p.Position()
	case config.OriginBobberRelative:
		// The bobber's landing point is where it sits now.
		return p.Position()
	default:
		return p.Position()
	}
}

// spread rotates dir by a random cone angle up to spreadDegrees.
func spread(dir model.Vec3, spreadDegrees float64) model.Vec3 {
	if spreadDegrees <= 0 {
		return dir.Normalize()
	}
	rad := spreadDegrees * math.Pi / 180
	jitter := model.Vec3{
		X: (rand.Float64() - 0.5) * rad,
		Y: (rand.Float64() - 0.5) * rad,
		Z: (rand.Float64() - 0.5) * rad,
	}
	return dir.Add(jitter).Normalize()
}

func attackerOrNil(found bool, e *model.Entity) *model.Entity {
	if !found {
		return nil
	}
	return e
}

func playerOf(w *world.World, e *model.Entity) (*model.Player, bool) {
	if e == nil || e.Type() != model.TypePlayer {
		return nil, false
	}
	return w.Player(e.ID())
}
