package damage

import (
	"log/slog"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/tick"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// Attenuator is the blocking hook. It reports the victim's active
// attenuation without the pipeline knowing the blocking state machine.
type Attenuator interface {
	// Attenuation returns (damageMult, kbH, kbV, active) for a victim.
	// damageMult is (1 − damageReduction).
	Attenuation(victimID uint32) (damageMult, kbH, kbV float64, active bool)
}

// Pipeline is the damage applicator.
type Pipeline struct {
	types      map[string]config.DamageTypeProperties
	invulnBase config.Invulnerability
	tps        float64
	mode       tick.ScalingMode

	world    *world.World
	blocking Attenuator
	metrics  *metrics.Metrics

	states states

	// currentTick supplies the authoritative server tick.
	currentTick func() int64

	observer func(Event, Result)
}

// NewPipeline creates the applicator and registers state cleanup with the
// world. blocking may be nil.
func NewPipeline(
	types map[string]config.DamageTypeProperties,
	invuln config.Invulnerability,
	tps float64,
	mode tick.ScalingMode,
	w *world.World,
	blocking Attenuator,
	m *metrics.Metrics,
	currentTick func() int64,
) *Pipeline {
	p := &Pipeline{
		types:       types,
		invulnBase:  invuln,
		tps:         tps,
		mode:        mode,
		world:       w,
		blocking:    blocking,
		metrics:     m,
		currentTick: currentTick,
	}
	if blocking == nil {
		slog.Warn("blocking manager not wired, damage is never attenuated")
	}
	w.OnRemove(p.states.forget)
	return p
}

// SetObserver installs a result callback (nil in production).
func (p *Pipeline) SetObserver(fn func(Event, Result)) { p.observer = fn }

// KnockbackAttenuation reports the blocking knockback multipliers the
// caller must forward for a blocked result.
func (p *Pipeline) KnockbackAttenuation(victimID uint32) (h, v float64) {
	if p.blocking == nil {
		return 1, 1
	}
	_, kbH, kbV, active := p.blocking.Attenuation(victimID)
	if !active {
		return 1, 1
	}
	return kbH, kbV
}

// Apply runs one damage event through the pipeline. Tick goroutine only;
// events for one victim within one tick serialize in arrival order.
func (p *Pipeline) Apply(ev Event) Result {
	res := p.apply(ev)
	p.metrics.DamageOutcome(res.Outcome.String())
	if p.observer != nil {
		p.observer(ev, res)
	}
	return res
}

func (p *Pipeline) apply(ev Event) Result {
	props, ok := p.types[ev.Kind]
	if !ok {
		slog.Debug("unknown damage kind, using generic", "kind", ev.Kind)
		props = p.types[config.KindGeneric]
	}

	var attackerTags *model.TagStore
	if ev.Attacker != nil {
		attackerTags = ev.Attacker.Tags()
	}
	props = resolveProps(props, ev.Weapon, attackerTags, ev.Victim.Tags(), p.world.Tags())

	if !props.Enabled {
		return Result{Outcome: OutcomeCancelled}
	}

	if victim, isPlayer := p.world.Player(ev.Victim.ID()); isPlayer {
		if victim.Creative() && !props.BypassCreative {
			return Result{Outcome: OutcomeCancelled}
		}
	}

	amount := ev.Amount * props.Multiplier

	// Blocking attenuation on blockable kinds.
	blocked := false
	if p.blocking != nil && props.Blockable {
		if mult, _, _, active := p.blocking.Attenuation(ev.Victim.ID()); active {
			amount *= mult
			blocked = true
		}
	}

	now := p.currentTick()
	st := p.states.get(ev.Victim.ID())

	// Explicit bypass skips i-frame checks entirely.
	if props.BypassInvulnerability || p.taggedBypass(ev) {
		dealt := p.finalDamage(ev, props, amount)
		died := ev.Victim.ReduceHealth(dealt)
		p.record(st, now, amount, ev.Weapon)
		return Result{Outcome: OutcomeBypassed, Damage: dealt, Knockback: true, Blocked: blocked, Died: died}
	}

	window := int64(tick.Ticks(p.resolveWindow(ev, props), p.tps, p.mode))

	if !st.seen || now-st.lastDamageTick >= window {
		dealt := p.finalDamage(ev, props, amount)
		died := ev.Victim.ReduceHealth(dealt)
		p.record(st, now, amount, ev.Weapon)
		return Result{Outcome: OutcomeApplied, Damage: dealt, Knockback: true, Blocked: blocked, Died: died}
	}

	// Inside the window: replacement or silent cancel.
	if props.DamageReplacement && amount > st.lastDamageAmount+props.ReplacementCutoff {
		if props.NoReplacementSameItem && ev.Weapon != nil && st.lastWeapon == ev.Weapon.InstanceID() {
			return Result{Outcome: OutcomeCancelled}
		}

		delta := amount - st.lastDamageAmount
		dealt := p.finalDamage(ev, props, delta)
		died := ev.Victim.ReduceHealth(dealt)

		// The window does not restart: only the amount advances.
		st.lastDamageAmount = amount
		st.lastWasReplacement = true
		if ev.Weapon != nil {
			st.lastWeapon = ev.Weapon.InstanceID()
		}

		return Result{
			Outcome:   OutcomeReplaced,
			Damage:    dealt,
			Knockback: props.KnockbackOnReplacement,
			Blocked:   blocked,
			Died:      died,
		}
	}

	return Result{Outcome: OutcomeCancelled}
}

// resolveWindow resolves the per-hit invulnerability window in base ticks.
func (p *Pipeline) resolveWindow(ev Event, props config.DamageTypeProperties) int {
	var attackerTags *model.TagStore
	if ev.Attacker != nil {
		attackerTags = ev.Attacker.Tags()
	}
	inv := resolveInvuln(p.invulnBase, ev.Weapon, attackerTags, ev.Victim.Tags(), p.world.Tags())
	return inv.Ticks + props.InvulnerabilityBufferTicks
}

// taggedBypass checks the explicit bypass tag on weapon and attacker.
func (p *Pipeline) taggedBypass(ev Event) bool {
	if ev.Weapon != nil && ev.Weapon.Tags().Bool(model.TagBypassInvulnerability) {
		return true
	}
	return ev.Attacker != nil && ev.Attacker.Tags().Bool(model.TagBypassInvulnerability)
}

// finalDamage applies armor reduction unless the kind penetrates or is
// blacklisted.
func (p *Pipeline) finalDamage(ev Event, props config.DamageTypeProperties, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if props.PenetratesArmor || armorBypassKinds[ev.Kind] {
		return amount
	}
	armor := ev.Victim.Attribute(model.AttrArmor)
	toughness := ev.Victim.Attribute(model.AttrArmorToughness)
	return reduceByArmor(amount, armor, toughness)
}

// record updates the victim's invulnerability state after a landed
// non-replacement hit. The tick is forward-only.
func (p *Pipeline) record(st *invulnState, now int64, amount float64, weapon *model.ItemStack) {
	if now > st.lastDamageTick {
		st.lastDamageTick = now
	}
	st.lastDamageAmount = amount
	st.lastWasReplacement = false
	st.seen = true
	if weapon != nil {
		st.lastWeapon = weapon.InstanceID()
	}
}

// LastDamage exposes the victim's invulnerability snapshot for diagnostics
// and tests: (tick, amount, wasReplacement, tracked).
func (p *Pipeline) LastDamage(victimID uint32) (int64, float64, bool, bool) {
	st, ok := p.states.peek(victimID)
	if !ok {
		return 0, 0, false, false
	}
	return st.lastDamageTick, st.lastDamageAmount, st.lastWasReplacement, true
}

// Tracked reports whether any victim state remains. Shutdown checks.
func (p *Pipeline) Tracked() bool { return !p.states.empty() }
