package damage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/tick"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// fixedClock drives the pipeline tick by hand.
type fixedClock struct{ tick int64 }

func (c *fixedClock) now() int64 { return c.tick }

// stubBlocking is a fixed Attenuator.
type stubBlocking struct {
	mult, kbH, kbV float64
	active         bool
}

func (s *stubBlocking) Attenuation(uint32) (float64, float64, float64, bool) {
	return s.mult, s.kbH, s.kbV, s.active
}

type fixture struct {
	w        *world.World
	clock    *fixedClock
	pipeline *Pipeline
	victim   *model.Entity
	attacker *model.Player
}

func newFixture(t *testing.T, blocking Attenuator) *fixture {
	t.Helper()
	w := world.New()
	clock := &fixedClock{tick: 1000}

	p := NewPipeline(
		config.DefaultDamageTypes(),
		config.DefaultInvulnerability(),
		20, tick.Scaled,
		w, blocking, nil, clock.now,
	)

	attacker := model.NewPlayer(w.IDs().NextPlayerID(), uuid.New(), model.ProtocolModern)
	w.AddPlayer(attacker)

	victim := model.NewEntity(w.IDs().NextMobID(), model.TypeMob, 0.6, 1.8)
	w.AddEntity(victim)

	return &fixture{w: w, clock: clock, pipeline: p, victim: victim, attacker: attacker}
}

func (f *fixture) melee(amount float64, weapon *model.ItemStack) Result {
	return f.pipeline.Apply(Event{
		Victim:         f.victim,
		Attacker:       f.attacker.Entity,
		AttackerPlayer: f.attacker,
		Weapon:         weapon,
		Kind:           config.KindMelee,
		Amount:         amount,
	})
}

func TestApply_FirstHitLands(t *testing.T) {
	f := newFixture(t, nil)

	res := f.melee(3, nil)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, 3.0, res.Damage)
	assert.True(t, res.Knockback)
	assert.Equal(t, 17.0, f.victim.Health())

	lastTick, lastAmount, wasReplacement, tracked := f.pipeline.LastDamage(f.victim.ID())
	require.True(t, tracked)
	assert.Equal(t, int64(1000), lastTick)
	assert.Equal(t, 3.0, lastAmount)
	assert.False(t, wasReplacement)
}

func TestApply_WindowCancelsWeakerHit(t *testing.T) {
	f := newFixture(t, nil)

	f.melee(3, nil)
	f.clock.tick += 4 // still inside the 10-tick window

	res := f.melee(2, nil)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.False(t, res.Knockback)
	assert.Equal(t, 17.0, f.victim.Health(), "weaker hit inside the window does nothing")
}

func TestApply_EqualHitsFirstWins(t *testing.T) {
	f := newFixture(t, nil)

	f.melee(3, nil)
	res := f.melee(3, nil) // same tick, same amount
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.Equal(t, 17.0, f.victim.Health())
}

// Replacement inside the window: hits of 2.0 and 5.0 at ticks 1000 and
// 1004 cost 2.0 then 3.0 — only the delta.
func TestApply_ReplacementAppliesDelta(t *testing.T) {
	f := newFixture(t, nil)

	res := f.melee(2, nil)
	require.Equal(t, OutcomeApplied, res.Outcome)
	require.Equal(t, 18.0, f.victim.Health())

	f.clock.tick = 1004
	res = f.melee(5, nil)
	assert.Equal(t, OutcomeReplaced, res.Outcome)
	assert.Equal(t, 3.0, res.Damage)
	assert.Equal(t, 15.0, f.victim.Health())
	assert.True(t, res.Knockback, "melee re-applies knockback on replacement")

	lastTick, lastAmount, wasReplacement, _ := f.pipeline.LastDamage(f.victim.ID())
	assert.Equal(t, int64(1000), lastTick, "the window does not restart on replacement")
	assert.Equal(t, 5.0, lastAmount)
	assert.True(t, wasReplacement)
}

func TestApply_ReplacementCutoff(t *testing.T) {
	types := config.DefaultDamageTypes()
	melee := types[config.KindMelee]
	melee.ReplacementCutoff = 2
	types[config.KindMelee] = melee

	f := newFixture(t, nil)
	f.pipeline.types = types

	f.melee(3, nil)
	f.clock.tick += 2

	res := f.melee(4.5, nil) // above last, below last+cutoff
	assert.Equal(t, OutcomeCancelled, res.Outcome)
}

func TestApply_SameItemLockout(t *testing.T) {
	types := config.DefaultDamageTypes()
	melee := types[config.KindMelee]
	melee.NoReplacementSameItem = true
	types[config.KindMelee] = melee

	f := newFixture(t, nil)
	f.pipeline.types = types

	sword := model.NewItemStack("iron_sword")
	f.melee(2, sword)
	f.clock.tick += 3

	res := f.melee(5, sword)
	assert.Equal(t, OutcomeCancelled, res.Outcome, "same weapon instance cannot replace its own hit")

	otherSword := model.NewItemStack("iron_sword")
	res = f.melee(5, otherSword)
	assert.Equal(t, OutcomeReplaced, res.Outcome, "a different instance of the same kind may replace")
}

func TestApply_WindowExpires(t *testing.T) {
	f := newFixture(t, nil)

	f.melee(3, nil)
	f.clock.tick += 10 // exactly the window length

	res := f.melee(1, nil)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, 16.0, f.victim.Health())
}

// For every non-bypass, non-replacement landed hit,
// current_tick − last_damage_tick ≥ invulnerability_ticks held beforehand.
func TestApply_WindowInvariant(t *testing.T) {
	f := newFixture(t, nil)

	prevTick := int64(-1)
	for i := 0; i < 50; i++ {
		f.clock.tick += int64(i % 7)
		res := f.melee(2, nil)
		if res.Outcome == OutcomeApplied && prevTick >= 0 {
			require.GreaterOrEqual(t, f.clock.tick-prevTick, int64(10))
		}
		if res.Outcome == OutcomeApplied {
			prevTick = f.clock.tick
		}
	}
}

func TestApply_BypassInvulnerabilityKind(t *testing.T) {
	f := newFixture(t, nil)

	void := Event{Victim: f.victim, Kind: config.KindVoid, Amount: 4}
	res := f.pipeline.Apply(void)
	require.Equal(t, OutcomeBypassed, res.Outcome)

	// Immediately again: void ignores the window.
	res = f.pipeline.Apply(void)
	assert.Equal(t, OutcomeBypassed, res.Outcome)
	assert.Equal(t, 12.0, f.victim.Health())
}

func TestApply_TaggedBypass(t *testing.T) {
	f := newFixture(t, nil)

	dagger := model.NewItemStack("warped_dagger")
	dagger.Tags().Set(model.TagBypassInvulnerability, true)

	f.melee(3, dagger)
	res := f.melee(1, dagger) // inside window, weaker, still lands
	assert.Equal(t, OutcomeBypassed, res.Outcome)
	assert.Equal(t, 16.0, f.victim.Health())
}

// Blocking: raw 10.0 of a blockable kind onto a blocking victim with
// damageReduction 0.5 → 5.0 dealt.
func TestApply_BlockingAttenuatesDamage(t *testing.T) {
	blocking := &stubBlocking{mult: 0.5, kbH: 0.4, kbV: 0.4, active: true}
	f := newFixture(t, blocking)

	res := f.melee(10, nil)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, 5.0, res.Damage)
	assert.True(t, res.Blocked)
	assert.Equal(t, 15.0, f.victim.Health())

	kbH, kbV := f.pipeline.KnockbackAttenuation(f.victim.ID())
	assert.Equal(t, 0.4, kbH)
	assert.Equal(t, 0.4, kbV)
}

func TestApply_BlockingIgnoresUnblockableKinds(t *testing.T) {
	blocking := &stubBlocking{mult: 0.5, kbH: 0.4, kbV: 0.4, active: true}
	f := newFixture(t, blocking)

	res := f.pipeline.Apply(Event{Victim: f.victim, Kind: config.KindFall, Amount: 6})
	assert.Equal(t, 6.0, res.Damage)
	assert.False(t, res.Blocked)
}

func TestApply_ArmorReduction(t *testing.T) {
	f := newFixture(t, nil)
	f.victim.SetAttribute(model.AttrArmor, 20)
	f.victim.SetAttribute(model.AttrArmorToughness, 0)

	res := f.melee(10, nil)
	// effective = clamp(max(20/5, 20 − 10/2), 0, 20) = 15 → 10·(1−0.6) = 4.
	assert.InDelta(t, 4.0, res.Damage, 1e-9)
}

func TestApply_ArmorBlacklistBypassesArmor(t *testing.T) {
	f := newFixture(t, nil)
	f.victim.SetAttribute(model.AttrArmor, 20)

	res := f.pipeline.Apply(Event{Victim: f.victim, Kind: config.KindMagic, Amount: 10})
	assert.Equal(t, 10.0, res.Damage, "magic skips armor regardless of properties")
}

func TestApply_MalformedArmorDegradesToZeroReduction(t *testing.T) {
	f := newFixture(t, nil)
	f.victim.SetAttribute(model.AttrArmor, -7)

	res := f.melee(10, nil)
	assert.Equal(t, 10.0, res.Damage)
}

func TestApply_CreativeVictim(t *testing.T) {
	f := newFixture(t, nil)

	target := model.NewPlayer(f.w.IDs().NextPlayerID(), uuid.New(), model.ProtocolModern)
	target.SetCreative(true)
	f.w.AddPlayer(target)

	res := f.pipeline.Apply(Event{Victim: target.Entity, Kind: config.KindMelee, Amount: 5})
	assert.Equal(t, OutcomeCancelled, res.Outcome)

	res = f.pipeline.Apply(Event{Victim: target.Entity, Kind: config.KindVoid, Amount: 5})
	assert.Equal(t, OutcomeBypassed, res.Outcome, "void bypasses creative")
}

func TestApply_DisabledKind(t *testing.T) {
	types := config.DefaultDamageTypes()
	fall := types[config.KindFall]
	fall.Enabled = false
	types[config.KindFall] = fall

	f := newFixture(t, nil)
	f.pipeline.types = types

	res := f.pipeline.Apply(Event{Victim: f.victim, Kind: config.KindFall, Amount: 5})
	assert.Equal(t, OutcomeCancelled, res.Outcome)
}

func TestApply_DamageMultiplierTag(t *testing.T) {
	f := newFixture(t, nil)
	// World layer halves all melee damage.
	f.w.Tags().Set(model.TagDamageMultiplier, []float64{0.5})

	res := f.melee(10, nil)
	assert.Equal(t, 5.0, res.Damage)
}

func TestApply_InvulnerabilityCustomTag(t *testing.T) {
	f := newFixture(t, nil)
	f.victim.Tags().Set(model.TagInvulnerability, config.Invulnerability{Ticks: 0})

	f.melee(3, nil)
	res := f.melee(3, nil) // window length 0: every hit lands
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, 14.0, f.victim.Health())
}

func TestApply_DiedFlag(t *testing.T) {
	f := newFixture(t, nil)
	f.victim.SetHealth(2)

	res := f.melee(5, nil)
	assert.True(t, res.Died)
	assert.True(t, f.victim.IsDead())
}

func TestStateClearedOnRemoval(t *testing.T) {
	f := newFixture(t, nil)

	f.melee(3, nil)
	_, _, _, tracked := f.pipeline.LastDamage(f.victim.ID())
	require.True(t, tracked)

	f.w.Remove(f.victim.ID())
	_, _, _, tracked = f.pipeline.LastDamage(f.victim.ID())
	assert.False(t, tracked)
	assert.False(t, f.pipeline.Tracked())
}

func TestReduceByArmor(t *testing.T) {
	tests := []struct {
		name             string
		dmg, armor, tough float64
		want             float64
	}{
		{"no armor", 10, 0, 0, 10},
		{"full armor vs small hit", 4, 20, 0, 4 * (1 - 18.0/25)},
		{"big hit erodes armor", 10, 20, 0, 4},
		{"toughness restores effectiveness", 10, 20, 8, 10 * (1 - 17.5/25)},
		{"floor at armor/5", 100, 20, 0, 100 * (1 - 4.0/25)},
		{"zero damage", 0, 20, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, reduceByArmor(tt.dmg, tt.armor, tt.tough), 1e-9)
		})
	}
}
