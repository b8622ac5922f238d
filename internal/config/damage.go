package config

import "fmt"

// DamageTypeProperties configures one damage kind's behavior in the
// pipeline. Resolved per hit through the tag chain.
type DamageTypeProperties struct {
	Enabled    bool    `yaml:"enabled"`
	Multiplier float64 `yaml:"multiplier"`

	// Blockable damage is attenuated by a blocking victim.
	Blockable bool `yaml:"blockable"`

	// PenetratesArmor skips armor reduction entirely.
	PenetratesArmor bool `yaml:"penetrates_armor"`

	// BypassInvulnerability skips the i-frame window entirely.
	BypassInvulnerability bool `yaml:"bypass_invulnerability"`

	// BypassCreative hits creative-mode players too.
	BypassCreative bool `yaml:"bypass_creative"`

	// DamageReplacement lets a strictly larger hit inside the window
	// override the prior one, applying only the difference.
	DamageReplacement bool `yaml:"damage_replacement"`

	// KnockbackOnReplacement re-applies knockback on a replacing hit.
	KnockbackOnReplacement bool `yaml:"knockback_on_replacement"`

	// ReplacementCutoff is the margin a replacing hit must exceed the
	// prior amount by.
	ReplacementCutoff float64 `yaml:"replacement_cutoff"`

	// HurtEffect plays the red-flash/hurt animation to viewers.
	HurtEffect bool `yaml:"hurt_effect"`

	// InvulnerabilityBufferTicks extends the base window for this kind.
	InvulnerabilityBufferTicks int `yaml:"invulnerability_buffer_ticks"`

	// NoReplacementSameItem rejects a replacement when the attacker's
	// main-hand item is the same instance as the previous hit's weapon.
	NoReplacementSameItem bool `yaml:"no_replacement_same_item"`
}

// Validate rejects records outside the documented ranges.
func (d DamageTypeProperties) Validate() error {
	if d.Multiplier < 0 {
		return fmt.Errorf("multiplier %v negative", d.Multiplier)
	}
	if d.ReplacementCutoff < 0 {
		return fmt.Errorf("replacement_cutoff %v negative", d.ReplacementCutoff)
	}
	if d.InvulnerabilityBufferTicks < 0 {
		return fmt.Errorf("invulnerability_buffer_ticks %d negative", d.InvulnerabilityBufferTicks)
	}
	return nil
}

// Damage kind names, the keys of the damage-types table.
const (
	KindFall       = "fall"
	KindFire       = "fire"
	KindLava       = "lava"
	KindCactus     = "cactus"
	KindProjectile = "projectile"
	KindMelee      = "melee"
	KindGeneric    = "generic"
	KindVoid       = "void"
	KindDrown      = "drown"
	KindStarve     = "starve"
	KindMagic      = "magic"
	KindWither     = "wither"
	KindSonicBoom  = "sonic_boom"
	KindExplosion  = "explosion"
)

// DamageKinds lists every kind the pipeline knows, in table order.
var DamageKinds = []string{
	KindFall, KindFire, KindLava, KindCactus, KindProjectile,
	KindMelee, KindGeneric, KindVoid, KindDrown, KindStarve,
	KindMagic, KindWither, KindSonicBoom, KindExplosion,
}

// baseTypeProperties is the common starting point of every kind.
func baseTypeProperties() DamageTypeProperties {
	return DamageTypeProperties{
		Enabled:                true,
		Multiplier:             1,
		Blockable:              false,
		HurtEffect:             true,
		DamageReplacement:      true,
		KnockbackOnReplacement: false,
		ReplacementCutoff:      0,
	}
}

// DefaultDamageTypes returns the per-kind property table.
func DefaultDamageTypes() map[string]DamageTypeProperties {
	types := make(map[string]DamageTypeProperties, len(DamageKinds))
	for _, kind := range DamageKinds {
		types[kind] = baseTypeProperties()
	}

	melee := types[KindMelee]
	melee.Blockable = true
	melee.KnockbackOnReplacement = true
	types[KindMelee] = melee

	proj := types[KindProjectile]
	proj.Blockable = true
	types[KindProjectile] = proj

	expl := types[KindExplosion]
	expl.Blockable = true
	types[KindExplosion] = expl

	void := types[KindVoid]
	void.BypassInvulnerability = true
	void.BypassCreative = true
	void.PenetratesArmor = true
	void.HurtEffect = false
	types[KindVoid] = void

	starve := types[KindStarve]
	starve.PenetratesArmor = true
	starve.HurtEffect = false
	types[KindStarve] = starve

	for _, kind := range []string{KindMagic, KindWither, KindSonicBoom} {
		p := types[kind]
		p.PenetratesArmor = true
		types[kind] = p
	}

	fire := types[KindFire]
	fire.InvulnerabilityBufferTicks = 10
	types[KindFire] = fire

	return types
}

// ValidateDamageTypes checks every entry of the table and rejects
// unknown kind names.
func ValidateDamageTypes(types map[string]DamageTypeProperties) error {
	known := make(map[string]bool, len(DamageKinds))
	for _, k := range DamageKinds {
		known[k] = true
	}
	for name, props := range types {
		if !known[name] {
			return fmt.Errorf("unknown damage kind %q", name)
		}
		if err := props.Validate(); err != nil {
			return fmt.Errorf("damage kind %q: %w", name, err)
		}
	}
	return nil
}
