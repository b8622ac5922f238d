package config

import "fmt"

// HitDetection holds the reach/raycast tunables of the hit validator.
type HitDetection struct {
	// ServerSideReach limits the server's own swing target search, blocks.
	ServerSideReach float64 `yaml:"server_side_reach"`

	// AttackPacketReach limits client-declared attack targets, blocks.
	// Always at least ServerSideReach: the packet path is the lenient one.
	AttackPacketReach float64 `yaml:"attack_packet_reach"`

	// HitboxExpansionPrimary is the tight hitbox padding, blocks.
	HitboxExpansionPrimary float64 `yaml:"hitbox_expansion_primary"`

	// HitboxExpansionLimit is the lenient padding used when the primary
	// raycast misses.
	HitboxExpansionLimit float64 `yaml:"hitbox_expansion_limit"`

	// AngleThreshold is the max angle in degrees between the attacker's
	// look and the victim direction, when angle validation is on.
	AngleThreshold float64 `yaml:"angle_threshold"`

	EnableAngleValidation bool `yaml:"enable_angle_validation"`

	// TrackHitSnapshots retains a per-victim snapshot of every validated
	// hit for post-hoc analysis. When false nothing is retained.
	TrackHitSnapshots bool `yaml:"track_hit_snapshots"`

	// Eye offsets per pose, blocks above the feet.
	EyeHeightStanding float64 `yaml:"eye_height_standing"`
	EyeHeightSneaking float64 `yaml:"eye_height_sneaking"`
}

// DefaultHitDetection returns the stock hit-detection tunables.
func DefaultHitDetection() HitDetection {
	return HitDetection{
		ServerSideReach:        3.0,
		AttackPacketReach:      4.0,
		HitboxExpansionPrimary: 0.1,
		HitboxExpansionLimit:   0.3,
		AngleThreshold:         90,
		EnableAngleValidation:  false,
		TrackHitSnapshots:      true,
		EyeHeightStanding:      1.62,
		EyeHeightSneaking:      1.27,
	}
}

// Validate rejects records outside the documented ranges.
func (h HitDetection) Validate() error {
	if h.ServerSideReach <= 0 || h.ServerSideReach > 6 {
		return fmt.Errorf("server_side_reach %v outside (0, 6]", h.ServerSideReach)
	}
	if h.AttackPacketReach < h.ServerSideReach {
		return fmt.Errorf("attack_packet_reach %v below server_side_reach %v", h.AttackPacketReach, h.ServerSideReach)
	}
	if h.HitboxExpansionPrimary < 0 || h.HitboxExpansionPrimary > 0.5 {
		return fmt.Errorf("hitbox_expansion_primary %v outside [0, 0.5]", h.HitboxExpansionPrimary)
	}
	if h.HitboxExpansionLimit < h.HitboxExpansionPrimary {
		return fmt.Errorf("hitbox_expansion_limit %v below primary %v", h.HitboxExpansionLimit, h.HitboxExpansionPrimary)
	}
	if h.AngleThreshold < 0 || h.AngleThreshold > 180 {
		return fmt.Errorf("angle_threshold %v outside [0, 180]", h.AngleThreshold)
	}
	if h.EyeHeightStanding <= 0 || h.EyeHeightSneaking <= 0 {
		return fmt.Errorf("eye heights must be positive")
	}
	return nil
}

// Knockback is the ten-field knockback record. Resolved fresh per hit
// through the tag chain and never mutated mid-pipeline.
type Knockback struct {
	Horizontal     float64 `yaml:"horizontal"`
	Vertical       float64 `yaml:"vertical"`
	VerticalLimit  float64 `yaml:"vertical_limit"`
	SprintBonusH   float64 `yaml:"sprint_bonus_h"`
	SprintBonusV   float64 `yaml:"sprint_bonus_v"`
	AirMultiplierH float64 `yaml:"air_multiplier_h"`
	AirMultiplierV float64 `yaml:"air_multiplier_v"`

	// LookWeight blends the attacker's look direction into the knockback
	// direction, 0 = positional only, 1 = look only.
	LookWeight float64 `yaml:"look_weight"`

	// Modern selects the modern knockback formula family on the client.
	Modern bool `yaml:"modern"`

	// KnockbackSyncSupported gates ping-compensated direction rewind.
	KnockbackSyncSupported bool `yaml:"knockback_sync_supported"`
}

// DefaultKnockback returns the stock knockback record.
func DefaultKnockback() Knockback {
	return Knockback{
		Horizontal:             0.4,
		Vertical:               0.4,
		VerticalLimit:          0.4,
		SprintBonusH:           0.5,
		SprintBonusV:           0.1,
		AirMultiplierH:         1.0,
		AirMultiplierV:         1.0,
		LookWeight:             0,
		Modern:                 true,
		KnockbackSyncSupported: true,
	}
}

// Validate rejects records outside the documented ranges.
func (k Knockback) Validate() error {
	if k.LookWeight < 0 || k.LookWeight > 1 {
		return fmt.Errorf("look_weight %v outside [0, 1]", k.LookWeight)
	}
	if k.AirMultiplierH < 0 || k.AirMultiplierV < 0 {
		return fmt.Errorf("air multipliers must be non-negative")
	}
	if k.VerticalLimit < 0 {
		return fmt.Errorf("vertical_limit %v negative", k.VerticalLimit)
	}
	return nil
}

// KnockbackSync holds the position-rewind compensation tunables.
type KnockbackSync struct {
	Enabled bool `yaml:"enabled"`

	// OffGroundSync applies compensation to airborne victims too.
	OffGroundSync bool `yaml:"off_ground_sync"`

	// InterpolationFactor scales the summed round-trip estimate into a
	// rewind time.
	InterpolationFactor float64 `yaml:"interpolation_factor"`

	// MaxRewindMillis is the hard rewind cap.
	MaxRewindMillis int64 `yaml:"max_rewind_millis"`
}

// DefaultKnockbackSync returns the stock sync tunables.
func DefaultKnockbackSync() KnockbackSync {
	return KnockbackSync{
		Enabled:             true,
		OffGroundSync:       true,
		InterpolationFactor: 0.75,
		MaxRewindMillis:     1000,
	}
}

// Validate rejects records outside the documented ranges.
func (s KnockbackSync) Validate() error {
	if s.InterpolationFactor < 0 || s.InterpolationFactor > 1 {
		return fmt.Errorf("interpolation_factor %v outside [0, 1]", s.InterpolationFactor)
	}
	if s.MaxRewindMillis < 0 {
		return fmt.Errorf("max_rewind_millis %v negative", s.MaxRewindMillis)
	}
	return nil
}

// Blocking holds the blocking attenuation tunables.
type Blocking struct {
	Enabled bool `yaml:"enabled"`

	// DamageReduction attenuates blockable damage: final = raw·(1−r).
	DamageReduction float64 `yaml:"damage_reduction"`

	KnockbackHorizontalMultiplier float64 `yaml:"knockback_horizontal_multiplier"`
	KnockbackVerticalMultiplier   float64 `yaml:"knockback_vertical_multiplier"`

	// BlockableItems lists main-hand item kinds that can block.
	BlockableItems []string `yaml:"blockable_items"`
}

// DefaultBlocking returns the stock blocking tunables.
func DefaultBlocking() Blocking {
	return Blocking{
		Enabled:                       true,
		DamageReduction:               0.5,
		KnockbackHorizontalMultiplier: 0.4,
		KnockbackVerticalMultiplier:   0.4,
		BlockableItems: []string{
			"wooden_sword", "stone_sword", "iron_sword",
			"golden_sword", "diamond_sword", "netherite_sword",
		},
	}
}

// Validate rejects records outside the documented ranges.
func (b Blocking) Validate() error {
	if b.DamageReduction < 0 || b.DamageReduction > 1 {
		return fmt.Errorf("damage_reduction %v outside [0, 1]", b.DamageReduction)
	}
	if b.KnockbackHorizontalMultiplier < 0 || b.KnockbackHorizontalMultiplier > 1 {
		return fmt.Errorf("knockback_horizontal_multiplier %v outside [0, 1]", b.KnockbackHorizontalMultiplier)
	}
	if b.KnockbackVerticalMultiplier < 0 || b.KnockbackVerticalMultiplier > 1 {
		return fmt.Errorf("knockback_vertical_multiplier %v outside [0, 1]", b.KnockbackVerticalMultiplier)
	}
	return nil
}

// Blockable reports whether the item kind can block.
func (b Blocking) Blockable(kind string) bool {
	for _, k := range b.BlockableItems {
		if k == kind {
			return true
		}
	}
	return false
}

// Invulnerability holds the base i-frame window. Per-damage-type buffers
// extend it; the tag chain can replace it wholesale.
type Invulnerability struct {
	// Ticks is the window length at 20 TPS.
	Ticks int `yaml:"ticks"`
}

// DefaultInvulnerability returns the stock 10-tick window.
func DefaultInvulnerability() Invulnerability {
	return Invulnerability{Ticks: 10}
}

// Validate rejects records outside the documented ranges.
func (i Invulnerability) Validate() error {
	if i.Ticks < 0 {
		return fmt.Errorf("ticks %d negative", i.Ticks)
	}
	return nil
}
