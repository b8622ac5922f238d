// Package damage applies damage events: invulnerability windows, damage
// replacement, armor reduction, bypass rules and blocking attenuation.
package damage

import (
	"github.com/udisondev/voxelpvp/internal/model"
)

// Event is one damage request entering the pipeline.
type Event struct {
	Victim *model.Entity

	// Attacker entity, nil for environmental damage (fall, cactus, void).
	Attacker *model.Entity

	// AttackerPlayer is non-nil when the attacker is a player.
	AttackerPlayer *model.Player

	// Weapon is the attacker's main-hand item at swing time, nil if none.
	Weapon *model.ItemStack

	// Kind is the damage kind name (config.KindMelee and friends).
	Kind string

	// Amount is the raw damage before multipliers, blocking and armor.
	Amount float64
}

// Outcome classifies what the pipeline did with an event.
type Outcome int

const (
	// OutcomeApplied: a normal hit landed.
	OutcomeApplied Outcome = iota

	// OutcomeReplaced: a bigger hit inside the window overrode the prior
	// one; only the delta was applied.
	OutcomeReplaced

	// OutcomeCancelled: the event was silently dropped.
	OutcomeCancelled

	// OutcomeBypassed: i-frames were skipped by an explicit bypass rule.
	OutcomeBypassed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeBypassed:
		return "bypassed"
	default:
		return "unknown"
	}
}

// Result is the pipeline's verdict on one event.
type Result struct {
	Outcome Outcome

	// Damage actually subtracted from the victim's health.
	Damage float64

	// Knockback reports whether the caller should run the knockback
	// pipeline for this event.
	Knockback bool

	// Blocked reports whether blocking attenuation applied; the caller
	// forwards the attenuation multipliers to the knockback engine.
	Blocked bool

	// Died reports whether the victim's health reached zero.
	Died bool
}
