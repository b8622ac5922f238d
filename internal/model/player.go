package model

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ProtocolClass partitions connected clients by wire-behavior generation.
// LEGACY clients predict knockback and health client-side and need packet
// suppression (see gameserver compatibility filter); MODERN clients do not.
type ProtocolClass int

const (
	ProtocolLegacy ProtocolClass = iota
	ProtocolModern
)

func (p ProtocolClass) String() string {
	switch p {
	case ProtocolLegacy:
		return "legacy"
	case ProtocolModern:
		return "modern"
	default:
		return "unknown"
	}
}

// Preferences are per-player cosmetic toggles. Observer-only: they shape
// what the player sees, never the numeric combat contracts.
type Preferences struct {
	BlockingParticles bool
	BlockingSound     bool
	BlockingActionBar bool
}

// DefaultPreferences enables all blocking visuals.
func DefaultPreferences() Preferences {
	return Preferences{
		BlockingParticles: true,
		BlockingSound:     true,
		BlockingActionBar: true,
	}
}

// Default player hitbox, standard for the block world.
const (
	PlayerWidth  = 0.6
	PlayerHeight = 1.8
)

// Player is a connected, controllable entity.
type Player struct {
	*Entity

	profile  uuid.UUID
	protocol ProtocolClass

	ping     atomic.Int64 // milliseconds, latest estimate
	sprint   atomic.Bool
	sneaking atomic.Bool
	creative atomic.Bool

	prefs atomic.Pointer[Preferences]
}

// NewPlayer creates a player with the standard hitbox.
func NewPlayer(id uint32, profile uuid.UUID, protocol ProtocolClass) *Player {
	p := &Player{
		Entity:   NewEntity(id, TypePlayer, PlayerWidth, PlayerHeight),
		profile:  profile,
		protocol: protocol,
	}
	prefs := DefaultPreferences()
	p.prefs.Store(&prefs)
	return p
}

// Profile returns the player's profile UUID.
func (p *Player) Profile() uuid.UUID { return p.profile }

// Protocol returns the client's protocol class.
func (p *Player) Protocol() ProtocolClass { return p.protocol }

// Ping returns the latest latency estimate in milliseconds.
func (p *Player) Ping() int64 { return p.ping.Load() }

// SetPing stores a latency estimate in milliseconds.
func (p *Player) SetPing(ms int64) { p.ping.Store(ms) }

// Sprinting reports the sprint flag.
func (p *Player) Sprinting() bool { return p.sprint.Load() }

// SetSprinting sets the sprint flag.
func (p *Player) SetSprinting(v bool) { p.sprint.Store(v) }

// ClearSprint clears the sprint flag and reports whether it was set.
// The knockback engine consumes the sprint bonus exactly once per sprint.
func (p *Player) ClearSprint() bool { return p.sprint.Swap(false) }

// Sneaking reports the sneak flag (affects eye height).
func (p *Player) Sneaking() bool { return p.sneaking.Load() }

// SetSneaking sets the sneak flag.
func (p *Player) SetSneaking(v bool) { p.sneaking.Store(v) }

// Creative reports whether the player is in creative mode.
func (p *Player) Creative() bool { return p.creative.Load() }

// SetCreative sets creative mode.
func (p *Player) SetCreative(v bool) { p.creative.Store(v) }

// Preferences returns the player's cosmetic preferences.
func (p *Player) Preferences() Preferences { return *p.prefs.Load() }

// SetPreferences replaces the player's cosmetic preferences.
func (p *Player) SetPreferences(prefs Preferences) { p.prefs.Store(&prefs) }
