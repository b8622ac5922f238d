package gameserver

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/voxelpvp/internal/gameserver/serverpackets"
	"github.com/udisondev/voxelpvp/internal/model"
)

// elytraGraceMillis is how long after the last fall-flying frame a
// landing metadata update is still let through to the viewer.
const elytraGraceMillis = 1000

// ElytraTracker remembers when each player was last fall-flying.
// Shared across sessions; entries are pruned on disconnect.
type ElytraTracker struct {
	m sync.Map // uuid.UUID → int64 (unix millis)
}

// NewElytraTracker creates an empty tracker.
func NewElytraTracker() *ElytraTracker {
	return &ElytraTracker{}
}

// MarkFlying records that the player is fall-flying right now.
func (t *ElytraTracker) MarkFlying(profile uuid.UUID) {
	t.m.Store(profile, time.Now().UnixMilli())
}

// FlyingWithin reports whether the player was fall-flying within the
// given window.
func (t *ElytraTracker) FlyingWithin(profile uuid.UUID, window int64) bool {
	v, ok := t.m.Load(profile)
	if !ok {
		return false
	}
	return time.Now().UnixMilli()-v.(int64) <= window
}

// Forget drops the player's entry.
func (t *ElytraTracker) Forget(profile uuid.UUID) {
	t.m.Delete(profile)
}

// CompatFilter shapes what one connection observes, per protocol class.
// It never alters server state.
//
// MODERN clients handle their own pose animation; self-metadata echoes
// fight their prediction and are dropped, except around elytra
// transitions where the client needs the server's word.
//
// LEGACY clients carry the health bar in entity metadata; when the damage
// system sets health silently, the next regular health-update and
// attribute packets of that frame are suppressed so the client-side
// prediction is not disturbed.
type CompatFilter struct {
	player  *model.Player
	tracker *ElytraTracker

	suppressHealth     atomic.Bool
	suppressAttributes atomic.Bool
}

// NewCompatFilter creates the filter for one connection.
func NewCompatFilter(player *model.Player, tracker *ElytraTracker) *CompatFilter {
	return &CompatFilter{player: player, tracker: tracker}
}

// SuppressNextHealthFrame arms one-shot suppression of the connection's
// next health-update and attribute packets. Legacy sessions only; the
// damage path calls this when it applies health through metadata.
func (f *CompatFilter) SuppressNextHealthFrame() {
	if f.player.Protocol() != model.ProtocolLegacy {
		return
	}
	f.suppressHealth.Store(true)
	f.suppressAttributes.Store(true)
}

// AllowOutgoing decides whether pkt may reach this viewer.
func (f *CompatFilter) AllowOutgoing(pkt serverpackets.Packet) bool {
	switch p := pkt.(type) {
	case *serverpackets.EntityMetadata:
		return f.allowMetadata(p)
	case *serverpackets.HealthUpdate:
		return !f.suppressHealth.Swap(false)
	case *serverpackets.Attributes:
		if p.EntityID != f.player.ID() {
			return true
		}
		return !f.suppressAttributes.Swap(false)
	default:
		return true
	}
}

func (f *CompatFilter) allowMetadata(p *serverpackets.EntityMetadata) bool {
	if f.player.Protocol() != model.ProtocolModern {
		return true
	}
	if p.EntityID != f.player.ID() || !p.HasSelfPoseSideEffects() {
		return true
	}

	// Elytra start: pose FALL_FLYING or flags bit 7 set.
	if (p.PoseV != nil && *p.PoseV == serverpackets.PoseFallFlying) ||
		(p.Flags != nil && *p.Flags&serverpackets.FlagFallFlying != 0) {
		f.tracker.MarkFlying(f.player.Profile())
		return true
	}

	// Elytra landing: standing (or bit 7 cleared) while on ground, and
	// the player was fall-flying within the last second.
	landing := (p.PoseV != nil && *p.PoseV == serverpackets.PoseStanding) ||
		(p.Flags != nil && *p.Flags&serverpackets.FlagFallFlying == 0)
	if landing && f.player.OnGround() &&
		f.tracker.FlyingWithin(f.player.Profile(), elytraGraceMillis) {
		return true
	}

	return false
}
