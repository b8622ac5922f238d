// Package blocking implements the input-driven blocking state machine and
// its damage/knockback attenuation contract.
package blocking

import (
	"log/slog"
	"sync"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/gameserver"
	"github.com/udisondev/voxelpvp/internal/gameserver/serverpackets"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// shieldItemKind is the animation stand-in placed in the off-hand while
// blocking. The original off-hand contents come back on exit, bit-exact.
const shieldItemKind = "shield"

// state per blocking player.
type state struct {
	originalOffhand *model.ItemStack
	startedTick     int64
}

// Manager owns every player's blocking state.
//
// Transitions, driven only by client packets:
//
//	IDLE --[use-item with blockable main-hand]--> BLOCKING
//	BLOCKING --[release-use | slot-change | death | disconnect]--> IDLE
//
// Both transitions are idempotent.
type Manager struct {
	cfg      config.Blocking
	world    *world.World
	sessions *gameserver.Sessions

	m sync.Map // playerID → *state

	currentTick func() int64
}

// NewManager creates the blocking manager and registers its cleanup with
// the world. sessions may be nil (headless tests).
func NewManager(cfg config.Blocking, w *world.World, sessions *gameserver.Sessions, currentTick func() int64) *Manager {
	mgr := &Manager{
		cfg:         cfg,
		world:       w,
		sessions:    sessions,
		currentTick: currentTick,
	}
	w.OnRemove(mgr.handleRemove)
	return mgr
}

// StartBlocking enters BLOCKING for a player holding a blockable item.
// Idempotent; a second use-item while already blocking is a no-op.
func (mgr *Manager) StartBlocking(p *model.Player) bool {
	if !mgr.cfg.Enabled || p.IsDead() {
		return false
	}
	main := p.MainHand()
	if main == nil || !mgr.cfg.Blockable(main.Kind) {
		return false
	}
	if _, already := mgr.m.Load(p.ID()); already {
		return true
	}

	mgr.m.Store(p.ID(), &state{
		originalOffhand: p.OffHand(),
		startedTick:     mgr.currentTick(),
	})
	p.SetOffHand(model.NewItemStack(shieldItemKind))

	mgr.broadcastAnimation(p, true)
	slog.Debug("blocking started", "player", p.ID(), "item", main.Kind)
	return true
}

// StopBlocking exits BLOCKING and restores the stashed off-hand item.
// Idempotent; safe to call for a player that never blocked.
func (mgr *Manager) StopBlocking(p *model.Player) {
	v, ok := mgr.m.LoadAndDelete(p.ID())
	if !ok {
		return
	}
	st := v.(*state)
	p.SetOffHand(st.originalOffhand)

	mgr.broadcastAnimation(p, false)
	slog.Debug("blocking stopped", "player", p.ID())
}

// HandleSlotChange drops blocking when the main hand changes.
func (mgr *Manager) HandleSlotChange(p *model.Player) {
	mgr.StopBlocking(p)
}

// HandleDeath drops blocking on death.
func (mgr *Manager) HandleDeath(p *model.Player) {
	mgr.StopBlocking(p)
}

// IsBlocking reports whether the player is currently blocking.
func (mgr *Manager) IsBlocking(playerID uint32) bool {
	_, ok := mgr.m.Load(playerID)
	return ok
}

// StartedTick returns the tick blocking began, for diagnostics.
func (mgr *Manager) StartedTick(playerID uint32) (int64, bool) {
	v, ok := mgr.m.Load(playerID)
	if !ok {
		return 0, false
	}
	return v.(*state).startedTick, true
}

// Attenuation implements the damage pipeline's Attenuator hook.
func (mgr *Manager) Attenuation(victimID uint32) (damageMult, kbH, kbV float64, active bool) {
	if !mgr.IsBlocking(victimID) {
		return 1, 1, 1, false
	}
	return 1 - mgr.cfg.DamageReduction,
		mgr.cfg.KnockbackHorizontalMultiplier,
		mgr.cfg.KnockbackVerticalMultiplier,
		true
}

// handleRemove releases blocking state on entity removal. The off-hand
// restore is skipped: the player object is gone.
func (mgr *Manager) handleRemove(id uint32) {
	mgr.m.Delete(id)
}

// broadcastAnimation sends the block/unblock pose to every session.
// Player preferences are not consulted here; the packet is visual only and
// does not touch the numeric contracts.
func (mgr *Manager) broadcastAnimation(p *model.Player, blocking bool) {
	if mgr.sessions == nil {
		return
	}
	pkt := serverpackets.NewBlockingMetadata(p.ID(), blocking)
	mgr.sessions.Broadcast(pkt, 0)
}
