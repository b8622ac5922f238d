// Package world owns the entity arena: every entity is registered under a
// stable opaque id, cross-subsystem references are ids with weak lookup,
// and removal cleans up all per-entity combat state in one pass on the
// tick goroutine.
package world

import (
	"log/slog"
	"sync"

	"github.com/udisondev/voxelpvp/internal/geom"
	"github.com/udisondev/voxelpvp/internal/model"
)

// World is the entity arena. One per engine; constructed explicitly, no
// package-level instance.
type World struct {
	objects sync.Map // uint32 → any (*model.Player, *model.Entity, *model.Projectile)
	players sync.Map // uint32 → *model.Player

	idgen *IDGenerator
	tags  *model.TagStore

	solid geom.SolidFunc

	mu          sync.Mutex
	removeHooks []func(id uint32)
}

// New creates an empty world.
func New() *World {
	return &World{
		idgen: NewIDGenerator(),
		tags:  model.NewTagStore(),
	}
}

// IDs returns the world's id generator.
func (w *World) IDs() *IDGenerator { return w.idgen }

// Tags returns the world-layer tag store (lowest override layer above the
// server default).
func (w *World) Tags() *model.TagStore { return w.tags }

// SetSolidFunc wires the block-solidity predicate used by swing occlusion
// checks. Nil disables block occlusion.
func (w *World) SetSolidFunc(f geom.SolidFunc) { w.solid = f }

// Solid returns the block-solidity predicate, possibly nil.
func (w *World) Solid() geom.SolidFunc { return w.solid }

// OnRemove registers a cleanup hook run for every removed entity id.
// Subsystems register their state maps here so removal is one pass.
func (w *World) OnRemove(hook func(id uint32)) {
	w.mu.Lock()
	w.removeHooks = append(w.removeHooks, hook)
	w.mu.Unlock()
}

// AddPlayer registers a player.
func (w *World) AddPlayer(p *model.Player) {
	w.objects.Store(p.ID(), p)
	w.players.Store(p.ID(), p)
	slog.Debug("player added to world", "id", p.ID(), "profile", p.Profile())
}

// AddEntity registers a non-player living entity.
func (w *World) AddEntity(e *model.Entity) {
	w.objects.Store(e.ID(), e)
}

// AddProjectile registers a projectile.
func (w *World) AddProjectile(p *model.Projectile) {
	w.objects.Store(p.ID(), p)
}

// Player looks up a player by id.
func (w *World) Player(id uint32) (*model.Player, bool) {
	v, ok := w.players.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Player), true
}

// Entity looks up any registered object's entity base by id.
// Dropped references (disconnected shooters) return ok=false.
func (w *World) Entity(id uint32) (*model.Entity, bool) {
	v, ok := w.objects.Load(id)
	if !ok {
		return nil, false
	}
	switch o := v.(type) {
	case *model.Player:
		return o.Entity, true
	case *model.Projectile:
		return o.Entity, true
	case *model.Entity:
		return o, true
	default:
		return nil, false
	}
}

// Projectile looks up a projectile by id.
func (w *World) Projectile(id uint32) (*model.Projectile, bool) {
	v, ok := w.objects.Load(id)
	if !ok {
		return nil, false
	}
	p, ok := v.(*model.Projectile)
	return p, ok
}

// ForEachLiving visits every living entity (players and mobs, not
// projectiles). The visitor must not mutate the arena.
func (w *World) ForEachLiving(visit func(e *model.Entity)) {
	w.objects.Range(func(_, v any) bool {
		switch o := v.(type) {
		case *model.Player:
			if !o.IsRemoved() {
				visit(o.Entity)
			}
		case *model.Entity:
			if !o.IsRemoved() {
				visit(o)
			}
		}
		return true
	})
}

// ForEachProjectile visits every in-flight projectile.
func (w *World) ForEachProjectile(visit func(p *model.Projectile)) {
	w.objects.Range(func(_, v any) bool {
		if p, ok := v.(*model.Projectile); ok && !p.IsRemoved() {
			visit(p)
		}
		return true
	})
}

// ForEachPlayer visits every connected player.
func (w *World) ForEachPlayer(visit func(p *model.Player)) {
	w.players.Range(func(_, v any) bool {
		p := v.(*model.Player)
		if !p.IsRemoved() {
			visit(p)
		}
		return true
	})
}

// Remove unregisters an entity and runs every cleanup hook for its id.
// Tick goroutine only.
func (w *World) Remove(id uint32) {
	if e, ok := w.Entity(id); ok {
		e.MarkRemoved()
		e.Tags().Clear()
	}
	w.objects.Delete(id)
	w.players.Delete(id)

	w.mu.Lock()
	hooks := w.removeHooks
	w.mu.Unlock()
	for _, hook := range hooks {
		hook(id)
	}
	slog.Debug("entity removed from world", "id", id)
}

// Shutdown removes every remaining entity. After it returns no per-entity
// state map references any entity.
func (w *World) Shutdown() {
	var ids []uint32
	w.objects.Range(func(k, _ any) bool {
		ids = append(ids, k.(uint32))
		return true
	})
	for _, id := range ids {
		w.Remove(id)
	}
}
