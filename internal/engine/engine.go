// Package engine is the explicit handle tying the combat subsystems
// together: one construction in the host, a single tick goroutine owning
// all authoritative mutation, and a shutdown that leaves no per-entity
// state behind. No package-level singletons.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/blocking"
	"github.com/udisondev/voxelpvp/internal/game/damage"
	"github.com/udisondev/voxelpvp/internal/game/hitdetect"
	"github.com/udisondev/voxelpvp/internal/game/knockback"
	"github.com/udisondev/voxelpvp/internal/game/projectile"
	"github.com/udisondev/voxelpvp/internal/game/tick"
	"github.com/udisondev/voxelpvp/internal/gameserver"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/model"
	"github.com/udisondev/voxelpvp/internal/world"
)

// taskQueueSize bounds the packet-handler → tick-thread queue.
const taskQueueSize = 4096

// Engine wires and drives the combat core.
type Engine struct {
	cfg config.Game

	world    *world.World
	sessions *gameserver.Sessions
	metrics  *metrics.Metrics

	detector    *hitdetect.Detector
	sync        *knockback.Sync
	knockback   *knockback.Engine
	pipeline    *damage.Pipeline
	blocking    *blocking.Manager
	projectiles *projectile.Manager
	pings       *knockback.PingTracker

	currentTick atomic.Int64
	tasks       chan func()

	running atomic.Bool
}

// New validates the config and wires every subsystem.
// m may be nil (no metrics). The core owns no persistence: hosts that
// want an audit trail attach sinks through the detector and pipeline
// observer hooks.
func New(cfg config.Game, m *metrics.Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	w := world.New()
	sessions := gameserver.NewSessions()

	e := &Engine{
		cfg:      cfg,
		world:    w,
		sessions: sessions,
		metrics:  m,
		tasks:    make(chan func(), taskQueueSize),
	}

	e.pings = knockback.NewPingTracker(func(playerID uint32) (int64, bool) {
		p, ok := w.Player(playerID)
		if !ok {
			return 0, false
		}
		return p.Ping(), true
	})
	w.OnRemove(e.pings.Forget)
	w.OnRemove(sessions.Detach)

	history := knockback.NewHistory()
	w.OnRemove(history.Forget)

	e.detector = hitdetect.NewDetector(cfg.HitDetection, w, m)
	e.sync = knockback.NewSync(cfg.KnockbackSync, history, e.pings, m)

	tickRate := tick.Rate(cfg.Tick.TPS, cfg.Tick.Mode())
	e.knockback = knockback.NewEngine(cfg.Knockback, tickRate, w, e.sync, sessions, m)

	e.blocking = blocking.NewManager(cfg.Blocking, w, sessions, e.CurrentTick)
	e.pipeline = damage.NewPipeline(
		cfg.DamageTypes, cfg.Invulnerability,
		cfg.Tick.TPS, cfg.Tick.Mode(),
		w, e.blocking, m, e.CurrentTick,
	)
	e.projectiles = projectile.NewManager(
		cfg.Projectile, w, e.pipeline, e.knockback,
		cfg.Tick.TPS, cfg.Tick.Mode(), e.CurrentTick,
	)

	return e, nil
}

// World returns the entity arena.
func (e *Engine) World() *world.World { return e.world }

// Sessions returns the session registry.
func (e *Engine) Sessions() *gameserver.Sessions { return e.sessions }

// Detector returns the hit detector.
func (e *Engine) Detector() *hitdetect.Detector { return e.detector }

// Knockback returns the knockback engine.
func (e *Engine) Knockback() *knockback.Engine { return e.knockback }

// Pipeline returns the damage applicator.
func (e *Engine) Pipeline() *damage.Pipeline { return e.pipeline }

// Blocking returns the blocking manager.
func (e *Engine) Blocking() *blocking.Manager { return e.blocking }

// Projectiles returns the projectile manager.
func (e *Engine) Projectiles() *projectile.Manager { return e.projectiles }

// Sync returns the knockback sync component.
func (e *Engine) Sync() *knockback.Sync { return e.sync }

// CurrentTick returns the authoritative server tick.
func (e *Engine) CurrentTick() int64 { return e.currentTick.Load() }

// Execute schedules fn onto the tick goroutine. Packet handlers use this
// for anything that mutates authoritative state. A full queue drops the
// task with a log; combat never blocks a network thread.
func (e *Engine) Execute(fn func()) {
	if !e.running.Load() {
		// Before Start (tests, setup) the caller owns the tick
		// invariant; run inline.
		fn()
		return
	}
	select {
	case e.tasks <- fn:
	default:
		slog.Warn("tick task queue full, dropping task")
	}
}

// Start runs the tick loop and the ping poller until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / e.cfg.Tick.TPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.running.Store(true)
	defer e.running.Store(false)

	go e.pings.Start(ctx)

	slog.Info("engine started",
		"tps", e.cfg.Tick.TPS,
		"scaling", e.cfg.Tick.Scaling,
		"sync", e.cfg.KnockbackSync.Enabled)

	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			e.tickOnce()
			e.metrics.ObserveTick(time.Since(start).Seconds())
		}
	}
}

// tickOnce advances one tick: drain scheduled tasks, advance projectiles.
func (e *Engine) tickOnce() {
	e.currentTick.Add(1)

	for drained := false; !drained; {
		select {
		case fn := <-e.tasks:
			fn()
		default:
			drained = true
		}
	}

	var done []*model.Projectile
	e.world.ForEachProjectile(func(p *model.Projectile) {
		if !e.projectiles.Tick(p) {
			done = append(done, p)
		}
	})
	for _, p := range done {
		if !p.IsRemoved() {
			e.world.Remove(p.ID())
		}
	}

	players := 0
	e.world.ForEachPlayer(func(*model.Player) { players++ })
	e.metrics.SetTrackedPlayers(players)
}

// Shutdown removes every entity; afterwards no tag or state map
// references any of them.
func (e *Engine) Shutdown() {
	e.world.Shutdown()
	slog.Info("engine shut down", "tick", e.CurrentTick())
}

// ConnectPlayer registers a player and attaches its connection.
func (e *Engine) ConnectPlayer(profile uuid.UUID, protocol model.ProtocolClass, conn gameserver.Conn) *model.Player {
	p := model.NewPlayer(e.world.IDs().NextPlayerID(), profile, protocol)
	p.SetAttribute(model.AttrAttackDamage, 1)
	e.world.AddPlayer(p)
	e.sessions.Attach(p, conn)
	e.pings.Track(p.ID())
	return p
}

// DisconnectPlayer releases everything the player owned.
func (e *Engine) DisconnectPlayer(playerID uint32) {
	if p, ok := e.world.Player(playerID); ok {
		e.blocking.StopBlocking(p)
	}
	e.sessions.Detach(playerID)
	e.world.Remove(playerID)
}
