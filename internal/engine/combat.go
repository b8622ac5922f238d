package engine

import (
	"log/slog"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/damage"
	"github.com/udisondev/voxelpvp/internal/game/knockback"
	"github.com/udisondev/voxelpvp/internal/gameserver/serverpackets"
	"github.com/udisondev/voxelpvp/internal/model"
)

// AttackResult captures per-swing facts at packet ingest; the pipeline
// reads them from here instead of re-reading live state mid-flight.
type AttackResult struct {
	Attacker      *model.Player
	Victim        *model.Entity
	Weapon        *model.ItemStack
	SprintAtSwing bool
}

// HandleSwing processes a swing packet (no client-declared target):
// server-side target search, then the regular attack path.
// Called from a packet handler; work runs on the tick goroutine.
func (e *Engine) HandleSwing(attackerID uint32) {
	e.Execute(func() {
		attacker, ok := e.world.Player(attackerID)
		if !ok || attacker.IsDead() {
			return
		}
		victim, found := e.detector.SwingSearch(attacker)
		if !found {
			return
		}
		e.performAttack(e.ingest(attacker, victim))
	})
}

// HandleAttack processes a client-declared attack packet of attacker →
// victim. Validation failures are silent rejects.
func (e *Engine) HandleAttack(attackerID, victimID uint32) {
	e.Execute(func() {
		attacker, ok := e.world.Player(attackerID)
		if !ok || attacker.IsDead() {
			return
		}
		victim, ok := e.world.Entity(victimID)
		if !ok {
			e.metrics.Rejection("removed")
			return
		}

		if err := e.detector.ValidateAttack(attacker, victim); err != nil {
			slog.Debug("attack rejected",
				"attacker", attackerID,
				"victim", victimID,
				"reason", err)
			return
		}

		e.performAttack(e.ingest(attacker, victim))
	})
}

// ingest builds the AttackResult, capturing the sprint flag at swing time.
func (e *Engine) ingest(attacker *model.Player, victim *model.Entity) AttackResult {
	return AttackResult{
		Attacker:      attacker,
		Victim:        victim,
		Weapon:        attacker.MainHand(),
		SprintAtSwing: attacker.Sprinting(),
	}
}

// performAttack routes one validated melee hit through damage and
// knockback. Tick goroutine only.
func (e *Engine) performAttack(atk AttackResult) {
	amount := atk.Attacker.Attribute(model.AttrAttackDamage)
	if amount <= 0 {
		amount = 1
	}

	res := e.pipeline.Apply(damage.Event{
		Victim:         atk.Victim,
		Attacker:       atk.Attacker.Entity,
		AttackerPlayer: atk.Attacker,
		Weapon:         atk.Weapon,
		Kind:           config.KindMelee,
		Amount:         amount,
	})

	if res.Outcome == damage.OutcomeCancelled {
		return
	}

	e.emitHealth(atk.Victim, res)

	if res.Knockback {
		blockH, blockV := 1.0, 1.0
		if res.Blocked {
			blockH, blockV = e.pipeline.KnockbackAttenuation(atk.Victim.ID())
		}
		e.knockback.Apply(knockback.Hit{
			Victim:         atk.Victim,
			Attacker:       atk.Attacker.Entity,
			AttackerPlayer: atk.Attacker,
			Kind:           knockback.KindAttack,
			Weapon:         atk.Weapon,
			SprintAtSwing:  atk.SprintAtSwing,
			BlockH:         blockH,
			BlockV:         blockV,
		})
	}

	if res.Died {
		e.handleDeath(atk.Victim)
	}
}

// ApplyDamage routes a non-melee damage event (environment, scripted)
// through the pipeline with knockback. Tick goroutine only.
func (e *Engine) ApplyDamage(victim *model.Entity, attacker *model.Entity, kind string, amount float64) damage.Result {
	var attackerPlayer *model.Player
	if attacker != nil {
		attackerPlayer, _ = e.world.Player(attacker.ID())
	}

	res := e.pipeline.Apply(damage.Event{
		Victim:         victim,
		Attacker:       attacker,
		AttackerPlayer: attackerPlayer,
		Kind:           kind,
		Amount:         amount,
	})

	if res.Outcome == damage.OutcomeCancelled {
		return res
	}

	e.emitHealth(victim, res)

	if res.Knockback && attacker != nil {
		blockH, blockV := 1.0, 1.0
		if res.Blocked {
			blockH, blockV = e.pipeline.KnockbackAttenuation(victim.ID())
		}
		e.knockback.Apply(knockback.Hit{
			Victim:         victim,
			Attacker:       attacker,
			AttackerPlayer: attackerPlayer,
			Kind:           knockback.KindDamage,
			BlockH:         blockH,
			BlockV:         blockV,
		})
	}

	if res.Died {
		e.handleDeath(victim)
	}
	return res
}

// emitHealth pushes the victim's health to its own client.
//
// Replacement hits set health silently: on legacy protocols the health
// bar travels in entity metadata and the next regular health/attribute
// packets of the frame are suppressed, keeping client prediction intact.
func (e *Engine) emitHealth(victim *model.Entity, res damage.Result) {
	s, ok := e.sessions.Get(victim.ID())
	if !ok {
		return
	}

	health := float32(victim.Health())
	if res.Outcome == damage.OutcomeReplaced && s.Player().Protocol() == model.ProtocolLegacy {
		s.Filter().SuppressNextHealthFrame()
		s.Send(serverpackets.NewHealthMetadata(victim.ID(), health))
		return
	}

	s.Send(&serverpackets.HealthUpdate{Health: health, Food: 20, Saturation: 5})
}

// handleDeath releases input-driven state on death.
func (e *Engine) handleDeath(victim *model.Entity) {
	if p, ok := e.world.Player(victim.ID()); ok {
		e.blocking.HandleDeath(p)
	}
	slog.Info("entity died", "victim", victim.ID())
}

// HandleUseItem enters blocking when the main hand allows it.
func (e *Engine) HandleUseItem(playerID uint32) {
	e.Execute(func() {
		if p, ok := e.world.Player(playerID); ok {
			e.blocking.StartBlocking(p)
		}
	})
}

// HandleReleaseUseItem exits blocking.
func (e *Engine) HandleReleaseUseItem(playerID uint32) {
	e.Execute(func() {
		if p, ok := e.world.Player(playerID); ok {
			e.blocking.StopBlocking(p)
		}
	})
}

// HandleSlotChange exits blocking on a main-hand slot change.
func (e *Engine) HandleSlotChange(playerID uint32) {
	e.Execute(func() {
		if p, ok := e.world.Player(playerID); ok {
			e.blocking.HandleSlotChange(p)
		}
	})
}

// HandleMove applies a position update from a player's session and feeds
// the knockback-sync position history.
func (e *Engine) HandleMove(playerID uint32, pos model.Vec3, yaw, pitch float64, onGround bool, timestampMS int64) {
	e.Execute(func() {
		p, ok := e.world.Player(playerID)
		if !ok {
			return
		}
		p.SetPosition(pos, onGround)
		p.SetRotation(yaw, pitch)
		e.sync.History().Record(playerID, knockback.PositionSnapshot{
			Pos:         pos,
			Yaw:         yaw,
			OnGround:    onGround,
			TimestampMS: timestampMS,
		})
	})
}
