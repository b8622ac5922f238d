package damage

import (
	"sync"

	"github.com/rs/xid"
)

// invulnState is the per-victim invulnerability record.
// Created on first damage, mutated only on the tick goroutine, destroyed
// on entity removal. last tick advances forward-only.
type invulnState struct {
	lastDamageTick     int64
	lastDamageAmount   float64
	lastWasReplacement bool

	// lastWeapon is the identity of the weapon that dealt the previous
	// hit, for the same-item replacement lockout.
	lastWeapon xid.ID

	seen bool
}

// states holds the per-victim invulnerability map.
type states struct {
	m sync.Map // victimID → *invulnState
}

// get returns the victim's state, creating a zero record on first use
// ("never damaged").
func (s *states) get(victimID uint32) *invulnState {
	v, _ := s.m.LoadOrStore(victimID, &invulnState{})
	return v.(*invulnState)
}

// peek returns the state without creating one.
func (s *states) peek(victimID uint32) (*invulnState, bool) {
	v, ok := s.m.Load(victimID)
	if !ok {
		return nil, false
	}
	return v.(*invulnState), true
}

// forget drops the victim's state. Wired as a world removal hook.
func (s *states) forget(victimID uint32) {
	s.m.Delete(victimID)
}

// empty reports whether no state is tracked. Tests and shutdown checks.
func (s *states) empty() bool {
	empty := true
	s.m.Range(func(_, _ any) bool {
		empty = false
		return false
	})
	return empty
}
