package model

import "sync"

// Well-known tag keys understood by the config resolvers.
// Entities, items and worlds publish override intent through these.
const (
	TagKnockbackMultiplier           = "knockback_multiplier"
	TagKnockbackModify               = "knockback_modify"
	TagKnockbackCustom               = "knockback_custom"
	TagKnockbackProjectileMultiplier = "knockback_projectile_multiplier"
	TagKnockbackProjectileModify     = "knockback_projectile_modify"
	TagKnockbackProjectileCustom     = "knockback_projectile_custom"
	TagDamageMultiplier              = "damage_multiplier"
	TagDamageModify                  = "damage_modify"
	TagDamageCustom                  = "damage_custom"
	TagInvulnerability               = "invulnerability"
	TagBypassInvulnerability         = "bypass_invulnerability"
	TagProjectileVelocityCustom      = "projectile_velocity_custom"
)

// TagStore holds one entity's config overrides.
// Single-writer: only the tick goroutine mutates a store. Packet-driven
// reads may run concurrently and observe a consistent snapshot, which is
// what sync.Map gives us for free.
type TagStore struct {
	m sync.Map // string → any
}

// NewTagStore creates an empty tag store.
func NewTagStore() *TagStore {
	return &TagStore{}
}

// Set stores value under key. Tick thread only.
func (s *TagStore) Set(key string, value any) {
	s.m.Store(key, value)
}

// Delete removes key. Tick thread only.
func (s *TagStore) Delete(key string) {
	s.m.Delete(key)
}

// Get returns the value stored under key, or nil.
func (s *TagStore) Get(key string) any {
	v, ok := s.m.Load(key)
	if !ok {
		return nil
	}
	return v
}

// Has reports whether key is present.
func (s *TagStore) Has(key string) bool {
	_, ok := s.m.Load(key)
	return ok
}

// Floats returns the value under key as a float slice, or nil if the key
// is absent or holds a different type.
func (s *TagStore) Floats(key string) []float64 {
	v, ok := s.m.Load(key)
	if !ok {
		return nil
	}
	fs, _ := v.([]float64)
	return fs
}

// Bool returns the value under key as a bool; absent keys read false.
func (s *TagStore) Bool(key string) bool {
	v, ok := s.m.Load(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Clear removes every key. Used on entity removal.
func (s *TagStore) Clear() {
	s.m.Range(func(k, _ any) bool {
		s.m.Delete(k)
		return true
	})
}
