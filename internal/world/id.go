package world

import "sync/atomic"

// IDGenerator issues unique entity ids for one world.
//
// ID ranges (convention):
//
//	0x00000000 – 0x0FFFFFFF: reserved (0 = invalid)
//	0x10000000 – 0x1FFFFFFF: players
//	0x20000000 – 0x2FFFFFFF: mobs
//	0x30000000 – 0x3FFFFFFF: projectiles
type IDGenerator struct {
	nextPlayerID     atomic.Uint32
	nextMobID        atomic.Uint32
	nextProjectileID atomic.Uint32
}

// NewIDGenerator creates a generator with range bases preset.
func NewIDGenerator() *IDGenerator {
	g := &IDGenerator{}
	g.nextPlayerID.Store(0x10000000)
	g.nextMobID.Store(0x20000000)
	g.nextProjectileID.Store(0x30000000)
	return g
}

// NextPlayerID issues the next player id. Thread-safe.
func (g *IDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextMobID issues the next mob id. Thread-safe.
func (g *IDGenerator) NextMobID() uint32 {
	return g.nextMobID.Add(1)
}

// NextProjectileID issues the next projectile id. Thread-safe.
func (g *IDGenerator) NextProjectileID() uint32 {
	return g.nextProjectileID.Add(1)
}
