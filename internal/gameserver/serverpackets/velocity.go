package serverpackets

import (
	"fmt"

	"github.com/udisondev/voxelpvp/internal/gameserver/packet"
	"github.com/udisondev/voxelpvp/internal/model"
)

// VelocityDivisor converts per-tick block velocity to the wire's
// fixed-point int16 representation.
const VelocityDivisor = 8000

// velocityWireLimit is the int16 saturation bound of the wire format.
const velocityWireLimit = 32767

// EntityVelocity pushes an explicit velocity onto a client (S2C 0x58).
// Sent to knockback victims so the client applies the server's result
// instead of its own prediction.
//
// Packet structure:
//   - opcode (byte)
//   - entityID (int32)
//   - velocityX, velocityY, velocityZ (int16 each, blocks/tick × 8000)
type EntityVelocity struct {
	EntityID uint32
	// Velocity in blocks per tick.
	Velocity model.Vec3
}

// NewEntityVelocity converts a blocks-per-second velocity to per-tick wire
// units at the given per-tick rate.
func NewEntityVelocity(entityID uint32, perSecond model.Vec3, tickRate float64) *EntityVelocity {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &EntityVelocity{
		EntityID: entityID,
		Velocity: perSecond.Mul(1 / tickRate),
	}
}

// Opcode implements Packet.
func (p *EntityVelocity) Opcode() byte { return OpcodeEntityVelocity }

// Write implements Packet.
func (p *EntityVelocity) Write() ([]byte, error) {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(p.Opcode())
	w.WriteInt(int32(p.EntityID))
	w.WriteShort(clampWire(p.Velocity.X))
	w.WriteShort(clampWire(p.Velocity.Y))
	w.WriteShort(clampWire(p.Velocity.Z))

	if w.Len() == 0 {
		return nil, fmt.Errorf("empty velocity packet")
	}
	return w.Bytes(), nil
}

func clampWire(blocksPerTick float64) int16 {
	v := blocksPerTick * VelocityDivisor
	if v > velocityWireLimit {
		v = velocityWireLimit
	} else if v < -velocityWireLimit {
		v = -velocityWireLimit
	}
	return int16(v)
}
