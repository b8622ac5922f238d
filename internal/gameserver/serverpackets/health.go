package serverpackets

import (
	"github.com/udisondev/voxelpvp/internal/gameserver/packet"
)

// HealthUpdate carries the viewer's own health bar (S2C 0x5B).
//
// Packet structure:
//   - opcode (byte)
//   - health (float32)
//   - food (int16)
//   - saturation (float32)
type HealthUpdate struct {
	Health     float32
	Food       int16
	Saturation float32
}

// Opcode implements Packet.
func (p *HealthUpdate) Opcode() byte { return OpcodeHealthUpdate }

// Write implements Packet.
func (p *HealthUpdate) Write() ([]byte, error) {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(p.Opcode())
	w.WriteFloat(p.Health)
	w.WriteShort(p.Food)
	w.WriteFloat(p.Saturation)
	return w.Bytes(), nil
}

// Attributes carries live attribute values (max health and friends) for
// one entity (S2C 0x71).
//
// Packet structure:
//   - opcode (byte)
//   - entityID (int32)
//   - entry count (byte), then per entry: key length (byte), key bytes,
//     value (float64)
type Attributes struct {
	EntityID uint32
	Values   map[string]float64
}

// Opcode implements Packet.
func (p *Attributes) Opcode() byte { return OpcodeAttributes }

// Write implements Packet.
func (p *Attributes) Write() ([]byte, error) {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(p.Opcode())
	w.WriteInt(int32(p.EntityID))
	w.WriteByte(byte(len(p.Values)))
	for k, v := range p.Values {
		w.WriteByte(byte(len(k)))
		for _, b := range []byte(k) {
			w.WriteByte(b)
		}
		w.WriteDouble(v)
	}
	return w.Bytes(), nil
}
