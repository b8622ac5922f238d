package serverpackets

import (
	"github.com/udisondev/voxelpvp/internal/gameserver/packet"
)

// Pose values carried in metadata.
type Pose byte

const (
	PoseStanding   Pose = 0
	PoseFallFlying Pose = 1
	PoseSneaking   Pose = 5
	PoseBlocking   Pose = 8
)

// Entity flag bits (metadata index 0).
const (
	FlagSneaking   byte = 1 << 1
	FlagSprinting  byte = 1 << 3
	FlagBlocking   byte = 1 << 4
	FlagFallFlying byte = 1 << 7
)

// Metadata indices the combat core writes.
const (
	MetaIndexFlags  byte = 0
	MetaIndexHealth byte = 9 // legacy clients carry the health bar here
	MetaIndexPose   byte = 6
)

// EntityMetadata updates watched metadata of one entity (S2C 0x52).
// The combat core emits it for blocking animation and for legacy
// metadata-carried health.
//
// Packet structure:
//   - opcode (byte)
//   - entityID (int32)
//   - entry count (byte), then per entry: index (byte), payload
//     (flags: byte; pose: byte; health: float32)
type EntityMetadata struct {
	EntityID uint32

	// Optional entries; nil means not present.
	Flags  *byte
	PoseV  *Pose
	Health *float32
}

// NewBlockingMetadata builds the block/unblock animation update.
func NewBlockingMetadata(entityID uint32, blocking bool) *EntityMetadata {
	var flags byte
	pose := PoseStanding
	if blocking {
		flags = FlagBlocking
		pose = PoseBlocking
	}
	return &EntityMetadata{EntityID: entityID, Flags: &flags, PoseV: &pose}
}

// NewHealthMetadata builds a metadata-carried health update (legacy path).
func NewHealthMetadata(entityID uint32, health float32) *EntityMetadata {
	return &EntityMetadata{EntityID: entityID, Health: &health}
}

// Opcode implements Packet.
func (p *EntityMetadata) Opcode() byte { return OpcodeEntityMetadata }

// HasSelfPoseSideEffects reports whether the packet carries pose or flag
// entries, the ones legacy-vs-modern self-view filtering cares about.
func (p *EntityMetadata) HasSelfPoseSideEffects() bool {
	return p.Flags != nil || p.PoseV != nil
}

// Write implements Packet.
func (p *EntityMetadata) Write() ([]byte, error) {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(p.Opcode())
	w.WriteInt(int32(p.EntityID))

	var count byte
	if p.Flags != nil {
		count++
	}
	if p.PoseV != nil {
		count++
	}
	if p.Health != nil {
		count++
	}
	w.WriteByte(count)

	if p.Flags != nil {
		w.WriteByte(MetaIndexFlags)
		w.WriteByte(*p.Flags)
	}
	if p.PoseV != nil {
		w.WriteByte(MetaIndexPose)
		w.WriteByte(byte(*p.PoseV))
	}
	if p.Health != nil {
		w.WriteByte(MetaIndexHealth)
		w.WriteFloat(*p.Health)
	}

	return w.Bytes(), nil
}
