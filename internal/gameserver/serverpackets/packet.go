// Package serverpackets holds the outgoing wire effects the combat core
// produces: knockback velocities, entity metadata (blocking animation,
// pose/flags), and health/attribute updates.
package serverpackets

// Packet is one outgoing server packet.
type Packet interface {
	// Opcode identifies the packet on the wire.
	Opcode() byte

	// Write serializes the packet payload (opcode first).
	Write() ([]byte, error)
}

// Server packet opcodes.
const (
	OpcodeEntityVelocity byte = 0x58
	OpcodeEntityMetadata byte = 0x52
	OpcodeHealthUpdate   byte = 0x5B
	OpcodeAttributes     byte = 0x71
)
