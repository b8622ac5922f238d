package serverpackets

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/voxelpvp/internal/model"
)

func TestEntityVelocity_WireFormat(t *testing.T) {
	// 18 blocks/s horizontal, 8 vertical at 20 TPS → 0.9 and 0.4 blocks
	// per tick → 7200 and 3200 wire units.
	pkt := NewEntityVelocity(0x10000001, model.NewVec3(18, 8, 0), 20)
	data, err := pkt.Write()
	require.NoError(t, err)

	require.Len(t, data, 1+4+6)
	assert.Equal(t, OpcodeEntityVelocity, data[0])
	assert.Equal(t, uint32(0x10000001), binary.BigEndian.Uint32(data[1:5]))
	assert.Equal(t, int16(7200), int16(binary.BigEndian.Uint16(data[5:7])))
	assert.Equal(t, int16(3200), int16(binary.BigEndian.Uint16(data[7:9])))
	assert.Equal(t, int16(0), int16(binary.BigEndian.Uint16(data[9:11])))
}

func TestEntityVelocity_SaturatesWireLimit(t *testing.T) {
	pkt := NewEntityVelocity(1, model.NewVec3(10000, -10000, 0), 20)
	data, err := pkt.Write()
	require.NoError(t, err)

	assert.Equal(t, int16(32767), int16(binary.BigEndian.Uint16(data[5:7])))
	assert.Equal(t, int16(-32767), int16(binary.BigEndian.Uint16(data[7:9])))
}

func TestEntityMetadata_Entries(t *testing.T) {
	pkt := NewBlockingMetadata(9, true)
	data, err := pkt.Write()
	require.NoError(t, err)

	assert.Equal(t, OpcodeEntityMetadata, data[0])
	assert.Equal(t, uint32(9), binary.BigEndian.Uint32(data[1:5]))
	assert.Equal(t, byte(2), data[5], "flags + pose entries")
	assert.Equal(t, MetaIndexFlags, data[6])
	assert.Equal(t, FlagBlocking, data[7])
	assert.Equal(t, MetaIndexPose, data[8])
	assert.Equal(t, byte(PoseBlocking), data[9])

	assert.True(t, pkt.HasSelfPoseSideEffects())
	assert.False(t, NewHealthMetadata(9, 10).HasSelfPoseSideEffects())
}

func TestHealthUpdate_WireFormat(t *testing.T) {
	pkt := &HealthUpdate{Health: 15.5, Food: 20, Saturation: 5}
	data, err := pkt.Write()
	require.NoError(t, err)

	require.Len(t, data, 1+4+2+4)
	assert.Equal(t, OpcodeHealthUpdate, data[0])
}

func TestAttributes_WireFormat(t *testing.T) {
	pkt := &Attributes{EntityID: 3, Values: map[string]float64{"armor": 10}}
	data, err := pkt.Write()
	require.NoError(t, err)

	assert.Equal(t, OpcodeAttributes, data[0])
	assert.Equal(t, byte(1), data[5])
	assert.Equal(t, byte(len("armor")), data[6])
	assert.Equal(t, "armor", string(data[7:12]))
}
