package knockback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/udisondev/voxelpvp/internal/model"
)

func TestHistory_RecordAndStraddle(t *testing.T) {
	h := NewHistory()
	for i := int64(0); i < 5; i++ {
		h.Record(1, PositionSnapshot{
			Pos:         model.NewVec3(float64(i), 0, 0),
			TimestampMS: 100 * i,
		})
	}

	before, after, ok := h.Straddling(1, 250)
	require.True(t, ok)
	assert.Equal(t, int64(200), before.TimestampMS)
	assert.Equal(t, int64(300), after.TimestampMS)

	_, _, ok = h.Straddling(1, 5000)
	assert.False(t, ok, "outside the ring")

	_, _, ok = h.Straddling(2, 250)
	assert.False(t, ok, "unknown player")
}

func TestHistory_DropsDuplicatesAndOutOfOrder(t *testing.T) {
	h := NewHistory()
	h.Record(1, PositionSnapshot{Pos: model.NewVec3(1, 0, 0), TimestampMS: 100})
	h.Record(1, PositionSnapshot{Pos: model.NewVec3(1, 0, 0), TimestampMS: 200}) // duplicate pos
	h.Record(1, PositionSnapshot{Pos: model.NewVec3(2, 0, 0), TimestampMS: 50})  // time regression

	assert.Equal(t, 1, h.Len(1))
}

func TestHistory_Forget(t *testing.T) {
	h := NewHistory()
	h.Record(7, PositionSnapshot{Pos: model.NewVec3(1, 0, 0), TimestampMS: 1})
	h.Forget(7)
	assert.Equal(t, 0, h.Len(7))
}

// Position ring size never exceeds 30, ping ring never exceeds 10.
func TestRingBoundsInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := NewHistory()
		n := rapid.IntRange(0, 200).Draw(t, "positions")
		for i := 0; i < n; i++ {
			h.Record(1, PositionSnapshot{
				Pos:         model.NewVec3(float64(i), 0, 0),
				TimestampMS: int64(i + 1),
			})
		}
		require.LessOrEqual(t, h.Len(1), maxPositionSnapshots)

		ping := int64(0)
		tr := NewPingTracker(func(uint32) (int64, bool) {
			ping++
			return ping, true
		})
		tr.Track(1)
		for i := 0; i < rapid.IntRange(0, 50).Draw(t, "samples"); i++ {
			tr.Sample()
		}
		require.LessOrEqual(t, tr.SampleCount(1), maxPingSamples)
	})
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory()
	for i := int64(0); i < maxPositionSnapshots+10; i++ {
		h.Record(1, PositionSnapshot{
			Pos:         model.NewVec3(float64(i), 0, 0),
			TimestampMS: i + 1,
		})
	}
	assert.Equal(t, maxPositionSnapshots, h.Len(1))

	// The oldest ten timestamps were evicted.
	_, _, ok := h.Straddling(1, 5)
	assert.False(t, ok)
}

func TestPingTracker_Average(t *testing.T) {
	pings := []int64{100, 200, 300}
	i := 0
	tr := NewPingTracker(func(uint32) (int64, bool) {
		ms := pings[i%len(pings)]
		i++
		return ms, true
	})
	tr.Track(1)
	tr.Sample()
	tr.Sample()
	tr.Sample()

	assert.Equal(t, int64(200), tr.Estimate(1))
	assert.Equal(t, int64(0), tr.Estimate(99), "unknown player reads zero")
}

func TestPingTracker_Forget(t *testing.T) {
	tr := NewPingTracker(func(uint32) (int64, bool) { return 50, true })
	tr.Track(1)
	tr.Sample()
	require.Equal(t, 1, tr.SampleCount(1))

	tr.Forget(1)
	assert.Equal(t, 0, tr.SampleCount(1))
	tr.Sample()
	assert.Equal(t, 0, tr.SampleCount(1), "forgotten players are not resampled")
}
