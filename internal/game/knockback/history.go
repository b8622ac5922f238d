package knockback

import (
	"sync"

	"github.com/udisondev/voxelpvp/internal/model"
)

// maxPositionSnapshots bounds each player's position ring.
const maxPositionSnapshots = 30

// PositionSnapshot is one observed victim position.
type PositionSnapshot struct {
	Pos         model.Vec3
	Yaw         float64
	OnGround    bool
	TimestampMS int64
}

// positionRing is a bounded ring of one player's recent positions.
// Append-only by the owner session; readers copy out under the lock.
type positionRing struct {
	mu      sync.Mutex
	entries [maxPositionSnapshots]PositionSnapshot
	start   int
	size    int
}

func (r *positionRing) add(s PositionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size > 0 {
		last := r.entries[(r.start+r.size-1)%maxPositionSnapshots]
		// Drop duplicates and out-of-order samples; the ring stays
		// strictly time-ordered.
		if s.Pos == last.Pos || s.TimestampMS <= last.TimestampMS {
			return
		}
	}

	if r.size < maxPositionSnapshots {
		r.entries[(r.start+r.size)%maxPositionSnapshots] = s
		r.size++
		return
	}
	r.entries[r.start] = s
	r.start = (r.start + 1) % maxPositionSnapshots
}

// straddling returns the pair of snapshots around timestamp t, ok=false
// when the ring doesn't cover t.
func (r *positionRing) straddling(t int64) (before, after PositionSnapshot, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < 2 {
		return PositionSnapshot{}, PositionSnapshot{}, false
	}
	for i := 0; i < r.size-1; i++ {
		a := r.entries[(r.start+i)%maxPositionSnapshots]
		b := r.entries[(r.start+i+1)%maxPositionSnapshots]
		if a.TimestampMS <= t && t <= b.TimestampMS {
			return a, b, true
		}
	}
	return PositionSnapshot{}, PositionSnapshot{}, false
}

func (r *positionRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// History keeps per-player position rings for knockback sync rewind.
type History struct {
	rings sync.Map // playerID → *positionRing
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends a position snapshot for a player. Called on every
// position update from the player's session.
func (h *History) Record(playerID uint32, s PositionSnapshot) {
	v, _ := h.rings.LoadOrStore(playerID, &positionRing{})
	v.(*positionRing).add(s)
}

// Straddling finds the snapshot pair around t for a player.
func (h *History) Straddling(playerID uint32, t int64) (before, after PositionSnapshot, ok bool) {
	v, found := h.rings.Load(playerID)
	if !found {
		return PositionSnapshot{}, PositionSnapshot{}, false
	}
	return v.(*positionRing).straddling(t)
}

// Len returns the ring size for a player. Tests and diagnostics.
func (h *History) Len(playerID uint32) int {
	v, found := h.rings.Load(playerID)
	if !found {
		return 0
	}
	return v.(*positionRing).len()
}

// Forget drops a player's ring. Wired as a world removal hook.
func (h *History) Forget(playerID uint32) {
	h.rings.Delete(playerID)
}
