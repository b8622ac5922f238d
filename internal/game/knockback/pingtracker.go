package knockback

import (
	"context"
	"sync"
	"time"
)

// maxPingSamples bounds each player's ping ring.
const maxPingSamples = 10

// pingRing holds recent latency samples for one player.
type pingRing struct {
	mu      sync.Mutex
	samples [maxPingSamples]int64
	start   int
	size    int
}

func (r *pingRing) add(ms int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size < maxPingSamples {
		r.samples[(r.start+r.size)%maxPingSamples] = ms
		r.size++
		return
	}
	r.samples[r.start] = ms
	r.start = (r.start + 1) % maxPingSamples
}

// average of the ring; a concurrent writer may advance the ring between
// reads, which shifts the result by at most one sample.
func (r *pingRing) average() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < r.size; i++ {
		sum += r.samples[(r.start+i)%maxPingSamples]
	}
	return sum / int64(r.size)
}

func (r *pingRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// PingSource reports the current latency estimate for a player, or false
// when unknown. Supplied by the session layer.
type PingSource func(playerID uint32) (int64, bool)

// PingTracker polls player latency once per second into bounded rings.
type PingTracker struct {
	rings  sync.Map // playerID → *pingRing
	source PingSource

	playersMu sync.Mutex
	players   map[uint32]struct{}
}

// NewPingTracker creates a tracker reading from source.
func NewPingTracker(source PingSource) *PingTracker {
	return &PingTracker{
		source:  source,
		players: make(map[uint32]struct{}),
	}
}

// Track starts sampling a player.
func (t *PingTracker) Track(playerID uint32) {
	t.playersMu.Lock()
	t.players[playerID] = struct{}{}
	t.playersMu.Unlock()
}

// Forget stops sampling a player and drops its ring.
// Wired as a world removal hook.
func (t *PingTracker) Forget(playerID uint32) {
	t.playersMu.Lock()
	delete(t.players, playerID)
	t.playersMu.Unlock()
	t.rings.Delete(playerID)
}

// Sample polls every tracked player once. Called by Start's ticker, or
// directly from tests.
func (t *PingTracker) Sample() {
	t.playersMu.Lock()
	ids := make([]uint32, 0, len(t.players))
	for id := range t.players {
		ids = append(ids, id)
	}
	t.playersMu.Unlock()

	for _, id := range ids {
		ms, ok := t.source(id)
		if !ok {
			continue
		}
		v, _ := t.rings.LoadOrStore(id, &pingRing{})
		v.(*pingRing).add(ms)
	}
}

// Start polls once per second until ctx is cancelled.
func (t *PingTracker) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sample()
		}
	}
}

// Estimate returns the averaged latency for a player, 0 when unknown.
func (t *PingTracker) Estimate(playerID uint32) int64 {
	v, ok := t.rings.Load(playerID)
	if !ok {
		return 0
	}
	return v.(*pingRing).average()
}

// SampleCount returns the ring size for a player. Tests and diagnostics.
func (t *PingTracker) SampleCount(playerID uint32) int {
	v, ok := t.rings.Load(playerID)
	if !ok {
		return 0
	}
	return v.(*pingRing).len()
}
