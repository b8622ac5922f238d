// Package gameserver holds the connection-facing edge of the combat core:
// sessions, outgoing packet dispatch and the protocol compatibility
// filter. The transport itself (sockets, codecs, session lifecycle) is an
// external collaborator behind the Conn interface.
package gameserver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/udisondev/voxelpvp/internal/gameserver/serverpackets"
	"github.com/udisondev/voxelpvp/internal/model"
)

// Conn is the transport half of a session, supplied by the embedding
// networking stack.
type Conn interface {
	Send(data []byte) error
}

// Session binds a player to its connection and carries the per-connection
// compatibility state.
type Session struct {
	id     xid.ID
	player *model.Player
	conn   Conn
	filter *CompatFilter
}

// NewSession creates a session for an accepted connection.
func NewSession(player *model.Player, conn Conn, tracker *ElytraTracker) *Session {
	return &Session{
		id:     xid.New(),
		player: player,
		conn:   conn,
		filter: NewCompatFilter(player, tracker),
	}
}

// ID returns the session's opaque id.
func (s *Session) ID() xid.ID { return s.id }

// Player returns the session's player.
func (s *Session) Player() *model.Player { return s.player }

// Filter returns the session's compatibility filter.
func (s *Session) Filter() *CompatFilter { return s.filter }

// Send serializes pkt and writes it to the connection, unless the
// compatibility filter suppresses it for this viewer. Transport errors
// are logged, never propagated into the combat pipeline.
func (s *Session) Send(pkt serverpackets.Packet) {
	if s.filter != nil && !s.filter.AllowOutgoing(pkt) {
		return
	}

	data, err := pkt.Write()
	if err != nil {
		slog.Error("serializing packet", "opcode", pkt.Opcode(), "error", err)
		return
	}
	if err := s.conn.Send(data); err != nil {
		slog.Debug("sending packet", "session", s.id, "opcode", pkt.Opcode(), "error", err)
	}
}

// Sessions is the session registry keyed by player id.
type Sessions struct {
	m       sync.Map // uint32 → *Session
	tracker *ElytraTracker
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{tracker: NewElytraTracker()}
}

// Tracker returns the shared elytra state tracker.
func (r *Sessions) Tracker() *ElytraTracker { return r.tracker }

// Attach registers a connection for a player and returns its session.
func (r *Sessions) Attach(player *model.Player, conn Conn) *Session {
	s := NewSession(player, conn, r.tracker)
	r.m.Store(player.ID(), s)
	slog.Info("session attached",
		"session", s.id,
		"player", player.ID(),
		"protocol", player.Protocol())
	return s
}

// Detach removes a player's session and prunes its tracker state.
func (r *Sessions) Detach(playerID uint32) {
	v, ok := r.m.LoadAndDelete(playerID)
	if !ok {
		return
	}
	s := v.(*Session)
	r.tracker.Forget(s.player.Profile())
	slog.Info("session detached", "session", s.id, "player", playerID)
}

// Get looks up a player's session.
func (r *Sessions) Get(playerID uint32) (*Session, bool) {
	v, ok := r.m.Load(playerID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Send delivers pkt to one player if connected.
func (r *Sessions) Send(playerID uint32, pkt serverpackets.Packet) error {
	s, ok := r.Get(playerID)
	if !ok {
		return fmt.Errorf("no session for player %d", playerID)
	}
	s.Send(pkt)
	return nil
}

// Broadcast delivers pkt to every connected player except the excluded id.
func (r *Sessions) Broadcast(pkt serverpackets.Packet, except uint32) {
	r.m.Range(func(_, v any) bool {
		s := v.(*Session)
		if s.player.ID() != except {
			s.Send(pkt)
		}
		return true
	})
}
