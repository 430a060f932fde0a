package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/vocab"
)

const (
	streamBuffer = 16
	writeWait    = 10 * time.Second
	pingEvery    = 30 * time.Second
)

// streamCommand is a client message on the session stream.
type streamCommand struct {
	Op        string `json:"op"` // answer, advance, restart, direction
	Answer    string `json:"answer,omitempty"`
	Direction string `json:"direction,omitempty"`
	Confirm   bool   `json:"confirm,omitempty"`
}

// streamEvent is a server message on the session stream.
type streamEvent struct {
	Type    string            `json:"type"` // snapshot, attempt, error
	Session *session.Snapshot `json:"session,omitempty"`
	Attempt *session.Attempt  `json:"attempt,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
}

// handleStream upgrades to a websocket that pushes a snapshot after every
// transition of the session and accepts the same commands as the REST
// endpoints.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ls, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	log := s.log.With("session_id", ls.s.ID())
	events := make(chan streamEvent, streamBuffer)

	ls.mu.Lock()
	unsubscribe := ls.s.Subscribe(func(snap session.Snapshot) {
		offer(events, streamEvent{Type: "snapshot", Session: &snap})
	})
	first := ls.s.Snapshot()
	ls.mu.Unlock()
	defer func() {
		ls.mu.Lock()
		unsubscribe()
		ls.mu.Unlock()
	}()
	offer(events, streamEvent{Type: "snapshot", Session: &first})

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go s.readCommands(ctx, cancel, conn, ls, events)

	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("stream write", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readCommands(ctx context.Context, done context.CancelFunc, conn *websocket.Conn, ls *liveSession, events chan streamEvent) {
	defer done()
	for {
		var cmd streamCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		ev, err := s.apply(ctx, ls, cmd)
		if err != nil {
			_, code := statusFor(err)
			ev = streamEvent{Type: "error", Error: err.Error(), Code: code}
		}
		if ev.Type != "" {
			offer(events, ev)
		}
	}
}

// apply runs one stream command under the session lock. Snapshots reach
// the client through the subscription.
func (s *Server) apply(ctx context.Context, ls *liveSession, cmd streamCommand) (streamEvent, error) {
	var dir vocab.Direction
	if cmd.Op == "direction" {
		d, err := vocab.ParseDirection(cmd.Direction)
		if err != nil {
			return streamEvent{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		dir = d
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	s.sessions.touch(ls)

	switch cmd.Op {
	case "answer":
		a, err := ls.s.SubmitAnswer(ctx, cmd.Answer)
		if err != nil {
			return streamEvent{}, err
		}
		return streamEvent{Type: "attempt", Attempt: &a}, nil
	case "advance":
		return streamEvent{}, ls.s.Advance(ctx)
	case "restart":
		return streamEvent{}, ls.s.Restart(ctx)
	case "direction":
		return streamEvent{}, ls.s.ChangeDirection(ctx, dir, cmd.Confirm)
	}
	return streamEvent{}, fmt.Errorf("%w: unknown op %q", errBadRequest, cmd.Op)
}

// offer queues ev, dropping the oldest queued event when the client is
// too slow. Snapshots are complete, so only intermediate states are lost.
func offer(ch chan streamEvent, ev streamEvent) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
