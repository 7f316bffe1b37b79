package network

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chaosroom/game"
	"chaosroom/protocol"
	"chaosroom/room"
)

const (
	readLimit    = 1 << 20 // 1MB
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingEvery    = 25 * time.Second
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	errSessionClosed = errors.New("session closed")
)

// session is one websocket client. Its id doubles as the player id. The room
// writes through Send, which only queues; writePump owns the socket writes.
type session struct {
	id  string
	ws  *websocket.Conn
	srv *Server

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, ws *websocket.Conn, srv *Server) *session {
	return &session{
		id:   id,
		ws:   ws,
		srv:  srv,
		send: make(chan []byte, srv.sendBuffer),
		done: make(chan struct{}),
	}
}

func (s *session) Send(b []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (s *session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	frameType := websocket.TextMessage
	if s.srv.format.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case b := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.ws.WriteMessage(frameType, b); err != nil {
				s.srv.log.Debug("write", "player", s.id, "err", err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		}
	}
}

func (s *session) readPump() {
	defer func() {
		s.srv.reg.Leave(s.id)
		s.Close()
		s.srv.log.Debug("session closed", "player", s.id)
	}()

	s.ws.SetReadLimit(readLimit)
	_ = s.ws.SetReadDeadline(time.Now().Add(readTimeout))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, msg, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.srv.log.Debug("read", "player", s.id, "err", err)
			}
			return
		}
		_ = s.ws.SetReadDeadline(time.Now().Add(readTimeout))
		s.dispatch(msg)
	}
}

// payload decodes an intent body; a missing or malformed body reads as the
// zero value and is left to validation.
func payload[T any](env protocol.Envelope) T {
	v, _ := protocol.DecodePayload[T](env)
	return v
}

func (s *session) dispatch(msg []byte) {
	env, err := s.srv.format.DecodeEnvelope(msg)
	if err != nil {
		s.srv.log.Debug("bad frame", "player", s.id, "err", err)
		return
	}

	var cmd any
	switch env.T {
	case protocol.MsgCreateRoom:
		p := payload[protocol.CreateRoom](env)
		code, err := s.srv.reg.Create(s.id, s, p.Name)
		if err != nil {
			s.reject(err)
			return
		}
		s.srv.log.Info("room opened by player", "room", code, "player", s.id)
		return
	case protocol.MsgJoinRoom:
		p := payload[protocol.JoinRoom](env)
		if err := s.srv.reg.Join(s.id, s, p.RoomID, p.Name); err != nil {
			s.reject(err)
		}
		return
	case protocol.MsgStartGame:
		cmd = room.Start{PlayerID: s.id}
	case protocol.MsgInput:
		p := payload[protocol.Input](env)
		cmd = room.Input{PlayerID: s.id, Input: game.Input{Up: p.Up, Down: p.Down, Left: p.Left, Right: p.Right}}
	case protocol.MsgDash:
		cmd = room.Dash{PlayerID: s.id}
	case protocol.MsgKill:
		cmd = room.Kill{PlayerID: s.id, TargetID: payload[protocol.Kill](env).TargetID}
	case protocol.MsgVote:
		cmd = room.Vote{PlayerID: s.id, TargetID: payload[protocol.Vote](env).TargetID}
	default:
		s.srv.log.Debug("unknown message type", "player", s.id, "type", env.T)
		return
	}

	// a player outside any room has nothing to act on
	_ = s.srv.reg.Send(s.id, cmd)
}

// reject answers a failed create or join on this session only.
func (s *session) reject(err error) {
	e := protocol.Error{Code: "create_failed", Message: "Unable to create room"}
	var rej *game.Rejection
	switch {
	case errors.As(err, &rej):
		e = protocol.Error{Code: rej.Tag, Message: rej.Message}
	case errors.Is(err, room.ErrRoomNotFound):
		e = protocol.Error{Code: "room_not_found", Message: "Room not found"}
	default:
		s.srv.log.Warn("room create failed", "player", s.id, "err", err)
	}
	b, encErr := s.srv.format.Encode(protocol.MsgError, e)
	if encErr != nil {
		return
	}
	_ = s.Send(b)
}
