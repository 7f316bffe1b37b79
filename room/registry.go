package room

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"chaosroom/game"
	"chaosroom/protocol"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
)

const (
	codeChars        = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength       = 6
	RoomCodeAttempts = 10000
)

// Registry holds every room by code and remembers which room each player is
// in. Rooms are created on request and removed when their last player leaves.
// The registry never holds its lock while waiting on a room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	index map[string]string // player id -> room code

	tickHz  int
	opts    Options
	log     *slog.Logger
	newCode func() string
}

func NewRegistry(tickHz int, opts Options) *Registry {
	if tickHz <= 0 {
		tickHz = protocol.SimTickHz
	}
	opts = opts.withDefaults()
	// rooms draw their own rng
	opts.Rand = nil
	return &Registry{
		rooms:   make(map[string]*Room),
		index:   make(map[string]string),
		tickHz:  tickHz,
		opts:    opts,
		log:     opts.Logger,
		newCode: func() string { return generateCode(codeLength) },
	}
}

// NormalizeCode upper-cases and trims a user-typed room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create opens a new room with the caller as its host. The caller leaves its
// current room only once the new one has seated it.
func (m *Registry) Create(playerID string, conn Conn, name string) (string, error) {
	if game.SanitizeName(name) == "" {
		return "", game.ErrNameRequired
	}
	prev, _ := m.RoomOf(playerID)

	r, err := m.newRoom()
	if err != nil {
		return "", err
	}
	if err := m.join(r, playerID, conn, name); err != nil {
		m.removeRoom(r.Code)
		return "", err
	}
	m.leaveRoom(prev, playerID)
	return r.Code, nil
}

// Join seats the player in an existing room. A rejected join leaves the
// player where it was; a successful one moves it out of its previous room.
func (m *Registry) Join(playerID string, conn Conn, code, name string) error {
	r, ok := m.room(NormalizeCode(code))
	if !ok {
		return ErrRoomNotFound
	}
	prev, _ := m.RoomOf(playerID)
	if err := m.join(r, playerID, conn, name); err != nil {
		return err
	}
	if prev != r.Code {
		m.leaveRoom(prev, playerID)
	}
	return nil
}

func (m *Registry) join(r *Room, playerID string, conn Conn, name string) error {
	reply := make(chan JoinResult, 1)
	if !r.send(Join{PlayerID: playerID, Conn: conn, Name: name, Reply: reply}) {
		return ErrRoomNotFound
	}
	select {
	case res := <-reply:
		if res.Err != nil {
			return res.Err
		}
	case <-r.Done():
		return ErrRoomNotFound
	}

	m.mu.Lock()
	m.index[playerID] = r.Code
	m.mu.Unlock()
	return nil
}

// Leave removes the player from its room, if any.
func (m *Registry) Leave(playerID string) {
	m.mu.Lock()
	code, ok := m.index[playerID]
	delete(m.index, playerID)
	m.mu.Unlock()
	if ok {
		m.leaveRoom(code, playerID)
	}
}

// leaveRoom tells room code to drop the player without touching the index.
func (m *Registry) leaveRoom(code, playerID string) {
	if code == "" {
		return
	}
	if r, ok := m.room(code); ok {
		r.send(Leave{PlayerID: playerID})
	}
}

// Send routes a command to the room the player is in. A player with no room
// gets ErrRoomNotFound, which callers drop.
func (m *Registry) Send(playerID string, msg any) error {
	m.mu.RLock()
	r := m.rooms[m.index[playerID]]
	m.mu.RUnlock()
	if r == nil || !r.send(msg) {
		return ErrRoomNotFound
	}
	return nil
}

// RoomOf reports the code of the room the player is in.
func (m *Registry) RoomOf(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.index[playerID]
	return code, ok
}

func (m *Registry) Info(code string) (protocol.RoomInfo, error) {
	r, ok := m.room(NormalizeCode(code))
	if !ok {
		return protocol.RoomInfo{}, ErrRoomNotFound
	}
	reply := make(chan protocol.RoomInfo, 1)
	if !r.send(Info{Reply: reply}) {
		return protocol.RoomInfo{}, ErrRoomNotFound
	}
	select {
	case info := <-reply:
		return info, nil
	case <-r.Done():
		return protocol.RoomInfo{}, ErrRoomNotFound
	}
}

// Len returns the number of live rooms.
func (m *Registry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Run drives every room at the fixed tick rate until ctx is done, then stops
// all rooms.
func (m *Registry) Run(ctx context.Context) {
	interval := time.Second / time.Duration(m.tickHz)
	dt := 1 / float64(m.tickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.stopAll()
			return
		case <-ticker.C:
			m.Step(m.opts.Clock(), dt)
		}
	}
}

// Step ticks each room once, one after another. A room's tick finishes before
// the next room's starts.
func (m *Registry) Step(now time.Time, dt float64) {
	for _, r := range m.all() {
		done := make(chan struct{})
		if !r.send(Tick{Now: now, Dt: dt, Done: done}) {
			continue
		}
		select {
		case <-done:
		case <-r.Done():
		}
	}
}

func (m *Registry) room(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

func (m *Registry) all() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

func (m *Registry) newRoom() (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < RoomCodeAttempts; i++ {
		code := m.newCode()
		if _, exists := m.rooms[code]; exists {
			continue
		}
		r := New(code, m.opts)
		r.OnEmpty = m.removeRoom
		m.rooms[code] = r
		go r.Run()
		m.log.Info("room created", "room", code)
		return r, nil
	}
	return nil, fmt.Errorf("after %d attempts: %w", RoomCodeAttempts, ErrCodeSpaceExhausted)
}

func (m *Registry) removeRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[code]
	if !ok {
		return
	}
	r.Stop()
	delete(m.rooms, code)
	for id, c := range m.index {
		if c == code {
			delete(m.index, id)
		}
	}
	m.log.Info("room deleted", "room", code)
}

func (m *Registry) stopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, r := range m.rooms {
		r.Stop()
		delete(m.rooms, code)
	}
	clear(m.index)
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
