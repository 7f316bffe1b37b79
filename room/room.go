package room

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"chaosroom/game"
	"chaosroom/protocol"
)

// Options configure a room. Zero values pick production defaults.
type Options struct {
	Format protocol.Format
	Logger *slog.Logger
	Map    *game.Map
	Rand   *rand.Rand
	Clock  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Map == nil {
		o.Map = game.ShipMap
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Room owns one world. Every command and tick arrives through Inbox and is
// handled on the Run goroutine, so the world needs no locking.
type Room struct {
	Inbox   chan any
	Code    string
	OnEmpty func(code string) // called when last player leaves

	world          *game.World
	clients        map[string]Conn
	tick           int
	broadcastEvery int
	format         protocol.Format
	log            *slog.Logger
	clock          func() time.Time

	quit     chan struct{}
	stopOnce sync.Once
	closed   bool
}

func New(code string, opts Options) *Room {
	opts = opts.withDefaults()
	broadcastEvery := protocol.SimTickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	return &Room{
		Inbox:          make(chan any, 256),
		Code:           code,
		world:          game.NewWorld(code, opts.Map, opts.Rand, opts.Clock()),
		clients:        make(map[string]Conn),
		broadcastEvery: broadcastEvery,
		format:         opts.Format,
		log:            opts.Logger.With("room", code),
		clock:          opts.Clock,
		quit:           make(chan struct{}),
	}
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed once the room has stopped taking messages.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

// send queues msg unless the room has stopped.
func (r *Room) send(msg any) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.Inbox <- msg:
		return true
	case <-r.quit:
		return false
	}
}

func (r *Room) Run() {
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
			if r.closed {
				return
			}
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Tick:
		r.handleTick(c)
	case Join:
		r.handleJoin(c)
	case Input:
		r.world.UpdateInput(c.PlayerID, c.Input)
	case Dash:
		until, err := r.world.Dash(c.PlayerID, r.clock())
		if err != nil {
			r.reject(c.PlayerID, err)
			return
		}
		r.sendTo(c.PlayerID, protocol.MsgActionOK, protocol.ActionOK{Action: "dash", CooldownUntil: until.UnixMilli()})
	case Kill:
		until, err := r.world.AttemptKill(c.PlayerID, c.TargetID, r.clock())
		if err != nil {
			r.reject(c.PlayerID, err)
			return
		}
		r.sendTo(c.PlayerID, protocol.MsgActionOK, protocol.ActionOK{
			Action:        "kill",
			CooldownUntil: until.UnixMilli(),
			TargetID:      c.TargetID,
		})
		r.flushEvents()
	case Vote:
		if err := r.world.SubmitVote(c.PlayerID, c.TargetID); err != nil {
			r.reject(c.PlayerID, err)
		}
	case Start:
		if err := r.world.StartGame(c.PlayerID, r.clock()); err != nil {
			r.reject(c.PlayerID, err)
			return
		}
		r.log.Info("game started", "players", r.world.AliveCount())
		r.flushEvents()
	case Leave:
		r.handleLeave(c.PlayerID)
	case Info:
		c.Reply <- r.info()
	}
}

func (r *Room) handleTick(c Tick) {
	defer close(c.Done)
	r.tick++
	game.Step(r.world, c.Now, c.Dt)
	r.flushEvents()
	if r.tick%r.broadcastEvery == 0 {
		r.broadcastState(c.Now)
	}
}

// handleJoin seats a new player. A player already seated here just gets the
// join payload again.
func (r *Room) handleJoin(c Join) {
	if _, seated := r.world.Players[c.PlayerID]; seated {
		r.clients[c.PlayerID] = c.Conn
		r.sendJoined(c.PlayerID)
		c.Reply <- JoinResult{PlayerID: c.PlayerID}
		return
	}

	p, err := r.world.AddPlayer(c.PlayerID, c.Name, r.clock())
	if err != nil {
		c.Reply <- JoinResult{Err: err}
		return
	}
	r.clients[p.ID] = c.Conn
	r.log.Info("player joined", "player", p.ID, "name", p.Name, "spectator", p.Spectator)

	r.sendJoined(p.ID)
	r.flushEvents()
	c.Reply <- JoinResult{PlayerID: p.ID}
}

func (r *Room) sendJoined(playerID string) {
	r.sendTo(playerID, protocol.MsgJoined, protocol.Joined{
		RoomID:    r.Code,
		PlayerID:  playerID,
		HostID:    r.world.HostID,
		GameState: string(r.world.State.Round),
		Snapshot:  r.buildSnapshot(r.clock()),
	})
}

// handleLeave forgets the player. The connection stays open since the player
// may be moving to another room.
func (r *Room) handleLeave(playerID string) {
	delete(r.clients, playerID)
	removed, empty := r.world.RemovePlayer(playerID, r.clock())
	if removed != nil {
		r.log.Info("player left", "player", removed.ID, "name", removed.Name)
	}
	if empty {
		r.closeEmpty()
		return
	}
	r.flushEvents()
	r.broadcastState(r.clock())
}

// drop removes a player whose connection failed. Its events go out with the
// next flush.
func (r *Room) drop(playerID string) {
	if c, ok := r.clients[playerID]; ok {
		_ = c.Close()
		delete(r.clients, playerID)
	}
	r.log.Debug("dropping unreachable player", "player", playerID)
	if _, empty := r.world.RemovePlayer(playerID, r.clock()); empty {
		r.closeEmpty()
	}
}

func (r *Room) closeEmpty() {
	if r.closed {
		return
	}
	r.closed = true
	r.log.Info("room empty")
	if r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
	}
	r.Stop()
}

// reject reports a validation failure to the issuing player only. Commands
// for players that are already gone are dropped.
func (r *Room) reject(playerID string, err error) {
	var rej *game.Rejection
	if !errors.As(err, &rej) {
		return
	}
	r.sendTo(playerID, protocol.MsgError, protocol.Error{Code: rej.Tag, Message: rej.Message})
}

func (r *Room) flushEvents() {
	for _, e := range r.world.Drain() {
		r.logEvent(e)
		if e.To != "" {
			r.sendTo(e.To, e.Kind, e.Payload)
			continue
		}
		r.broadcast(e.Kind, e.Payload)
	}
}

func (r *Room) logEvent(e game.Event) {
	switch p := e.Payload.(type) {
	case protocol.PlayerEliminated:
		r.log.Info("player eliminated", "player", p.PlayerID, "reason", p.Reason, "killer", p.KillerID)
	case protocol.RoundUpdate:
		r.log.Info("round changed", "round", p.State)
	case protocol.VoteResult:
		r.log.Info("vote closed", "top", p.TopID, "count", p.TopCount, "total", p.TotalVotes, "eliminated", p.EliminatedID)
	case protocol.GameEnded:
		r.log.Info("game ended", "winner", p.WinnerName)
	case protocol.GameReset:
		r.log.Info("game reset")
	}
}

func (r *Room) sendTo(playerID, t string, payload any) {
	c, ok := r.clients[playerID]
	if !ok {
		return
	}
	b, err := r.format.Encode(t, payload)
	if err != nil {
		r.log.Error("encode", "type", t, "err", err)
		return
	}
	if err := c.Send(b); err != nil {
		r.drop(playerID)
	}
}

func (r *Room) broadcast(t string, payload any) {
	b, err := r.format.Encode(t, payload)
	if err != nil {
		r.log.Error("encode", "type", t, "err", err)
		return
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.drop(id)
	}
}

func (r *Room) broadcastState(now time.Time) {
	if r.closed {
		return
	}
	r.broadcast(protocol.MsgState, r.buildSnapshot(now))
}

func (r *Room) info() protocol.RoomInfo {
	return protocol.RoomInfo{
		ID:      r.Code,
		HostID:  r.world.HostID,
		State:   string(r.world.State.Round),
		Players: len(r.world.Players),
	}
}
