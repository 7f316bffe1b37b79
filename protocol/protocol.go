package protocol

// inbound intents
const (
	MsgCreateRoom = "room:create"
	MsgJoinRoom   = "room:join"
	MsgStartGame  = "game:start"
	MsgInput      = "input:update"
	MsgDash       = "action:dash"
	MsgKill       = "action:kill"
	MsgVote       = "vote:submit"
)

// outbound
const (
	MsgJoined           = "room:joined"
	MsgRoomUpdate       = "room:update"
	MsgState            = "state:update"
	MsgError            = "error:message"
	MsgActionOK         = "action:ok"
	MsgRoleUpdate       = "role:update"
	MsgVoteStarted      = "vote:started"
	MsgVoteResult       = "vote:result"
	MsgRoundUpdate      = "round:update"
	MsgChaosStarted     = "chaos:started"
	MsgPlayerEliminated = "player:eliminated"
	MsgGameStarted      = "game:started"
	MsgGameEnded        = "game:ended"
	MsgGameReset        = "game:reset"
)

const (
	SimTickHz   = 12
	BroadcastHz = 12
)

// Envelope is a decoded frame. P holds the still-encoded payload in the
// frame's own format.
type Envelope struct {
	T      string
	P      []byte
	Format Format
}
