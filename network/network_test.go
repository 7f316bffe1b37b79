package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chaosroom/config"
	"chaosroom/protocol"
	"chaosroom/room"
)

type testServer struct {
	http   *httptest.Server
	reg    *room.Registry
	format protocol.Format
}

func newTestServer(t *testing.T, format protocol.Format) *testServer {
	t.Helper()
	reg := room.NewRegistry(protocol.SimTickHz, room.Options{Format: format})
	ctx, cancel := context.WithCancel(context.Background())
	go reg.Run(ctx)
	t.Cleanup(cancel)

	srv := NewServer(reg, config.Config{
		WireFormat: format,
		PublicURL:  "https://play.example.com",
		SendBuffer: 64,
	}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{http: ts, reg: reg, format: format}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (ts *testServer) write(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := ts.format.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", typ, err)
	}
	frame := websocket.TextMessage
	if ts.format.Binary() {
		frame = websocket.BinaryMessage
	}
	if err := conn.WriteMessage(frame, b); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// waitFor reads frames until one of type typ satisfies match.
func waitFor[T any](t *testing.T, ts *testServer, conn *websocket.Conn, typ string, match func(T) bool) T {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		env, err := ts.format.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.T != typ {
			continue
		}
		v, err := protocol.DecodePayload[T](env)
		if err != nil {
			t.Fatalf("decode %s: %v", typ, err)
		}
		if match == nil || match(v) {
			return v
		}
	}
}

func createRoom(t *testing.T, ts *testServer, conn *websocket.Conn, name string) protocol.Joined {
	t.Helper()
	ts.write(t, conn, protocol.MsgCreateRoom, protocol.CreateRoom{Name: name})
	return waitFor[protocol.Joined](t, ts, conn, protocol.MsgJoined, nil)
}

func TestCreateJoinStartOverWebsocket(t *testing.T) {
	ts := newTestServer(t, protocol.FormatJSON)
	a, b := ts.dial(t), ts.dial(t)

	host := createRoom(t, ts, a, "alpha")
	if host.RoomID == "" || host.PlayerID == "" || host.HostID != host.PlayerID || host.GameState != "LOBBY" {
		t.Fatalf("joined = %+v", host)
	}

	ts.write(t, b, protocol.MsgJoinRoom, protocol.JoinRoom{RoomID: strings.ToLower(host.RoomID), Name: "bravo"})
	guest := waitFor[protocol.Joined](t, ts, b, protocol.MsgJoined, nil)
	if guest.RoomID != host.RoomID || guest.HostID != host.PlayerID || guest.PlayerID == host.PlayerID {
		t.Fatalf("guest joined = %+v", guest)
	}
	waitFor(t, ts, a, protocol.MsgRoomUpdate, func(u protocol.RoomUpdate) bool { return len(u.Players) == 2 })

	ts.write(t, a, protocol.MsgStartGame, struct{}{})
	waitFor[protocol.GameStarted](t, ts, b, protocol.MsgGameStarted, nil)
	st := waitFor(t, ts, b, protocol.MsgState, func(s protocol.State) bool { return s.GameState == "ROUND1" })
	if st.AliveCount != 2 || st.RoomID != host.RoomID {
		t.Fatalf("state = %+v", st)
	}
}

func TestRejectionsReachTheSender(t *testing.T) {
	ts := newTestServer(t, protocol.FormatJSON)
	a := ts.dial(t)

	ts.write(t, a, protocol.MsgJoinRoom, protocol.JoinRoom{RoomID: "NOPE99", Name: "alpha"})
	if e := waitFor[protocol.Error](t, ts, a, protocol.MsgError, nil); e.Code != "room_not_found" {
		t.Fatalf("code = %q", e.Code)
	}

	ts.write(t, a, protocol.MsgCreateRoom, protocol.CreateRoom{Name: "   "})
	if e := waitFor[protocol.Error](t, ts, a, protocol.MsgError, nil); e.Code != "name_required" {
		t.Fatalf("code = %q", e.Code)
	}

	host := createRoom(t, ts, a, "alpha")
	b := ts.dial(t)
	ts.write(t, b, protocol.MsgJoinRoom, protocol.JoinRoom{RoomID: host.RoomID, Name: "ALPHA"})
	if e := waitFor[protocol.Error](t, ts, b, protocol.MsgError, nil); e.Code != "name_taken" {
		t.Fatalf("code = %q", e.Code)
	}

	ts.write(t, a, protocol.MsgStartGame, struct{}{})
	if e := waitFor[protocol.Error](t, ts, a, protocol.MsgError, nil); e.Code != "not_enough_players" {
		t.Fatalf("code = %q", e.Code)
	}
}

func TestDisconnectPromotesNewHost(t *testing.T) {
	ts := newTestServer(t, protocol.FormatJSON)
	a, b := ts.dial(t), ts.dial(t)
	host := createRoom(t, ts, a, "alpha")
	ts.write(t, b, protocol.MsgJoinRoom, protocol.JoinRoom{RoomID: host.RoomID, Name: "bravo"})
	guest := waitFor[protocol.Joined](t, ts, b, protocol.MsgJoined, nil)

	a.Close()
	u := waitFor(t, ts, b, protocol.MsgRoomUpdate, func(u protocol.RoomUpdate) bool { return len(u.Players) == 1 })
	if u.HostID != guest.PlayerID {
		t.Fatalf("host = %q, want %q", u.HostID, guest.PlayerID)
	}
}

func TestMsgpackFrames(t *testing.T) {
	ts := newTestServer(t, protocol.FormatMsgpack)
	a := ts.dial(t)
	host := createRoom(t, ts, a, "alpha")
	if host.RoomID == "" || host.Snapshot.RoomID != host.RoomID {
		t.Fatalf("joined = %+v", host)
	}
	st := waitFor[protocol.State](t, ts, a, protocol.MsgState, nil)
	if len(st.Players) != 1 || st.Players[0].Name != "alpha" {
		t.Fatalf("state players = %+v", st.Players)
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHTTPRoutes(t *testing.T) {
	ts := newTestServer(t, protocol.FormatJSON)

	var health struct {
		OK    bool `json:"ok"`
		Rooms int  `json:"rooms"`
	}
	if code := getJSON(t, ts.http.URL+"/health", &health); code != http.StatusOK || !health.OK || health.Rooms != 0 {
		t.Fatalf("health = %d %+v", code, health)
	}

	host := createRoom(t, ts, ts.dial(t), "alpha")
	getJSON(t, ts.http.URL+"/health", &health)
	if health.Rooms != 1 {
		t.Fatalf("rooms = %d, want 1", health.Rooms)
	}

	var info protocol.RoomInfo
	if code := getJSON(t, ts.http.URL+"/room/"+strings.ToLower(host.RoomID), &info); code != http.StatusOK {
		t.Fatalf("room info status = %d", code)
	}
	if info.ID != host.RoomID || info.HostID != host.PlayerID || info.Players != 1 || info.State != "LOBBY" {
		t.Fatalf("info = %+v", info)
	}
	if code := getJSON(t, ts.http.URL+"/room/ZZZZZZ", nil); code != http.StatusNotFound {
		t.Fatalf("missing room status = %d", code)
	}

	resp, err := http.Get(ts.http.URL + "/room/" + host.RoomID + "/qr.png")
	if err != nil {
		t.Fatalf("GET qr: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qr status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Fatalf("qr body is not a png")
	}
	if code := getJSON(t, ts.http.URL+"/room/ZZZZZZ/qr.png", nil); code != http.StatusNotFound {
		t.Fatalf("missing room qr status = %d", code)
	}
}

func TestInviteURL(t *testing.T) {
	s := NewServer(nil, config.Config{PublicURL: "https://play.example.com"}, nil)
	if got := s.InviteURL("ABC234"); got != "https://play.example.com/?room=ABC234" {
		t.Fatalf("invite url = %q", got)
	}
}

func TestSessionSendQueue(t *testing.T) {
	s := newSession("p1", nil, &Server{sendBuffer: 1})
	if err := s.Send([]byte("a")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := s.Send([]byte("b")); !errors.Is(err, ErrSendQueueFull) {
		t.Fatalf("full queue err = %v", err)
	}
	<-s.send
	_ = s.Close()
	_ = s.Close()
	if err := s.Send([]byte("c")); !errors.Is(err, errSessionClosed) {
		t.Fatalf("closed session err = %v", err)
	}
}
