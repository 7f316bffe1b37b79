package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"chaosroom/config"
	"chaosroom/protocol"
	"chaosroom/room"
)

const qrSize = 256

// Server exposes the websocket endpoint and a small HTTP surface over a
// room registry.
type Server struct {
	reg        *room.Registry
	format     protocol.Format
	publicURL  string
	sendBuffer int
	log        *slog.Logger
	upgrader   websocket.Upgrader
}

func NewServer(reg *room.Registry, cfg config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Server{
		reg:        reg,
		format:     cfg.WireFormat,
		publicURL:  cfg.PublicURL,
		sendBuffer: sendBuffer,
		log:        log,
		upgrader: websocket.Upgrader{
			// clients are served from anywhere the invite link lands
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /room/{code}", s.handleRoomInfo)
	mux.HandleFunc("GET /room/{code}/qr.png", s.handleRoomQR)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade", "err", err)
		return
	}
	sess := newSession(uuid.NewString(), ws, s)
	s.log.Debug("session opened", "player", sess.id, "remote", r.RemoteAddr)
	go sess.writePump()
	sess.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rooms": s.reg.Len()})
}

func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.reg.Info(r.PathValue("code"))
	if errors.Is(err, room.ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleRoomQR renders an invite link for a live room as a PNG.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(r.PathValue("code"))
	if _, err := s.reg.Info(code); err != nil {
		http.NotFound(w, r)
		return
	}
	png, err := qrcode.Encode(s.InviteURL(code), qrcode.Medium, qrSize)
	if err != nil {
		s.log.Error("qr encode", "room", code, "err", err)
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// InviteURL is the link a QR code points at.
func (s *Server) InviteURL(code string) string {
	return fmt.Sprintf("%s/?room=%s", s.publicURL, url.QueryEscape(code))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
