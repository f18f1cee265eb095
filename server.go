package atdrv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/northlake-iot/atdrv/at"
	"github.com/northlake-iot/atdrv/engine"
)

// Server is the HTTP + WebSocket admin surface over a running engine.Engine
// (SPEC_FULL §6), grounded on the teacher's own server.go and on
// rehiy-web-modem's gorilla/mux + gorilla/websocket router.
type Server struct {
	Logger *slog.Logger
	Engine *engine.Engine
	Table  *at.Table
	Store  *Store

	router   *mux.Router
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]uuid.UUID
}

// NewServer builds a Server and registers every route described in
// SPEC_FULL §6. It also registers the catch-all bare unsolicited handler
// that feeds /unsolicited/ws, so it must be called exactly once per Engine.
func NewServer(eng *engine.Engine, table *at.Table, store *Store, logger *slog.Logger) *Server {
	s := &Server{
		Logger:   logger,
		Engine:   eng,
		Table:    table,
		Store:    store,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]uuid.UUID),
	}

	r := mux.NewRouter()
	r.HandleFunc("/commands", s.handleCommands).Methods("POST")
	r.HandleFunc("/commands/prompted", s.handlePrompted).Methods("POST")
	r.HandleFunc("/unsolicited/ws", s.handleUnsolicitedWS).Methods("GET")
	r.HandleFunc("/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router = r

	// Extended-command URC handlers are always tried before bare ones
	// (§4.5). The empty prefix matches every line, so a bare handler
	// registered after this one never fires.
	eng.RegisterUnsolicitedMessage("", s.broadcastUnsolicited)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

type commandRequest struct {
	Command   string `json:"command"`
	Type      string `json:"type"`
	Payload   string `json:"payload,omitempty"`
	TimeoutMs int64  `json:"timeout_ms"`
}

type commandResponse struct {
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, ok := s.Table.IDOf(req.Command)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown command: "+req.Command)
		return
	}
	typ, ok := at.ParseCommandType(req.Type)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown command type: "+req.Type)
		return
	}

	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	start := time.Now()

	var payload string
	var err error
	if typ == at.Write {
		payload, err = s.Engine.SendWrite(r.Context(), id, req.Payload, timeout)
	} else {
		payload, err = s.Engine.Send(r.Context(), id, typ, timeout)
	}

	s.logCommand(req.Command, req.Type, req.Payload, payload, err, time.Since(start))

	if err != nil {
		s.writeJSON(w, http.StatusOK, commandResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, commandResponse{Payload: payload})
}

type promptedRequest struct {
	Command       string `json:"command"`
	Payload       string `json:"payload"`
	PromptMessage string `json:"prompt_message"`
	EndPolicy     string `json:"end_policy"`
	TimeoutMs     int64  `json:"timeout_ms"`
}

func (s *Server) handlePrompted(w http.ResponseWriter, r *http.Request) {
	var req promptedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, ok := s.Table.IDOf(req.Command)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown command: "+req.Command)
		return
	}

	end := at.EndCRLF
	if req.EndPolicy == "CTRL_Z" {
		end = at.EndCtrlZ
	}

	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	start := time.Now()

	err := s.Engine.SendPrompted(r.Context(), id, req.Payload, req.PromptMessage, end, timeout)
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	s.logCommand(req.Command, "PROMPTED", req.Payload, "", err, time.Since(start))

	s.writeJSON(w, http.StatusOK, commandResponse{Error: errStr})
}

func (s *Server) handleUnsolicitedWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New()
	s.clientsMu.Lock()
	s.clients[conn] = clientID
	s.clientsMu.Unlock()
	s.Logger.Info("websocket client connected", "client_id", clientID, "remote_addr", r.RemoteAddr)

	connectedAt := time.Now()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
		s.Logger.Info("websocket client disconnected", "client_id", clientID, "connected_for", humanize.RelTime(connectedAt, time.Now(), "", ""))
	}()

	// Block until the client disconnects; writes happen from
	// broadcastUnsolicited on the RX consumer task.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastUnsolicited is the bare-message fallback handler registered in
// NewServer. It runs on the engine's RX consumer task, so it must not
// block — writes use a short deadline and a disconnected client is simply
// dropped from the registry.
func (s *Server) broadcastUnsolicited(line string) at.Policy {
	if s.Store != nil {
		if err := s.Store.LogUnsolicited(line); err != nil {
			s.Logger.Warn("audit log write failed", "error", err)
		}
	}

	msg, err := json.Marshal(map[string]string{"line": line})
	if err != nil {
		return at.Keep
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			delete(s.clients, conn)
			conn.Close()
		}
	}
	return at.Keep
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		s.writeJSON(w, http.StatusOK, []CommandLogEntry{})
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := s.Store.History(limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type historyRow struct {
		CommandLogEntry
		Age string `json:"age"`
	}
	rows := make([]historyRow, len(entries))
	now := time.Now()
	for i, e := range entries {
		rows[i] = historyRow{CommandLogEntry: e, Age: humanize.RelTime(e.CreatedAt, now, "ago", "from now")}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) logCommand(command, typ, payload, result string, err error, dur time.Duration) {
	if s.Store == nil {
		return
	}
	entry := CommandLogEntry{
		Command:    command,
		Type:       typ,
		Payload:    payload,
		Result:     result,
		DurationMs: dur.Milliseconds(),
	}
	if err != nil {
		entry.Err = err.Error()
	}
	if werr := s.Store.LogCommand(entry); werr != nil {
		s.Logger.Warn("audit log write failed", "error", werr)
	}
}
