// Package bottest runs a fake Telegram Bot API server for tests.
package bottest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"sync"
	"testing"
)

// Sent is one sendMessage call received by the server
type Sent struct {
	ChatID    int64
	Text      string
	ParseMode string
}

type Server struct {
	*httptest.Server
	mu   sync.Mutex
	sent []Sent
}

// NewServer starts a server that answers getMe and records sendMessage.
// It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the API endpoint format string to pass to the bot
func (s *Server) Endpoint() string {
	return s.URL + "/bot%s/%s"
}

func (s *Server) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sent...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result any = true
	switch path.Base(r.URL.Path) {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "Hymns", "username": "hymns_bot"}
	case "sendMessage":
		chatID, _ := strconv.ParseInt(r.FormValue("chat_id"), 10, 64)
		msg := Sent{ChatID: chatID, Text: r.FormValue("text"), ParseMode: r.FormValue("parse_mode")}
		s.mu.Lock()
		s.sent = append(s.sent, msg)
		id := len(s.sent)
		s.mu.Unlock()
		result = map[string]any{
			"message_id": id,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       msg.Text,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}
