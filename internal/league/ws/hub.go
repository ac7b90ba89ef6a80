package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league/pkg/contracts/events"
)

const writeTimeout = 5 * time.Second

// client serializa as escritas numa conexão; gorilla não aceita writers concorrentes
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por torneio
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	// tournamentID -> conexões inscritas
	subs map[string]map[*client]struct{}
}

// NewHub cria o hub com a política de origem informada
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// AllowOrigins monta o CheckOrigin a partir da lista configurada; "*" libera qualquer origem
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.ToLower(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// ServeHTTP trata o ciclo de vida de uma conexão: subscribe/unsubscribe por torneio e ping
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	defer func() {
		h.drop(c)
		_ = conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.TournamentID == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.TournamentID]; !ok {
				h.subs[msg.TournamentID] = make(map[*client]struct{})
			}
			h.subs[msg.TournamentID][c] = struct{}{}
			h.mu.Unlock()
			_ = c.write(mustJSON(map[string]string{"type": "subscribed", "tournament_id": msg.TournamentID}))
		case "unsubscribe":
			h.mu.Lock()
			if set, ok := h.subs[msg.TournamentID]; ok {
				delete(set, c)
				if len(set) == 0 {
					delete(h.subs, msg.TournamentID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = c.write(mustJSON(map[string]string{"type": "pong"}))
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// Subscribers retorna quantas conexões estão inscritas no torneio
func (h *Hub) Subscribers(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tournamentID])
}

// Broadcast envia o evento para todos os clientes inscritos no torneio da partida
func (h *Hub) Broadcast(e events.MatchEvent) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[e.TournamentID]))
	for c := range h.subs[e.TournamentID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b := mustJSON(FeedUpdate{Type: "match_event", TournamentID: e.TournamentID, Event: e})
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("tournament_id", e.TournamentID), zap.Error(err))
		}
	}
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
