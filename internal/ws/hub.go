package ws

import (
	"encoding/json"
	"sync"
	"time"

	"pvp_escrow/internal/logger"
)

// Event is the wire envelope of the match feed.
type Event struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Payload any    `json:"payload,omitempty"`
	At      int64  `json:"at"`
}

// Hub fans match events out to subscribed clients. The feed is a read-only
// state mirror; all gameplay goes through the HTTP API.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Subscribe(matchID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[matchID]
	if !ok {
		set = make(map[*Client]struct{})
		h.subs[matchID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws subscribe", "match_id", matchID, "player", c.PlayerKey)
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[c.MatchID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.subs, c.MatchID)
	}
}

// Publish implements service.EventSink. Slow clients lose events rather than
// block the engine.
func (h *Hub) Publish(matchID, event string, payload any) {
	msg, err := json.Marshal(Event{
		Type:    event,
		MatchID: matchID,
		Payload: payload,
		At:      time.Now().Unix(),
	})
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subs[matchID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws client send buffer full, dropping event",
				"match_id", matchID, "player", c.PlayerKey, "event", event)
		}
	}
}

// Subscribers returns the current subscriber count for a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}
