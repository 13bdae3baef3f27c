package ws

import (
	"time"

	"pvp_escrow/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	PlayerKey string
	MatchID   string
	Conn      *websocket.Conn
	Send      chan []byte

	hub *Hub
}

func NewClient(playerKey, matchID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerKey: playerKey,
		MatchID:   matchID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		hub:       hub,
	}
}

func (c *Client) Run() {
	c.hub.Subscribe(c.MatchID, c)
	go c.writePump()
	c.readPump()
}

// readPump only services control frames and detects disconnects; inbound
// data frames are discarded because the feed is one-way.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		close(c.Send)
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			logger.Debug("ws read closed", "player", c.PlayerKey, "error", err)
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
