package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/proplayhub/backend/utils"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// WSMessage is the WebSocket message envelope
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// chatPayload is the body of an incoming chat:message event
type chatPayload struct {
	Text string `json:"text"`
}

// Client represents a single WebSocket connection in a chat room
type Client struct {
	ID       string
	RoomID   string
	UserID   uint
	Username string
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
}

// NewClient builds a client for a connection. The pumps are started by the
// handler after Register.
func NewClient(hub *Hub, conn *websocket.Conn, roomID string, userID uint, username string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan WSMessage, sendBufferSize),
	}
}

// readPump reads incoming events until the connection drops
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogError("Chat read error for client %s: %v", c.ID, err)
			}
			return
		}

		switch msg.Event {
		case "chat:message":
			var payload chatPayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Text == "" {
				continue
			}
			c.hub.HandleMessage(c, payload.Text)
		}
	}
}

// writePump writes outgoing events and heartbeats
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
