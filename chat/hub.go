package chat

import (
	"encoding/json"
	"sync"

	"gorm.io/gorm"

	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// historyLimit is how many persisted messages a joining client receives
const historyLimit = 50

// Hub maintains room_id -> set of connections and fans messages out to the
// room. A room is keyed by the customer's user id; staff agents join the
// same room to answer. Delivery is live-sockets-only; disconnected clients
// catch up from history on their next join.
type Hub struct {
	rooms map[string]map[string]*Client
	mu    sync.RWMutex
	db    *gorm.DB
}

// NewHub creates a chat hub backed by the given database for persistence
func NewHub(db *gorm.DB) *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*Client),
		db:    db,
	}
}

// Register adds a client to its room and sends it the recent history
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.RoomID] == nil {
		h.rooms[c.RoomID] = make(map[string]*Client)
	}
	h.rooms[c.RoomID][c.ID] = c
	h.mu.Unlock()

	utils.LogInfo("Chat client %s joined room %s", c.ID, c.RoomID)
	h.sendHistory(c)
}

// Unregister removes a client from its room
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.RoomID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.RoomID)
		}
	}
	h.mu.Unlock()
	utils.LogInfo("Chat client %s left room %s", c.ID, c.RoomID)
}

// RoomSize returns the number of connected clients in a room
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast sends an event to every client currently in the room. Clients
// whose send buffer is full are skipped; they recover from history.
func (h *Hub) Broadcast(roomID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.LogError("Failed to marshal chat payload: %v", err)
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[roomID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// HandleMessage persists an incoming chat message and broadcasts it
func (h *Hub) HandleMessage(c *Client, text string) {
	message := models.Message{
		RoomID:   c.RoomID,
		UserID:   c.UserID,
		Username: c.Username,
		Text:     text,
	}
	if err := h.db.Create(&message).Error; err != nil {
		utils.LogError("Failed to persist chat message in room %s: %v", c.RoomID, err)
		return
	}
	h.Broadcast(c.RoomID, "chat:message", message)
}

// sendHistory emits the last messages of the room to one client
func (h *Hub) sendHistory(c *Client) {
	var messages []models.Message
	if err := h.db.Where("room_id = ?", c.RoomID).
		Order("created_at DESC").
		Limit(historyLimit).
		Find(&messages).Error; err != nil {
		utils.LogError("Failed to load chat history for room %s: %v", c.RoomID, err)
		return
	}
	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	data, err := json.Marshal(messages)
	if err != nil {
		utils.LogError("Failed to marshal chat history: %v", err)
		return
	}
	select {
	case c.send <- WSMessage{Event: "chat:history", Data: data}:
	default:
	}
}
