package chat

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app origins
	},
}

// ServeWs upgrades the connection and joins the caller to a support room.
// Customers always land in their own room; staff may join any room via the
// room_id query parameter.
func ServeWs(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		userID, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		roomID := fmt.Sprintf("%d", user.ID)
		if requested := c.Query("room_id"); requested != "" && user.IsStaff {
			roomID = requested
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.LogError("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, roomID, user.ID, user.Username)
		hub.Register(client)

		go client.writePump()
		go client.readPump()
	}
}
