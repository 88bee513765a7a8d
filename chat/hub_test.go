package chat

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/models"
)

func newChatDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Message{}))
	return db
}

func drain(c *Client) []WSMessage {
	var out []WSMessage
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	hub := NewHub(newChatDB(t))

	customer := NewClient(hub, nil, "7", 7, "gamer42")
	agent := NewClient(hub, nil, "7", 99, "support")

	hub.Register(customer)
	hub.Register(agent)
	assert.Equal(t, 2, hub.RoomSize("7"))

	hub.Unregister(agent)
	assert.Equal(t, 1, hub.RoomSize("7"))
	hub.Unregister(customer)
	assert.Equal(t, 0, hub.RoomSize("7"))
}

func TestHandleMessagePersistsAndBroadcasts(t *testing.T) {
	db := newChatDB(t)
	hub := NewHub(db)

	customer := NewClient(hub, nil, "7", 7, "gamer42")
	agent := NewClient(hub, nil, "7", 99, "support")
	outsider := NewClient(hub, nil, "8", 8, "other")
	hub.Register(customer)
	hub.Register(agent)
	hub.Register(outsider)
	drain(customer)
	drain(agent)
	drain(outsider)

	hub.HandleMessage(customer, "my subscription shows inactive")

	var stored []models.Message
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "7", stored[0].RoomID)
	assert.Equal(t, uint(7), stored[0].UserID)
	assert.Equal(t, "my subscription shows inactive", stored[0].Text)

	for _, c := range []*Client{customer, agent} {
		msgs := drain(c)
		require.Len(t, msgs, 1, "room member should receive the broadcast")
		assert.Equal(t, "chat:message", msgs[0].Event)

		var got models.Message
		require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
		assert.Equal(t, "gamer42", got.Username)
	}

	assert.Empty(t, drain(outsider), "other rooms must not see the message")
}

func TestHistoryOnJoin(t *testing.T) {
	db := newChatDB(t)
	hub := NewHub(db)

	sender := NewClient(hub, nil, "7", 7, "gamer42")
	hub.Register(sender)
	drain(sender)
	hub.HandleMessage(sender, "first")
	hub.HandleMessage(sender, "second")

	late := NewClient(hub, nil, "7", 99, "support")
	hub.Register(late)

	msgs := drain(late)
	require.NotEmpty(t, msgs)
	assert.Equal(t, "chat:history", msgs[0].Event)

	var history []models.Message
	require.NoError(t, json.Unmarshal(msgs[0].Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	assert.Equal(t, "second", history[1].Text)
}

func TestHistoryIsCapped(t *testing.T) {
	db := newChatDB(t)
	hub := NewHub(db)

	for i := 0; i < historyLimit+10; i++ {
		require.NoError(t, db.Create(&models.Message{
			RoomID: "7", UserID: 7, Username: "gamer42", Text: fmt.Sprintf("msg %d", i),
		}).Error)
	}

	late := NewClient(hub, nil, "7", 99, "support")
	hub.Register(late)

	msgs := drain(late)
	require.NotEmpty(t, msgs)
	var history []models.Message
	require.NoError(t, json.Unmarshal(msgs[0].Data, &history))
	assert.Len(t, history, historyLimit)
}
