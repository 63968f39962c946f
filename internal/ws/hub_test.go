package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversByUserAndOrganization(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	userID, orgID := uuid.New(), uuid.New()
	client := &Client{hub: hub, userID: userID, orgID: orgID, send: make(chan []byte, 4)}
	hub.Register(client)

	require.Eventually(t, func() bool { return hub.Connected(orgID) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.Connected(userID))

	require.NoError(t, hub.Send(orgID, "application.submitted", map[string]string{"id": "42"}))

	select {
	case raw := <-client.send:
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "application.submitted", msg.Type)
		assert.Equal(t, "42", msg.Data["id"])
	case <-time.After(time.Second):
		t.Fatal("сообщение не доставлено")
	}

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Connected(userID) == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.Connected(orgID))
}
