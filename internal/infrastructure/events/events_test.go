package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(recipient uuid.UUID, eventType string, data any) error {
	args := m.Called(recipient, eventType, data)
	return args.Error(0)
}

type recordingConn struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingConn) Publish(subj string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append(c.subjects, subj)
	c.payloads = append(c.payloads, data)
	return c.err
}

func sampleEvent(recipients ...uuid.UUID) event.Event {
	return event.Event{
		Type:       event.ApplicationAccepted,
		TargetKind: valueobject.TargetShift,
		TargetID:   uuid.New(),
		Status:     "accepted",
		Recipients: recipients,
	}
}

func TestWebsocketSink_SendsToEveryRecipient(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sender := new(mockSender)
	sender.On("Send", a, "application.accepted", mock.Anything).Return(nil)
	sender.On("Send", b, "application.accepted", mock.Anything).Return(errors.New("offline"))

	err := NewWebsocketSink(sender).Deliver(context.Background(), sampleEvent(a, b))

	assert.Error(t, err)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestNATSSink_PublishesUnderTypedSubject(t *testing.T) {
	conn := &recordingConn{}
	recipient := uuid.New()

	require.NoError(t, NewNATSSink(conn).Deliver(context.Background(), sampleEvent(recipient)))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "shiftboard.events.application.accepted", conn.subjects[0])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &payload))
	assert.Equal(t, "application.accepted", payload["type"])
	assert.Equal(t, []any{recipient.String()}, payload["recipients"])
}

func TestDispatcher_SyncDeliversToAllSinksDespiteFailures(t *testing.T) {
	failing := &recordingConn{err: errors.New("nats down")}
	ok := &recordingConn{}

	d := NewSyncDispatcher(NewNATSSink(failing), NewNATSSink(ok))
	d.Publish(context.Background(), sampleEvent())

	assert.Len(t, failing.subjects, 1)
	assert.Len(t, ok.subjects, 1)
}
