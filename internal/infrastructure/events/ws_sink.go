package events

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
)

// Sender - то, что умеет отправить сообщение получателю; реализуется ws.Hub.
type Sender interface {
	Send(recipient uuid.UUID, eventType string, data any) error
}

type WebsocketSink struct {
	sender Sender
}

func NewWebsocketSink(sender Sender) *WebsocketSink {
	return &WebsocketSink{sender: sender}
}

func (s *WebsocketSink) Name() string { return "websocket" }

func (s *WebsocketSink) Deliver(_ context.Context, e event.Event) error {
	var errs []error
	for _, r := range e.Recipients {
		if err := s.sender.Send(r, string(e.Type), e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
