package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// SubjectPrefix - события публикуются в shiftboard.events.<type>, например shiftboard.events.application.accepted.
const SubjectPrefix = "shiftboard.events."

// Conn - часть *nats.Conn, которая нужна sink'у.
type Conn interface {
	Publish(subj string, data []byte) error
}

type NATSSink struct {
	conn Conn
}

// ConnectNATS подключается к NATS с бесконечным переподключением.
func ConnectNATS(url string, timeout time.Duration) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("shiftboard"),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Log.WithError(err).Warn("nats: соединение потеряно")
			}
		}),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подключиться к NATS")
	}
	return conn, nil
}

func NewNATSSink(conn Conn) *NATSSink {
	return &NATSSink{conn: conn}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Deliver(_ context.Context, e event.Event) error {
	type wire struct {
		event.Event
		Recipients []string `json:"recipients,omitempty"`
	}
	w := wire{Event: e}
	for _, r := range e.Recipients {
		w.Recipients = append(w.Recipients, r.String())
	}

	data, err := json.Marshal(w)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать событие")
	}
	if err := s.conn.Publish(SubjectPrefix+string(e.Type), data); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось опубликовать событие в NATS")
	}

	logger.Log.WithField("subject", SubjectPrefix+string(e.Type)).Debug("событие опубликовано")
	return nil
}
