package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/goroutine"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
)

// Sink доставляет событие одним способом (websocket, NATS).
type Sink interface {
	Deliver(ctx context.Context, e event.Event) error
	Name() string
}

// Dispatcher рассылает событие во все sink'и асинхронно: ошибка доставки
// не влияет на уже зафиксированное изменение состояния.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	async   bool
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: 5 * time.Second, async: true}
}

// NewSyncDispatcher доставляет в вызывающей горутине, используется в тестах и CLI.
func NewSyncDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: 5 * time.Second}
}

func (d *Dispatcher) Publish(ctx context.Context, e event.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if d.async {
		// Контекст запроса к этому моменту может быть отменён.
		bg := context.WithoutCancel(ctx)
		goroutine.SafeGo("event-dispatch", func() { d.deliver(bg, e) })
		return
	}
	d.deliver(ctx, e)
}

func (d *Dispatcher) deliver(ctx context.Context, e event.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for _, s := range d.sinks {
		if err := s.Deliver(ctx, e); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"sink":      s.Name(),
				"event":     e.Type,
				"target_id": e.TargetID,
			}).WithError(err).Warn("не удалось доставить событие")
		}
	}
}
