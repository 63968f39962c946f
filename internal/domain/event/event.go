// Package event описывает доменные события, на которые подписана доставка уведомлений.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

type Type string

const (
	ApplicationSubmitted Type = "application.submitted"
	ApplicationAccepted  Type = "application.accepted"
	ApplicationRejected  Type = "application.rejected"
	ApplicationWithdrawn Type = "application.withdrawn"
	TargetStatusChanged  Type = "target.status_changed"
	PayrollExported      Type = "payroll.exported"
	PayrollInconsistent  Type = "payroll.inconsistent"
)

// Event публикуется после того, как изменение состояния зафиксировано.
// Recipients - пользователи и организации, которым событие доставляется через websocket.
type Event struct {
	Type          Type                   `json:"type"`
	TargetKind    valueobject.TargetKind `json:"target_kind"`
	TargetID      uuid.UUID              `json:"target_id"`
	ApplicationID *uuid.UUID             `json:"application_id,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Recipients    []uuid.UUID            `json:"-"`
	Data          map[string]any         `json:"data,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop используется, когда доставка не настроена.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
