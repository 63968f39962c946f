package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/lifecycle"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/metrics"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Exporter выполняет переход completed -> processed вместе с записью в зарплатный реестр.
type Exporter interface {
	ExportShift(ctx context.Context, actor entity.Actor, shiftID uuid.UUID) (*entity.Shift, error)
}

type TransitionShiftInput struct {
	Actor   entity.Actor
	ShiftID uuid.UUID
	To      valueobject.Status
	Now     time.Time
}

type TransitionShiftUseCase struct {
	shiftRepo repository.ShiftRepository
	exporter  Exporter
	publisher event.Publisher
	metrics   *metrics.Collector
	location  *time.Location
}

func NewTransitionShiftUseCase(
	shiftRepo repository.ShiftRepository,
	exporter Exporter,
	publisher event.Publisher,
	m *metrics.Collector,
	location *time.Location,
) *TransitionShiftUseCase {
	if location == nil {
		location = time.UTC
	}
	return &TransitionShiftUseCase{shiftRepo: shiftRepo, exporter: exporter, publisher: publisher, metrics: m, location: location}
}

func (uc *TransitionShiftUseCase) Execute(ctx context.Context, input TransitionShiftInput) (*entity.Shift, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, input.ShiftID)
	if err != nil {
		return nil, err
	}
	if !input.Actor.CanManage(shift.OrganizationID) {
		return nil, apperror.ErrForbidden
	}

	switch input.To {
	case valueobject.StatusProcessed:
		// Финансовый переход возможен только через выгрузку в реестр.
		if uc.exporter == nil {
			return nil, apperror.New(apperror.ErrCodeInternal, "выгрузка в зарплату не настроена")
		}
		return uc.exporter.ExportShift(ctx, input.Actor, shift.ID)
	case valueobject.StatusFilled:
		return nil, apperror.Wrap(&lifecycle.TransitionError{
			Kind: valueobject.TargetShift, From: shift.Status, To: input.To,
			Reason: "исполнитель назначается принятием отклика",
		}, apperror.ErrCodeInvalidTransition, "смена заполняется только принятием отклика")
	}

	if err := uc.transition(ctx, shift, input.To, input.Now); err != nil {
		return nil, err
	}
	return shift, nil
}

func (uc *TransitionShiftUseCase) guard(shift *entity.Shift, now time.Time) lifecycle.Guard {
	return lifecycle.Guard{
		Now:                now,
		LastScheduledEnd:   shift.Interval().EndsAt(uc.location),
		HasSchedule:        true,
		AssigneeResolvable: shift.AssigneeID != nil,
		PayrollExported:    shift.PayrollExported,
	}
}

// transition проверяет переход и пишет его условным обновлением from -> to.
func (uc *TransitionShiftUseCase) transition(ctx context.Context, shift *entity.Shift, to valueobject.Status, now time.Time) error {
	from := shift.Status
	if err := lifecycle.Check(valueobject.TargetShift, from, to, uc.guard(shift, now)); err != nil {
		return err
	}
	if err := uc.shiftRepo.UpdateStatus(ctx, shift.ID, from, to); err != nil {
		if apperror.IsRetryable(err) {
			uc.metrics.Conflict("shift_transition")
		}
		return err
	}
	// Уведомляем и исполнителя, которого снимает отмена.
	recipients := []uuid.UUID{shift.OrganizationID}
	if shift.AssigneeID != nil {
		recipients = append(recipients, *shift.AssigneeID)
	}
	shift.Status = to
	shift.UpdatedAt = time.Now()
	if to == valueobject.StatusCancelled {
		shift.AssigneeID = nil
	}

	uc.metrics.Transition(string(valueobject.TargetShift), string(to))
	logger.Log.WithFields(logrus.Fields{
		"shift_id": shift.ID,
		"from":     from,
		"to":       to,
	}).Info("статус смены изменён")

	uc.publisher.Publish(ctx, event.Event{
		Type:       event.TargetStatusChanged,
		TargetKind: valueobject.TargetShift,
		TargetID:   shift.ID,
		Status:     string(to),
		Recipients: recipients,
		Data:       map[string]any{"from": string(from)},
	})
	return nil
}

// CompleteDueResult - итог автоматического завершения смен.
type CompleteDueResult struct {
	Completed []uuid.UUID `json:"completed"`
	Pending   int         `json:"pending"`
	Failed    []Failure   `json:"failed"`
}

type Failure struct {
	ID     uuid.UUID          `json:"id"`
	Code   apperror.ErrorCode `json:"code"`
	Reason string             `json:"reason"`
}

// CompleteDue переводит в completed заполненные смены, чьё время окончания уже прошло.
// now передаётся вызывающим, фонового планировщика нет.
func (uc *TransitionShiftUseCase) CompleteDue(ctx context.Context, now time.Time, limit int) (*CompleteDueResult, error) {
	filled, err := uc.shiftRepo.ListByStatus(ctx, valueobject.StatusFilled, limit)
	if err != nil {
		return nil, err
	}

	res := &CompleteDueResult{Completed: []uuid.UUID{}, Failed: []Failure{}}
	for _, shift := range filled {
		if now.Before(shift.Interval().EndsAt(uc.location)) {
			res.Pending++
			continue
		}
		if err := uc.transition(ctx, shift, valueobject.StatusCompleted, now); err != nil {
			res.Failed = append(res.Failed, Failure{ID: shift.ID, Code: apperror.CodeOf(err), Reason: err.Error()})
			continue
		}
		res.Completed = append(res.Completed, shift.ID)
	}
	return res, nil
}
