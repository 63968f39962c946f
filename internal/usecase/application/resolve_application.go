package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/metrics"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// RejectApplicationUseCase - отклонение организацией. Статус цели не меняется.
type RejectApplicationUseCase struct {
	applicationRepo repository.ApplicationRepository
	targetRepo      repository.TargetRepository
	publisher       event.Publisher
	metrics         *metrics.Collector
}

func NewRejectApplicationUseCase(
	applicationRepo repository.ApplicationRepository,
	targetRepo repository.TargetRepository,
	publisher event.Publisher,
	m *metrics.Collector,
) *RejectApplicationUseCase {
	return &RejectApplicationUseCase{applicationRepo: applicationRepo, targetRepo: targetRepo, publisher: publisher, metrics: m}
}

func (uc *RejectApplicationUseCase) Execute(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	target, err := uc.targetRepo.GetTarget(ctx, app.TargetKind, app.TargetID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(target.OrganizationID) {
		return nil, apperror.ErrForbidden
	}

	if err := resolve(ctx, uc.applicationRepo, app, valueobject.ApplicationRejected); err != nil {
		return nil, err
	}
	uc.metrics.Application(string(app.Status))

	appID := app.ID
	uc.publisher.Publish(ctx, event.Event{
		Type:          event.ApplicationRejected,
		TargetKind:    app.TargetKind,
		TargetID:      app.TargetID,
		ApplicationID: &appID,
		Status:        string(app.Status),
		Recipients:    []uuid.UUID{app.CandidateID},
	})
	return app, nil
}

// WithdrawApplicationUseCase - отзыв кандидатом, только из pending.
type WithdrawApplicationUseCase struct {
	applicationRepo repository.ApplicationRepository
	targetRepo      repository.TargetRepository
	publisher       event.Publisher
	metrics         *metrics.Collector
}

func NewWithdrawApplicationUseCase(
	applicationRepo repository.ApplicationRepository,
	targetRepo repository.TargetRepository,
	publisher event.Publisher,
	m *metrics.Collector,
) *WithdrawApplicationUseCase {
	return &WithdrawApplicationUseCase{applicationRepo: applicationRepo, targetRepo: targetRepo, publisher: publisher, metrics: m}
}

func (uc *WithdrawApplicationUseCase) Execute(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsOwnedBy(actor.UserID) {
		return nil, apperror.ErrForbidden
	}

	if err := resolve(ctx, uc.applicationRepo, app, valueobject.ApplicationWithdrawn); err != nil {
		return nil, err
	}
	uc.metrics.Application(string(app.Status))

	recipients := []uuid.UUID{}
	if target, err := uc.targetRepo.GetTarget(ctx, app.TargetKind, app.TargetID); err == nil {
		recipients = append(recipients, target.OrganizationID)
	}
	appID := app.ID
	uc.publisher.Publish(ctx, event.Event{
		Type:          event.ApplicationWithdrawn,
		TargetKind:    app.TargetKind,
		TargetID:      app.TargetID,
		ApplicationID: &appID,
		Status:        string(app.Status),
		Recipients:    recipients,
	})
	return app, nil
}

// resolve переводит отклик из pending условным обновлением. Предварительная проверка
// не атомарна с записью, поэтому результат определяет хранилище.
func resolve(ctx context.Context, repo repository.ApplicationRepository, app *entity.Application, to valueobject.ApplicationStatus) error {
	if !app.IsPending() {
		return apperror.Newf(apperror.ErrCodeAlreadyProcessed, "отклик уже в статусе %s", app.Status)
	}
	if err := repo.SetStatusIfPending(ctx, app.ID, to); err != nil {
		return err
	}
	app.Status = to

	logger.Log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"target_id":      app.TargetID,
		"status":         to,
	}).Info("статус отклика изменён")
	return nil
}
