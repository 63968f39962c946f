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

type SubmitApplicationInput struct {
	Actor      entity.Actor
	TargetKind valueobject.TargetKind
	TargetID   uuid.UUID
	Note       *string
}

type SubmitApplicationUseCase struct {
	applicationRepo repository.ApplicationRepository
	targetRepo      repository.TargetRepository
	publisher       event.Publisher
	metrics         *metrics.Collector
}

func NewSubmitApplicationUseCase(
	applicationRepo repository.ApplicationRepository,
	targetRepo repository.TargetRepository,
	publisher event.Publisher,
	m *metrics.Collector,
) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{
		applicationRepo: applicationRepo,
		targetRepo:      targetRepo,
		publisher:       publisher,
		metrics:         m,
	}
}

// Execute создаёт отклик в статусе pending. Проверка статуса цели здесь даёт понятную ошибку,
// окончательно её гарантирует условная вставка в хранилище.
func (uc *SubmitApplicationUseCase) Execute(ctx context.Context, input SubmitApplicationInput) (*entity.Application, error) {
	if err := input.Actor.RequireCandidate(); err != nil {
		return nil, err
	}

	target, err := uc.targetRepo.GetTarget(ctx, input.TargetKind, input.TargetID)
	if err != nil {
		return nil, err
	}
	if target.Status != valueobject.StatusOpen {
		return nil, apperror.Newf(apperror.ErrCodeTargetNotOpen, "%s в статусе %s не принимает отклики", target.Kind, target.Status)
	}

	app, err := entity.NewApplication(input.TargetKind, input.TargetID, input.Actor.UserID, input.Note)
	if err != nil {
		return nil, err
	}
	if err := uc.applicationRepo.Submit(ctx, app); err != nil {
		return nil, err
	}

	uc.metrics.Application(string(app.Status))
	logger.Log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"target_kind":    app.TargetKind,
		"target_id":      app.TargetID,
		"candidate_id":   app.CandidateID,
	}).Info("отклик создан")

	appID := app.ID
	uc.publisher.Publish(ctx, event.Event{
		Type:          event.ApplicationSubmitted,
		TargetKind:    app.TargetKind,
		TargetID:      app.TargetID,
		ApplicationID: &appID,
		Status:        string(app.Status),
		Recipients:    []uuid.UUID{target.OrganizationID},
	})
	return app, nil
}
