package application

import (
	"context"

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

type AcceptApplicationUseCase struct {
	applicationRepo repository.ApplicationRepository
	targetRepo      repository.TargetRepository
	publisher       event.Publisher
	metrics         *metrics.Collector
}

func NewAcceptApplicationUseCase(
	applicationRepo repository.ApplicationRepository,
	targetRepo repository.TargetRepository,
	publisher event.Publisher,
	m *metrics.Collector,
) *AcceptApplicationUseCase {
	return &AcceptApplicationUseCase{
		applicationRepo: applicationRepo,
		targetRepo:      targetRepo,
		publisher:       publisher,
		metrics:         m,
	}
}

// Execute принимает отклик. При CONCURRENT_MODIFICATION делается ровно одна повторная
// попытка со свежим состоянием.
func (uc *AcceptApplicationUseCase) Execute(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*repository.AcceptOutcome, error) {
	outcome, err := uc.attempt(ctx, actor, applicationID)
	if apperror.IsRetryable(err) {
		uc.metrics.Conflict("accept")
		logger.Log.WithField("application_id", applicationID).WithError(err).Warn("принятие отклика: конфликт, повторяем со свежим состоянием")
		outcome, err = uc.attempt(ctx, actor, applicationID)
		if apperror.IsRetryable(err) {
			uc.metrics.Conflict("accept")
		}
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.Application(string(valueobject.ApplicationAccepted))
	uc.metrics.AutoRejected(len(outcome.RejectedIDs))
	uc.metrics.Transition(string(outcome.Target.Kind), string(outcome.Target.Status))
	logger.Log.WithFields(logrus.Fields{
		"application_id": outcome.Application.ID,
		"target_kind":    outcome.Target.Kind,
		"target_id":      outcome.Target.ID,
		"candidate_id":   outcome.Application.CandidateID,
		"auto_rejected":  len(outcome.RejectedIDs),
	}).Info("отклик принят")

	uc.notify(ctx, outcome)
	return outcome, nil
}

func (uc *AcceptApplicationUseCase) attempt(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*repository.AcceptOutcome, error) {
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
	if !app.IsPending() {
		return nil, apperror.Newf(apperror.ErrCodeAlreadyProcessed, "отклик уже в статусе %s", app.Status)
	}
	if err := lifecycle.Check(target.Kind, target.Status, valueobject.StatusFilled, lifecycle.Guard{HasAcceptedApplication: true}); err != nil {
		return nil, err
	}

	return uc.applicationRepo.Accept(ctx, applicationID)
}

func (uc *AcceptApplicationUseCase) notify(ctx context.Context, outcome *repository.AcceptOutcome) {
	app := outcome.Application
	appID := app.ID
	uc.publisher.Publish(ctx, event.Event{
		Type:          event.ApplicationAccepted,
		TargetKind:    app.TargetKind,
		TargetID:      app.TargetID,
		ApplicationID: &appID,
		Status:        string(valueobject.ApplicationAccepted),
		Recipients:    []uuid.UUID{app.CandidateID, outcome.Target.OrganizationID},
	})
	for i, id := range outcome.RejectedIDs {
		rejectedID := id
		uc.publisher.Publish(ctx, event.Event{
			Type:          event.ApplicationRejected,
			TargetKind:    app.TargetKind,
			TargetID:      app.TargetID,
			ApplicationID: &rejectedID,
			Status:        string(valueobject.ApplicationRejected),
			Recipients:    []uuid.UUID{outcome.RejectedCandidates[i]},
			Data:          map[string]any{"reason": "filled"},
		})
	}
	uc.publisher.Publish(ctx, event.Event{
		Type:       event.TargetStatusChanged,
		TargetKind: outcome.Target.Kind,
		TargetID:   outcome.Target.ID,
		Status:     string(outcome.Target.Status),
		Recipients: []uuid.UUID{outcome.Target.OrganizationID},
	})
}
