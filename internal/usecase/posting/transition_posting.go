package posting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/lifecycle"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/metrics"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type TransitionPostingInput struct {
	Actor     entity.Actor
	PostingID uuid.UUID
	To        valueobject.Status
	Now       time.Time
}

type TransitionPostingUseCase struct {
	postingRepo repository.PostingRepository
	candidates  repository.CandidateDirectory
	publisher   event.Publisher
	metrics     *metrics.Collector
	location    *time.Location
}

func NewTransitionPostingUseCase(
	postingRepo repository.PostingRepository,
	candidates repository.CandidateDirectory,
	publisher event.Publisher,
	m *metrics.Collector,
	location *time.Location,
) *TransitionPostingUseCase {
	if location == nil {
		location = time.UTC
	}
	return &TransitionPostingUseCase{
		postingRepo: postingRepo,
		candidates:  candidates,
		publisher:   publisher,
		metrics:     m,
		location:    location,
	}
}

func (uc *TransitionPostingUseCase) Execute(ctx context.Context, input TransitionPostingInput) (*entity.Posting, error) {
	posting, err := uc.postingRepo.GetByID(ctx, input.PostingID)
	if err != nil {
		return nil, err
	}
	if !input.Actor.CanManage(posting.OrganizationID) {
		return nil, apperror.ErrForbidden
	}
	if input.To == valueobject.StatusFilled {
		return nil, apperror.Wrap(&lifecycle.TransitionError{
			Kind: valueobject.TargetPosting, From: posting.Status, To: input.To,
			Reason: "исполнитель назначается принятием отклика",
		}, apperror.ErrCodeInvalidTransition, "вакансия заполняется только принятием отклика")
	}

	if err := uc.transition(ctx, posting, input.To, input.Now); err != nil {
		return nil, err
	}
	return posting, nil
}

func (uc *TransitionPostingUseCase) guard(ctx context.Context, posting *entity.Posting, to valueobject.Status, now time.Time) (lifecycle.Guard, error) {
	g := lifecycle.Guard{Now: now}
	if to != valueobject.StatusCompleted {
		return g, nil
	}

	intervals, err := posting.Intervals()
	if err != nil && !apperror.Is(err, apperror.ErrCodeEmptySchedule) {
		return g, err
	}
	g.LastScheduledEnd, g.HasSchedule = schedule.LastEnd(intervals, uc.location)

	if posting.AssigneeID != nil {
		ok, err := uc.candidates.Exists(ctx, *posting.AssigneeID)
		if err != nil {
			return g, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить исполнителя")
		}
		g.AssigneeResolvable = ok
	}
	return g, nil
}

func (uc *TransitionPostingUseCase) transition(ctx context.Context, posting *entity.Posting, to valueobject.Status, now time.Time) error {
	from := posting.Status
	g, err := uc.guard(ctx, posting, to, now)
	if err != nil {
		return err
	}
	if err := lifecycle.Check(valueobject.TargetPosting, from, to, g); err != nil {
		return err
	}
	if err := uc.postingRepo.UpdateStatus(ctx, posting.ID, from, to); err != nil {
		if apperror.IsRetryable(err) {
			uc.metrics.Conflict("posting_transition")
		}
		return err
	}
	// Уведомляем и исполнителя, которого снимает отмена.
	recipients := []uuid.UUID{posting.OrganizationID}
	if posting.AssigneeID != nil {
		recipients = append(recipients, *posting.AssigneeID)
	}
	posting.Status = to
	posting.UpdatedAt = time.Now()
	if to == valueobject.StatusCancelled {
		posting.AssigneeID = nil
	}

	uc.metrics.Transition(string(valueobject.TargetPosting), string(to))
	logger.Log.WithFields(logrus.Fields{
		"posting_id": posting.ID,
		"from":       from,
		"to":         to,
	}).Info("статус вакансии изменён")

	uc.publisher.Publish(ctx, event.Event{
		Type:       event.TargetStatusChanged,
		TargetKind: valueobject.TargetPosting,
		TargetID:   posting.ID,
		Status:     string(to),
		Recipients: recipients,
		Data:       map[string]any{"from": string(from)},
	})
	return nil
}

type Failure struct {
	ID     uuid.UUID          `json:"id"`
	Code   apperror.ErrorCode `json:"code"`
	Reason string             `json:"reason"`
}

type CompleteDueResult struct {
	Completed []uuid.UUID `json:"completed"`
	Pending   int         `json:"pending"`
	Failed    []Failure   `json:"failed"`
}

// CompleteDue завершает заполненные вакансии, последний отрезок которых уже закончился.
// Вакансия без расписания или с исчезнувшим исполнителем попадает в Failed.
func (uc *TransitionPostingUseCase) CompleteDue(ctx context.Context, now time.Time, limit int) (*CompleteDueResult, error) {
	filled, err := uc.postingRepo.ListByStatus(ctx, valueobject.StatusFilled, limit)
	if err != nil {
		return nil, err
	}

	res := &CompleteDueResult{Completed: []uuid.UUID{}, Failed: []Failure{}}
	for _, p := range filled {
		intervals, _ := p.Intervals()
		if end, ok := schedule.LastEnd(intervals, uc.location); ok && now.Before(end) {
			res.Pending++
			continue
		}
		if err := uc.transition(ctx, p, valueobject.StatusCompleted, now); err != nil {
			res.Failed = append(res.Failed, Failure{ID: p.ID, Code: apperror.CodeOf(err), Reason: err.Error()})
			continue
		}
		res.Completed = append(res.Completed, p.ID)
	}
	return res, nil
}
