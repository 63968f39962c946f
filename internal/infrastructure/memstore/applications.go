package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type ApplicationRepo struct{ s *Store }

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

func (r *ApplicationRepo) Submit(_ context.Context, app *entity.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, err := r.s.target(app.TargetKind, app.TargetID)
	if err != nil {
		return err
	}
	if t.Status != vo.StatusOpen {
		return apperror.New(apperror.ErrCodeTargetNotOpen, "цель больше не принимает отклики")
	}
	for _, other := range r.s.apps {
		if other.TargetKind == app.TargetKind && other.TargetID == app.TargetID &&
			other.CandidateID == app.CandidateID && other.Status.IsActive() {
			return apperror.New(apperror.ErrCodeDuplicateApplication, "активный отклик на эту цель уже есть")
		}
	}
	r.s.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *ApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, apperror.ErrApplicationNotFound
	}
	return cloneApp(a), nil
}

func (r *ApplicationRepo) list(match func(*entity.Application) bool) []*entity.Application {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Application
	for _, a := range r.s.apps {
		if match(a) {
			out = append(out, cloneApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

func (r *ApplicationRepo) ListByTarget(_ context.Context, kind vo.TargetKind, targetID uuid.UUID) ([]*entity.Application, error) {
	return r.list(func(a *entity.Application) bool {
		return a.TargetKind == kind && a.TargetID == targetID
	}), nil
}

func (r *ApplicationRepo) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]*entity.Application, error) {
	return r.list(func(a *entity.Application) bool { return a.CandidateID == candidateID }), nil
}

func (r *ApplicationRepo) HasAccepted(_ context.Context, kind vo.TargetKind, targetID uuid.UUID) (bool, error) {
	return len(r.list(func(a *entity.Application) bool {
		return a.TargetKind == kind && a.TargetID == targetID && a.Status == vo.ApplicationAccepted
	})) > 0, nil
}

// Accept выполняется целиком под одной блокировкой: либо всё, либо ничего.
func (r *ApplicationRepo) Accept(_ context.Context, id uuid.UUID) (*repository.AcceptOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	app, ok := r.s.apps[id]
	if !ok {
		return nil, apperror.ErrApplicationNotFound
	}
	t, err := r.s.target(app.TargetKind, app.TargetID)
	if err != nil {
		return nil, err
	}
	if t.Status != vo.StatusOpen {
		return nil, concurrent
	}
	if app.Status != vo.ApplicationPending {
		return nil, apperror.New(apperror.ErrCodeAlreadyProcessed, "отклик уже обработан")
	}

	now := time.Now()
	out := &repository.AcceptOutcome{}
	for _, other := range r.s.apps {
		if other.ID == app.ID || other.TargetKind != app.TargetKind || other.TargetID != app.TargetID {
			continue
		}
		if other.Status == vo.ApplicationPending {
			other.Status, other.UpdatedAt = vo.ApplicationRejected, now
			out.RejectedIDs = append(out.RejectedIDs, other.ID)
			out.RejectedCandidates = append(out.RejectedCandidates, other.CandidateID)
		}
	}
	app.Status, app.UpdatedAt = vo.ApplicationAccepted, now
	r.s.fill(app.TargetKind, app.TargetID, app.CandidateID, now)

	filled, _ := r.s.target(app.TargetKind, app.TargetID)
	out.Application = cloneApp(app)
	out.Target = *filled
	return out, nil
}

func (r *ApplicationRepo) SetStatusIfPending(_ context.Context, id uuid.UUID, to vo.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return apperror.ErrApplicationNotFound
	}
	if a.Status != vo.ApplicationPending {
		return apperror.New(apperror.ErrCodeAlreadyProcessed, "отклик уже обработан")
	}
	a.Status, a.UpdatedAt = to, time.Now()
	return nil
}
