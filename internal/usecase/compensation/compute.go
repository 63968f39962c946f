package compensation

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// ComputeUseCase считает оплату смены или вакансии по её расписанию.
type ComputeUseCase struct {
	shiftRepo   repository.ShiftRepository
	postingRepo repository.PostingRepository
	calculator  *domain.Calculator
	cache       *Cache
}

func NewComputeUseCase(
	shiftRepo repository.ShiftRepository,
	postingRepo repository.PostingRepository,
	calculator *domain.Calculator,
	cache *Cache,
) *ComputeUseCase {
	return &ComputeUseCase{shiftRepo: shiftRepo, postingRepo: postingRepo, calculator: calculator, cache: cache}
}

func (uc *ComputeUseCase) Execute(ctx context.Context, actor entity.Actor, kind valueobject.TargetKind, id uuid.UUID) (*domain.Result, error) {
	switch kind {
	case valueobject.TargetShift:
		shift, err := uc.shiftRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canView(actor, shift.OrganizationID, shift.AssigneeID, shift.Status) {
			return nil, apperror.ErrForbidden
		}
		return uc.cached(cacheKey(kind, id, shift.UpdatedAt), func() (domain.Input, error) {
			return domain.ForShift(shift), nil
		})

	case valueobject.TargetPosting:
		posting, err := uc.postingRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canView(actor, posting.OrganizationID, posting.AssigneeID, posting.Status) {
			return nil, apperror.ErrForbidden
		}
		return uc.cached(cacheKey(kind, id, posting.UpdatedAt), func() (domain.Input, error) {
			in, err := domain.ForPosting(posting)
			if apperror.Is(err, apperror.ErrCodeEmptySchedule) {
				return in, domain.ErrNotComputable
			}
			return in, err
		})
	}
	return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип цели")
}

func (uc *ComputeUseCase) cached(key string, input func() (domain.Input, error)) (*domain.Result, error) {
	if res, ok := uc.cache.Get(key); ok {
		return res, nil
	}
	in, err := input()
	if err != nil {
		return nil, err
	}
	res, err := uc.calculator.Compute(in)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(key, res)
	return res, nil
}

func canView(actor entity.Actor, orgID uuid.UUID, assignee *uuid.UUID, status valueobject.Status) bool {
	if actor.CanManage(orgID) {
		return true
	}
	if actor.Role != entity.RoleCandidate {
		return false
	}
	return status == valueobject.StatusOpen || (assignee != nil && *assignee == actor.UserID)
}
