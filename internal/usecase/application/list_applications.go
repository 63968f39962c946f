package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type ListApplicationsUseCase struct {
	applicationRepo repository.ApplicationRepository
	targetRepo      repository.TargetRepository
}

func NewListApplicationsUseCase(applicationRepo repository.ApplicationRepository, targetRepo repository.TargetRepository) *ListApplicationsUseCase {
	return &ListApplicationsUseCase{applicationRepo: applicationRepo, targetRepo: targetRepo}
}

// ForTarget - отклики на цель, видны только организации-владельцу и администратору.
func (uc *ListApplicationsUseCase) ForTarget(ctx context.Context, actor entity.Actor, kind valueobject.TargetKind, targetID uuid.UUID) ([]*entity.Application, error) {
	target, err := uc.targetRepo.GetTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(target.OrganizationID) {
		return nil, apperror.ErrForbidden
	}
	return uc.applicationRepo.ListByTarget(ctx, kind, targetID)
}

func (uc *ListApplicationsUseCase) Mine(ctx context.Context, actor entity.Actor) ([]*entity.Application, error) {
	if err := actor.RequireCandidate(); err != nil {
		return nil, err
	}
	return uc.applicationRepo.ListByCandidate(ctx, actor.UserID)
}
