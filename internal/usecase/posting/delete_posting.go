package posting

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/lifecycle"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type DeletePostingUseCase struct {
	postingRepo repository.PostingRepository
}

func NewDeletePostingUseCase(postingRepo repository.PostingRepository) *DeletePostingUseCase {
	return &DeletePostingUseCase{postingRepo: postingRepo}
}

func (uc *DeletePostingUseCase) Execute(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	posting, err := uc.postingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(posting.OrganizationID) {
		return apperror.ErrForbidden
	}
	if err := lifecycle.CanDelete(valueobject.TargetPosting, posting.Status, false); err != nil {
		return err
	}
	if err := uc.postingRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.WithField("posting_id", id).Info("вакансия удалена")
	return nil
}
