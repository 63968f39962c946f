package shift

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

type DeleteShiftUseCase struct {
	shiftRepo repository.ShiftRepository
}

func NewDeleteShiftUseCase(shiftRepo repository.ShiftRepository) *DeleteShiftUseCase {
	return &DeleteShiftUseCase{shiftRepo: shiftRepo}
}

func (uc *DeleteShiftUseCase) Execute(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	shift, err := uc.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(shift.OrganizationID) {
		return apperror.ErrForbidden
	}
	if err := lifecycle.CanDelete(valueobject.TargetShift, shift.Status, shift.PayrollExported); err != nil {
		return err
	}
	if err := uc.shiftRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.WithField("shift_id", id).Info("смена удалена")
	return nil
}
