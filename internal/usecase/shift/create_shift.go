package shift

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type CreateShiftInput struct {
	Actor           entity.Actor
	OrganizationID  uuid.UUID
	Title           string
	Date            valueobject.Date
	StartTime       valueobject.ClockTime
	EndTime         valueobject.ClockTime
	BreakText       string
	RequiredRole    string
	HourlyRate      decimal.Decimal
	Urgent          bool
	UrgentSurcharge *decimal.Decimal
}

type CreateShiftUseCase struct {
	shiftRepo repository.ShiftRepository
}

func NewCreateShiftUseCase(shiftRepo repository.ShiftRepository) *CreateShiftUseCase {
	return &CreateShiftUseCase{shiftRepo: shiftRepo}
}

// Execute создаёт смену в статусе open. Перерыв принимается свободным текстом.
func (uc *CreateShiftUseCase) Execute(ctx context.Context, input CreateShiftInput) (*entity.Shift, error) {
	orgID, err := input.Actor.OrganizationFor(input.OrganizationID)
	if err != nil {
		return nil, err
	}

	parsed := valueobject.ParseDuration(input.BreakText)
	if err := parsed.Err(input.BreakText); err != nil {
		return nil, err
	}

	shift, err := entity.NewShift(entity.ShiftParams{
		OrganizationID:  orgID,
		CreatedBy:       input.Actor.UserID,
		Title:           input.Title,
		Date:            input.Date,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Break:           parsed.Value,
		RequiredRole:    input.RequiredRole,
		HourlyRate:      input.HourlyRate,
		Urgent:          input.Urgent,
		UrgentSurcharge: input.UrgentSurcharge,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.shiftRepo.Create(ctx, shift); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать смену")
	}

	logger.Log.WithFields(logrus.Fields{
		"shift_id":        shift.ID,
		"organization_id": shift.OrganizationID,
		"date":            shift.Date,
	}).Info("смена создана")
	return shift, nil
}

type GetShiftUseCase struct {
	shiftRepo repository.ShiftRepository
}

func NewGetShiftUseCase(shiftRepo repository.ShiftRepository) *GetShiftUseCase {
	return &GetShiftUseCase{shiftRepo: shiftRepo}
}

// Execute: смену видят владелец, администратор и назначенный исполнитель; открытую - любой кандидат.
func (uc *GetShiftUseCase) Execute(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Shift, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.CanManage(shift.OrganizationID) {
		return shift, nil
	}
	if actor.Role == entity.RoleCandidate {
		if shift.Status == valueobject.StatusOpen || (shift.AssigneeID != nil && *shift.AssigneeID == actor.UserID) {
			return shift, nil
		}
	}
	return nil, apperror.ErrForbidden
}
