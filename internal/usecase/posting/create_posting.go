package posting

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type CreatePostingInput struct {
	Actor              entity.Actor
	OrganizationID     uuid.UUID
	Title              string
	Description        string
	RequiredRole       string
	Location           string
	Period             schedule.Period
	Schedule           schedule.Definition
	ExcludeWeekends    bool
	HourlyRate         decimal.Decimal
	EstimatedHours     string
	SalaryDescription  string
	RequiredExperience []string
}

type CreatePostingUseCase struct {
	postingRepo repository.PostingRepository
}

func NewCreatePostingUseCase(postingRepo repository.PostingRepository) *CreatePostingUseCase {
	return &CreatePostingUseCase{postingRepo: postingRepo}
}

func (uc *CreatePostingUseCase) Execute(ctx context.Context, input CreatePostingInput) (*entity.Posting, error) {
	orgID, err := input.Actor.OrganizationFor(input.OrganizationID)
	if err != nil {
		return nil, err
	}

	posting, err := entity.NewPosting(entity.PostingParams{
		OrganizationID:     orgID,
		CreatedBy:          input.Actor.UserID,
		Title:              input.Title,
		Description:        input.Description,
		RequiredRole:       input.RequiredRole,
		Location:           input.Location,
		Period:             input.Period,
		Schedule:           input.Schedule,
		ExcludeWeekends:    input.ExcludeWeekends,
		HourlyRate:         input.HourlyRate,
		EstimatedHours:     input.EstimatedHours,
		SalaryDescription:  input.SalaryDescription,
		RequiredExperience: input.RequiredExperience,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.postingRepo.Create(ctx, posting); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать вакансию")
	}

	logger.Log.WithFields(logrus.Fields{
		"posting_id":      posting.ID,
		"organization_id": posting.OrganizationID,
		"period":          posting.Period.Start.String() + ".." + posting.Period.End.String(),
	}).Info("вакансия создана")
	return posting, nil
}

type GetPostingUseCase struct {
	postingRepo repository.PostingRepository
}

func NewGetPostingUseCase(postingRepo repository.PostingRepository) *GetPostingUseCase {
	return &GetPostingUseCase{postingRepo: postingRepo}
}

// Execute: правила видимости те же, что у смены.
func (uc *GetPostingUseCase) Execute(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Posting, error) {
	posting, err := uc.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.CanManage(posting.OrganizationID) {
		return posting, nil
	}
	if actor.Role == entity.RoleCandidate {
		if posting.Status == valueobject.StatusOpen || (posting.AssigneeID != nil && *posting.AssigneeID == actor.UserID) {
			return posting, nil
		}
	}
	return nil, apperror.ErrForbidden
}
