package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type Exported struct {
	ShiftID  uuid.UUID `json:"shift_id"`
	RecordID uuid.UUID `json:"record_id"`
	Amount   string    `json:"amount"`
}

type Failure struct {
	ShiftID uuid.UUID          `json:"shift_id"`
	Code    apperror.ErrorCode `json:"code"`
	Reason  string             `json:"reason"`
}

// BatchResult содержит достаточно деталей, чтобы повторить только неудавшиеся смены.
type BatchResult struct {
	Succeeded      []Exported `json:"succeeded"`
	Failed         []Failure  `json:"failed"`
	SucceededCount int        `json:"succeeded_count"`
	FailedCount    int        `json:"failed_count"`
}

func (r *BatchResult) FailedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ShiftID)
	}
	return ids
}

func (r *BatchResult) fail(id uuid.UUID, err error) {
	r.Failed = append(r.Failed, Failure{ShiftID: id, Code: apperror.CodeOf(err), Reason: err.Error()})
	r.FailedCount++
}

type ExportManyInput struct {
	Actor    entity.Actor
	ShiftIDs []uuid.UUID
}

// ExportManyUseCase выгружает смены независимо друг от друга: ошибка одной не откатывает и не блокирует остальные.
type ExportManyUseCase struct {
	shiftRepo repository.ShiftRepository
	exporter  *ExportShiftUseCase
	maxBatch  int
}

func NewExportManyUseCase(shiftRepo repository.ShiftRepository, exporter *ExportShiftUseCase, maxBatch int) *ExportManyUseCase {
	if maxBatch <= 0 {
		maxBatch = 200
	}
	return &ExportManyUseCase{shiftRepo: shiftRepo, exporter: exporter, maxBatch: maxBatch}
}

func (uc *ExportManyUseCase) Execute(ctx context.Context, input ExportManyInput) (*BatchResult, error) {
	if len(input.ShiftIDs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "не выбрано ни одной смены")
	}
	if len(input.ShiftIDs) > uc.maxBatch {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "за один раз можно выгрузить не более %d смен", uc.maxBatch)
	}
	orgFilter, err := scope(input.Actor)
	if err != nil {
		return nil, err
	}

	// Выборку сверяем со свежим списком: кэшированному списку доверять нельзя.
	eligible, err := uc.shiftRepo.ListEligibleForExport(ctx, orgFilter, 0)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить смены для выгрузки")
	}
	eligibleIDs := make([]uuid.UUID, 0, len(eligible))
	for _, s := range eligible {
		eligibleIDs = append(eligibleIDs, s.ID)
	}

	selection := NewSelection(input.ShiftIDs...)
	stale := selection.Prune(eligibleIDs)

	res := &BatchResult{Succeeded: []Exported{}, Failed: []Failure{}}
	for _, id := range stale {
		err := uc.exporter.Precheck(ctx, input.Actor, id)
		if err == nil {
			err = apperror.New(apperror.ErrCodeConcurrentModification, "смена стала доступна для выгрузки после чтения списка, повторите")
		}
		res.fail(id, err)
	}

	for _, id := range selection.IDs() {
		out, err := uc.exporter.Execute(ctx, input.Actor, id)
		if err != nil {
			res.fail(id, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, Exported{
			ShiftID:  id,
			RecordID: out.Record.ID,
			Amount:   out.Record.Amount.Amount.StringFixed(2),
		})
		res.SucceededCount++
	}

	logger.Log.WithFields(logrus.Fields{
		"requested": len(input.ShiftIDs),
		"succeeded": res.SucceededCount,
		"failed":    res.FailedCount,
		"pruned":    len(stale),
	}).Info("пакетная выгрузка завершена")
	return res, nil
}

// ListEligibleUseCase - смены, которые можно выгрузить: completed и ещё не выгруженные.
type ListEligibleUseCase struct {
	shiftRepo repository.ShiftRepository
	limit     int
}

func NewListEligibleUseCase(shiftRepo repository.ShiftRepository, limit int) *ListEligibleUseCase {
	return &ListEligibleUseCase{shiftRepo: shiftRepo, limit: limit}
}

func (uc *ListEligibleUseCase) Execute(ctx context.Context, actor entity.Actor) ([]*entity.Shift, error) {
	orgFilter, err := scope(actor)
	if err != nil {
		return nil, err
	}
	return uc.shiftRepo.ListEligibleForExport(ctx, orgFilter, uc.limit)
}

func scope(actor entity.Actor) (*uuid.UUID, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return nil, nil
	case entity.RoleOrganization:
		if actor.OrganizationID == uuid.Nil {
			return nil, apperror.ErrForbidden
		}
		id := actor.OrganizationID
		return &id, nil
	}
	return nil, apperror.ErrForbidden
}
