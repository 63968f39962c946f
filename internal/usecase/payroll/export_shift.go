package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/lifecycle"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/metrics"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type ExportResult struct {
	Shift  *entity.Shift
	Record *entity.PayrollRecord
	Pay    *compensation.Result
}

// ExportShiftUseCase выгружает одну завершённую смену. Реестр лежит в той же базе, поэтому
// запись и переход completed -> processed фиксируются вместе через PayrollLedger.Commit.
// Проигравший параллельный запрос получает ALREADY_PROCESSED. PARTIAL_EXPORT_INCONSISTENCY
// остаётся только для записи, появившейся в обход Commit, и никогда не повторяется автоматически.
type ExportShiftUseCase struct {
	shiftRepo  repository.ShiftRepository
	ledger     repository.PayrollLedger
	calculator *compensation.Calculator
	publisher  event.Publisher
	metrics    *metrics.Collector
}

func NewExportShiftUseCase(
	shiftRepo repository.ShiftRepository,
	ledger repository.PayrollLedger,
	calculator *compensation.Calculator,
	publisher event.Publisher,
	m *metrics.Collector,
) *ExportShiftUseCase {
	return &ExportShiftUseCase{
		shiftRepo:  shiftRepo,
		ledger:     ledger,
		calculator: calculator,
		publisher:  publisher,
		metrics:    m,
	}
}

func (uc *ExportShiftUseCase) Execute(ctx context.Context, actor entity.Actor, shiftID uuid.UUID) (*ExportResult, error) {
	shift, err := uc.load(ctx, actor, shiftID)
	if err != nil {
		uc.metrics.Export(string(apperror.CodeOf(err)))
		return nil, err
	}

	res, err := uc.export(ctx, shift)
	if err != nil {
		uc.metrics.Export(string(apperror.CodeOf(err)))
		logger.Log.WithField("shift_id", shiftID).WithError(err).Warn("выгрузка смены не выполнена")
		return nil, err
	}
	uc.metrics.Export("ok")
	return res, nil
}

// ExportShift позволяет статусной машине смены делегировать переход в processed.
func (uc *ExportShiftUseCase) ExportShift(ctx context.Context, actor entity.Actor, shiftID uuid.UUID) (*entity.Shift, error) {
	res, err := uc.Execute(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	return res.Shift, nil
}

// Precheck возвращает причину, по которой смену нельзя выгрузить, без записи в реестр.
func (uc *ExportShiftUseCase) Precheck(ctx context.Context, actor entity.Actor, shiftID uuid.UUID) error {
	shift, err := uc.load(ctx, actor, shiftID)
	if err != nil {
		return err
	}
	return lifecycle.Check(valueobject.TargetShift, shift.Status, valueobject.StatusProcessed, lifecycle.Guard{PayrollExported: shift.PayrollExported})
}

func (uc *ExportShiftUseCase) load(ctx context.Context, actor entity.Actor, shiftID uuid.UUID) (*entity.Shift, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(shift.OrganizationID) {
		return nil, apperror.ErrForbidden
	}
	return shift, nil
}

func (uc *ExportShiftUseCase) export(ctx context.Context, shift *entity.Shift) (*ExportResult, error) {
	if err := lifecycle.Check(valueobject.TargetShift, shift.Status, valueobject.StatusProcessed,
		lifecycle.Guard{PayrollExported: shift.PayrollExported}); err != nil {
		return nil, err
	}
	if shift.AssigneeID == nil {
		return nil, apperror.New(apperror.ErrCodeInternal, "у завершённой смены нет исполнителя")
	}

	pay, err := uc.calculator.Compute(compensation.ForShift(shift))
	if err != nil {
		return nil, err
	}
	amount, err := valueobject.NewMoney(pay.TotalPay, pay.Currency)
	if err != nil {
		return nil, err
	}

	rec := entity.NewPayrollRecord(shift, pay.Hours, amount)
	if err := uc.ledger.Commit(ctx, rec); err != nil {
		if !apperror.Is(err, apperror.ErrCodePartialExportInconsistency) {
			return nil, err
		}
		existing, getErr := uc.ledger.GetByShift(ctx, shift.ID)
		if getErr != nil {
			existing = rec
		}
		return nil, uc.inconsistent(ctx, shift, existing, err)
	}
	shift.Status = valueobject.StatusProcessed
	shift.PayrollExported = true

	logger.Log.WithFields(logrus.Fields{
		"shift_id":    shift.ID,
		"record_id":   rec.ID,
		"amount":      rec.Amount.String(),
		"assignee_id": rec.AssigneeID,
	}).Info("смена выгружена в зарплату")

	uc.publisher.Publish(ctx, event.Event{
		Type:       event.PayrollExported,
		TargetKind: valueobject.TargetShift,
		TargetID:   shift.ID,
		Status:     string(valueobject.StatusProcessed),
		Recipients: []uuid.UUID{shift.OrganizationID, rec.AssigneeID},
		Data:       map[string]any{"record_id": rec.ID.String(), "amount": rec.Amount.Amount.StringFixed(2)},
	})
	return &ExportResult{Shift: shift, Record: rec, Pay: pay}, nil
}

func (uc *ExportShiftUseCase) inconsistent(ctx context.Context, shift *entity.Shift, rec *entity.PayrollRecord, cause error) error {
	uc.metrics.PartialInconsistency()
	logger.Log.WithFields(logrus.Fields{
		"shift_id":    shift.ID,
		"record_id":   rec.ID,
		"fingerprint": rec.Fingerprint,
	}).WithError(cause).Error("запись в реестре есть, а смена не отмечена как выгруженная, нужна ручная сверка")

	uc.publisher.Publish(ctx, event.Event{
		Type:       event.PayrollInconsistent,
		TargetKind: valueobject.TargetShift,
		TargetID:   shift.ID,
		Recipients: []uuid.UUID{shift.OrganizationID},
		Data:       map[string]any{"record_id": rec.ID.String()},
	})
	return apperror.Wrap(cause, apperror.ErrCodePartialExportInconsistency,
		"запись реестра "+rec.ID.String()+" существует, но смена не отмечена как выгруженная")
}
