package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/payroll"
)

type ExportManyRequest struct {
	ShiftIDs []uuid.UUID `json:"shift_ids" binding:"required"`
}

type PayrollRecordResponse struct {
	ID          uuid.UUID         `json:"id"`
	ShiftID     uuid.UUID         `json:"shift_id"`
	AssigneeID  uuid.UUID         `json:"assignee_id"`
	WorkDate    valueobject.Date  `json:"work_date"`
	Hours       decimal.Decimal   `json:"hours"`
	Amount      valueobject.Money `json:"amount"`
	Fingerprint string            `json:"fingerprint"`
	CreatedAt   time.Time         `json:"created_at"`
}

type ExportResponse struct {
	Shift        ShiftResponse         `json:"shift"`
	Record       PayrollRecordResponse `json:"record"`
	Compensation *compensation.Result  `json:"compensation"`
}

func ToPayrollRecordResponse(r *entity.PayrollRecord) PayrollRecordResponse {
	return PayrollRecordResponse{
		ID:          r.ID,
		ShiftID:     r.ShiftID,
		AssigneeID:  r.AssigneeID,
		WorkDate:    r.WorkDate,
		Hours:       r.Hours,
		Amount:      r.Amount,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
	}
}

func ToExportResponse(res *payroll.ExportResult) ExportResponse {
	return ExportResponse{
		Shift:        ToShiftResponse(res.Shift),
		Record:       ToPayrollRecordResponse(res.Record),
		Compensation: res.Pay,
	}
}
