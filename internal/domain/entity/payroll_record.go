package entity

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

// PayrollRecord - неизменяемая запись во внешнем зарплатном реестре.
type PayrollRecord struct {
	ID             uuid.UUID
	ShiftID        uuid.UUID
	OrganizationID uuid.UUID
	AssigneeID     uuid.UUID
	WorkDate       valueobject.Date
	Hours          decimal.Decimal
	Amount         valueobject.Money
	Fingerprint    string
	CreatedAt      time.Time
}

func NewPayrollRecord(shift *Shift, hours decimal.Decimal, amount valueobject.Money) *PayrollRecord {
	var assignee uuid.UUID
	if shift.AssigneeID != nil {
		assignee = *shift.AssigneeID
	}
	rec := &PayrollRecord{
		ID:             uuid.New(),
		ShiftID:        shift.ID,
		OrganizationID: shift.OrganizationID,
		AssigneeID:     assignee,
		WorkDate:       shift.Date,
		Hours:          hours,
		Amount:         amount,
		CreatedAt:      time.Now(),
	}
	rec.Fingerprint = rec.ComputeFingerprint()
	return rec
}

// ComputeFingerprint хеширует содержательные поля записи, чтобы сверка с реестром выявляла расхождения.
func (r *PayrollRecord) ComputeFingerprint() string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		r.ShiftID, r.AssigneeID, r.WorkDate, r.Hours.StringFixed(2), r.Amount.Amount.StringFixed(2), r.Amount.Currency)
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
