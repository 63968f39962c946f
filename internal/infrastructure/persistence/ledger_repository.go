package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type payrollRow struct {
	ID             uuid.UUID        `db:"id"`
	ShiftID        uuid.UUID        `db:"shift_id"`
	OrganizationID uuid.UUID        `db:"organization_id"`
	AssigneeID     uuid.UUID        `db:"assignee_id"`
	WorkDate       valueobject.Date `db:"work_date"`
	Hours          decimal.Decimal  `db:"hours"`
	Amount         decimal.Decimal  `db:"amount"`
	Currency       string           `db:"currency"`
	Fingerprint    string           `db:"fingerprint"`
	CreatedAt      time.Time        `db:"created_at"`
}

// PayrollLedger - таблица payroll_records в той же базе, что и shifts: запись и отметка смены
// фиксируются одной транзакцией. UNIQUE(shift_id) гарантирует одну запись на смену.
type PayrollLedger struct {
	db *sqlx.DB
}

var _ repository.PayrollLedger = (*PayrollLedger)(nil)

func NewPayrollLedger(db *sqlx.DB) *PayrollLedger {
	return &PayrollLedger{db: db}
}

// Commit блокирует строку смены, поэтому параллельная выгрузка ждёт фиксации и видит processed.
func (l *PayrollLedger) Commit(ctx context.Context, rec *entity.PayrollRecord) error {
	err := withTx(ctx, l.db, func(tx *sqlx.Tx) error {
		var cur struct {
			Status   string `db:"status"`
			Exported bool   `db:"payroll_exported"`
		}
		err := tx.GetContext(ctx, &cur,
			`SELECT status, payroll_exported FROM shifts WHERE id = $1 FOR UPDATE`, rec.ShiftID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrShiftNotFound
		}
		if err != nil {
			return dbError(err, "не удалось заблокировать смену")
		}
		switch {
		case cur.Exported || cur.Status == string(valueobject.StatusProcessed):
			return apperror.ErrAlreadyExported
		case cur.Status != string(valueobject.StatusCompleted):
			return apperror.ErrConcurrent
		}

		var recorded bool
		if err := tx.GetContext(ctx, &recorded,
			`SELECT EXISTS(SELECT 1 FROM payroll_records WHERE shift_id = $1)`, rec.ShiftID); err != nil {
			return dbError(err, "не удалось проверить зарплатный реестр")
		}
		if recorded {
			return apperror.ErrLedgerMismatch
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payroll_records (id, shift_id, organization_id, assignee_id, work_date, hours, amount, currency, fingerprint, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rec.ID, rec.ShiftID, rec.OrganizationID, rec.AssigneeID, rec.WorkDate, rec.Hours,
			rec.Amount.Amount, rec.Amount.Currency, rec.Fingerprint, rec.CreatedAt,
		); err != nil {
			return dbError(err, "не удалось записать в зарплатный реестр")
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE shifts SET status = 'processed', payroll_exported = TRUE, updated_at = NOW()
			WHERE id = $1`, rec.ShiftID); err != nil {
			return dbError(err, "не удалось отметить смену как выгруженную")
		}
		return nil
	})
	if isUniqueViolation(err) {
		return apperror.ErrAlreadyExported
	}
	return err
}

func (l *PayrollLedger) GetByShift(ctx context.Context, shiftID uuid.UUID) (*entity.PayrollRecord, error) {
	var row payrollRow
	err := l.db.GetContext(ctx, &row, `
		SELECT id, shift_id, organization_id, assignee_id, work_date, hours, amount, currency, fingerprint, created_at
		FROM payroll_records WHERE shift_id = $1`, shiftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "запись реестра не найдена")
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать зарплатный реестр")
	}
	return &entity.PayrollRecord{
		ID:             row.ID,
		ShiftID:        row.ShiftID,
		OrganizationID: row.OrganizationID,
		AssigneeID:     row.AssigneeID,
		WorkDate:       row.WorkDate,
		Hours:          row.Hours,
		Amount:         valueobject.Money{Amount: row.Amount, Currency: row.Currency},
		Fingerprint:    row.Fingerprint,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// CandidateDirectory ищет кандидатов, не помеченных удалёнными.
type CandidateDirectory struct {
	db *sqlx.DB
}

var _ repository.CandidateDirectory = (*CandidateDirectory)(nil)

func NewCandidateDirectory(db *sqlx.DB) *CandidateDirectory {
	return &CandidateDirectory{db: db}
}

func (d *CandidateDirectory) Exists(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	var ok bool
	err := d.db.GetContext(ctx, &ok,
		`SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1 AND deleted_at IS NULL)`, candidateID)
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить кандидата")
	}
	return ok, nil
}
