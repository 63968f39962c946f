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

const shiftColumns = `id, organization_id, title, work_date, start_time, end_time, break_duration, required_role,
	hourly_rate, urgent, urgent_surcharge, status, assignee_id, payroll_exported, created_by, created_at, updated_at`

type shiftRow struct {
	ID              uuid.UUID             `db:"id"`
	OrganizationID  uuid.UUID             `db:"organization_id"`
	Title           string                `db:"title"`
	WorkDate        valueobject.Date      `db:"work_date"`
	StartTime       valueobject.ClockTime `db:"start_time"`
	EndTime         valueobject.ClockTime `db:"end_time"`
	BreakDuration   sql.NullString        `db:"break_duration"`
	RequiredRole    string                `db:"required_role"`
	HourlyRate      decimal.Decimal       `db:"hourly_rate"`
	Urgent          bool                  `db:"urgent"`
	UrgentSurcharge decimal.NullDecimal   `db:"urgent_surcharge"`
	Status          string                `db:"status"`
	AssigneeID      uuid.NullUUID         `db:"assignee_id"`
	PayrollExported bool                  `db:"payroll_exported"`
	CreatedBy       uuid.NullUUID         `db:"created_by"`
	CreatedAt       time.Time             `db:"created_at"`
	UpdatedAt       time.Time             `db:"updated_at"`
}

func (r shiftRow) toEntity() (*entity.Shift, error) {
	status, err := valueobject.NewStatus(valueobject.TargetShift, r.Status)
	if err != nil {
		return nil, err
	}
	s := &entity.Shift{
		ID:              r.ID,
		OrganizationID:  r.OrganizationID,
		Title:           r.Title,
		Date:            r.WorkDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		RequiredRole:    r.RequiredRole,
		HourlyRate:      r.HourlyRate,
		Urgent:          r.Urgent,
		Status:          status,
		PayrollExported: r.PayrollExported,
		CreatedBy:       r.CreatedBy.UUID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.BreakDuration.Valid {
		span, err := valueobject.ParseCanonicalSpan(r.BreakDuration.String)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждена длительность перерыва смены "+r.ID.String())
		}
		s.Break = &span
	}
	if r.UrgentSurcharge.Valid {
		v := r.UrgentSurcharge.Decimal
		s.UrgentSurcharge = &v
	}
	if r.AssigneeID.Valid {
		id := r.AssigneeID.UUID
		s.AssigneeID = &id
	}
	return s, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

type ShiftRepository struct {
	db *sqlx.DB
}

var _ repository.ShiftRepository = (*ShiftRepository)(nil)

func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) Create(ctx context.Context, s *entity.Shift) error {
	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	var surcharge decimal.NullDecimal
	if s.UrgentSurcharge != nil {
		surcharge = decimal.NullDecimal{Decimal: *s.UrgentSurcharge, Valid: true}
	}
	var createdBy uuid.NullUUID
	if s.CreatedBy != uuid.Nil {
		createdBy = uuid.NullUUID{UUID: s.CreatedBy, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.OrganizationID, s.Title, s.Date, s.StartTime, s.EndTime, s.Break, s.RequiredRole,
		s.HourlyRate, s.Urgent, surcharge, string(s.Status), nullableUUID(s.AssigneeID), s.PayrollExported,
		createdBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить смену")
	}
	return nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	var row shiftRow
	err := r.db.GetContext(ctx, &row, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrShiftNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить смену")
	}
	return row.toEntity()
}

func (r *ShiftRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shifts
		 SET status = $3, assignee_id = CASE WHEN $4 THEN NULL ELSE assignee_id END, updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), to == valueobject.StatusCancelled)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус смены")
	}
	return r.expectOne(ctx, res, id)
}

func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM shifts
		WHERE id = $1 AND status IN ('open', 'cancelled') AND payroll_exported = FALSE`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить смену")
	}
	return r.expectOne(ctx, res, id)
}

// expectOne различает отсутствующую смену и проигранное условное обновление.
func (r *ShiftRepository) expectOne(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM shifts WHERE id = $1)`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить смену")
	}
	if !exists {
		return apperror.ErrShiftNotFound
	}
	return apperror.ErrConcurrent
}

func (r *ShiftRepository) ListEligibleForExport(ctx context.Context, organizationID *uuid.UUID, limit int) ([]*entity.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE status = 'completed' AND payroll_exported = FALSE
		  AND ($1::uuid IS NULL OR organization_id = $1)
		ORDER BY work_date DESC, id
		LIMIT NULLIF($2, 0)
	`
	return r.list(ctx, query, nullableUUID(organizationID), limit)
}

func (r *ShiftRepository) ListByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*entity.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE status = $1
		ORDER BY work_date, start_time, id
		LIMIT NULLIF($2, 0)
	`
	return r.list(ctx, query, string(status), limit)
}

func (r *ShiftRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Shift, error) {
	var rows []shiftRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список смен")
	}
	out := make([]*entity.Shift, 0, len(rows))
	for _, row := range rows {
		s, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
