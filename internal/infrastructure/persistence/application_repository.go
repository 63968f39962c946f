package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

const applicationColumns = `id, target_kind, target_id, candidate_id, status, note, submitted_at, updated_at`

type applicationRow struct {
	ID          uuid.UUID `db:"id"`
	TargetKind  string    `db:"target_kind"`
	TargetID    uuid.UUID `db:"target_id"`
	CandidateID uuid.UUID `db:"candidate_id"`
	Status      string    `db:"status"`
	Note        string    `db:"note"`
	SubmittedAt time.Time `db:"submitted_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r applicationRow) toEntity() (*entity.Application, error) {
	kind, err := valueobject.ParseTargetKind(r.TargetKind)
	if err != nil {
		return nil, err
	}
	status, err := valueobject.NewApplicationStatus(r.Status)
	if err != nil {
		return nil, err
	}
	a := &entity.Application{
		ID:          r.ID,
		TargetKind:  kind,
		TargetID:    r.TargetID,
		CandidateID: r.CandidateID,
		Status:      status,
		SubmittedAt: r.SubmittedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Note != "" {
		note := r.Note
		a.Note = &note
	}
	return a, nil
}

type targetRow struct {
	ID              uuid.UUID     `db:"id"`
	OrganizationID  uuid.UUID     `db:"organization_id"`
	Status          string        `db:"status"`
	AssigneeID      uuid.NullUUID `db:"assignee_id"`
	PayrollExported bool          `db:"payroll_exported"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (r targetRow) toEntity(kind valueobject.TargetKind) (*entity.Target, error) {
	status, err := valueobject.NewStatus(kind, r.Status)
	if err != nil {
		return nil, err
	}
	t := &entity.Target{
		Kind:            kind,
		ID:              r.ID,
		OrganizationID:  r.OrganizationID,
		Status:          status,
		PayrollExported: r.PayrollExported,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.AssigneeID.Valid {
		id := r.AssigneeID.UUID
		t.AssigneeID = &id
	}
	return t, nil
}

// getTarget читает цель; lock добавляет FOR SHARE или FOR UPDATE внутри транзакции.
func getTarget(ctx context.Context, q sqlx.QueryerContext, kind valueobject.TargetKind, id uuid.UUID, lock string) (*entity.Target, error) {
	table, err := targetTable(kind)
	if err != nil {
		return nil, err
	}
	exported := "FALSE"
	if kind == valueobject.TargetShift {
		exported = "payroll_exported"
	}
	query := `SELECT id, organization_id, status, assignee_id, ` + exported + ` AS payroll_exported, updated_at
		FROM ` + table + ` WHERE id = $1 ` + lock

	var row targetRow
	err = sqlx.GetContext(ctx, q, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		if kind == valueobject.TargetShift {
			return nil, apperror.ErrShiftNotFound
		}
		return nil, apperror.ErrPostingNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить цель отклика")
	}
	return row.toEntity(kind)
}

type TargetRepository struct {
	db *sqlx.DB
}

var _ repository.TargetRepository = (*TargetRepository)(nil)

func NewTargetRepository(db *sqlx.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

func (r *TargetRepository) GetTarget(ctx context.Context, kind valueobject.TargetKind, id uuid.UUID) (*entity.Target, error) {
	return getTarget(ctx, r.db, kind, id, "")
}

type ApplicationRepository struct {
	db *sqlx.DB
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Submit блокирует цель FOR SHARE: параллельное принятие (FOR UPDATE) дождётся вставки или
// наоборот, так что отклик не появится у уже заполненной цели.
func (r *ApplicationRepository) Submit(ctx context.Context, app *entity.Application) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		target, err := getTarget(ctx, tx, app.TargetKind, app.TargetID, "FOR SHARE")
		if err != nil {
			return err
		}
		if target.Status != valueobject.StatusOpen {
			return apperror.New(apperror.ErrCodeTargetNotOpen, "цель больше не принимает отклики")
		}

		note := ""
		if app.Note != nil {
			note = *app.Note
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications (`+applicationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			app.ID, string(app.TargetKind), app.TargetID, app.CandidateID, string(app.Status),
			note, app.SubmittedAt, app.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeDuplicateApplication, "активный отклик на эту цель уже есть")
		}
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить отклик")
		}
		return nil
	})
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return getApplication(ctx, r.db, id, "")
}

func getApplication(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, lock string) (*entity.Application, error) {
	var row applicationRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 `+lock, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrApplicationNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклик")
	}
	return row.toEntity()
}

func (r *ApplicationRepository) ListByTarget(ctx context.Context, kind valueobject.TargetKind, targetID uuid.UUID) ([]*entity.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE target_kind = $1 AND target_id = $2 ORDER BY submitted_at`, string(kind), targetID)
}

func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*entity.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE candidate_id = $1 ORDER BY submitted_at`, candidateID)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Application, error) {
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклики")
	}
	out := make([]*entity.Application, 0, len(rows))
	for _, row := range rows {
		a, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *ApplicationRepository) HasAccepted(ctx context.Context, kind valueobject.TargetKind, targetID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS(
		SELECT 1 FROM applications WHERE target_kind = $1 AND target_id = $2 AND status = 'accepted')`,
		string(kind), targetID)
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить принятые отклики")
	}
	return ok, nil
}

// Accept: остальные pending отклоняются, цель переводится open -> filled. Всё в одной транзакции.
// Порядок блокировок: цель, затем отклик. Параллельные Accept по одной цели встают в очередь
// на строке цели и не держат отклики друг друга.
func (r *ApplicationRepository) Accept(ctx context.Context, id uuid.UUID) (*repository.AcceptOutcome, error) {
	out := &repository.AcceptOutcome{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ref, err := getApplication(ctx, tx, id, "")
		if err != nil {
			return err
		}
		target, err := getTarget(ctx, tx, ref.TargetKind, ref.TargetID, "FOR UPDATE")
		if err != nil {
			return err
		}
		app, err := getApplication(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		if target.Status != valueobject.StatusOpen {
			return apperror.ErrConcurrent
		}
		if app.Status != valueobject.ApplicationPending {
			return apperror.New(apperror.ErrCodeAlreadyProcessed, "отклик уже обработан")
		}

		var rejected []struct {
			ID          uuid.UUID `db:"id"`
			CandidateID uuid.UUID `db:"candidate_id"`
		}
		err = tx.SelectContext(ctx, &rejected, `
			UPDATE applications SET status = 'rejected', updated_at = NOW()
			WHERE target_kind = $1 AND target_id = $2 AND status = 'pending' AND id <> $3
			RETURNING id, candidate_id`,
			string(app.TargetKind), app.TargetID, app.ID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить остальные отклики")
		}
		for _, rj := range rejected {
			out.RejectedIDs = append(out.RejectedIDs, rj.ID)
			out.RejectedCandidates = append(out.RejectedCandidates, rj.CandidateID)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE applications SET status = 'accepted', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
			app.ID); err != nil {
			if isUniqueViolation(err) {
				return apperror.ErrConcurrent
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять отклик")
		}

		table, _ := targetTable(app.TargetKind)
		res, err := tx.ExecContext(ctx, `UPDATE `+table+`
			SET status = 'filled', assignee_id = $2, updated_at = NOW()
			WHERE id = $1 AND status = 'open'`, app.TargetID, app.CandidateID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заполнить цель")
		}
		if n, err := rowsAffected(res); err != nil {
			return err
		} else if n != 1 {
			return apperror.ErrConcurrent
		}

		filled, err := getTarget(ctx, tx, app.TargetKind, app.TargetID, "")
		if err != nil {
			return err
		}
		app.Status = valueobject.ApplicationAccepted
		app.UpdatedAt = filled.UpdatedAt
		out.Application = app
		out.Target = *filled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, to valueobject.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		id, string(to))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить отклик")
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperror.New(apperror.ErrCodeAlreadyProcessed, "отклик уже обработан")
}
