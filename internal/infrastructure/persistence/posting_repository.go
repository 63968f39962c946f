package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

const postingColumns = `id, organization_id, title, description, required_role, location, period_start, period_end,
	schedule, exclude_weekends, hourly_rate, estimated_hours, salary_description, required_experience,
	status, assignee_id, created_by, created_at, updated_at`

type postingRow struct {
	ID                 uuid.UUID        `db:"id"`
	OrganizationID     uuid.UUID        `db:"organization_id"`
	Title              string           `db:"title"`
	Description        string           `db:"description"`
	RequiredRole       string           `db:"required_role"`
	Location           string           `db:"location"`
	PeriodStart        valueobject.Date `db:"period_start"`
	PeriodEnd          valueobject.Date `db:"period_end"`
	Schedule           []byte           `db:"schedule"`
	ExcludeWeekends    bool             `db:"exclude_weekends"`
	HourlyRate         decimal.Decimal  `db:"hourly_rate"`
	EstimatedHours     string           `db:"estimated_hours"`
	SalaryDescription  string           `db:"salary_description"`
	RequiredExperience pq.StringArray   `db:"required_experience"`
	Status             string           `db:"status"`
	AssigneeID         uuid.NullUUID    `db:"assignee_id"`
	CreatedBy          uuid.NullUUID    `db:"created_by"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

func (r postingRow) toEntity() (*entity.Posting, error) {
	status, err := valueobject.NewStatus(valueobject.TargetPosting, r.Status)
	if err != nil {
		return nil, err
	}
	var def schedule.Definition
	if len(r.Schedule) > 0 {
		if err := json.Unmarshal(r.Schedule, &def); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждено расписание вакансии "+r.ID.String())
		}
	}
	p := &entity.Posting{
		ID:                 r.ID,
		OrganizationID:     r.OrganizationID,
		Title:              r.Title,
		Description:        r.Description,
		RequiredRole:       r.RequiredRole,
		Location:           r.Location,
		Period:             schedule.Period{Start: r.PeriodStart, End: r.PeriodEnd},
		Schedule:           def,
		ExcludeWeekends:    r.ExcludeWeekends,
		HourlyRate:         r.HourlyRate,
		EstimatedHours:     r.EstimatedHours,
		SalaryDescription:  r.SalaryDescription,
		RequiredExperience: []string(r.RequiredExperience),
		Status:             status,
		CreatedBy:          r.CreatedBy.UUID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.AssigneeID.Valid {
		id := r.AssigneeID.UUID
		p.AssigneeID = &id
	}
	return p, nil
}

type PostingRepository struct {
	db *sqlx.DB
}

var _ repository.PostingRepository = (*PostingRepository)(nil)

func NewPostingRepository(db *sqlx.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

func (r *PostingRepository) Create(ctx context.Context, p *entity.Posting) error {
	def, err := json.Marshal(p.Schedule)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать расписание")
	}
	var createdBy uuid.NullUUID
	if p.CreatedBy != uuid.Nil {
		createdBy = uuid.NullUUID{UUID: p.CreatedBy, Valid: true}
	}
	experience := p.RequiredExperience
	if experience == nil {
		experience = []string{}
	}

	query := `
		INSERT INTO postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OrganizationID, p.Title, p.Description, p.RequiredRole, p.Location,
		p.Period.Start, p.Period.End, string(def), p.ExcludeWeekends, p.HourlyRate,
		p.EstimatedHours, p.SalaryDescription, pq.Array(experience),
		string(p.Status), nullableUUID(p.AssigneeID), createdBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить вакансию")
	}
	return nil
}

func (r *PostingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Posting, error) {
	var row postingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+postingColumns+` FROM postings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrPostingNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить вакансию")
	}
	return row.toEntity()
}

func (r *PostingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE postings
		 SET status = $3, assignee_id = CASE WHEN $4 THEN NULL ELSE assignee_id END, updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), to == valueobject.StatusCancelled)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус вакансии")
	}
	return r.expectOne(ctx, res, id)
}

func (r *PostingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM postings WHERE id = $1 AND status IN ('open', 'cancelled')`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить вакансию")
	}
	return r.expectOne(ctx, res, id)
}

func (r *PostingRepository) expectOne(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM postings WHERE id = $1)`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить вакансию")
	}
	if !exists {
		return apperror.ErrPostingNotFound
	}
	return apperror.ErrConcurrent
}

func (r *PostingRepository) ListByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*entity.Posting, error) {
	query := `
		SELECT ` + postingColumns + `
		FROM postings
		WHERE status = $1
		ORDER BY period_end, id
		LIMIT NULLIF($2, 0)
	`
	var rows []postingRow
	if err := r.db.SelectContext(ctx, &rows, query, string(status), limit); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список вакансий")
	}
	out := make([]*entity.Posting, 0, len(rows))
	for _, row := range rows {
		p, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
