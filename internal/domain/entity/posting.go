package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Posting - многодневная или повторяющаяся работа в ограниченном периоде.
type Posting struct {
	ID                 uuid.UUID
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
	Status             valueobject.Status
	AssigneeID         *uuid.UUID
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PostingParams struct {
	OrganizationID     uuid.UUID
	CreatedBy          uuid.UUID
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

// NewPosting создаёт вакансию в статусе open. Объявленное расписание обязано дать хотя бы один день в периоде.
func NewPosting(p PostingParams) (*Posting, error) {
	if p.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название вакансии обязательно")
	}
	if _, err := valueobject.NewHourlyRate(p.HourlyRate); err != nil {
		return nil, err
	}
	if _, err := schedule.Normalize(p.Schedule, p.Period, schedule.Options{ExcludeWeekends: p.ExcludeWeekends}); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Posting{
		ID:                 uuid.New(),
		OrganizationID:     p.OrganizationID,
		Title:              p.Title,
		Description:        p.Description,
		RequiredRole:       p.RequiredRole,
		Location:           p.Location,
		Period:             p.Period,
		Schedule:           p.Schedule,
		ExcludeWeekends:    p.ExcludeWeekends,
		HourlyRate:         p.HourlyRate,
		EstimatedHours:     p.EstimatedHours,
		SalaryDescription:  p.SalaryDescription,
		RequiredExperience: p.RequiredExperience,
		Status:             valueobject.StatusOpen,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Intervals возвращает нормализованное расписание вакансии.
func (p *Posting) Intervals() ([]schedule.Interval, error) {
	return schedule.Normalize(p.Schedule, p.Period, schedule.Options{ExcludeWeekends: p.ExcludeWeekends})
}

func (p *Posting) Target() Target {
	return Target{
		Kind:           valueobject.TargetPosting,
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Status:         p.Status,
		AssigneeID:     p.AssigneeID,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (p *Posting) IsOwnedBy(orgID uuid.UUID) bool {
	return p.OrganizationID == orgID
}
