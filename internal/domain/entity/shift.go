package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Shift - одна рабочая смена организации в конкретный день.
type Shift struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Title           string
	Date            valueobject.Date
	StartTime       valueobject.ClockTime
	EndTime         valueobject.ClockTime
	Break           *valueobject.Span
	RequiredRole    string
	HourlyRate      decimal.Decimal
	Urgent          bool
	UrgentSurcharge *decimal.Decimal
	Status          valueobject.Status
	AssigneeID      *uuid.UUID
	PayrollExported bool
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ShiftParams struct {
	OrganizationID  uuid.UUID
	CreatedBy       uuid.UUID
	Title           string
	Date            valueobject.Date
	StartTime       valueobject.ClockTime
	EndTime         valueobject.ClockTime
	Break           *valueobject.Span
	RequiredRole    string
	HourlyRate      decimal.Decimal
	Urgent          bool
	UrgentSurcharge *decimal.Decimal
}

// NewShift создаёт смену в статусе open.
func NewShift(p ShiftParams) (*Shift, error) {
	if p.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название смены обязательно")
	}
	if p.Date.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "дата смены обязательна")
	}
	if p.StartTime >= p.EndTime {
		return nil, apperror.New(apperror.ErrCodeValidation, "начало смены должно быть раньше конца")
	}
	if p.Break != nil && p.Break.Minutes() >= int(p.EndTime-p.StartTime) {
		return nil, apperror.New(apperror.ErrCodeValidation, "перерыв должен быть короче смены")
	}
	if _, err := valueobject.NewHourlyRate(p.HourlyRate); err != nil {
		return nil, err
	}
	if p.Urgent != (p.UrgentSurcharge != nil) {
		return nil, apperror.New(apperror.ErrCodeValidation, "надбавка за срочность указывается только для срочной смены")
	}
	if p.UrgentSurcharge != nil && !p.UrgentSurcharge.IsPositive() {
		return nil, apperror.New(apperror.ErrCodeValidation, "надбавка за срочность должна быть положительной")
	}

	now := time.Now()
	return &Shift{
		ID:              uuid.New(),
		OrganizationID:  p.OrganizationID,
		Title:           p.Title,
		Date:            p.Date,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		Break:           p.Break,
		RequiredRole:    p.RequiredRole,
		HourlyRate:      p.HourlyRate,
		Urgent:          p.Urgent,
		UrgentSurcharge: p.UrgentSurcharge,
		Status:          valueobject.StatusOpen,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *Shift) Interval() schedule.Interval {
	return schedule.Interval{Date: s.Date, Start: s.StartTime, End: s.EndTime}
}

// WorkedMinutes - длительность смены за вычетом перерыва.
func (s *Shift) WorkedMinutes() int {
	total := int(s.EndTime - s.StartTime)
	if s.Break != nil {
		total -= s.Break.Minutes()
	}
	return total
}

func (s *Shift) Target() Target {
	return Target{
		Kind:            valueobject.TargetShift,
		ID:              s.ID,
		OrganizationID:  s.OrganizationID,
		Status:          s.Status,
		AssigneeID:      s.AssigneeID,
		PayrollExported: s.PayrollExported,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (s *Shift) IsOwnedBy(orgID uuid.UUID) bool {
	return s.OrganizationID == orgID
}

// IsExportEligible: завершена и ещё не выгружена в зарплату.
func (s *Shift) IsExportEligible() bool {
	return s.Status == valueobject.StatusCompleted && !s.PayrollExported
}
