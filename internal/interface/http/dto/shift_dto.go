package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

type CreateShiftRequest struct {
	OrganizationID  uuid.UUID             `json:"organization_id"`
	Title           string                `json:"title" binding:"required"`
	Date            valueobject.Date      `json:"date"`
	StartTime       valueobject.ClockTime `json:"start_time"`
	EndTime         valueobject.ClockTime `json:"end_time"`
	BreakDuration   string                `json:"break_duration"`
	RequiredRole    string                `json:"required_role"`
	HourlyRate      decimal.Decimal       `json:"hourly_rate"`
	Urgent          bool                  `json:"urgent"`
	UrgentSurcharge *decimal.Decimal      `json:"urgent_surcharge"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ShiftResponse struct {
	ID              uuid.UUID             `json:"id"`
	OrganizationID  uuid.UUID             `json:"organization_id"`
	Title           string                `json:"title"`
	Date            valueobject.Date      `json:"date"`
	StartTime       valueobject.ClockTime `json:"start_time"`
	EndTime         valueobject.ClockTime `json:"end_time"`
	BreakDuration   *valueobject.Span     `json:"break_duration"`
	RequiredRole    string                `json:"required_role,omitempty"`
	HourlyRate      decimal.Decimal       `json:"hourly_rate"`
	Urgent          bool                  `json:"urgent"`
	UrgentSurcharge *decimal.Decimal      `json:"urgent_surcharge,omitempty"`
	Status          string                `json:"status"`
	AssigneeID      *uuid.UUID            `json:"assignee_id"`
	PayrollExported bool                  `json:"payroll_exported"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func ToShiftResponse(s *entity.Shift) ShiftResponse {
	return ShiftResponse{
		ID:              s.ID,
		OrganizationID:  s.OrganizationID,
		Title:           s.Title,
		Date:            s.Date,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		BreakDuration:   s.Break,
		RequiredRole:    s.RequiredRole,
		HourlyRate:      s.HourlyRate,
		Urgent:          s.Urgent,
		UrgentSurcharge: s.UrgentSurcharge,
		Status:          string(s.Status),
		AssigneeID:      s.AssigneeID,
		PayrollExported: s.PayrollExported,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func ToShiftResponses(shifts []*entity.Shift) []ShiftResponse {
	responses := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		responses = append(responses, ToShiftResponse(s))
	}
	return responses
}
