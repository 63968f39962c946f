package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
)

type CreatePostingRequest struct {
	OrganizationID     uuid.UUID           `json:"organization_id"`
	Title              string              `json:"title" binding:"required"`
	Description        string              `json:"description"`
	RequiredRole       string              `json:"required_role"`
	Location           string              `json:"location"`
	Period             schedule.Period     `json:"period"`
	Schedule           schedule.Definition `json:"schedule"`
	ExcludeWeekends    bool                `json:"exclude_weekends"`
	HourlyRate         decimal.Decimal     `json:"hourly_rate"`
	EstimatedHours     string              `json:"estimated_hours"`
	SalaryDescription  string              `json:"salary_description"`
	RequiredExperience []string            `json:"required_experience"`
}

type PostingResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrganizationID     uuid.UUID           `json:"organization_id"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	RequiredRole       string              `json:"required_role,omitempty"`
	Location           string              `json:"location,omitempty"`
	Period             schedule.Period     `json:"period"`
	Schedule           schedule.Definition `json:"schedule"`
	ExcludeWeekends    bool                `json:"exclude_weekends"`
	HourlyRate         decimal.Decimal     `json:"hourly_rate"`
	EstimatedHours     string              `json:"estimated_hours,omitempty"`
	SalaryDescription  string              `json:"salary_description,omitempty"`
	RequiredExperience []string            `json:"required_experience"`
	Status             string              `json:"status"`
	AssigneeID         *uuid.UUID          `json:"assignee_id"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func ToPostingResponse(p *entity.Posting) PostingResponse {
	experience := p.RequiredExperience
	if experience == nil {
		experience = []string{}
	}
	return PostingResponse{
		ID:                 p.ID,
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
		RequiredExperience: experience,
		Status:             string(p.Status),
		AssigneeID:         p.AssigneeID,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
