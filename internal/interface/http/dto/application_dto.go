package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
)

type SubmitApplicationRequest struct {
	Note *string `json:"note"`
}

type ApplicationResponse struct {
	ID          uuid.UUID `json:"id"`
	TargetKind  string    `json:"target_kind"`
	TargetID    uuid.UUID `json:"target_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Status      string    `json:"status"`
	Note        *string   `json:"note,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AcceptResponse - итог принятия: принятый отклик, цель и автоматически отклонённые соседи.
type AcceptResponse struct {
	Application  ApplicationResponse `json:"application"`
	TargetStatus string              `json:"target_status"`
	AssigneeID   *uuid.UUID          `json:"assignee_id"`
	AutoRejected []uuid.UUID         `json:"auto_rejected"`
}

func ToApplicationResponse(a *entity.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		TargetKind:  string(a.TargetKind),
		TargetID:    a.TargetID,
		CandidateID: a.CandidateID,
		Status:      string(a.Status),
		Note:        a.Note,
		SubmittedAt: a.SubmittedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToApplicationResponses(apps []*entity.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		responses = append(responses, ToApplicationResponse(a))
	}
	return responses
}

func ToAcceptResponse(out *repository.AcceptOutcome) AcceptResponse {
	rejected := out.RejectedIDs
	if rejected == nil {
		rejected = []uuid.UUID{}
	}
	return AcceptResponse{
		Application:  ToApplicationResponse(out.Application),
		TargetStatus: string(out.Target.Status),
		AssigneeID:   out.Target.AssigneeID,
		AutoRejected: rejected,
	}
}
