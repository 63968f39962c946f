package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Target - общее представление смены или вакансии для статусной машины и откликов.
type Target struct {
	Kind            valueobject.TargetKind
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Status          valueobject.Status
	AssigneeID      *uuid.UUID
	PayrollExported bool
	UpdatedAt       time.Time
}

type Application struct {
	ID          uuid.UUID
	TargetKind  valueobject.TargetKind
	TargetID    uuid.UUID
	CandidateID uuid.UUID
	Status      valueobject.ApplicationStatus
	Note        *string
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

const maxNoteLength = 2000

func NewApplication(kind valueobject.TargetKind, targetID, candidateID uuid.UUID, note *string) (*Application, error) {
	if !kind.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип цели")
	}
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		if len(trimmed) > maxNoteLength {
			return nil, apperror.New(apperror.ErrCodeValidation, "комментарий слишком длинный")
		}
		if trimmed == "" {
			note = nil
		} else {
			note = &trimmed
		}
	}

	now := time.Now()
	return &Application{
		ID:          uuid.New(),
		TargetKind:  kind,
		TargetID:    targetID,
		CandidateID: candidateID,
		Status:      valueobject.ApplicationPending,
		Note:        note,
		SubmittedAt: now,
		UpdatedAt:   now,
	}, nil
}

func (a *Application) IsOwnedBy(candidateID uuid.UUID) bool {
	return a.CandidateID == candidateID
}

func (a *Application) IsPending() bool {
	return a.Status == valueobject.ApplicationPending
}
