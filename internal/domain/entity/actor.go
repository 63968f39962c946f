package entity

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type Role string

const (
	RoleOrganization Role = "organization"
	RoleCandidate    Role = "candidate"
	RoleAdmin        Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOrganization, RoleCandidate, RoleAdmin:
		return true
	}
	return false
}

// Actor - вызывающий пользователь. OrganizationID задан для сотрудников организации.
type Actor struct {
	UserID         uuid.UUID
	Role           Role
	OrganizationID uuid.UUID
}

// CanManage: администратор управляет любой организацией, сотрудник только своей.
func (a Actor) CanManage(organizationID uuid.UUID) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleOrganization:
		return a.OrganizationID != uuid.Nil && a.OrganizationID == organizationID
	}
	return false
}

func (a Actor) RequireCandidate() error {
	if a.Role != RoleCandidate {
		return apperror.New(apperror.ErrCodeForbidden, "действие доступно только кандидату")
	}
	return nil
}

// OrganizationFor выбирает организацию для новой цели: администратор может создавать от имени другой.
func (a Actor) OrganizationFor(requested uuid.UUID) (uuid.UUID, error) {
	switch a.Role {
	case RoleAdmin:
		if requested == uuid.Nil {
			return uuid.Nil, apperror.New(apperror.ErrCodeValidation, "администратор должен указать организацию")
		}
		return requested, nil
	case RoleOrganization:
		if requested != uuid.Nil && requested != a.OrganizationID {
			return uuid.Nil, apperror.ErrForbidden
		}
		if a.OrganizationID == uuid.Nil {
			return uuid.Nil, apperror.ErrForbidden
		}
		return a.OrganizationID, nil
	}
	return uuid.Nil, apperror.ErrForbidden
}
