package valueobject

import "github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"

// TargetKind различает смену и вакансию там, где логика общая для обеих.
type TargetKind string

const (
	TargetShift   TargetKind = "shift"
	TargetPosting TargetKind = "posting"
)

func (k TargetKind) IsValid() bool {
	return k == TargetShift || k == TargetPosting
}

func ParseTargetKind(kind string) (TargetKind, error) {
	k := TargetKind(kind)
	if !k.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип цели: ожидается shift или posting")
	}
	return k, nil
}

type Status string

const (
	StatusOpen      Status = "open"
	StatusFilled    Status = "filled"
	StatusCompleted Status = "completed"
	StatusProcessed Status = "processed"
	StatusCancelled Status = "cancelled"
)

var shiftTransitions = map[Status][]Status{
	StatusOpen:      {StatusFilled, StatusCancelled},
	StatusFilled:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusProcessed},
	StatusProcessed: {},
	StatusCancelled: {},
}

// У вакансий нет финансового статуса processed.
var postingTransitions = map[Status][]Status{
	StatusOpen:      {StatusFilled, StatusCancelled},
	StatusFilled:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (k TargetKind) table() map[Status][]Status {
	if k == TargetPosting {
		return postingTransitions
	}
	return shiftTransitions
}

// HasStatus сообщает, существует ли статус у данного типа цели.
func (k TargetKind) HasStatus(s Status) bool {
	_, ok := k.table()[s]
	return ok
}

// Allows проверяет переход по таблице без учёта guard-условий.
func (k TargetKind) Allows(from, to Status) bool {
	allowed, ok := k.table()[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func (k TargetKind) IsTerminal(s Status) bool {
	return len(k.table()[s]) == 0
}

// RequiresAssignee: assignee задан тогда и только тогда, когда статус filled, completed или processed.
func (s Status) RequiresAssignee() bool {
	switch s {
	case StatusFilled, StatusCompleted, StatusProcessed:
		return true
	}
	return false
}

func NewStatus(kind TargetKind, status string) (Status, error) {
	s := Status(status)
	if !kind.HasStatus(s) {
		return "", apperror.Newf(apperror.ErrCodeValidation, "некорректный статус %q для %s", status, kind)
	}
	return s, nil
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// IsActive: активными считаются pending и accepted, по ним действует уникальность пары кандидат-цель.
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationPending || s == ApplicationAccepted
}

func (s ApplicationStatus) IsTerminal() bool {
	return s != ApplicationPending
}

func NewApplicationStatus(status string) (ApplicationStatus, error) {
	s := ApplicationStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус отклика")
	}
	return s, nil
}
