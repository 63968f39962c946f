// Package lifecycle проверяет переходы статусов смен и вакансий вместе с guard-условиями.
// Проверка выполняется при каждой записи независимо от того, что допускает хранилище.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Guard - факты, от которых зависят условия переходов. Now передаётся явно.
type Guard struct {
	Now                    time.Time
	LastScheduledEnd       time.Time
	HasSchedule            bool
	HasAcceptedApplication bool
	AssigneeResolvable     bool
	PayrollExported        bool
}

// TransitionError несёт текущий и запрошенный статусы недопустимого перехода.
type TransitionError struct {
	Kind   valueobject.TargetKind
	From   valueobject.Status
	To     valueobject.Status
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: переход %s -> %s недопустим", e.Kind, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func invalid(kind valueobject.TargetKind, from, to valueobject.Status, reason string) error {
	te := &TransitionError{Kind: kind, From: from, To: to, Reason: reason}
	return apperror.Wrap(te, apperror.ErrCodeInvalidTransition, te.Error())
}

// ErrAlreadyProcessed - повторная выгрузка уже обработанной смены.
var ErrAlreadyProcessed = apperror.New(apperror.ErrCodeAlreadyProcessed, "смена уже выгружена в зарплату")

// Check возвращает nil, если переход from -> to разрешён таблицей и guard-условиями.
func Check(kind valueobject.TargetKind, from, to valueobject.Status, g Guard) error {
	if !kind.HasStatus(to) {
		return invalid(kind, from, to, "неизвестный статус")
	}

	if to == valueobject.StatusProcessed {
		if from == valueobject.StatusProcessed || (from == valueobject.StatusCompleted && g.PayrollExported) {
			return ErrAlreadyProcessed
		}
	}

	if !kind.Allows(from, to) {
		return invalid(kind, from, to, "")
	}

	switch to {
	case valueobject.StatusFilled:
		if !g.HasAcceptedApplication {
			return invalid(kind, from, to, "нужен принятый отклик")
		}
	case valueobject.StatusCompleted:
		if !g.HasSchedule {
			return invalid(kind, from, to, "нет запланированного времени окончания")
		}
		if g.Now.Before(g.LastScheduledEnd) {
			return invalid(kind, from, to, "работа ещё не закончилась")
		}
		if kind == valueobject.TargetPosting && !g.AssigneeResolvable {
			return invalid(kind, from, to, "исполнитель не найден")
		}
	}
	return nil
}

// CanDelete: удалять можно только open или cancelled без выгрузки в зарплату.
func CanDelete(kind valueobject.TargetKind, status valueobject.Status, payrollExported bool) error {
	if payrollExported {
		return invalid(kind, status, "deleted", "цель уже выгружена в зарплату")
	}
	if status != valueobject.StatusOpen && status != valueobject.StatusCancelled {
		return invalid(kind, status, "deleted", "удалять можно только открытую или отменённую цель")
	}
	return nil
}
