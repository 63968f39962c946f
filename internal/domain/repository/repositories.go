package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

// Все изменения статусов выполняются условными обновлениями (compare-and-set).
// Если условие не выполнилось, адаптер возвращает CONCURRENT_MODIFICATION.

type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.Status) error
	// Delete удаляет смену только в статусе open или cancelled без выгрузки.
	Delete(ctx context.Context, id uuid.UUID) error
	ListEligibleForExport(ctx context.Context, organizationID *uuid.UUID, limit int) ([]*entity.Shift, error)
	ListByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*entity.Shift, error)
}

type PostingRepository interface {
	Create(ctx context.Context, posting *entity.Posting) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Posting, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*entity.Posting, error)
}

// TargetRepository читает общее представление смены или вакансии.
type TargetRepository interface {
	GetTarget(ctx context.Context, kind valueobject.TargetKind, id uuid.UUID) (*entity.Target, error)
}

// AcceptOutcome - результат атомарного принятия отклика.
type AcceptOutcome struct {
	Application        *entity.Application
	Target             entity.Target
	RejectedIDs        []uuid.UUID
	RejectedCandidates []uuid.UUID
}

type ApplicationRepository interface {
	// Submit вставляет отклик только если цель open и у кандидата нет активного отклика на неё.
	Submit(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	ListByTarget(ctx context.Context, kind valueobject.TargetKind, targetID uuid.UUID) ([]*entity.Application, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*entity.Application, error)
	HasAccepted(ctx context.Context, kind valueobject.TargetKind, targetID uuid.UUID) (bool, error)
	// Accept выполняет принятие, автоотклонение остальных pending и заполнение цели одной транзакцией.
	Accept(ctx context.Context, id uuid.UUID) (*AcceptOutcome, error)
	// SetStatusIfPending меняет статус только из pending, иначе ALREADY_PROCESSED.
	SetStatusIfPending(ctx context.Context, id uuid.UUID, to valueobject.ApplicationStatus) error
}

// PayrollLedger - зарплатный реестр. Запись неизменяема, одна на смену.
type PayrollLedger interface {
	// Commit атомарно пишет запись и переводит смену completed -> processed с payroll_exported.
	// Смена уже выгружена: ALREADY_PROCESSED. Смена ушла из completed: CONCURRENT_MODIFICATION.
	// Запись уже есть, а смена не отмечена: PARTIAL_EXPORT_INCONSISTENCY, ничего не меняется.
	Commit(ctx context.Context, rec *entity.PayrollRecord) error
	GetByShift(ctx context.Context, shiftID uuid.UUID) (*entity.PayrollRecord, error)
}

// CandidateDirectory проверяет, что исполнитель всё ещё существует.
type CandidateDirectory interface {
	Exists(ctx context.Context, candidateID uuid.UUID) (bool, error)
}
