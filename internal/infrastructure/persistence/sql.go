// Package persistence - адаптеры хранилища поверх PostgreSQL (sqlx + lib/pq).
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// isLostRace: Postgres прервал транзакцию из-за взаимоблокировки или сбоя сериализации.
func isLostRace(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && (pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected)
}

// dbError оборачивает ошибку драйвера. Проигранная гонка становится CONCURRENT_MODIFICATION,
// готовая AppError возвращается как есть, остальное DATABASE_ERROR.
func dbError(err error, message string) error {
	if isLostRace(err) {
		return apperror.Wrap(err, apperror.ErrCodeConcurrentModification, "параллельная транзакция помешала операции, повторите запрос")
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// targetTable возвращает таблицу цели; имя подставляется в запрос только из этого списка.
func targetTable(kind valueobject.TargetKind) (string, error) {
	switch kind {
	case valueobject.TargetShift:
		return "shifts", nil
	case valueobject.TargetPosting:
		return "postings", nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип цели")
}

// withTx выполняет fn в транзакции. Откат при ошибке или панике.
func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if isLostRace(err) {
			err = dbError(err, "")
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "не удалось зафиксировать транзакцию")
	}
	return nil
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат запроса")
	}
	return n, nil
}
