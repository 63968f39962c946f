package persistence

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

func TestShiftRow_ToEntity(t *testing.T) {
	assignee := uuid.New()
	row := shiftRow{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		Title:           "Nattpass",
		WorkDate:        vo.MustDate("2025-06-02"),
		StartTime:       vo.MustClock("14:00"),
		EndTime:         vo.MustClock("22:00"),
		BreakDuration:   sql.NullString{String: "00:30:00", Valid: true},
		HourlyRate:      decimal.NewFromInt(180),
		Urgent:          true,
		UrgentSurcharge: decimal.NullDecimal{Decimal: decimal.NewFromInt(300), Valid: true},
		Status:          "filled",
		AssigneeID:      uuid.NullUUID{UUID: assignee, Valid: true},
	}

	s, err := row.toEntity()
	require.NoError(t, err)
	assert.Equal(t, vo.StatusFilled, s.Status)
	require.NotNil(t, s.Break)
	assert.Equal(t, 30, s.Break.Minutes())
	require.NotNil(t, s.UrgentSurcharge)
	assert.True(t, s.UrgentSurcharge.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, &assignee, s.AssigneeID)
}

func TestShiftRow_UnknownStatus(t *testing.T) {
	_, err := shiftRow{Status: "archived"}.toEntity()
	assert.Error(t, err)
}

func TestPostingRow_DecodesSchedule(t *testing.T) {
	row := postingRow{
		ID:                 uuid.New(),
		PeriodStart:        vo.MustDate("2025-06-02"),
		PeriodEnd:          vo.MustDate("2025-06-08"),
		Schedule:           []byte(`{"recurring":[{"weekday":"mon","start":"09:00","end":"17:00"}]}`),
		HourlyRate:         decimal.NewFromInt(200),
		RequiredExperience: pq.StringArray{"HLR", "B-körkort"},
		Status:             "open",
	}

	p, err := row.toEntity()
	require.NoError(t, err)
	require.Len(t, p.Schedule.Recurring, 1)
	assert.Equal(t, "mon", p.Schedule.Recurring[0].Weekday.String())
	assert.Equal(t, []string{"HLR", "B-körkort"}, p.RequiredExperience)

	intervals, err := p.Intervals()
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestPostingRow_ProcessedIsNotAPostingStatus(t *testing.T) {
	_, err := postingRow{Status: "processed"}.toEntity()
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestTargetTable(t *testing.T) {
	table, err := targetTable(vo.TargetPosting)
	require.NoError(t, err)
	assert.Equal(t, "postings", table)

	_, err = targetTable(vo.TargetKind("order"))
	assert.True(t, apperror.IsValidation(err))
}

func TestDBError_LostRaceIsConcurrentModification(t *testing.T) {
	for _, code := range []pq.ErrorCode{"40P01", "40001"} {
		t.Run(string(code), func(t *testing.T) {
			raw := &pq.Error{Code: code}
			err := dbError(raw, "не удалось принять отклик")
			assert.Equal(t, apperror.ErrCodeConcurrentModification, apperror.CodeOf(err))
			assert.True(t, apperror.IsRetryable(err))

			// Ошибка, уже обёрнутая внутри транзакции, тоже распознаётся.
			wrapped := apperror.Wrap(raw, apperror.ErrCodeDatabaseError, "не удалось отклонить остальные отклики")
			assert.True(t, isLostRace(wrapped))
			assert.Equal(t, apperror.ErrCodeConcurrentModification, apperror.CodeOf(dbError(wrapped, "")))
		})
	}
}

func TestDBError_OtherFailures(t *testing.T) {
	err := dbError(&pq.Error{Code: "23503"}, "не удалось записать")
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
	assert.False(t, isLostRace(err))

	assert.Same(t, apperror.ErrShiftNotFound, dbError(apperror.ErrShiftNotFound, "не удалось"))
}
