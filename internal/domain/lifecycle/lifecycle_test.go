package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

var (
	shiftEnd = time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)
	ended    = Guard{Now: shiftEnd.Add(time.Minute), LastScheduledEnd: shiftEnd, HasSchedule: true, AssigneeResolvable: true}
)

func TestCheck_OpenToFilledNeedsAcceptedApplication(t *testing.T) {
	err := Check(vo.TargetShift, vo.StatusOpen, vo.StatusFilled, Guard{})
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition))

	assert.NoError(t, Check(vo.TargetShift, vo.StatusOpen, vo.StatusFilled, Guard{HasAcceptedApplication: true}))
}

func TestCheck_FilledToCompletedUsesInjectedNow(t *testing.T) {
	early := ended
	early.Now = shiftEnd.Add(-time.Second)

	err := Check(vo.TargetShift, vo.StatusFilled, vo.StatusCompleted, early)
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition))

	atEnd := ended
	atEnd.Now = shiftEnd
	assert.NoError(t, Check(vo.TargetShift, vo.StatusFilled, vo.StatusCompleted, atEnd))
}

func TestCheck_PostingCompletionNeedsResolvableAssignee(t *testing.T) {
	g := ended
	g.AssigneeResolvable = false

	assert.NoError(t, Check(vo.TargetShift, vo.StatusFilled, vo.StatusCompleted, g))
	err := Check(vo.TargetPosting, vo.StatusFilled, vo.StatusCompleted, g)
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition))
}

func TestCheck_ProcessedOnlyOnceAndOnlyFromCompleted(t *testing.T) {
	assert.NoError(t, Check(vo.TargetShift, vo.StatusCompleted, vo.StatusProcessed, Guard{}))

	err := Check(vo.TargetShift, vo.StatusProcessed, vo.StatusProcessed, Guard{})
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyProcessed))

	err = Check(vo.TargetShift, vo.StatusCompleted, vo.StatusProcessed, Guard{PayrollExported: true})
	assert.True(t, apperror.Is(err, apperror.ErrCodeAlreadyProcessed))

	err = Check(vo.TargetShift, vo.StatusFilled, vo.StatusProcessed, Guard{})
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition))

	err = Check(vo.TargetPosting, vo.StatusCompleted, vo.StatusProcessed, Guard{})
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition))
}

func TestCheck_CancelledIsFinal(t *testing.T) {
	assert.NoError(t, Check(vo.TargetPosting, vo.StatusFilled, vo.StatusCancelled, Guard{}))

	for _, to := range []vo.Status{vo.StatusOpen, vo.StatusFilled, vo.StatusCompleted, vo.StatusProcessed, vo.StatusCancelled} {
		err := Check(vo.TargetShift, vo.StatusCancelled, to, ended)
		assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidTransition), "cancelled -> %s", to)
	}
}

func TestCheck_CompletedIsNotReopened(t *testing.T) {
	err := Check(vo.TargetPosting, vo.StatusCompleted, vo.StatusFilled, Guard{HasAcceptedApplication: true})
	require.Error(t, err)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, vo.StatusCompleted, te.From)
	assert.Equal(t, vo.StatusFilled, te.To)
}

func TestCanDelete(t *testing.T) {
	assert.NoError(t, CanDelete(vo.TargetShift, vo.StatusOpen, false))
	assert.NoError(t, CanDelete(vo.TargetShift, vo.StatusCancelled, false))
	assert.Error(t, CanDelete(vo.TargetShift, vo.StatusFilled, false))
	assert.Error(t, CanDelete(vo.TargetShift, vo.StatusCancelled, true))
}
