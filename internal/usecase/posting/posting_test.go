package posting_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/memstore"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/posting"
)

func init() {
	logger.SetOutput(io.Discard)
}

func monWed() schedule.Definition {
	return schedule.Definition{Recurring: []schedule.RecurringSlot{
		{Weekday: vo.Weekday(time.Monday), Start: vo.MustClock("08:00"), End: vo.MustClock("16:00")},
		{Weekday: vo.Weekday(time.Wednesday), Start: vo.MustClock("08:00"), End: vo.MustClock("16:00")},
	}}
}

func week() schedule.Period {
	return schedule.Period{Start: vo.MustDate("2025-06-02"), End: vo.MustDate("2025-06-08")}
}

type fixture struct {
	store      *memstore.Store
	org        entity.Actor
	create     *posting.CreatePostingUseCase
	transition *posting.TransitionPostingUseCase
}

func newFixture() *fixture {
	store := memstore.New()
	return &fixture{
		store:      store,
		org:        entity.Actor{UserID: uuid.New(), Role: entity.RoleOrganization, OrganizationID: uuid.New()},
		create:     posting.NewCreatePostingUseCase(store.Postings()),
		transition: posting.NewTransitionPostingUseCase(store.Postings(), store.Candidates(), event.Nop{}, nil, time.UTC),
	}
}

func (f *fixture) post(t *testing.T, def schedule.Definition) *entity.Posting {
	t.Helper()
	p, err := f.create.Execute(context.Background(), posting.CreatePostingInput{
		Actor:              f.org,
		Title:              "Semestervikarie",
		Period:             week(),
		Schedule:           def,
		HourlyRate:         decimal.NewFromInt(200),
		RequiredExperience: []string{"HLR"},
	})
	require.NoError(t, err)
	return p
}

// fill назначает исполнителя так, как это сделало бы принятие отклика.
func (f *fixture) fill(t *testing.T, p *entity.Posting) uuid.UUID {
	t.Helper()
	assignee := uuid.New()
	f.store.Candidates().Add(assignee)
	p.Status = vo.StatusFilled
	p.AssigneeID = &assignee
	require.NoError(t, f.store.Postings().Create(context.Background(), p))
	return assignee
}

// lastEnd - среда 2025-06-04 16:00.
var lastEnd = time.Date(2025, 6, 4, 16, 0, 0, 0, time.UTC)

func TestCreatePosting_PatternWithoutDatesRejected(t *testing.T) {
	f := newFixture()
	_, err := f.create.Execute(context.Background(), posting.CreatePostingInput{
		Actor:  f.org,
		Title:  "Helgpass",
		Period: schedule.Period{Start: vo.MustDate("2025-06-02"), End: vo.MustDate("2025-06-04")},
		Schedule: schedule.Definition{Recurring: []schedule.RecurringSlot{
			{Weekday: vo.Weekday(time.Saturday), Start: vo.MustClock("10:00"), End: vo.MustClock("14:00")},
		}},
		HourlyRate: decimal.NewFromInt(200),
	})
	assert.Equal(t, apperror.ErrCodeEmptySchedule, apperror.CodeOf(err))
}

func TestCreatePosting_AdminMustNameOrganization(t *testing.T) {
	f := newFixture()
	admin := entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	_, err := f.create.Execute(context.Background(), posting.CreatePostingInput{
		Actor: admin, Title: "x", Period: week(), Schedule: monWed(), HourlyRate: decimal.NewFromInt(1),
	})
	assert.True(t, apperror.IsValidation(err))

	orgID := uuid.New()
	p, err := f.create.Execute(context.Background(), posting.CreatePostingInput{
		Actor: admin, OrganizationID: orgID, Title: "x", Period: week(), Schedule: monWed(), HourlyRate: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, orgID, p.OrganizationID)
}

func TestTransitionPosting_CompleteAfterLastInterval(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())
	f.fill(t, p)

	_, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCompleted, Now: lastEnd.Add(-time.Second),
	})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))

	got, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCompleted, Now: lastEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusCompleted, got.Status)
}

func TestTransitionPosting_CompleteNeedsResolvableAssignee(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())
	assignee := f.fill(t, p)
	f.store.Candidates().Remove(assignee)

	_, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCompleted, Now: lastEnd.Add(time.Hour),
	})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
}

func TestTransitionPosting_CompleteNeedsSchedule(t *testing.T) {
	f := newFixture()
	p := f.post(t, schedule.Definition{})
	f.fill(t, p)

	_, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCompleted, Now: lastEnd.Add(time.Hour),
	})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
}

func TestTransitionPosting_NoProcessedState(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())
	f.fill(t, p)
	_, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCompleted, Now: lastEnd,
	})
	require.NoError(t, err)

	_, err = f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusProcessed, Now: lastEnd,
	})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
}

func TestTransitionPosting_CancelOpen(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())

	got, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusCancelled, got.Status)

	_, err = f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusFilled,
	})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
}

func TestTransitionPosting_CancelFilledReleasesAssignee(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())
	f.fill(t, p)

	got, err := f.transition.Execute(context.Background(), posting.TransitionPostingInput{
		Actor: f.org, PostingID: p.ID, To: vo.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)

	stored, err := f.store.Postings().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusCancelled, stored.Status)
	assert.Nil(t, stored.AssigneeID)
}

func TestCompleteDue_Postings(t *testing.T) {
	f := newFixture()
	due := f.post(t, monWed())
	f.fill(t, due)

	noSchedule := f.post(t, schedule.Definition{})
	f.fill(t, noSchedule)

	res, err := f.transition.CompleteDue(context.Background(), lastEnd, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{due.ID}, res.Completed)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, noSchedule.ID, res.Failed[0].ID)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, res.Failed[0].Code)

	res, err = f.transition.CompleteDue(context.Background(), lastEnd.Add(-time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Completed)
}

func TestGetPosting_Visibility(t *testing.T) {
	f := newFixture()
	p := f.post(t, monWed())
	get := posting.NewGetPostingUseCase(f.store.Postings())
	stranger := entity.Actor{UserID: uuid.New(), Role: entity.RoleCandidate}

	got, err := get.Execute(context.Background(), stranger, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"HLR"}, got.RequiredExperience)

	f.fill(t, p)
	_, err = get.Execute(context.Background(), stranger, p.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDeletePosting(t *testing.T) {
	f := newFixture()
	del := posting.NewDeletePostingUseCase(f.store.Postings())

	p := f.post(t, monWed())
	other := entity.Actor{UserID: uuid.New(), Role: entity.RoleOrganization, OrganizationID: uuid.New()}
	assert.True(t, apperror.IsForbidden(del.Execute(context.Background(), other, p.ID)))

	f.fill(t, p)
	err := del.Execute(context.Background(), f.org, p.ID)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))

	fresh := f.post(t, monWed())
	require.NoError(t, del.Execute(context.Background(), f.org, fresh.ID))
}
