package compensation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/memstore"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/compensation"
)

var orgID = uuid.New()

func manager() entity.Actor {
	return entity.Actor{UserID: uuid.New(), Role: entity.RoleOrganization, OrganizationID: orgID}
}

func newPosting(t *testing.T, store *memstore.Store, def schedule.Definition) *entity.Posting {
	t.Helper()
	p, err := entity.NewPosting(entity.PostingParams{
		OrganizationID: orgID,
		Title:          "Vikariat",
		Period:         schedule.Period{Start: vo.MustDate("2025-06-02"), End: vo.MustDate("2025-06-08")},
		Schedule:       def,
		HourlyRate:     decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	require.NoError(t, store.Postings().Create(context.Background(), p))
	return p
}

func TestCompute_Posting(t *testing.T) {
	store := memstore.New()
	p := newPosting(t, store, schedule.Definition{Recurring: []schedule.RecurringSlot{
		{Weekday: vo.Weekday(time.Monday), Start: vo.MustClock("08:00"), End: vo.MustClock("16:00")},
		{Weekday: vo.Weekday(time.Wednesday), Start: vo.MustClock("08:00"), End: vo.MustClock("16:00")},
	}})
	uc := compensation.NewComputeUseCase(store.Shifts(), store.Postings(), domain.NewCalculator(nil, nil), compensation.NewCache(time.Minute))

	res, err := uc.Execute(context.Background(), manager(), vo.TargetPosting, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "16.00", res.Hours.StringFixed(2))
	assert.Equal(t, "3200.00", res.TotalPay.StringFixed(2))
	assert.Equal(t, vo.DefaultCurrency, res.Currency)

	again, err := uc.Execute(context.Background(), manager(), vo.TargetPosting, p.ID)
	require.NoError(t, err)
	assert.Same(t, res, again)
}

func TestCompute_PostingWithoutScheduleNotComputable(t *testing.T) {
	store := memstore.New()
	p := newPosting(t, store, schedule.Definition{})
	uc := compensation.NewComputeUseCase(store.Shifts(), store.Postings(), domain.NewCalculator(nil, nil), nil)

	_, err := uc.Execute(context.Background(), manager(), vo.TargetPosting, p.ID)
	assert.Equal(t, apperror.ErrCodeNotComputable, apperror.CodeOf(err))
}

func TestCompute_ShiftWithHolidayAndSurcharge(t *testing.T) {
	store := memstore.New()
	surcharge := decimal.NewFromInt(250)
	shift, err := entity.NewShift(entity.ShiftParams{
		OrganizationID:  orgID,
		Title:           "Midsommar",
		Date:            vo.MustDate("2025-06-20"),
		StartTime:       vo.MustClock("08:00"),
		EndTime:         vo.MustClock("12:00"),
		HourlyRate:      decimal.NewFromInt(100),
		Urgent:          true,
		UrgentSurcharge: &surcharge,
	})
	require.NoError(t, err)
	require.NoError(t, store.Shifts().Create(context.Background(), shift))

	calc := domain.NewCalculator(nil, []vo.Date{vo.MustDate("2025-06-20")})
	uc := compensation.NewComputeUseCase(store.Shifts(), store.Postings(), calc, nil)

	res, err := uc.Execute(context.Background(), manager(), vo.TargetShift, shift.ID)
	require.NoError(t, err)
	// 4ч * 100 базово + 4ч * 100 праздничная надбавка + 250.
	assert.Equal(t, "1050.00", res.TotalPay.StringFixed(2))
}

func TestCompute_ForeignCandidateForbidden(t *testing.T) {
	store := memstore.New()
	p := newPosting(t, store, schedule.Definition{})
	p.Status = vo.StatusFilled
	require.NoError(t, store.Postings().Create(context.Background(), p))
	uc := compensation.NewComputeUseCase(store.Shifts(), store.Postings(), domain.NewCalculator(nil, nil), nil)

	_, err := uc.Execute(context.Background(), entity.Actor{UserID: uuid.New(), Role: entity.RoleCandidate}, vo.TargetPosting, p.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestCache_ExpiresAndCleansUp(t *testing.T) {
	c := compensation.NewCache(20 * time.Millisecond)
	c.Set("k", &domain.Result{})
	_, ok := c.Get("k")
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Cleanup(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}
