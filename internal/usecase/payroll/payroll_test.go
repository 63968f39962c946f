package payroll_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/event"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/memstore"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/payroll"
)

func init() {
	logger.SetOutput(io.Discard)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) has(t event.Type) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

// racingLedger перед первым Commit пропускает вперёд конкурирующую выгрузку той же смены.
// Оба запроса к этому моменту уже прочитали смену в статусе completed.
type racingLedger struct {
	repository.PayrollLedger
	once    sync.Once
	compete func()
}

func (l *racingLedger) Commit(ctx context.Context, rec *entity.PayrollRecord) error {
	l.once.Do(l.compete)
	return l.PayrollLedger.Commit(ctx, rec)
}

type fixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	org       entity.Actor
	export    *payroll.ExportShiftUseCase
	many      *payroll.ExportManyUseCase
}

func newFixture(shifts repository.ShiftRepository, store *memstore.Store) *fixture {
	return newFixtureWithLedger(shifts, store.Ledger(), store)
}

func newFixtureWithLedger(shifts repository.ShiftRepository, ledger repository.PayrollLedger, store *memstore.Store) *fixture {
	pub := &recordingPublisher{}
	calc := compensation.NewCalculator(nil, nil)
	export := payroll.NewExportShiftUseCase(shifts, ledger, calc, pub, nil)
	return &fixture{
		store:     store,
		publisher: pub,
		org:       entity.Actor{UserID: uuid.New(), Role: entity.RoleOrganization, OrganizationID: uuid.New()},
		export:    export,
		many:      payroll.NewExportManyUseCase(shifts, export, 10),
	}
}

// seed кладёт смену 08:00-16:00 по ставке 200 в нужном статусе.
func (f *fixture) seed(t *testing.T, status vo.Status) *entity.Shift {
	t.Helper()
	shift, err := entity.NewShift(entity.ShiftParams{
		OrganizationID: f.org.OrganizationID,
		Title:          "Dagpass",
		Date:           vo.MustDate("2025-06-02"),
		StartTime:      vo.MustClock("08:00"),
		EndTime:        vo.MustClock("16:00"),
		HourlyRate:     decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assignee := uuid.New()
	shift.AssigneeID = &assignee
	shift.Status = status
	shift.PayrollExported = status == vo.StatusProcessed
	require.NoError(t, f.store.Shifts().Create(context.Background(), shift))
	return shift
}

func TestExportShift_WritesLedgerAndMarksProcessed(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusCompleted)

	res, err := f.export.Execute(context.Background(), f.org, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "1600.00", res.Record.Amount.Amount.StringFixed(2))
	assert.True(t, res.Record.Hours.Equal(decimal.NewFromInt(8)))
	assert.NotEmpty(t, res.Record.Fingerprint)

	stored, err := store.Shifts().GetByID(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusProcessed, stored.Status)
	assert.True(t, stored.PayrollExported)
	assert.Equal(t, 1, store.Ledger().Count())
	assert.True(t, f.publisher.has(event.PayrollExported))
}

func TestExportShift_SecondExportIsAlreadyProcessed(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusCompleted)

	_, err := f.export.Execute(context.Background(), f.org, shift.ID)
	require.NoError(t, err)

	_, err = f.export.Execute(context.Background(), f.org, shift.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeAlreadyProcessed, apperror.CodeOf(err))
	assert.Equal(t, 1, store.Ledger().Count())
}

func TestExportShift_OnlyCompletedShifts(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusFilled)

	_, err := f.export.Execute(context.Background(), f.org, shift.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	assert.Equal(t, 0, store.Ledger().Count())
}

func TestExportShift_ForeignOrganizationForbidden(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusCompleted)

	other := entity.Actor{UserID: uuid.New(), Role: entity.RoleOrganization, OrganizationID: uuid.New()}
	_, err := f.export.Execute(context.Background(), other, shift.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestExportShift_LedgerRecordWithoutStatusIsReported(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusCompleted)

	amount, err := vo.NewMoney(decimal.NewFromInt(1600), vo.DefaultCurrency)
	require.NoError(t, err)
	orphan := entity.NewPayrollRecord(shift, decimal.NewFromInt(8), amount)
	store.Ledger().Put(orphan)

	_, err = f.export.Execute(context.Background(), f.org, shift.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodePartialExportInconsistency, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), orphan.ID.String())
	assert.True(t, f.publisher.has(event.PayrollInconsistent))

	stored, err := store.Shifts().GetByID(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusCompleted, stored.Status)
	assert.False(t, stored.PayrollExported)

	// Повтор не создаёт вторую запись, а снова сообщает о несоответствии.
	_, err = f.export.Execute(context.Background(), f.org, shift.ID)
	assert.Equal(t, apperror.ErrCodePartialExportInconsistency, apperror.CodeOf(err))
	assert.Equal(t, 1, store.Ledger().Count())
}

func TestExportShift_ConcurrentDuplicateIsAlreadyProcessed(t *testing.T) {
	store := memstore.New()
	ledger := &racingLedger{PayrollLedger: store.Ledger()}
	f := newFixtureWithLedger(store.Shifts(), ledger, store)
	shift := f.seed(t, vo.StatusCompleted)

	var competingErr error
	ledger.compete = func() {
		_, competingErr = f.export.Execute(context.Background(), f.org, shift.ID)
	}

	_, err := f.export.Execute(context.Background(), f.org, shift.ID)
	require.NoError(t, competingErr)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeAlreadyProcessed, apperror.CodeOf(err))
	assert.False(t, f.publisher.has(event.PayrollInconsistent))
	assert.Equal(t, 1, store.Ledger().Count())

	stored, err := store.Shifts().GetByID(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusProcessed, stored.Status)
	assert.True(t, stored.PayrollExported)
}

func TestExportShift_ParallelRequestsExportOnce(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	shift := f.seed(t, vo.StatusCompleted)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.export.Execute(context.Background(), f.org, shift.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperror.ErrCodeAlreadyProcessed, apperror.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.Ledger().Count())
	assert.False(t, f.publisher.has(event.PayrollInconsistent))
}

func TestExportMany_MixedBatch(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	done := f.seed(t, vo.StatusProcessed)
	a := f.seed(t, vo.StatusCompleted)
	b := f.seed(t, vo.StatusCompleted)

	res, err := f.many.Execute(context.Background(), payroll.ExportManyInput{
		Actor:    f.org,
		ShiftIDs: []uuid.UUID{done.ID, a.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SucceededCount)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, done.ID, res.Failed[0].ShiftID)
	assert.Equal(t, apperror.ErrCodeAlreadyProcessed, res.Failed[0].Code)
	assert.Equal(t, []uuid.UUID{done.ID}, res.FailedIDs())
	assert.Equal(t, 2, store.Ledger().Count())
}

func TestExportMany_FailureDoesNotBlockOthers(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	a := f.seed(t, vo.StatusCompleted)
	open := f.seed(t, vo.StatusOpen)
	missing := uuid.New()

	res, err := f.many.Execute(context.Background(), payroll.ExportManyInput{
		Actor:    f.org,
		ShiftIDs: []uuid.UUID{missing, open.ID, a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SucceededCount)
	assert.Equal(t, 2, res.FailedCount)

	codes := map[uuid.UUID]apperror.ErrorCode{}
	for _, fl := range res.Failed {
		codes[fl.ShiftID] = fl.Code
	}
	assert.Equal(t, apperror.ErrCodeNotFound, codes[missing])
	assert.Equal(t, apperror.ErrCodeInvalidTransition, codes[open.ID])
}

func TestExportMany_Validation(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)

	_, err := f.many.Execute(context.Background(), payroll.ExportManyInput{Actor: f.org})
	assert.True(t, apperror.IsValidation(err))

	ids := make([]uuid.UUID, 11)
	for i := range ids {
		ids[i] = uuid.New()
	}
	_, err = f.many.Execute(context.Background(), payroll.ExportManyInput{Actor: f.org, ShiftIDs: ids})
	assert.True(t, apperror.IsValidation(err))

	cand := entity.Actor{UserID: uuid.New(), Role: entity.RoleCandidate}
	_, err = f.many.Execute(context.Background(), payroll.ExportManyInput{Actor: cand, ShiftIDs: ids[:1]})
	assert.True(t, apperror.IsForbidden(err))
}

func TestListEligible_ScopedToOrganization(t *testing.T) {
	store := memstore.New()
	f := newFixture(store.Shifts(), store)
	mine := f.seed(t, vo.StatusCompleted)
	f.seed(t, vo.StatusProcessed)

	foreign, err := entity.NewShift(entity.ShiftParams{
		OrganizationID: uuid.New(),
		Title:          "Natt",
		Date:           vo.MustDate("2025-06-03"),
		StartTime:      vo.MustClock("08:00"),
		EndTime:        vo.MustClock("12:00"),
		HourlyRate:     decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	foreign.Status = vo.StatusCompleted
	require.NoError(t, store.Shifts().Create(context.Background(), foreign))

	list := payroll.NewListEligibleUseCase(store.Shifts(), 50)
	got, err := list.Execute(context.Background(), f.org)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	admin := entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	all, err := list.Execute(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSelection(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	s := payroll.NewSelection(a, b, a)
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Toggle(c))
	assert.False(t, s.Toggle(b))
	assert.Equal(t, []uuid.UUID{a, c}, s.IDs())

	removed := s.Prune([]uuid.UUID{c})
	assert.Equal(t, []uuid.UUID{a}, removed)
	assert.Equal(t, []uuid.UUID{c}, s.IDs())
	assert.False(t, s.Has(a))
}
