// Package memstore - хранилище в памяти с той же семантикой условных обновлений,
// что и PostgreSQL-адаптеры. Используется для локального запуска (STORE_DRIVER=memory) и в тестах.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

type Store struct {
	mu         sync.Mutex
	shifts     map[uuid.UUID]*entity.Shift
	postings   map[uuid.UUID]*entity.Posting
	apps       map[uuid.UUID]*entity.Application
	ledger     map[uuid.UUID]*entity.PayrollRecord
	candidates map[uuid.UUID]bool
}

func New() *Store {
	return &Store{
		shifts:     make(map[uuid.UUID]*entity.Shift),
		postings:   make(map[uuid.UUID]*entity.Posting),
		apps:       make(map[uuid.UUID]*entity.Application),
		ledger:     make(map[uuid.UUID]*entity.PayrollRecord),
		candidates: make(map[uuid.UUID]bool),
	}
}

func (s *Store) Shifts() *ShiftRepo             { return &ShiftRepo{s: s} }
func (s *Store) Postings() *PostingRepo         { return &PostingRepo{s: s} }
func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }
func (s *Store) Targets() *TargetRepo           { return &TargetRepo{s: s} }
func (s *Store) Ledger() *Ledger                { return &Ledger{s: s} }
func (s *Store) Candidates() *Candidates        { return &Candidates{s: s} }

var concurrent = apperror.ErrConcurrent

func cloneShift(sh *entity.Shift) *entity.Shift {
	c := *sh
	if sh.AssigneeID != nil {
		id := *sh.AssigneeID
		c.AssigneeID = &id
	}
	return &c
}

func clonePosting(p *entity.Posting) *entity.Posting {
	c := *p
	if p.AssigneeID != nil {
		id := *p.AssigneeID
		c.AssigneeID = &id
	}
	c.RequiredExperience = append([]string(nil), p.RequiredExperience...)
	return &c
}

func cloneApp(a *entity.Application) *entity.Application {
	c := *a
	return &c
}

// target возвращает статус и assignee цели; вызывается под s.mu.
func (s *Store) target(kind vo.TargetKind, id uuid.UUID) (*entity.Target, error) {
	switch kind {
	case vo.TargetShift:
		if sh, ok := s.shifts[id]; ok {
			t := cloneShift(sh).Target()
			return &t, nil
		}
		return nil, apperror.ErrShiftNotFound
	case vo.TargetPosting:
		if p, ok := s.postings[id]; ok {
			t := clonePosting(p).Target()
			return &t, nil
		}
		return nil, apperror.ErrPostingNotFound
	}
	return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип цели")
}

// fill переводит цель open -> filled; вызывается под s.mu.
func (s *Store) fill(kind vo.TargetKind, id, assignee uuid.UUID, now time.Time) bool {
	switch kind {
	case vo.TargetShift:
		sh := s.shifts[id]
		if sh == nil || sh.Status != vo.StatusOpen {
			return false
		}
		sh.Status, sh.AssigneeID, sh.UpdatedAt = vo.StatusFilled, &assignee, now
		return true
	case vo.TargetPosting:
		p := s.postings[id]
		if p == nil || p.Status != vo.StatusOpen {
			return false
		}
		p.Status, p.AssigneeID, p.UpdatedAt = vo.StatusFilled, &assignee, now
		return true
	}
	return false
}

type ShiftRepo struct{ s *Store }

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

func (r *ShiftRepo) Create(_ context.Context, shift *entity.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (r *ShiftRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[id]
	if !ok {
		return nil, apperror.ErrShiftNotFound
	}
	return cloneShift(sh), nil
}

func (r *ShiftRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to vo.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[id]
	if !ok {
		return apperror.ErrShiftNotFound
	}
	if sh.Status != from {
		return concurrent
	}
	sh.Status, sh.UpdatedAt = to, time.Now()
	if to == vo.StatusCancelled {
		sh.AssigneeID = nil
	}
	return nil
}

func (r *ShiftRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[id]
	if !ok {
		return apperror.ErrShiftNotFound
	}
	if (sh.Status != vo.StatusOpen && sh.Status != vo.StatusCancelled) || sh.PayrollExported {
		return concurrent
	}
	delete(r.s.shifts, id)
	return nil
}

func (r *ShiftRepo) ListEligibleForExport(_ context.Context, organizationID *uuid.UUID, limit int) ([]*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Shift
	for _, sh := range r.s.shifts {
		if !sh.IsExportEligible() {
			continue
		}
		if organizationID != nil && sh.OrganizationID != *organizationID {
			continue
		}
		out = append(out, cloneShift(sh))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ShiftRepo) ListByStatus(_ context.Context, status vo.Status, limit int) ([]*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Shift
	for _, sh := range r.s.shifts {
		if sh.Status == status {
			out = append(out, cloneShift(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type PostingRepo struct{ s *Store }

var _ repository.PostingRepository = (*PostingRepo)(nil)

func (r *PostingRepo) Create(_ context.Context, p *entity.Posting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.postings[p.ID] = clonePosting(p)
	return nil
}

func (r *PostingRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Posting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return nil, apperror.ErrPostingNotFound
	}
	return clonePosting(p), nil
}

func (r *PostingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to vo.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return apperror.ErrPostingNotFound
	}
	if p.Status != from {
		return concurrent
	}
	p.Status, p.UpdatedAt = to, time.Now()
	if to == vo.StatusCancelled {
		p.AssigneeID = nil
	}
	return nil
}

func (r *PostingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return apperror.ErrPostingNotFound
	}
	if p.Status != vo.StatusOpen && p.Status != vo.StatusCancelled {
		return concurrent
	}
	delete(r.s.postings, id)
	return nil
}

func (r *PostingRepo) ListByStatus(_ context.Context, status vo.Status, limit int) ([]*entity.Posting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Posting
	for _, p := range r.s.postings {
		if p.Status == status {
			out = append(out, clonePosting(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.End.Before(out[j].Period.End.Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type TargetRepo struct{ s *Store }

var _ repository.TargetRepository = (*TargetRepo)(nil)

func (r *TargetRepo) GetTarget(_ context.Context, kind vo.TargetKind, id uuid.UUID) (*entity.Target, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.target(kind, id)
}

type Candidates struct{ s *Store }

var _ repository.CandidateDirectory = (*Candidates)(nil)

// Add регистрирует кандидата; в памяти кандидаты существуют только после Add.
func (c *Candidates) Add(id uuid.UUID) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.candidates[id] = true
}

func (c *Candidates) Remove(id uuid.UUID) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.candidates, id)
}

func (c *Candidates) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.candidates[id], nil
}

type Ledger struct{ s *Store }

var _ repository.PayrollLedger = (*Ledger)(nil)

// Commit пишет запись и отмечает смену под одной блокировкой хранилища.
func (l *Ledger) Commit(_ context.Context, rec *entity.PayrollRecord) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	sh, ok := l.s.shifts[rec.ShiftID]
	if !ok {
		return apperror.ErrShiftNotFound
	}
	switch {
	case sh.PayrollExported || sh.Status == vo.StatusProcessed:
		return apperror.ErrAlreadyExported
	case sh.Status != vo.StatusCompleted:
		return concurrent
	}
	if _, exists := l.s.ledger[rec.ShiftID]; exists {
		return apperror.ErrLedgerMismatch
	}
	c := *rec
	l.s.ledger[rec.ShiftID] = &c
	sh.Status, sh.PayrollExported, sh.UpdatedAt = vo.StatusProcessed, true, time.Now()
	return nil
}

// Put кладёт запись в реестр, не трогая смену. Так выглядит запись, сделанная в обход Commit.
func (l *Ledger) Put(rec *entity.PayrollRecord) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	c := *rec
	l.s.ledger[rec.ShiftID] = &c
}

func (l *Ledger) GetByShift(_ context.Context, shiftID uuid.UUID) (*entity.PayrollRecord, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	rec, ok := l.s.ledger[shiftID]
	if !ok {
		return nil, apperror.New(apperror.ErrCodeNotFound, "запись реестра не найдена")
	}
	c := *rec
	return &c, nil
}

// Count - число записей в реестре.
func (l *Ledger) Count() int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return len(l.s.ledger)
}
