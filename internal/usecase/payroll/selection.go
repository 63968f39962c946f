package payroll

import "github.com/google/uuid"

// Selection - отмеченные к выгрузке смены. Порядок отметки сохраняется.
// Перед каждой пакетной выгрузкой выборку нужно сверить со свежим списком допустимых смен через Prune.
type Selection struct {
	order []uuid.UUID
	set   map[uuid.UUID]struct{}
}

func NewSelection(ids ...uuid.UUID) *Selection {
	s := &Selection{set: make(map[uuid.UUID]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Selection) Add(id uuid.UUID) bool {
	if _, ok := s.set[id]; ok {
		return false
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Selection) Remove(id uuid.UUID) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle возвращает true, если смена теперь отмечена.
func (s *Selection) Toggle(id uuid.UUID) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	return s.Add(id)
}

func (s *Selection) Has(id uuid.UUID) bool {
	_, ok := s.set[id]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

func (s *Selection) IDs() []uuid.UUID {
	return append([]uuid.UUID(nil), s.order...)
}

// Prune снимает отметку со смен, которых нет в eligible, и возвращает снятые в порядке отметки.
func (s *Selection) Prune(eligible []uuid.UUID) []uuid.UUID {
	keep := make(map[uuid.UUID]struct{}, len(eligible))
	for _, id := range eligible {
		keep[id] = struct{}{}
	}

	var removed []uuid.UUID
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := keep[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(s.set, id)
		removed = append(removed, id)
	}
	s.order = kept
	return removed
}
