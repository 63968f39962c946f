package schedule

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// RecurringSlot - рабочее время в определённый день недели.
type RecurringSlot struct {
	Weekday valueobject.Weekday   `json:"weekday" yaml:"weekday"`
	Start   valueobject.ClockTime `json:"start" yaml:"start"`
	End     valueobject.ClockTime `json:"end" yaml:"end"`
}

// recurringSlotWire - форма слота при разборе. Нулевой Weekday это воскресенье,
// поэтому отсутствие дня видно только через указатель.
type recurringSlotWire struct {
	Weekday *valueobject.Weekday  `json:"weekday" yaml:"weekday"`
	Start   valueobject.ClockTime `json:"start" yaml:"start"`
	End     valueobject.ClockTime `json:"end" yaml:"end"`
}

func (s *RecurringSlot) UnmarshalJSON(b []byte) error {
	var w recurringSlotWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	return s.fromWire(w)
}

func (s *RecurringSlot) UnmarshalYAML(node *yaml.Node) error {
	var w recurringSlotWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	return s.fromWire(w)
}

func (s *RecurringSlot) fromWire(w recurringSlotWire) error {
	if w.Weekday == nil {
		return apperror.New(apperror.ErrCodeValidation, "в слоте расписания не указан день недели")
	}
	*s = RecurringSlot{Weekday: *w.Weekday, Start: w.Start, End: w.End}
	return nil
}

// DatedSlot - рабочее время в конкретную дату.
type DatedSlot struct {
	Date  valueobject.Date      `json:"date" yaml:"date"`
	Start valueobject.ClockTime `json:"start" yaml:"start"`
	End   valueobject.ClockTime `json:"end" yaml:"end"`
}

// Definition описывает расписание одним из двух взаимоисключающих способов.
type Definition struct {
	Recurring []RecurringSlot `json:"recurring,omitempty" yaml:"recurring,omitempty"`
	Specific  []DatedSlot     `json:"specific_dates,omitempty" yaml:"specific_dates,omitempty"`
}

func (d Definition) IsEmpty() bool {
	return len(d.Recurring) == 0 && len(d.Specific) == 0
}

func (d Definition) IsRecurring() bool {
	return len(d.Recurring) > 0
}

func (d Definition) Validate() error {
	if len(d.Recurring) > 0 && len(d.Specific) > 0 {
		return apperror.New(apperror.ErrCodeValidation, "расписание задаётся либо по дням недели, либо списком дат, но не обоими способами")
	}

	seenDays := make(map[valueobject.Weekday]bool, len(d.Recurring))
	for _, slot := range d.Recurring {
		if seenDays[slot.Weekday] {
			return apperror.Newf(apperror.ErrCodeValidation, "день недели %s указан дважды", slot.Weekday)
		}
		seenDays[slot.Weekday] = true
		if slot.Start >= slot.End {
			return apperror.Newf(apperror.ErrCodeValidation, "%s: начало %s должно быть раньше конца %s", slot.Weekday, slot.Start, slot.End)
		}
	}

	seenDates := make(map[valueobject.Date]bool, len(d.Specific))
	for _, slot := range d.Specific {
		if seenDates[slot.Date] {
			return apperror.Newf(apperror.ErrCodeValidation, "дата %s указана дважды", slot.Date)
		}
		seenDates[slot.Date] = true
		if slot.Start >= slot.End {
			return apperror.Newf(apperror.ErrCodeValidation, "%s: начало %s должно быть раньше конца %s", slot.Date, slot.Start, slot.End)
		}
	}
	return nil
}

// Period - ограничивающий период, обе границы включительно.
type Period struct {
	Start valueobject.Date `json:"start" yaml:"start"`
	End   valueobject.Date `json:"end" yaml:"end"`
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return apperror.New(apperror.ErrCodeValidation, "период должен иметь начало и конец")
	}
	if p.End.Before(p.Start.Time) {
		return apperror.Newf(apperror.ErrCodeValidation, "начало периода %s позже конца %s", p.Start, p.End)
	}
	return nil
}

func (p Period) Contains(d valueobject.Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

type Options struct {
	ExcludeWeekends bool `json:"exclude_weekends" yaml:"exclude_weekends"`
}

// Interval - конкретный рабочий отрезок. End <= Start означает переход через полночь.
type Interval struct {
	Date  valueobject.Date      `json:"date"`
	Start valueobject.ClockTime `json:"start"`
	End   valueobject.ClockTime `json:"end"`
}

func (i Interval) CrossesMidnight() bool {
	return i.End <= i.Start
}

func (i Interval) StartsAt(loc *time.Location) time.Time {
	return i.Date.At(i.Start, loc)
}

func (i Interval) EndsAt(loc *time.Location) time.Time {
	if i.CrossesMidnight() {
		return i.Date.AddDays(1).At(i.End, loc)
	}
	return i.Date.At(i.End, loc)
}

func (i Interval) Minutes() int {
	if i.CrossesMidnight() {
		return int(i.End) + 24*60 - int(i.Start)
	}
	return int(i.End - i.Start)
}

// LastEnd возвращает окончание последнего запланированного отрезка.
func LastEnd(intervals []Interval, loc *time.Location) (time.Time, bool) {
	var last time.Time
	for _, iv := range intervals {
		if end := iv.EndsAt(loc); end.After(last) {
			last = end
		}
	}
	return last, len(intervals) > 0
}
