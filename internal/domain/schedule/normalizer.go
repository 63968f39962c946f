package schedule

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ErrEmptySchedule - объявленный шаблон не дал ни одной даты в периоде.
var ErrEmptySchedule = apperror.New(apperror.ErrCodeEmptySchedule, "расписание не содержит ни одного рабочего дня в выбранном периоде")

// Normalize разворачивает определение расписания в упорядоченный список рабочих отрезков без повторов дат.
// Пустое определение даёт пустой список без ошибки.
func Normalize(def Definition, period Period, opts Options) ([]Interval, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	var (
		out []Interval
		err error
	)
	switch {
	case len(def.Specific) > 0:
		out, err = normalizeSpecific(def.Specific, period)
	case len(def.Recurring) > 0:
		out, err = expandRecurring(def.Recurring, period, opts)
	default:
		return []Interval{}, nil
	}
	if err != nil {
		return nil, err
	}

	out = dedupeByDate(out)
	if len(out) == 0 {
		return nil, ErrEmptySchedule
	}
	return out, nil
}

func normalizeSpecific(slots []DatedSlot, period Period) ([]Interval, error) {
	out := make([]Interval, 0, len(slots))
	for _, s := range slots {
		if !period.Contains(s.Date) {
			return nil, apperror.Newf(apperror.ErrCodeValidation, "дата %s вне периода %s..%s", s.Date, period.Start, period.End)
		}
		out = append(out, Interval{Date: s.Date, Start: s.Start, End: s.End})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	for i := 1; i < len(out); i++ {
		if out[i].Date.Equal(out[i-1].Date.Time) {
			return nil, apperror.Newf(apperror.ErrCodeValidation, "дата %s указана дважды", out[i].Date)
		}
	}
	return out, nil
}

// expandRecurring исключает выходные до сопоставления с днями недели,
// поэтому объявленные субботние и воскресные слоты не попадут в результат.
func expandRecurring(slots []RecurringSlot, period Period, opts Options) ([]Interval, error) {
	byDay := make(map[time.Weekday]RecurringSlot, len(slots))
	weekdays := make([]rrule.Weekday, 0, len(slots))
	for _, s := range slots {
		wd := time.Weekday(s.Weekday)
		if opts.ExcludeWeekends && (wd == time.Saturday || wd == time.Sunday) {
			continue
		}
		byDay[wd] = s
		weekdays = append(weekdays, rruleWeekdays[wd])
	}
	if len(weekdays) == 0 {
		return nil, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   period.Start.Time,
		Until:     period.End.Time,
		Byweekday: weekdays,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось построить правило повторения")
	}

	occurrences := rule.All()
	out := make([]Interval, 0, len(occurrences))
	for _, occ := range occurrences {
		date := valueobject.DateOf(occ)
		if !period.Contains(date) {
			continue
		}
		slot := byDay[occ.Weekday()]
		out = append(out, Interval{Date: date, Start: slot.Start, End: slot.End})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

// dedupeByDate оставляет первое вхождение каждой даты.
func dedupeByDate(in []Interval) []Interval {
	seen := make(map[valueobject.Date]bool, len(in))
	out := in[:0]
	for _, iv := range in {
		if seen[iv.Date] {
			continue
		}
		seen[iv.Date] = true
		out = append(out, iv)
	}
	return out
}
