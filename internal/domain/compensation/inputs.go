package compensation

import (
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
)

// ForShift: один отрезок, перерыв и надбавка за срочность.
func ForShift(shift *entity.Shift) Input {
	in := Input{
		Intervals:  []schedule.Interval{shift.Interval()},
		HourlyRate: shift.HourlyRate,
	}
	if shift.Break != nil {
		in.BreakMinutes = shift.Break.Minutes()
	}
	if shift.UrgentSurcharge != nil {
		in.Surcharge = *shift.UrgentSurcharge
	}
	return in
}

// ForPosting нормализует расписание вакансии. Пустое расписание даёт Input без отрезков.
func ForPosting(posting *entity.Posting) (Input, error) {
	intervals, err := posting.Intervals()
	if err != nil {
		return Input{}, err
	}
	return Input{Intervals: intervals, HourlyRate: posting.HourlyRate}, nil
}
