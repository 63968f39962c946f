package compensation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

// Band - окно OB-надбавки внутри суток. Пустой Days означает любой день.
type Band struct {
	Name         string
	Multiplier   decimal.Decimal
	Days         []time.Weekday
	HolidaysOnly bool
	From         valueobject.ClockTime
	To           valueobject.ClockTime
}

const (
	BandEvening = "evening"
	BandNight   = "night"
	BandWeekend = "weekend"
	BandHoliday = "holiday"
)

var weekdaysMonFri = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// DefaultBands - стандартная сетка OB. При равных множителях выигрывает окно, указанное раньше.
func DefaultBands() []Band {
	return []Band{
		{Name: BandHoliday, Multiplier: decimal.NewFromInt(1), HolidaysOnly: true, From: 0, To: 24 * 60},
		{Name: BandNight, Multiplier: decimal.RequireFromString("0.5"), From: 22 * 60, To: 24 * 60},
		{Name: BandNight, Multiplier: decimal.RequireFromString("0.5"), From: 0, To: 6 * 60},
		{Name: BandWeekend, Multiplier: decimal.RequireFromString("0.5"), Days: []time.Weekday{time.Saturday, time.Sunday}, From: 0, To: 24 * 60},
		{Name: BandEvening, Multiplier: decimal.RequireFromString("0.25"), Days: weekdaysMonFri, From: 18 * 60, To: 22 * 60},
	}
}

func (b Band) appliesOn(day time.Weekday, holiday bool) bool {
	if b.HolidaysOnly {
		return holiday
	}
	if len(b.Days) == 0 {
		return true
	}
	for _, d := range b.Days {
		if d == day {
			return true
		}
	}
	return false
}

func (b Band) covers(minute int) bool {
	return minute >= int(b.From) && minute < int(b.To)
}
