package compensation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// ErrNotComputable - у цели нет нормализованного расписания.
var ErrNotComputable = apperror.New(apperror.ErrCodeNotComputable, "нет расписания: расчёт оплаты невозможен")

type Input struct {
	Intervals    []schedule.Interval
	HourlyRate   decimal.Decimal
	BreakMinutes int
	Surcharge    decimal.Decimal
	Currency     string
}

type BandLine struct {
	Band       string          `json:"band"`
	Hours      decimal.Decimal `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Pay        decimal.Decimal `json:"pay"`
}

type Result struct {
	Hours      decimal.Decimal `json:"hours"`
	BasePay    decimal.Decimal `json:"base_pay"`
	PremiumPay decimal.Decimal `json:"premium_pay"`
	Surcharge  decimal.Decimal `json:"surcharge"`
	TotalPay   decimal.Decimal `json:"total_pay"`
	Currency   string          `json:"currency"`
	Bands      []BandLine      `json:"bands"`
}

type Calculator struct {
	bands    []Band
	holidays map[valueobject.Date]bool
}

func NewCalculator(bands []Band, holidays []valueobject.Date) *Calculator {
	if len(bands) == 0 {
		bands = DefaultBands()
	}
	h := make(map[valueobject.Date]bool, len(holidays))
	for _, d := range holidays {
		h[d] = true
	}
	return &Calculator{bands: bands, holidays: h}
}

type daySegment struct {
	date     valueobject.Date
	from, to int
}

// splitByDay режет отрезок через полночь на две части, каждую со своим днём недели.
func splitByDay(iv schedule.Interval) []daySegment {
	if !iv.CrossesMidnight() {
		return []daySegment{{date: iv.Date, from: int(iv.Start), to: int(iv.End)}}
	}
	segs := []daySegment{{date: iv.Date, from: int(iv.Start), to: 24 * 60}}
	if iv.End > 0 {
		segs = append(segs, daySegment{date: iv.Date.AddDays(1), from: 0, to: int(iv.End)})
	}
	return segs
}

// bandMinutes накапливает минуты по индексу окна. На пересечении окон действует наибольший множитель.
func (c *Calculator) bandMinutes(seg daySegment, acc map[int]int) {
	holiday := c.holidays[seg.date]
	day := seg.date.Weekday()

	points := []int{seg.from, seg.to}
	for _, b := range c.bands {
		for _, p := range []int{int(b.From), int(b.To)} {
			if p > seg.from && p < seg.to {
				points = append(points, p)
			}
		}
	}
	sort.Ints(points)

	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]
		if lo == hi {
			continue
		}
		best := -1
		for idx, b := range c.bands {
			if !b.appliesOn(day, holiday) || !b.covers(lo) {
				continue
			}
			if best < 0 || b.Multiplier.GreaterThan(c.bands[best].Multiplier) {
				best = idx
			}
		}
		if best >= 0 {
			acc[best] += hi - lo
		}
	}
}

// Compute считает часы, базовую оплату и OB-надбавки. Перерыв уменьшает только базовые часы.
func (c *Calculator) Compute(in Input) (*Result, error) {
	if len(in.Intervals) == 0 {
		return nil, ErrNotComputable
	}
	if in.HourlyRate.IsNegative() {
		return nil, apperror.New(apperror.ErrCodeValidation, "ставка не может быть отрицательной")
	}

	sixty := decimal.NewFromInt(60)
	totalMinutes := 0
	perBand := make(map[int]int)
	for _, iv := range in.Intervals {
		totalMinutes += iv.Minutes()
		for _, seg := range splitByDay(iv) {
			c.bandMinutes(seg, perBand)
		}
	}
	if in.BreakMinutes > 0 {
		totalMinutes -= in.BreakMinutes
		if totalMinutes < 0 {
			totalMinutes = 0
		}
	}

	hours := decimal.NewFromInt(int64(totalMinutes)).Div(sixty)
	base := hours.Mul(in.HourlyRate)

	// Окна с одинаковым именем (ночь до и после полуночи) сводятся в одну строку.
	lines := make(map[string]*BandLine)
	var order []string
	premium := decimal.Zero
	for idx, b := range c.bands {
		minutes, ok := perBand[idx]
		if !ok || minutes == 0 {
			continue
		}
		h := decimal.NewFromInt(int64(minutes)).Div(sixty)
		pay := h.Mul(in.HourlyRate).Mul(b.Multiplier)
		premium = premium.Add(pay)

		line, ok := lines[b.Name]
		if !ok {
			line = &BandLine{Band: b.Name, Multiplier: b.Multiplier, Hours: decimal.Zero, Pay: decimal.Zero}
			lines[b.Name] = line
			order = append(order, b.Name)
		}
		line.Hours = line.Hours.Add(h)
		line.Pay = line.Pay.Add(pay)
	}

	currency := in.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	res := &Result{
		Hours:      hours.Round(2),
		BasePay:    base.Round(2),
		PremiumPay: premium.Round(2),
		Surcharge:  in.Surcharge.Round(2),
		TotalPay:   base.Add(premium).Add(in.Surcharge).Round(2),
		Currency:   currency,
		Bands:      make([]BandLine, 0, len(order)),
	}
	for _, name := range order {
		l := lines[name]
		res.Bands = append(res.Bands, BandLine{Band: l.Band, Hours: l.Hours.Round(2), Multiplier: l.Multiplier, Pay: l.Pay.Round(2)})
	}
	return res, nil
}
