package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// ClockTime - время суток в минутах от полуночи. 24:00 допускается как конец дня.
type ClockTime int

const minutesPerDay = 24 * 60

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, apperror.Newf(apperror.ErrCodeValidation, "некорректное время %02d:%02d", hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

func MustClock(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClockTime принимает HH:MM и HH:MM:SS (секунды должны быть нулевыми).
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное время: "+s)
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || sec != 0 {
			return 0, apperror.New(apperror.ErrCodeValidation, "некорректное время: "+s)
		}
	default:
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректное время: "+s)
	}
	return NewClockTime(h, m)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value пишет время в колонку TIME.
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute()), nil
}

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	case time.Time:
		*c = ClockTime(v.Hour()*60 + v.Minute())
		return nil
	}
	return fmt.Errorf("clock time: unsupported source %T", src)
}

// Date - календарная дата без времени, хранится как полночь UTC.
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректная дата: "+s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// At возвращает момент времени clock в этот день в указанной зоне.
func (d Date) At(clock ClockTime, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, int(clock), 0, 0, loc)
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON перекрывает сериализацию встроенного time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	}
	return fmt.Errorf("date: unsupported source %T", src)
}

// Weekday - день недели в текстовом виде mon..sun.
type Weekday time.Weekday

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

func ParseWeekday(s string) (Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректный день недели: "+s)
	}
	return Weekday(wd), nil
}

func (w Weekday) String() string {
	return strings.ToLower(time.Weekday(w).String()[:3])
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
