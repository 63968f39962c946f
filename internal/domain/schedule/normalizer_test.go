package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	vo "github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

func slot(day time.Weekday, start, end string) RecurringSlot {
	return RecurringSlot{Weekday: vo.Weekday(day), Start: vo.MustClock(start), End: vo.MustClock(end)}
}

func dated(date, start, end string) DatedSlot {
	return DatedSlot{Date: vo.MustDate(date), Start: vo.MustClock(start), End: vo.MustClock(end)}
}

func period(start, end string) Period {
	return Period{Start: vo.MustDate(start), End: vo.MustDate(end)}
}

func TestNormalize_RecurringMonWed(t *testing.T) {
	def := Definition{Recurring: []RecurringSlot{
		slot(time.Monday, "09:00", "17:00"),
		slot(time.Wednesday, "09:00", "17:00"),
	}}

	got, err := Normalize(def, period("2025-06-02", "2025-06-08"), Options{})
	require.NoError(t, err)

	want := []Interval{
		{Date: vo.MustDate("2025-06-02"), Start: vo.MustClock("09:00"), End: vo.MustClock("17:00")},
		{Date: vo.MustDate("2025-06-04"), Start: vo.MustClock("09:00"), End: vo.MustClock("17:00")},
	}
	assert.Equal(t, want, got)
}

func TestNormalize_ExcludeWeekendsDropsDeclaredWeekendSlots(t *testing.T) {
	def := Definition{Recurring: []RecurringSlot{
		slot(time.Friday, "08:00", "12:00"),
		slot(time.Saturday, "10:00", "14:00"),
	}}
	p := period("2025-06-02", "2025-06-15")

	withWeekends, err := Normalize(def, p, Options{})
	require.NoError(t, err)
	assert.Len(t, withWeekends, 4)

	weekdaysOnly, err := Normalize(def, p, Options{ExcludeWeekends: true})
	require.NoError(t, err)
	require.Len(t, weekdaysOnly, 2)
	for _, iv := range weekdaysOnly {
		assert.False(t, iv.Date.IsWeekend(), iv.Date.String())
	}
}

func TestNormalize_OnlyWeekendSlotsExcludedIsEmptySchedule(t *testing.T) {
	def := Definition{Recurring: []RecurringSlot{slot(time.Sunday, "10:00", "14:00")}}

	_, err := Normalize(def, period("2025-06-02", "2025-06-15"), Options{ExcludeWeekends: true})
	assert.True(t, apperror.Is(err, apperror.ErrCodeEmptySchedule))
}

func TestNormalize_PatternWithNoMatchingDayIsEmptySchedule(t *testing.T) {
	def := Definition{Recurring: []RecurringSlot{slot(time.Monday, "09:00", "17:00")}}

	_, err := Normalize(def, period("2025-06-03", "2025-06-05"), Options{})
	assert.True(t, apperror.Is(err, apperror.ErrCodeEmptySchedule))
}

func TestNormalize_EmptyDefinitionIsNotAnError(t *testing.T) {
	got, err := Normalize(Definition{}, period("2025-06-02", "2025-06-08"), Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalize_SingleDayPeriod(t *testing.T) {
	def := Definition{Recurring: []RecurringSlot{
		slot(time.Monday, "09:00", "17:00"),
		slot(time.Tuesday, "09:00", "17:00"),
	}}

	got, err := Normalize(def, period("2025-06-02", "2025-06-02"), Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-02", got[0].Date.String())
}

func TestNormalize_SpecificDatesSorted(t *testing.T) {
	def := Definition{Specific: []DatedSlot{
		dated("2025-06-05", "10:00", "12:00"),
		dated("2025-06-03", "08:00", "16:00"),
	}}

	got, err := Normalize(def, period("2025-06-01", "2025-06-30"), Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-06-03", got[0].Date.String())
	assert.Equal(t, "2025-06-05", got[1].Date.String())
}

func TestNormalize_SpecificDateOutsidePeriod(t *testing.T) {
	def := Definition{Specific: []DatedSlot{dated("2025-07-01", "10:00", "12:00")}}

	_, err := Normalize(def, period("2025-06-01", "2025-06-30"), Options{})
	assert.True(t, apperror.IsValidation(err))
}

func TestNormalize_RejectsInvalidDefinitions(t *testing.T) {
	tests := map[string]Definition{
		"both representations": {
			Recurring: []RecurringSlot{slot(time.Monday, "09:00", "17:00")},
			Specific:  []DatedSlot{dated("2025-06-03", "09:00", "17:00")},
		},
		"duplicate weekday": {Recurring: []RecurringSlot{
			slot(time.Monday, "09:00", "12:00"),
			slot(time.Monday, "13:00", "17:00"),
		}},
		"duplicate date": {Specific: []DatedSlot{
			dated("2025-06-03", "09:00", "12:00"),
			dated("2025-06-03", "13:00", "17:00"),
		}},
		"start after end": {Recurring: []RecurringSlot{slot(time.Monday, "17:00", "09:00")}},
	}

	for name, def := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(def, period("2025-06-01", "2025-06-30"), Options{})
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestNormalize_InvertedPeriod(t *testing.T) {
	_, err := Normalize(Definition{}, period("2025-06-08", "2025-06-02"), Options{})
	assert.True(t, apperror.IsValidation(err))
}

func TestNormalize_NeverLeavesPeriodOrRepeatsDate(t *testing.T) {
	all := []RecurringSlot{
		slot(time.Monday, "08:00", "16:00"),
		slot(time.Tuesday, "08:00", "16:00"),
		slot(time.Wednesday, "08:00", "16:00"),
		slot(time.Thursday, "08:00", "16:00"),
		slot(time.Friday, "08:00", "16:00"),
		slot(time.Saturday, "08:00", "16:00"),
		slot(time.Sunday, "08:00", "16:00"),
	}
	start := vo.MustDate("2025-01-01")

	for offset := 0; offset < 14; offset++ {
		for length := 0; length < 40; length += 3 {
			p := Period{Start: start.AddDays(offset), End: start.AddDays(offset + length)}
			for n := 1; n <= len(all); n++ {
				got, err := Normalize(Definition{Recurring: all[:n]}, p, Options{ExcludeWeekends: n%2 == 0})
				if err != nil {
					require.True(t, apperror.Is(err, apperror.ErrCodeEmptySchedule), "unexpected %v", err)
					continue
				}
				seen := map[string]bool{}
				for i, iv := range got {
					assert.True(t, p.Contains(iv.Date), "%s outside %s..%s", iv.Date, p.Start, p.End)
					assert.False(t, seen[iv.Date.String()], "duplicate %s", iv.Date)
					seen[iv.Date.String()] = true
					if i > 0 {
						assert.True(t, got[i-1].Date.Before(iv.Date.Time))
					}
				}
			}
		}
	}
}

func TestInterval_CrossesMidnight(t *testing.T) {
	iv := Interval{Date: vo.MustDate("2025-06-06"), Start: vo.MustClock("22:00"), End: vo.MustClock("06:00")}

	assert.True(t, iv.CrossesMidnight())
	assert.Equal(t, 8*60, iv.Minutes())
	assert.Equal(t, time.Date(2025, 6, 7, 6, 0, 0, 0, time.UTC), iv.EndsAt(time.UTC))

	last, ok := LastEnd([]Interval{iv, {Date: vo.MustDate("2025-06-02"), Start: 0, End: 60}}, time.UTC)
	require.True(t, ok)
	assert.Equal(t, iv.EndsAt(time.UTC), last)
}

func TestRecurringSlot_DecodeRequiresWeekday(t *testing.T) {
	var def Definition
	err := json.Unmarshal([]byte(`{"recurring": [{"start": "09:00", "end": "17:00"}]}`), &def)
	assert.True(t, apperror.IsValidation(err), "%v", err)

	err = json.Unmarshal([]byte(`{"recurring": [{"weekday": null, "start": "09:00", "end": "17:00"}]}`), &def)
	assert.True(t, apperror.IsValidation(err), "%v", err)

	err = yaml.Unmarshal([]byte("recurring:\n  - {start: \"09:00\", end: \"17:00\"}\n"), &def)
	assert.True(t, apperror.IsValidation(err), "%v", err)
}

func TestRecurringSlot_DecodeWeekday(t *testing.T) {
	var def Definition
	require.NoError(t, json.Unmarshal([]byte(`{"recurring": [{"weekday": "sun", "start": "09:00", "end": "13:00"}]}`), &def))
	require.Len(t, def.Recurring, 1)
	assert.Equal(t, slot(time.Sunday, "09:00", "13:00"), def.Recurring[0])

	var fromYAML Definition
	require.NoError(t, yaml.Unmarshal([]byte("recurring:\n  - {weekday: tue, start: \"16:00\", end: \"20:00\"}\n"), &fromYAML))
	require.Len(t, fromYAML.Recurring, 1)
	assert.Equal(t, slot(time.Tuesday, "16:00", "20:00"), fromYAML.Recurring[0])
}
