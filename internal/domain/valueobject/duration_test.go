package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration_Grammar(t *testing.T) {
	tests := []struct {
		input       string
		want        string
		unparseable bool
	}{
		{input: "", want: ""},
		{input: "   ", want: ""},
		{input: "0", want: ""},
		{input: "None", want: ""},
		{input: "45", want: "00:45:00"},
		{input: "90", want: "01:30:00"},
		{input: "30m", want: "00:30:00"},
		{input: "30 min", want: "00:30:00"},
		{input: "15 Minutes", want: "00:15:00"},
		{input: "1h", want: "01:00:00"},
		{input: "1.5 hours", want: "01:30:00"},
		{input: "0,75h", want: "00:45:00"},
		{input: "0.33h", want: "00:20:00"},
		{input: "1:15", want: "01:15:00"},
		{input: "1:30", want: "01:30:00"},
		{input: "01:00:30", want: "01:00:30"},
		{input: "banana", unparseable: true},
		{input: "00", unparseable: true},
		{input: "0h", unparseable: true},
		{input: "0:00", unparseable: true},
		{input: "1:75", unparseable: true},
		{input: "-5", unparseable: true},
		{input: "5 days", unparseable: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDuration(tt.input)
			assert.Equal(t, tt.unparseable, got.WasUnparseable)
			if tt.want == "" {
				assert.Nil(t, got.Value)
				return
			}
			require.NotNil(t, got.Value)
			assert.Equal(t, tt.want, got.Value.String())
		})
	}
}

func TestParseDuration_RoundTrip(t *testing.T) {
	renderers := map[string]func(Span) string{
		"minutes": RenderMinutes,
		"hours":   RenderHours,
		"clock":   RenderClock,
	}

	for name, render := range renderers {
		for minutes := 1; minutes <= 600; minutes++ {
			span := SpanOfMinutes(minutes)
			got := ParseDuration(render(span))
			require.NotNil(t, got.Value, "%s: %q", name, render(span))
			assert.Equal(t, span, *got.Value, "%s: %q", name, render(span))
		}
	}
}

func TestParsedDuration_Err(t *testing.T) {
	assert.NoError(t, ParseDuration("").Err(""))
	assert.NoError(t, ParseDuration("30").Err("30"))

	err := ParseDuration("banana").Err("banana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNPARSEABLE_INPUT")
}

func TestParseCanonicalSpan(t *testing.T) {
	s, err := ParseCanonicalSpan("00:45:00")
	require.NoError(t, err)
	assert.Equal(t, 45, s.Minutes())

	_, err = ParseCanonicalSpan("45")
	assert.Error(t, err)
}
