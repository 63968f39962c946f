package valueobject

import (
	"database/sql/driver"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

// Span - длительность перерыва в секундах, канонический вид HH:MM:SS.
type Span struct {
	seconds int
}

func SpanOfMinutes(m int) Span { return Span{seconds: m * 60} }

func (s Span) Seconds() int { return s.seconds }
func (s Span) Minutes() int { return s.seconds / 60 }

func (s Span) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", s.seconds/3600, (s.seconds/60)%60, s.seconds%60)
}

func (s Span) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Span) UnmarshalText(b []byte) error {
	parsed, err := ParseCanonicalSpan(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Span) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan читает колонку INTERVAL, которую PostgreSQL отдаёт как HH:MM:SS.
func (s *Span) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	}
	return fmt.Errorf("span: unsupported source %T", src)
}

// ParseCanonicalSpan разбирает только HH:MM:SS.
func ParseCanonicalSpan(text string) (Span, error) {
	m := canonicalRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Span{}, apperror.New(apperror.ErrCodeUnparseableInput, "ожидается HH:MM:SS: "+text)
	}
	secs, ok := clockSeconds(m[1], m[2], m[3])
	if !ok {
		return Span{}, apperror.New(apperror.ErrCodeUnparseableInput, "ожидается HH:MM:SS: "+text)
	}
	return Span{seconds: secs}, nil
}

// ParsedDuration - результат разбора свободного текста.
// Value == nil и WasUnparseable == false означает "перерыва нет".
type ParsedDuration struct {
	Value          *Span
	WasUnparseable bool
}

// Err возвращает UNPARSEABLE_INPUT для непустого нераспознанного ввода.
func (p ParsedDuration) Err(input string) error {
	if !p.WasUnparseable {
		return nil
	}
	return apperror.Newf(apperror.ErrCodeUnparseableInput,
		"не удалось распознать длительность %q: используйте минуты (45), часы (1.5h) или H:MM", input)
}

type durationMatcher struct {
	name string
	re   *regexp.Regexp
	// seconds возвращает false, если совпадение по форме прошло, но значение некорректно.
	seconds func(m []string) (int, bool)
}

var (
	canonicalRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

	// Порядок важен: "45" - это минуты, "1:30" - часы:минуты, а не канонический вид.
	durationGrammar = []durationMatcher{
		{
			name: "bare_minutes",
			re:   regexp.MustCompile(`^(\d+)$`),
			seconds: func(m []string) (int, bool) {
				n, err := strconv.Atoi(m[1])
				return n * 60, err == nil
			},
		},
		{
			name: "minute_unit",
			re:   regexp.MustCompile(`^(\d+)[\s\-]?(m|min|mins|minute|minutes)$`),
			seconds: func(m []string) (int, bool) {
				n, err := strconv.Atoi(m[1])
				return n * 60, err == nil
			},
		},
		{
			name: "hour_unit",
			re:   regexp.MustCompile(`^(\d+(?:[.,]\d+)?)[\s\-]?(h|hr|hrs|hour|hours)$`),
			seconds: func(m []string) (int, bool) {
				f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
				if err != nil {
					return 0, false
				}
				return int(math.Round(f*60)) * 60, true
			},
		},
		{
			name: "hours_minutes",
			re:   regexp.MustCompile(`^(\d{1,2}):(\d{2})$`),
			seconds: func(m []string) (int, bool) {
				return clockSeconds(m[1], m[2], "0")
			},
		},
		{
			name: "canonical",
			re:   canonicalRe,
			seconds: func(m []string) (int, bool) {
				return clockSeconds(m[1], m[2], m[3])
			},
		},
	}
)

func clockSeconds(h, m, s string) (int, bool) {
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	ss, err3 := strconv.Atoi(s)
	if err1 != nil || err2 != nil || err3 != nil || mm > 59 || ss > 59 {
		return 0, false
	}
	return hh*3600 + mm*60 + ss, true
}

// ParseDuration разбирает длительность перерыва, введённую пользователем.
func ParseDuration(text string) ParsedDuration {
	input := strings.ToLower(strings.TrimSpace(text))
	switch input {
	case "", "0", "none":
		return ParsedDuration{}
	}

	for _, g := range durationGrammar {
		m := g.re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		secs, ok := g.seconds(m)
		if !ok || secs <= 0 {
			return ParsedDuration{WasUnparseable: true}
		}
		return ParsedDuration{Value: &Span{seconds: secs}}
	}
	return ParsedDuration{WasUnparseable: true}
}

func RenderMinutes(s Span) string {
	return strconv.Itoa(s.Minutes())
}

func RenderHours(s Span) string {
	return strconv.FormatFloat(float64(s.Minutes())/60, 'f', -1, 64) + "h"
}

func RenderClock(s Span) string {
	return fmt.Sprintf("%d:%02d", s.Minutes()/60, s.Minutes()%60)
}
