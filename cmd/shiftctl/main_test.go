package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
)

const mondayEvening = `
period: {start: "2025-06-02", end: "2025-06-08"}
hourly_rate: "200"
break: "30 min"
schedule:
  recurring:
    - {weekday: mon, start: "16:00", end: "20:00"}
`

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseDurationCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse-duration", "1.5h"})
	require.NoError(t, rootCmd.Execute())

	var got struct {
		Value          string `json:"value"`
		Minutes        int    `json:"minutes"`
		WasUnparseable bool   `json:"was_unparseable"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "01:30:00", got.Value)
	assert.Equal(t, 90, got.Minutes)
	assert.False(t, got.WasUnparseable)
}

func TestRunParseDuration_Unparseable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runParseDuration(&out, "lagom"))
	assert.JSONEq(t, `{"value": null, "was_unparseable": true}`, out.String())
}

func TestRunNormalize_ExcludesWeekends(t *testing.T) {
	doc, err := loadScheduleDoc(writeDoc(t, `
period: {start: "2025-06-02", end: "2025-06-08"}
exclude_weekends: true
schedule:
  recurring:
    - {weekday: mon, start: "09:00", end: "17:00"}
    - {weekday: sat, start: "10:00", end: "14:00"}
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runNormalize(&out, doc))
	assert.JSONEq(t, `[{"date": "2025-06-02", "start": "09:00", "end": "17:00"}]`, out.String())
}

func TestRunNormalize_RejectsMixedDefinition(t *testing.T) {
	doc, err := loadScheduleDoc(writeDoc(t, `
period: {start: "2025-06-02", end: "2025-06-08"}
schedule:
  recurring:
    - {weekday: mon, start: "09:00", end: "17:00"}
  specific_dates:
    - {date: "2025-06-03", start: "09:00", end: "17:00"}
`))
	require.NoError(t, err)

	err = runNormalize(&bytes.Buffer{}, doc)
	assert.True(t, apperror.Is(err, apperror.ErrCodeValidation))
}

func TestRunCompensation_EveningBandAndBreak(t *testing.T) {
	doc, err := loadScheduleDoc(writeDoc(t, mondayEvening))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runCompensation(&out, doc, nil))

	var res compensation.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, decimal.RequireFromString("3.5").Equal(res.Hours), res.Hours.String())
	assert.True(t, decimal.NewFromInt(700).Equal(res.BasePay), res.BasePay.String())
	assert.True(t, decimal.NewFromInt(100).Equal(res.PremiumPay), res.PremiumPay.String())
	assert.True(t, decimal.NewFromInt(800).Equal(res.TotalPay), res.TotalPay.String())
	require.Len(t, res.Bands, 1)
	assert.Equal(t, compensation.BandEvening, res.Bands[0].Band)
}

func TestRunCompensation_HolidayOverridesEvening(t *testing.T) {
	doc, err := loadScheduleDoc(writeDoc(t, mondayEvening))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runCompensation(&out, doc, []valueobject.Date{valueobject.MustDate("2025-06-02")}))

	var res compensation.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	// 4 часа праздника по двойной ставке поверх 3.5 базовых.
	assert.True(t, decimal.NewFromInt(800).Equal(res.PremiumPay), res.PremiumPay.String())
	assert.True(t, decimal.NewFromInt(1500).Equal(res.TotalPay), res.TotalPay.String())
}

func TestRunCompensation_UnparseableBreak(t *testing.T) {
	doc, err := loadScheduleDoc(writeDoc(t, mondayEvening))
	require.NoError(t, err)
	doc.Break = "lagom"

	err = runCompensation(&bytes.Buffer{}, doc, nil)
	assert.True(t, apperror.Is(err, apperror.ErrCodeUnparseableInput))
}

func TestLoadScheduleDoc_MissingFile(t *testing.T) {
	_, err := loadScheduleDoc(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRunToken(t *testing.T) {
	org := uuid.New()
	user := uuid.New()

	var out bytes.Buffer
	require.NoError(t, runToken(&out, tokenParams{
		Secret: "dev-secret",
		Role:   string(entity.RoleOrganization),
		User:   user.String(),
		Org:    org.String(),
		TTL:    time.Hour,
	}))

	var got struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	actor, err := service.NewTokenManager("dev-secret", time.Hour).ParseAccess(got.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user, actor.UserID)
	assert.Equal(t, org, actor.OrganizationID)
	assert.Equal(t, entity.RoleOrganization, actor.Role)
}

func TestRunToken_Rejects(t *testing.T) {
	cases := map[string]tokenParams{
		"no secret":    {Role: "admin", TTL: time.Hour},
		"unknown role": {Secret: "s", Role: "owner", TTL: time.Hour},
		"org missing":  {Secret: "s", Role: "organization", TTL: time.Hour},
		"bad user":     {Secret: "s", Role: "candidate", User: "x", TTL: time.Hour},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, runToken(&bytes.Buffer{}, p))
		})
	}
}
