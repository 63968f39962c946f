package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/shiftboard-backend/internal/config"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

var (
	scheduleFile string
	holidaysFlag string
)

// scheduleDoc - YAML описание расписания. Поля ставки нужны только команде compensation.
type scheduleDoc struct {
	Period          schedule.Period     `yaml:"period"`
	Schedule        schedule.Definition `yaml:"schedule"`
	ExcludeWeekends bool                `yaml:"exclude_weekends"`
	HourlyRate      string              `yaml:"hourly_rate"`
	Break           string              `yaml:"break"`
	Surcharge       string              `yaml:"surcharge"`
}

var parseDurationCmd = &cobra.Command{
	Use:   "parse-duration <text>",
	Short: "Разобрать длительность перерыва (45, 1.5h, 1:30, 30 min)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParseDuration(cmd.OutOrStdout(), args[0])
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Развернуть расписание из YAML в конкретные отрезки",
	Long: `Читает файл вида:

  period: {start: "2025-06-02", end: "2025-06-08"}
  exclude_weekends: true
  schedule:
    recurring:
      - {weekday: mon, start: "09:00", end: "17:00"}

и печатает нормализованные отрезки в JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadScheduleDoc(scheduleFile)
		if err != nil {
			return err
		}
		return runNormalize(cmd.OutOrStdout(), doc)
	},
}

var compensationCmd = &cobra.Command{
	Use:   "compensation",
	Short: "Посчитать оплату с OB-надбавками для расписания из YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadScheduleDoc(scheduleFile)
		if err != nil {
			return err
		}
		holidays, err := config.ParseHolidays(holidaysFlag)
		if err != nil {
			return err
		}
		return runCompensation(cmd.OutOrStdout(), doc, holidays)
	},
}

func init() {
	normalizeCmd.Flags().StringVarP(&scheduleFile, "file", "f", "", "YAML файл с расписанием")
	_ = normalizeCmd.MarkFlagRequired("file")

	compensationCmd.Flags().StringVarP(&scheduleFile, "file", "f", "", "YAML файл с расписанием и ставкой")
	compensationCmd.Flags().StringVar(&holidaysFlag, "holidays", "", "праздничные даты YYYY-MM-DD через запятую")
	_ = compensationCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(parseDurationCmd, normalizeCmd, compensationCmd)
}

func loadScheduleDoc(path string) (*scheduleDoc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc scheduleDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

func runParseDuration(out io.Writer, text string) error {
	parsed := valueobject.ParseDuration(text)
	result := struct {
		Value          *valueobject.Span `json:"value"`
		Minutes        *int              `json:"minutes,omitempty"`
		WasUnparseable bool              `json:"was_unparseable"`
	}{Value: parsed.Value, WasUnparseable: parsed.WasUnparseable}
	if parsed.Value != nil {
		m := parsed.Value.Minutes()
		result.Minutes = &m
	}
	return writeJSON(out, result)
}

func runNormalize(out io.Writer, doc *scheduleDoc) error {
	intervals, err := schedule.Normalize(doc.Schedule, doc.Period, schedule.Options{ExcludeWeekends: doc.ExcludeWeekends})
	if err != nil {
		return err
	}
	if intervals == nil {
		intervals = []schedule.Interval{}
	}
	return writeJSON(out, intervals)
}

func runCompensation(out io.Writer, doc *scheduleDoc, holidays []valueobject.Date) error {
	intervals, err := schedule.Normalize(doc.Schedule, doc.Period, schedule.Options{ExcludeWeekends: doc.ExcludeWeekends})
	if err != nil {
		return err
	}

	in := compensation.Input{Intervals: intervals}
	if in.HourlyRate, err = decimal.NewFromString(doc.HourlyRate); err != nil {
		return fmt.Errorf("hourly_rate: %w", err)
	}
	if doc.Surcharge != "" {
		if in.Surcharge, err = decimal.NewFromString(doc.Surcharge); err != nil {
			return fmt.Errorf("surcharge: %w", err)
		}
	}
	if doc.Break != "" {
		parsed := valueobject.ParseDuration(doc.Break)
		if err := parsed.Err(doc.Break); err != nil {
			return err
		}
		if parsed.Value != nil {
			in.BreakMinutes = parsed.Value.Minutes()
		}
	}

	res, err := compensation.NewCalculator(compensation.DefaultBands(), holidays).Compute(in)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}
