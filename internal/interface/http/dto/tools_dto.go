package dto

import (
	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

type ParseDurationRequest struct {
	Text string `json:"text"`
}

// ParseDurationResponse: value == nil при was_unparseable == false означает "перерыва нет".
type ParseDurationResponse struct {
	Value          *valueobject.Span `json:"value"`
	Minutes        *int              `json:"minutes,omitempty"`
	WasUnparseable bool              `json:"was_unparseable"`
}

func ToParseDurationResponse(p valueobject.ParsedDuration) ParseDurationResponse {
	resp := ParseDurationResponse{Value: p.Value, WasUnparseable: p.WasUnparseable}
	if p.Value != nil {
		m := p.Value.Minutes()
		resp.Minutes = &m
	}
	return resp
}

type NormalizeRequest struct {
	Period          schedule.Period     `json:"period"`
	Schedule        schedule.Definition `json:"schedule"`
	ExcludeWeekends bool                `json:"exclude_weekends"`
}

type NormalizeResponse struct {
	Intervals []schedule.Interval `json:"intervals"`
}
