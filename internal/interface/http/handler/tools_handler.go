package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/schedule"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/dto"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
)

// ToolsHandler отдаёт чистые функции формам: разбор длительности и предпросмотр расписания.
type ToolsHandler struct{}

func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// ParseDuration никогда не возвращает ошибку за нераспознанный текст: это часть ответа.
func (h *ToolsHandler) ParseDuration(c *gin.Context) {
	var req dto.ParseDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	response.Success(c, dto.ToParseDurationResponse(valueobject.ParseDuration(req.Text)))
}

func (h *ToolsHandler) NormalizeSchedule(c *gin.Context) {
	var req dto.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	intervals, err := schedule.Normalize(req.Schedule, req.Period, schedule.Options{ExcludeWeekends: req.ExcludeWeekends})
	if err != nil {
		response.Error(c, err)
		return
	}
	if intervals == nil {
		intervals = []schedule.Interval{}
	}
	response.Success(c, dto.NormalizeResponse{Intervals: intervals})
}
