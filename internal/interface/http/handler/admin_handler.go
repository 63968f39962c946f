package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/posting"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/shift"
)

const defaultCompleteDueLimit = 100

// AdminHandler запускает служебные операции по запросу; фонового планировщика нет.
type AdminHandler struct {
	shifts   *shift.TransitionShiftUseCase
	postings *posting.TransitionPostingUseCase
	now      clock
}

func NewAdminHandler(shifts *shift.TransitionShiftUseCase, postings *posting.TransitionPostingUseCase) *AdminHandler {
	return &AdminHandler{shifts: shifts, postings: postings, now: systemClock}
}

type completeDueResponse struct {
	Shifts   *shift.CompleteDueResult   `json:"shifts"`
	Postings *posting.CompleteDueResult `json:"postings"`
}

// CompleteDue переводит в completed заполненные цели, чьё последнее время окончания прошло.
func (h *AdminHandler) CompleteDue(c *gin.Context) {
	limit := defaultCompleteDueLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit должен быть положительным числом")
			return
		}
		limit = n
	}

	now := h.now()
	shifts, err := h.shifts.CompleteDue(c.Request.Context(), now, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	postings, err := h.postings.CompleteDue(c.Request.Context(), now, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, completeDueResponse{Shifts: shifts, Postings: postings})
}
