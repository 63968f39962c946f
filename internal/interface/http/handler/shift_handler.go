package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/dto"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/shift"
)

type ShiftHandler struct {
	createUC     *shift.CreateShiftUseCase
	getUC        *shift.GetShiftUseCase
	transitionUC *shift.TransitionShiftUseCase
	deleteUC     *shift.DeleteShiftUseCase
	computeUC    *compensation.ComputeUseCase
	now          clock
}

func NewShiftHandler(
	createUC *shift.CreateShiftUseCase,
	getUC *shift.GetShiftUseCase,
	transitionUC *shift.TransitionShiftUseCase,
	deleteUC *shift.DeleteShiftUseCase,
	computeUC *compensation.ComputeUseCase,
) *ShiftHandler {
	return &ShiftHandler{
		createUC:     createUC,
		getUC:        getUC,
		transitionUC: transitionUC,
		deleteUC:     deleteUC,
		computeUC:    computeUC,
		now:          systemClock,
	}
}

func (h *ShiftHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), shift.CreateShiftInput{
		Actor:           actor,
		OrganizationID:  req.OrganizationID,
		Title:           req.Title,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BreakText:       req.BreakDuration,
		RequiredRole:    req.RequiredRole,
		HourlyRate:      req.HourlyRate,
		Urgent:          req.Urgent,
		UrgentSurcharge: req.UrgentSurcharge,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToShiftResponse(created))
}

func (h *ShiftHandler) Get(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	s, err := h.getUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToShiftResponse(s))
}

// Transition обрабатывает POST /api/shifts/:id/status.
func (h *ShiftHandler) Transition(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "укажите status")
		return
	}

	s, err := h.transitionUC.Execute(c.Request.Context(), shift.TransitionShiftInput{
		Actor:   actor,
		ShiftID: id,
		To:      valueobject.Status(req.Status),
		Now:     h.now(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToShiftResponse(s))
}

func (h *ShiftHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ShiftHandler) Compensation(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.computeUC.Execute(c.Request.Context(), actor, valueobject.TargetShift, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
