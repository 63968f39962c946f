package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/dto"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/payroll"
)

type PayrollHandler struct {
	eligibleUC   *payroll.ListEligibleUseCase
	exportUC     *payroll.ExportShiftUseCase
	exportManyUC *payroll.ExportManyUseCase
}

func NewPayrollHandler(
	eligibleUC *payroll.ListEligibleUseCase,
	exportUC *payroll.ExportShiftUseCase,
	exportManyUC *payroll.ExportManyUseCase,
) *PayrollHandler {
	return &PayrollHandler{eligibleUC: eligibleUC, exportUC: exportUC, exportManyUC: exportManyUC}
}

func (h *PayrollHandler) Eligible(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	shifts, err := h.eligibleUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToShiftResponses(shifts))
}

func (h *PayrollHandler) ExportOne(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.exportUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToExportResponse(res))
}

// ExportMany всегда отвечает 200 со сводкой: ошибки по отдельным сменам не прерывают пакет.
func (h *PayrollHandler) ExportMany(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.ExportManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "укажите shift_ids")
		return
	}

	res, err := h.exportManyUC.Execute(c.Request.Context(), payroll.ExportManyInput{
		Actor:    actor,
		ShiftIDs: req.ShiftIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
