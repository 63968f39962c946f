package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/dto"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/application"
)

type ApplicationHandler struct {
	submitUC   *application.SubmitApplicationUseCase
	acceptUC   *application.AcceptApplicationUseCase
	rejectUC   *application.RejectApplicationUseCase
	withdrawUC *application.WithdrawApplicationUseCase
	listUC     *application.ListApplicationsUseCase
}

func NewApplicationHandler(
	submitUC *application.SubmitApplicationUseCase,
	acceptUC *application.AcceptApplicationUseCase,
	rejectUC *application.RejectApplicationUseCase,
	withdrawUC *application.WithdrawApplicationUseCase,
	listUC *application.ListApplicationsUseCase,
) *ApplicationHandler {
	return &ApplicationHandler{
		submitUC:   submitUC,
		acceptUC:   acceptUC,
		rejectUC:   rejectUC,
		withdrawUC: withdrawUC,
		listUC:     listUC,
	}
}

// Submit обрабатывает POST /api/targets/:kind/:id/applications. Тело необязательно.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	kind, err := valueobject.ParseTargetKind(c.Param("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	targetID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	app, err := h.submitUC.Execute(c.Request.Context(), application.SubmitApplicationInput{
		Actor:      actor,
		TargetKind: kind,
		TargetID:   targetID,
		Note:       req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToApplicationResponse(app))
}

func (h *ApplicationHandler) ListForTarget(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	kind, err := valueobject.ParseTargetKind(c.Param("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	targetID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	apps, err := h.listUC.ForTarget(c.Request.Context(), actor, kind, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToApplicationResponses(apps))
}

func (h *ApplicationHandler) Mine(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	apps, err := h.listUC.Mine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToApplicationResponses(apps))
}

// Accept принимает отклик; остальные pending отклики на цель отклоняются в той же операции.
func (h *ApplicationHandler) Accept(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.acceptUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToAcceptResponse(outcome))
}

func (h *ApplicationHandler) Reject(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.rejectUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToApplicationResponse(app))
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.withdrawUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToApplicationResponse(app))
}
