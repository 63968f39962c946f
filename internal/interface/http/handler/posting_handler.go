package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/dto"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/response"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/posting"
)

type PostingHandler struct {
	createUC     *posting.CreatePostingUseCase
	getUC        *posting.GetPostingUseCase
	transitionUC *posting.TransitionPostingUseCase
	deleteUC     *posting.DeletePostingUseCase
	computeUC    *compensation.ComputeUseCase
	now          clock
}

func NewPostingHandler(
	createUC *posting.CreatePostingUseCase,
	getUC *posting.GetPostingUseCase,
	transitionUC *posting.TransitionPostingUseCase,
	deleteUC *posting.DeletePostingUseCase,
	computeUC *compensation.ComputeUseCase,
) *PostingHandler {
	return &PostingHandler{
		createUC:     createUC,
		getUC:        getUC,
		transitionUC: transitionUC,
		deleteUC:     deleteUC,
		computeUC:    computeUC,
		now:          systemClock,
	}
}

func (h *PostingHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), posting.CreatePostingInput{
		Actor:              actor,
		OrganizationID:     req.OrganizationID,
		Title:              req.Title,
		Description:        req.Description,
		RequiredRole:       req.RequiredRole,
		Location:           req.Location,
		Period:             req.Period,
		Schedule:           req.Schedule,
		ExcludeWeekends:    req.ExcludeWeekends,
		HourlyRate:         req.HourlyRate,
		EstimatedHours:     req.EstimatedHours,
		SalaryDescription:  req.SalaryDescription,
		RequiredExperience: req.RequiredExperience,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPostingResponse(created))
}

func (h *PostingHandler) Get(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToPostingResponse(p))
}

func (h *PostingHandler) Transition(c *gin.Context) {
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

	p, err := h.transitionUC.Execute(c.Request.Context(), posting.TransitionPostingInput{
		Actor:     actor,
		PostingID: id,
		To:        valueobject.Status(req.Status),
		Now:       h.now(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToPostingResponse(p))
}

func (h *PostingHandler) Delete(c *gin.Context) {
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

// Compensation обрабатывает GET /api/postings/:id/compensation.
// Для вакансии без расписания возвращается NOT_COMPUTABLE, а не ноль.
func (h *PostingHandler) Compensation(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.computeUC.Execute(c.Request.Context(), actor, valueobject.TargetPosting, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
