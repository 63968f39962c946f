package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/shiftboard-backend/internal/config"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/http/middleware"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/handler"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
)

// Handlers собирает все HTTP обработчики сервиса.
type Handlers struct {
	Health      *handler.HealthHandler
	WS          *handler.WSHandler
	Tools       *handler.ToolsHandler
	Shift       *handler.ShiftHandler
	Posting     *handler.PostingHandler
	Application *handler.ApplicationHandler
	Payroll     *handler.PayrollHandler
	Admin       *handler.AdminHandler
	Metrics     http.Handler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens *service.TokenManager, limitStore limiter.Store) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Токен для ws передаётся в query, поэтому маршрут вне AuthMiddleware.
	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/durations/parse", h.Tools.ParseDuration)
	protected.POST("/schedules/normalize", h.Tools.NormalizeSchedule)

	managers := middleware.RequireRoles(entity.RoleOrganization, entity.RoleAdmin)
	id := middleware.UUIDValidator("id")

	shifts := protected.Group("/shifts")
	{
		shifts.POST("", managers, h.Shift.Create)
		shifts.GET("/:id", id, h.Shift.Get)
		shifts.POST("/:id/status", id, managers, h.Shift.Transition)
		shifts.DELETE("/:id", id, managers, h.Shift.Delete)
		shifts.GET("/:id/compensation", id, h.Shift.Compensation)
	}

	postings := protected.Group("/postings")
	{
		postings.POST("", managers, h.Posting.Create)
		postings.GET("/:id", id, h.Posting.Get)
		postings.POST("/:id/status", id, managers, h.Posting.Transition)
		postings.DELETE("/:id", id, managers, h.Posting.Delete)
		postings.GET("/:id/compensation", id, h.Posting.Compensation)
	}

	targets := protected.Group("/targets/:kind/:id/applications", id)
	{
		targets.POST("", middleware.RequireRoles(entity.RoleCandidate), h.Application.Submit)
		targets.GET("", managers, h.Application.ListForTarget)
	}

	applications := protected.Group("/applications")
	{
		applications.GET("/mine", middleware.RequireRoles(entity.RoleCandidate), h.Application.Mine)
		applications.POST("/:id/accept", id, managers, h.Application.Accept)
		applications.POST("/:id/reject", id, managers, h.Application.Reject)
		applications.POST("/:id/withdraw", id, middleware.RequireRoles(entity.RoleCandidate), h.Application.Withdraw)
	}

	payroll := protected.Group("/payroll", managers)
	{
		payroll.GET("/eligible", h.Payroll.Eligible)
		payroll.POST("/export/:id", id, h.Payroll.ExportOne)
		payroll.POST("/export", h.Payroll.ExportMany)
	}

	admin := protected.Group("/admin", middleware.RequireRoles(entity.RoleAdmin))
	{
		admin.POST("/complete-due", h.Admin.CompleteDue)
	}

	return r
}
