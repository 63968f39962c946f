package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/config"
	domaincomp "github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/goroutine"
	"github.com/ignatzorin/shiftboard-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/shiftboard-backend/internal/http/router"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/events"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/metrics"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/handler"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/application"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/payroll"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/posting"
	"github.com/ignatzorin/shiftboard-backend/internal/usecase/shift"
	"github.com/ignatzorin/shiftboard-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось открыть хранилище")
	}
	defer st.close()

	collector := metrics.New()
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Вебсокеты и доставка событий.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	sinks := []events.Sink{events.NewWebsocketSink(hub)}
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL, 5*time.Second)
		if err != nil {
			logger.Log.WithError(err).Fatal("main: NATS недоступен")
		}
		defer nc.Drain()
		sinks = append(sinks, events.NewNATSSink(nc))
		logger.Log.WithField("url", nc.ConnectedUrl()).Info("main: события публикуются в NATS")
	}
	publisher := events.NewDispatcher(sinks...)

	// Расчёт оплаты.
	calculator := domaincomp.NewCalculator(domaincomp.DefaultBands(), cfg.Holidays)
	cache := compensation.NewCache(cfg.CompensationCacheTTL)
	if cfg.CompensationCacheTTL > 0 {
		goroutine.SafeGoWithContext(ctx, "compensation-cache-cleanup", func(ctx context.Context) {
			cache.Cleanup(ctx, cfg.CompensationCacheTTL)
		})
	}
	computeUC := compensation.NewComputeUseCase(st.shifts, st.postings, calculator, cache)

	// Use cases.
	exportUC := payroll.NewExportShiftUseCase(st.shifts, st.ledger, calculator, publisher, collector)
	shiftTransitionUC := shift.NewTransitionShiftUseCase(st.shifts, exportUC, publisher, collector, cfg.Location)
	postingTransitionUC := posting.NewTransitionPostingUseCase(st.postings, st.candidates, publisher, collector, cfg.Location)

	limitStore, closeLimitStore, err := middleware.NewRateLimitStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить rate limit")
	}
	defer func() {
		if err := closeLimitStore(); err != nil {
			logger.Log.WithError(err).Warn("main: ошибка закрытия redis")
		}
	}()

	handlers := httpRouter.Handlers{
		Health: handler.NewHealthHandler(cfg.StoreDriver, st.ping),
		WS:     handler.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
		Tools:  handler.NewToolsHandler(),
		Shift: handler.NewShiftHandler(
			shift.NewCreateShiftUseCase(st.shifts),
			shift.NewGetShiftUseCase(st.shifts),
			shiftTransitionUC,
			shift.NewDeleteShiftUseCase(st.shifts),
			computeUC,
		),
		Posting: handler.NewPostingHandler(
			posting.NewCreatePostingUseCase(st.postings),
			posting.NewGetPostingUseCase(st.postings),
			postingTransitionUC,
			posting.NewDeletePostingUseCase(st.postings),
			computeUC,
		),
		Application: handler.NewApplicationHandler(
			application.NewSubmitApplicationUseCase(st.applications, st.targets, publisher, collector),
			application.NewAcceptApplicationUseCase(st.applications, st.targets, publisher, collector),
			application.NewRejectApplicationUseCase(st.applications, st.targets, publisher, collector),
			application.NewWithdrawApplicationUseCase(st.applications, st.targets, publisher, collector),
			application.NewListApplicationsUseCase(st.applications, st.targets),
		),
		Payroll: handler.NewPayrollHandler(
			payroll.NewListEligibleUseCase(st.shifts, cfg.PayrollBatchLimit),
			exportUC,
			payroll.NewExportManyUseCase(st.shifts, exportUC, cfg.PayrollBatchLimit),
		),
		Admin:   handler.NewAdminHandler(shiftTransitionUC, postingTransitionUC),
		Metrics: collector.Handler(),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokens, limitStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithFields(logrus.Fields{
		"port":  cfg.HTTPPort,
		"store": cfg.StoreDriver,
		"env":   cfg.Env,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Error("main: сервер завершился с ошибкой")
	}
}
