package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/shiftboard-backend/internal/config"
	"github.com/ignatzorin/shiftboard-backend/internal/db"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/repository"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/memstore"
	"github.com/ignatzorin/shiftboard-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/shiftboard-backend/internal/interface/http/handler"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
)

// stores - реализации контрактов хранилища для выбранного STORE_DRIVER.
type stores struct {
	shifts       repository.ShiftRepository
	postings     repository.PostingRepository
	targets      repository.TargetRepository
	applications repository.ApplicationRepository
	ledger       repository.PayrollLedger
	candidates   repository.CandidateDirectory

	ping  handler.Pinger
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Log.Warn("main: используется memory store, данные не сохраняются между запусками")
		mem := memstore.New()
		return &stores{
			shifts:       mem.Shifts(),
			postings:     mem.Postings(),
			targets:      mem.Targets(),
			applications: mem.Applications(),
			ledger:       mem.Ledger(),
			candidates:   mem.Candidates(),
			close:        func() {},
		}, nil
	}

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		safeClose(conn)
		return nil, fmt.Errorf("main: ошибка миграций: %w", err)
	}

	return &stores{
		shifts:       persistence.NewShiftRepository(conn),
		postings:     persistence.NewPostingRepository(conn),
		targets:      persistence.NewTargetRepository(conn),
		applications: persistence.NewApplicationRepository(conn),
		ledger:       persistence.NewPayrollLedger(conn),
		candidates:   persistence.NewCandidateDirectory(conn),
		ping:         func(ctx context.Context) error { return db.Ping(ctx, conn) },
		close:        func() { safeClose(conn) },
	}, nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
