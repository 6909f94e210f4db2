package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estategate/server/internal/config"
	"github.com/estategate/server/internal/db"
	"github.com/estategate/server/internal/estategate/service"
	sqlitestore "github.com/estategate/server/internal/estategate/store/sqlite"
	"github.com/estategate/server/internal/httpapi"
	"github.com/estategate/server/internal/metrics"
	"github.com/estategate/server/internal/notify"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "estategate-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{
			DefaultTTLMillis: cfg.DefaultCodeTTL.Milliseconds(),
		}); err != nil {
			logger.Fatalf("seed dev data: %v", err)
		}
	}

	// Stores
	passStore := sqlitestore.NewPassStore(conn, writer)
	logStore := sqlitestore.NewAccessLogStore(conn, writer)
	residentStore := sqlitestore.NewResidentStore(conn)
	estateStore := sqlitestore.NewEstateStore(conn)

	// Services
	m := metrics.New()
	sink := notify.NewLogSink(logger)
	residents := service.NewResidentDirectory(residentStore)
	expiry := service.NewExpiryPolicy(estateStore, cfg.DefaultCodeTTL)
	gen := service.NewCodeGenerator(nil)

	passSvc := service.NewPassService(passStore, residents, expiry, gen, sink, m, logger)
	verifySvc := service.NewVerifyService(passStore, logStore, residents, sink, m, logger)
	logSvc := service.NewLogService(logStore)

	pruner := service.NewAccessLogPruner(logStore, service.PrunerConfig{
		RetentionDays: cfg.LogRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		PassService:   passSvc,
		VerifyService: verifySvc,
		LogService:    logSvc,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
