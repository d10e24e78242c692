package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simpliparts-be/internal/bootstrap"
	"simpliparts-be/internal/config"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/server"
	"simpliparts-be/internal/tracer"
	"simpliparts-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Tracing (off unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)

	// 3. Initialize Database
	opts := database.DefaultOptions()
	opts.LogSQL = cfg.App.Environment != "production"
	gormDB, err := database.Open(cfg.Database.Connection, opts)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	container.Start(ctx)

	// 5. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("MAIN", "Shutting down", nil)

	if err := srv.Shutdown(); err != nil {
		sysLogger.Warn("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	container.Close()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		sysLogger.Warn("MAIN", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := database.Close(gormDB); err != nil {
		sysLogger.Warn("MAIN", "Database close failed", map[string]interface{}{"error": err.Error()})
	}
}
