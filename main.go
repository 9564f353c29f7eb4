package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tshirt-bundle/app"
	"tshirt-bundle/config"
	"tshirt-bundle/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Initialize(ctx, cfg, log)
	if err != nil {
		log.Error("main", "failed to initialize application", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("main", "server starting", map[string]interface{}{"addr": addr, "page": cfg.App.BaseURL + "/bundle"})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("main", "server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("main", "shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("main", "graceful shutdown failed", map[string]interface{}{"error": err})
	}
}
