package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/config"
	"github.com/tubescout/tubescout/internal/export"
	"github.com/tubescout/tubescout/internal/query"
	"github.com/tubescout/tubescout/internal/schedule"
	"github.com/tubescout/tubescout/internal/search"
)

// runDaemon starts the cron-driven batch scheduler plus a small HTTP control
// surface for health checks, run statistics and manual triggers
func runDaemon(cfg *config.Config, builder *query.Builder, service *search.Service, exporter *export.Exporter) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.Info("Starting TubeScout daemon")

	runner := newRunner(cfg, builder, service, exporter)
	scheduler := schedule.NewService(cfg, runner)

	if err := scheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/stats", statsHandler(service)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(scheduler)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Daemon exited")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func statsHandler(service *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(service.GetStats()))
	}
}

func triggerHandler(scheduler *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go scheduler.RunOnce()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Batch run triggered"}`))
	}
}
