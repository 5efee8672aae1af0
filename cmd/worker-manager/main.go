// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"supplier-portal/internal/common/camunda"
	"supplier-portal/internal/common/config"
	httpclient "supplier-portal/internal/common/http"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/observability"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/submission"
	"supplier-portal/pkg/registry"

	si "supplier-portal/internal/workers/communication/send-inquiry"
	sp "supplier-portal/internal/workers/profile/submit-profile"
)

var zeebeBackoff = httpclient.Backoff{
	MaxAttempts:  10,
	InitialDelay: 2 * time.Second,
	MaxDelay:     time.Minute,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("apiBaseURL", cfg.API.BaseURL),
	)

	obs := observability.New(cfg.App.Name + "-workers")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), zeebeBackoff,
		func(attempt int, delay time.Duration, err error) {
			zapLog.Warn("Zeebe client initialization failed, retrying...",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", zeebeBackoff.MaxAttempts),
				zap.Duration("nextRetryIn", delay),
			)
		})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	apiOpts := append(supplierapi.OptionsFromConfig(cfg.API),
		supplierapi.WithLogger(log),
		supplierapi.WithObservability(obs),
	)
	newDirectoryClient := func(sess supplierapi.SessionStore) *supplierapi.Client {
		return supplierapi.New(cfg.API.BaseURL, sess, apiOpts...)
	}

	// --- Register workers ---
	var workers []worker.JobWorker

	submitHandler, err := sp.NewHandler(sp.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Observability: obs,
		NewClient: func(sess supplierapi.SessionStore) submission.ProfileAPI {
			return newDirectoryClient(sess)
		},
	})
	if err != nil {
		zapLog.Fatal("failed to create submit-profile handler", zap.Error(err))
	}
	if w := camunda.StartWorker(zeebe.GetClient(), sp.TaskType, config.GetWorkerConfig(cfg, sp.WorkerName), submitHandler, log); w != nil {
		workers = append(workers, w)
	}

	inquiryHandler, err := si.NewHandler(si.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Observability: obs,
		NewClient: func(sess supplierapi.SessionStore) si.InquiryAPI {
			return newDirectoryClient(sess)
		},
	})
	if err != nil {
		zapLog.Fatal("failed to create send-inquiry handler", zap.Error(err))
	}
	if w := camunda.StartWorker(zeebe.GetClient(), si.TaskType, config.GetWorkerConfig(cfg, si.WorkerName), inquiryHandler, log); w != nil {
		workers = append(workers, w)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	registryPath := os.Getenv("ACTIVITY_REGISTRY_PATH")
	if registryPath == "" {
		registryPath = "configs/activity-registry.json"
	}
	if reg, err := registry.LoadRegistry(registryPath); err != nil {
		zapLog.Warn("Activity registry not loaded", zap.String("path", registryPath), zap.Error(err))
	} else if err := reg.EnsureRegistered(sp.TaskType, si.TaskType); err != nil {
		zapLog.Warn("Activity registry is out of date", zap.Error(err))
	} else {
		zapLog.Info("Activity registry checked", zap.String("version", reg.Version), zap.Int("activities", len(reg.Activities)))
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
