package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/grantboard/ingest-worker/pkg/common/config"
	"github.com/grantboard/ingest-worker/pkg/common/database"
	"github.com/grantboard/ingest-worker/pkg/common/logger"
	"github.com/grantboard/ingest-worker/pkg/ingest"
	"github.com/grantboard/ingest-worker/pkg/observability/metrics"
	"github.com/grantboard/ingest-worker/pkg/queue"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()

	repo := ingest.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate grants table")
	}

	categories, err := ingest.LoadCategoryMap(cfg.CategoryMappingFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load category mapping")
	}
	transformer := ingest.NewTransformer(categories)

	queueClient, closeQueue, err := newQueueClient(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to queue")
	}
	defer closeQueue()

	processor := ingest.NewProcessor(transformer, repo, queueClient)
	worker := ingest.NewWorker(queueClient, processor, cfg.ReceiveErrorBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("worker stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Grants Ingest Worker started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Grants Ingest Worker...")
	cancel()

	select {
	case <-workerDone:
	case <-time.After(30 * time.Second):
		logger.Log.Warn("worker did not stop within shutdown window")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Grants Ingest Worker stopped")
}

func newQueueClient(cfg *config.Config) (queue.Client, func(), error) {
	switch cfg.QueueDriver {
	case "kafka":
		client := queue.NewKafkaClient(cfg.QueueURL, cfg.QueueGroup)
		return client, func() { client.Close() }, nil
	case "redis":
		client, err := queue.NewRedisClient(cfg.QueueURL, cfg.QueueGroup)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.QueueDriver)
	}
}
