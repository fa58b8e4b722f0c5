// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"screening-workers/internal/common/camunda"
	"screening-workers/internal/common/config"
	"screening-workers/internal/common/database"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/observability"
	"screening-workers/internal/configstore"
	"screening-workers/internal/scorestore"
	"screening-workers/pkg/registry"

	// Screening Workers (2)
	cfs "screening-workers/internal/workers/screening/calculate-fit-score"
	rc "screening-workers/internal/workers/screening/rescore-candidates"

	// Admin Workers (2)
	fsc "screening-workers/internal/workers/admin/fetch-score-config"
	psc "screening-workers/internal/workers/admin/publish-score-config"

	// Notification Workers (1)
	ns "screening-workers/internal/workers/notification/notify-shortlist"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Validate Worker Registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("worker registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("worker registry validation failed", zap.Error(err))
	}
	for taskType, wcfg := range cfg.Workers {
		if wcfg.Enabled && reg.Find(taskType) == nil {
			zapLog.Warn("enabled worker has no registry entry", zap.String("taskType", taskType))
		}
	}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Stores ---
	configs := configstore.NewPostgresStore(pg.DB, redis.Client)
	scores := scorestore.New(pg.DB, esClient.Client, cfg.Scoring.ScoreIndex)
	profiles := scorestore.NewProfiles(pg.DB, redis.Client, time.Duration(cfg.Scoring.CandidateCacheTTL)*time.Second)

	zapLog.Info("Stores initialized",
		zap.String("scoreIndex", cfg.Scoring.ScoreIndex),
		zap.Int("candidateCacheTTL", cfg.Scoring.CandidateCacheTTL),
	)

	// --- Register Workers ---
	var openWorkers []*camunda.Worker

	// --- 1. Screening Workers (2) ---
	if cfg.Workers[cfs.TaskType].Enabled {
		handler := cfs.NewHandler(
			&cfs.Config{
				Timeout:      time.Duration(cfg.Workers[cfs.TaskType].Timeout) * time.Millisecond,
				IndexEnabled: true,
			},
			profiles, scores, configs, log,
		)
		openWorkers = append(openWorkers, startWorker(zeebeClient, cfs.TaskType, cfg.Workers[cfs.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[rc.TaskType].Enabled {
		handler := rc.NewHandler(
			&rc.Config{
				Timeout:      time.Duration(cfg.Workers[rc.TaskType].Timeout) * time.Millisecond,
				BatchSize:    cfg.Scoring.RescoreBatchSize,
				IndexEnabled: true,
			},
			profiles, scores, configs, log,
		)
		openWorkers = append(openWorkers, startWorker(zeebeClient, rc.TaskType, cfg.Workers[rc.TaskType], handler.Handle, zapLog))
	}

	// --- 2. Admin Workers (2) ---
	if cfg.Workers[psc.TaskType].Enabled {
		handler := psc.NewHandler(
			&psc.Config{
				Timeout: time.Duration(cfg.Workers[psc.TaskType].Timeout) * time.Millisecond,
			},
			configs, log,
		)
		openWorkers = append(openWorkers, startWorker(zeebeClient, psc.TaskType, cfg.Workers[psc.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[fsc.TaskType].Enabled {
		handler := fsc.NewHandler(
			&fsc.Config{
				Timeout: time.Duration(cfg.Workers[fsc.TaskType].Timeout) * time.Millisecond,
			},
			configs, log,
		)
		openWorkers = append(openWorkers, startWorker(zeebeClient, fsc.TaskType, cfg.Workers[fsc.TaskType], handler.Handle, zapLog))
	}

	// --- 3. Notification Workers (1) ---
	if cfg.Workers[ns.TaskType].Enabled {
		handler, err := ns.NewHandler(
			&ns.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				MinFit:       cfg.Scoring.ShortlistMinFit,
				Limit:        cfg.Scoring.RescoreBatchSize,
				Timeout:      time.Duration(cfg.Workers[ns.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, scores, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-shortlist handler", zap.Error(err))
		}
		openWorkers = append(openWorkers, startWorker(zeebeClient, ns.TaskType, cfg.Workers[ns.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range openWorkers {
		if w != nil {
			w.Close()
		}
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.Open(client, taskType, wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond, handlerFunc, log)
}
