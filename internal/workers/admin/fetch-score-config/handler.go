// internal/workers/admin/fetch-score-config/handler.go
package fetchscoreconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/configstore"
	"screening-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-score-config"
)

type Handler struct {
	config  *Config
	configs configstore.Store
	logger  logger.Logger
}

func NewHandler(config *Config, configs configstore.Store, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		configs: configs,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Version < 0 {
		return nil, errors.NewInputValidationFailedError(fmt.Sprintf("version must be >= 0, got %d", input.Version))
	}

	var cfg scoring.Config
	var err error
	if input.Version > 0 {
		cfg, err = h.configs.GetByVersion(ctx, input.Version)
	} else {
		cfg, err = h.configs.GetActive(ctx)
	}
	if err == configstore.ErrNotFound {
		return nil, errors.NewConfigNotFoundError(fmt.Sprintf("version: %d", input.Version))
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("score_config", err)
	}

	return toOutput(cfg), nil
}

func toOutput(cfg scoring.Config) *Output {
	table := make(map[string]map[string]float64, len(cfg.RoleDistance))
	for expected, row := range cfg.RoleDistance {
		table[string(expected)] = make(map[string]float64, len(row))
		for actual, weight := range row {
			table[string(expected)][string(actual)] = weight
		}
	}

	return &Output{
		Version: cfg.Version,
		Weights: WeightsOutput{
			Must: cfg.Weights.Must,
			Nice: cfg.Weights.Nice,
			Year: cfg.Weights.Year,
			Role: cfg.Weights.Role,
		},
		MustCapEnabled: cfg.MustCapEnabled,
		MustCapValue:   cfg.MustCapValue,
		NiceTopN:       cfg.NiceTopN,
		RoleDistance:   table,
		CreatedAt:      cfg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	if stdErr, ok := err.(*errors.StandardError); ok {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	} else {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INTERNAL_ERROR").Inc()
	}
	handler := errors.NewErrorHandler(h.logger)
	handler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
