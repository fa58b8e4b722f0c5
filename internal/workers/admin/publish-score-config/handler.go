// internal/workers/admin/publish-score-config/handler.go
package publishscoreconfig

import (
	"context"
	"encoding/json"
	stderrors "errors"
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
	TaskType = "publish-score-config"
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
	cfg, err := toScoringConfig(input)
	if err != nil {
		return nil, err
	}

	version, err := h.configs.Publish(ctx, cfg)
	if err != nil {
		var vErr *scoring.ValidationError
		if stderrors.As(err, &vErr) {
			return nil, errors.NewConfigValidationFailedError(vErr.Error())
		}
		return nil, errors.NewQueryExecutionFailedError("score_config", err)
	}

	metrics.ConfigPublishes.Inc()
	metrics.ActiveConfigVersion.Set(float64(version))

	h.logger.Info("scoring config published", map[string]interface{}{
		"version":        version,
		"mustCapEnabled": cfg.MustCapEnabled,
		"mustCapValue":   cfg.MustCapValue,
		"niceTopN":       cfg.NiceTopN,
	})

	return &Output{
		Version:     version,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// toScoringConfig maps the wire payload to a scoring config, resolving
// role labels against the enumeration. Structural validation (weight sum,
// bounds, table completeness) is the store's job.
func toScoringConfig(input *Input) (scoring.Config, error) {
	cfg := scoring.Config{
		Weights: scoring.Weights{
			Must: input.Weights.Must,
			Nice: input.Weights.Nice,
			Year: input.Weights.Year,
			Role: input.Weights.Role,
		},
		MustCapEnabled: input.MustCapEnabled,
		MustCapValue:   input.MustCapValue,
		NiceTopN:       input.NiceTopN,
	}

	if input.RoleDistance == nil {
		cfg.RoleDistance = scoring.DefaultRoleDistance()
		return cfg, nil
	}

	table := scoring.RoleDistance{}
	for expectedLabel, row := range input.RoleDistance {
		expected, ok := scoring.NormalizeRole(expectedLabel)
		if !ok {
			return scoring.Config{}, errors.NewInputValidationFailedError(
				fmt.Sprintf("roleDistance: unrecognized role %q", expectedLabel))
		}
		table[expected] = map[scoring.Role]float64{}
		for actualLabel, weight := range row {
			actual, ok := scoring.NormalizeRole(actualLabel)
			if !ok {
				return scoring.Config{}, errors.NewInputValidationFailedError(
					fmt.Sprintf("roleDistance[%s]: unrecognized role %q", expectedLabel, actualLabel))
			}
			table[expected][actual] = weight
		}
	}
	cfg.RoleDistance = table
	return cfg, nil
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
