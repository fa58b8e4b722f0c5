// internal/workers/screening/rescore-candidates/handler.go
package rescorecandidates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/configstore"
	"screening-workers/internal/models"
	"screening-workers/internal/scorestore"
	"screening-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "rescore-candidates"
)

type Handler struct {
	config   *Config
	profiles *scorestore.Profiles
	scores   *scorestore.Store
	configs  configstore.Store
	logger   logger.Logger
}

func NewHandler(config *Config, profiles *scorestore.Profiles, scores *scorestore.Store, configs configstore.Store, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		profiles: profiles,
		scores:   scores,
		configs:  configs,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

// execute recomputes every stored score of the job under one config
// snapshot. Individual candidate failures are collected, not fatal; the
// batch fails outright only when nothing could be rescored.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.JobID == "" {
		return nil, errors.NewInputValidationFailedError("jobId is required")
	}

	jobPosting, err := h.profiles.GetJob(ctx, input.JobID)
	if err == scorestore.ErrNotFound {
		return nil, errors.NewJobNotFoundError(input.JobID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("job", err)
	}

	requirements, err := toJobRequirements(jobPosting)
	if err != nil {
		return nil, err
	}

	cfg, err := h.loadConfig(ctx, input.ConfigVersion)
	if err != nil {
		return nil, err
	}

	ids, err := h.scores.ScoredCandidateIDs(ctx, input.JobID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("candidate_scores", err)
	}

	batchID := uuid.New().String()
	rescored := 0
	var failedIDs []string

	for _, candidateID := range ids {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewRescoreBatchFailedError(input.JobID, err)
		}

		if err := h.rescoreOne(ctx, candidateID, jobPosting, requirements, cfg); err != nil {
			h.logger.Warn("rescore failed for candidate", map[string]interface{}{
				"batchId":     batchID,
				"candidateId": candidateID,
				"error":       err,
			})
			failedIDs = append(failedIDs, candidateID)
			continue
		}
		rescored++
	}

	if len(ids) > 0 && rescored == 0 {
		return nil, errors.NewRescoreBatchFailedError(input.JobID,
			fmt.Errorf("all %d candidates failed", len(ids)))
	}

	h.logger.Info("rescore batch completed", map[string]interface{}{
		"batchId":       batchID,
		"jobId":         input.JobID,
		"configVersion": cfg.Version,
		"rescored":      rescored,
		"failed":        len(failedIDs),
	})

	return &Output{
		BatchID:       batchID,
		JobID:         input.JobID,
		ConfigVersion: cfg.Version,
		Rescored:      rescored,
		Failed:        len(failedIDs),
		FailedIDs:     failedIDs,
		CompletedAt:   scorestore.Timestamp(time.Now()),
	}, nil
}

func (h *Handler) rescoreOne(ctx context.Context, candidateID string, jobPosting *models.Job, requirements scoring.JobRequirements, cfg scoring.Config) error {
	candidate, err := h.profiles.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	score, err := scoring.Compute(requirements, scoring.CandidateProfile{
		Skills:          candidate.Skills,
		Roles:           candidate.Roles,
		ExperienceYears: candidate.ExperienceYears,
		Highlights:      candidate.Highlights,
	}, cfg)
	if err != nil {
		return err
	}

	scoredAt := scorestore.Timestamp(time.Now())
	rec := &models.ScoreRecord{
		CandidateID:   candidate.ID,
		JobID:         jobPosting.ID,
		TotalFit:      score.TotalFit0100,
		MustScore:     score.MustScore,
		NiceScore:     score.NiceScore,
		YearScore:     score.YearScore,
		RoleScore:     score.RoleScore,
		MustGaps:      score.MustGaps,
		ConfigVersion: cfg.Version,
		ScoredAt:      scoredAt,
	}
	if err := h.scores.Save(ctx, rec); err != nil {
		return err
	}

	if h.config.IndexEnabled {
		doc := &models.ScoreDocument{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			JobID:         jobPosting.ID,
			JobTitle:      jobPosting.Title,
			TotalFit:      score.TotalFit0100,
			MustGaps:      score.MustGaps,
			ConfigVersion: cfg.Version,
			ScoredAt:      scoredAt,
		}
		if err := h.scores.Index(ctx, doc); err != nil {
			return err
		}
	}

	metrics.ScoreDistribution.Observe(float64(score.TotalFit0100))
	return nil
}

func (h *Handler) loadConfig(ctx context.Context, version int) (scoring.Config, error) {
	var cfg scoring.Config
	var err error
	if version > 0 {
		cfg, err = h.configs.GetByVersion(ctx, version)
	} else {
		cfg, err = h.configs.GetActive(ctx)
	}
	if err == configstore.ErrNotFound {
		return scoring.Config{}, errors.NewConfigNotFoundError(fmt.Sprintf("version: %d", version))
	}
	if err != nil {
		return scoring.Config{}, errors.NewQueryExecutionFailedError("score_config", err)
	}
	return cfg, nil
}

func toJobRequirements(j *models.Job) (scoring.JobRequirements, error) {
	role, ok := scoring.NormalizeRole(j.ExpectedRole)
	if !ok {
		return scoring.JobRequirements{}, errors.NewInputValidationFailedError(
			fmt.Sprintf("jobId %s: unrecognized expected role %q", j.ID, j.ExpectedRole))
	}
	return scoring.JobRequirements{
		MustRequirements: j.MustRequirements,
		NiceRequirements: j.NiceRequirements,
		ExpectedYears:    j.ExpectedYears,
		ExpectedRole:     role,
	}, nil
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
