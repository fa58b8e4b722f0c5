// internal/workers/screening/calculate-fit-score/handler.go
package calculatefitscore

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
)

const (
	TaskType = "calculate-fit-score"
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CandidateID == "" && input.Candidate == nil {
		return nil, errors.NewInputValidationFailedError("candidateId is required")
	}
	if input.JobID == "" && input.Job == nil {
		return nil, errors.NewInputValidationFailedError("jobId is required")
	}

	candidate, err := h.loadCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	jobPosting, err := h.loadJob(ctx, input)
	if err != nil {
		return nil, err
	}

	cfg, err := h.loadConfig(ctx, input.ConfigVersion)
	if err != nil {
		return nil, err
	}

	requirements, err := toJobRequirements(jobPosting)
	if err != nil {
		return nil, err
	}

	score, err := scoring.Compute(requirements, toCandidateProfile(candidate), cfg)
	if err != nil {
		if _, ok := err.(*scoring.ConfigurationIntegrityError); ok {
			return nil, errors.NewConfigIntegrityError(err.Error())
		}
		return nil, err
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
		return nil, errors.NewScorePersistFailedError(candidate.ID, jobPosting.ID, err)
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
			return nil, errors.NewScoreIndexFailedError(candidate.ID, jobPosting.ID, err)
		}
	}

	metrics.ScoresComputed.WithLabelValues(fmt.Sprintf("%t", score.Capped)).Inc()
	metrics.ScoreDistribution.Observe(float64(score.TotalFit0100))

	h.logger.Info("fit score computed", map[string]interface{}{
		"candidateId":   candidate.ID,
		"jobId":         jobPosting.ID,
		"totalFit":      score.TotalFit0100,
		"mustGaps":      score.MustGaps,
		"configVersion": cfg.Version,
	})

	return &Output{
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
	}, nil
}

func (h *Handler) loadCandidate(ctx context.Context, input *Input) (*models.Candidate, error) {
	if input.Candidate != nil {
		return input.Candidate, nil
	}
	c, err := h.profiles.GetCandidate(ctx, input.CandidateID)
	if err == scorestore.ErrNotFound {
		return nil, errors.NewCandidateNotFoundError(input.CandidateID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("candidate", err)
	}
	return c, nil
}

func (h *Handler) loadJob(ctx context.Context, input *Input) (*models.Job, error) {
	if input.Job != nil {
		return input.Job, nil
	}
	j, err := h.profiles.GetJob(ctx, input.JobID)
	if err == scorestore.ErrNotFound {
		return nil, errors.NewJobNotFoundError(input.JobID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("job", err)
	}
	return j, nil
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

// toJobRequirements maps the stored job row onto scoring inputs. The
// expected role must resolve to a member of the role enumeration.
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

func toCandidateProfile(c *models.Candidate) scoring.CandidateProfile {
	return scoring.CandidateProfile{
		Skills:          c.Skills,
		Roles:           c.Roles,
		ExperienceYears: c.ExperienceYears,
		Highlights:      c.Highlights,
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
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
	handler := errors.NewErrorHandler(h.logger)
	handler.HandleJobError(context.Background(), client, job, err)
}

func errorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
