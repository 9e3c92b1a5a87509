package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/cryptovol/backend/internal/errors"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
	"github.com/cryptovol/backend/internal/worker"
)

type simulationService struct {
	jobs   repositories.SimulationRepository
	pool   *worker.Pool
	now    func() time.Time
	logger *zap.Logger
}

// NewSimulationService creates the simulation job state machine. The
// pool receives scheduled jobs for out-of-band execution.
func NewSimulationService(
	jobs repositories.SimulationRepository,
	pool *worker.Pool,
	logger *zap.Logger,
) SimulationService {
	return &simulationService{
		jobs:   jobs,
		pool:   pool,
		now:    time.Now,
		logger: logger,
	}
}

// CreateJob inserts a pending job and returns it immediately. The
// caller's transaction is independent of the eventual execution.
func (s *simulationService) CreateJob(ctx context.Context, userID string, modelType models.ModelType, assetID *int, portfolioID *string) (*models.SimulationJob, error) {
	if userID == "" {
		return nil, &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if modelType == "" {
		return nil, &apperrors.ErrValidation{Field: "model_type", Message: "is required"}
	}
	if assetID == nil && portfolioID == nil {
		return nil, &apperrors.ErrValidation{Field: "asset_id", Message: "asset_id or portfolio_id is required"}
	}

	job := &models.SimulationJob{
		UserID:      userID,
		PortfolioID: portfolioID,
		AssetID:     assetID,
		ModelType:   modelType,
		Status:      models.JobStatusPending,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("simulation job created",
		zap.String("job_id", job.ID),
		zap.String("user_id", userID),
		zap.String("model_type", string(modelType)))
	return job, nil
}

// Schedule hands the job to the worker pool without waiting for
// completion. A saturated queue rejects with worker.ErrQueueFull.
func (s *simulationService) Schedule(job *models.SimulationJob) error {
	if job.AssetID == nil {
		return &apperrors.ErrValidation{Field: "asset_id", Message: "is required for execution"}
	}
	return s.pool.Submit(worker.Task{
		JobID:     job.ID,
		ModelType: job.ModelType,
		AssetID:   *job.AssetID,
	})
}

// MarkRunning transitions pending -> running
func (s *simulationService) MarkRunning(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, models.JobStatusRunning, nil, "", nil)
}

// Complete transitions running -> completed, persisting the normalized
// payload and the registry entry used in the same unit of work as the
// status flip.
func (s *simulationService) Complete(ctx context.Context, jobID string, result models.ForecastResult, modelID string) error {
	if result == nil || modelID == "" {
		return &apperrors.ErrValidation{Field: "result", Message: "payload and model reference are required to complete"}
	}
	return s.transition(ctx, jobID, models.JobStatusCompleted, result.Payload(), modelID, nil)
}

// Fail transitions running -> failed, recording the cause. No result
// row is written.
func (s *simulationService) Fail(ctx context.Context, jobID string, cause error) error {
	return s.transition(ctx, jobID, models.JobStatusFailed, nil, "", cause)
}

func (s *simulationService) transition(ctx context.Context, jobID string, next models.JobStatus, payload *models.ForecastPayload, modelID string, cause error) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("simulation job %s not found", jobID)
	}
	if !job.Status.CanTransition(next) {
		return &apperrors.ErrInvalidTransition{From: string(job.Status), To: string(next)}
	}

	prev := job.Status
	job.Status = next

	if next.Terminal() {
		now := s.now().UTC()
		job.CompletedAt = &now
	}
	if cause != nil {
		msg := cause.Error()
		job.Error = &msg
	}

	if next == models.JobStatusCompleted && payload != nil && modelID != "" {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode forecast payload: %w", err)
		}
		result := &models.SimulationResult{
			JobID:   job.ID,
			Results: raw,
			ModelID: modelID,
		}
		if err := s.jobs.CompleteJob(ctx, job, result); err != nil {
			return &apperrors.ErrPersistence{Op: "complete job", Err: err}
		}
	} else {
		if err := s.jobs.UpdateJob(ctx, job); err != nil {
			return &apperrors.ErrPersistence{Op: "update job status", Err: err}
		}
	}

	s.logger.Info("simulation job status updated",
		zap.String("job_id", job.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))
	return nil
}

func (s *simulationService) GetJob(ctx context.Context, id string) (*models.SimulationJob, error) {
	return s.jobs.GetJob(ctx, id)
}

// GetJobWithResult returns the job plus its decoded payload when the
// job has completed.
func (s *simulationService) GetJobWithResult(ctx context.Context, id string) (*JobWithResult, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	out := &JobWithResult{Job: job}
	if job.Status == models.JobStatusCompleted {
		result, err := s.jobs.GetResult(ctx, id)
		if err != nil {
			return nil, err
		}
		if result != nil {
			var payload models.ForecastPayload
			if err := json.Unmarshal(result.Results, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode result for job %s: %w", id, err)
			}
			out.Result = &payload
		}
	}
	return out, nil
}

// ListJobs returns the user's jobs ordered newest-first
func (s *simulationService) ListJobs(ctx context.Context, userID string) ([]*models.SimulationJob, error) {
	return s.jobs.ListJobsByUser(ctx, userID)
}
