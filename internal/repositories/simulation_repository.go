package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptovol/backend/internal/db"
	"github.com/cryptovol/backend/internal/models"
)

type simulationRepository struct {
	db *db.DB
}

// NewSimulationRepository creates a new simulation job/result repository
func NewSimulationRepository(database *db.DB) SimulationRepository {
	return &simulationRepository{db: database}
}

func (r *simulationRepository) CreateJob(ctx context.Context, job *models.SimulationJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create simulation job: %w", err)
	}
	return nil
}

func (r *simulationRepository) GetJob(ctx context.Context, id string) (*models.SimulationJob, error) {
	var job models.SimulationJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation job %s: %w", id, err)
	}
	return &job, nil
}

func (r *simulationRepository) ListJobsByUser(ctx context.Context, userID string) ([]*models.SimulationJob, error) {
	var jobs []*models.SimulationJob
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list simulation jobs for user %s: %w", userID, err)
	}
	return jobs, nil
}

func (r *simulationRepository) UpdateJob(ctx context.Context, job *models.SimulationJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update simulation job %s: %w", job.ID, err)
	}
	return nil
}

// CompleteJob flips the job status and writes the result row in one
// database transaction. Status and result are never observably
// inconsistent.
func (r *simulationRepository) CompleteJob(ctx context.Context, job *models.SimulationJob, result *models.SimulationResult) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(job).Error; err != nil {
			return fmt.Errorf("failed to update job %s: %w", job.ID, err)
		}
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("failed to create result for job %s: %w", job.ID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete simulation job: %w", err)
	}
	return nil
}

func (r *simulationRepository) GetResult(ctx context.Context, jobID string) (*models.SimulationResult, error) {
	var result models.SimulationResult
	err := r.db.WithContext(ctx).First(&result, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation result %s: %w", jobID, err)
	}
	return &result, nil
}
