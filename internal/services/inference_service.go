package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	apperrors "github.com/cryptovol/backend/internal/errors"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
)

// ForecastHorizon is the fixed forecast length used for all jobs
const ForecastHorizon = 30

// confidenceAlpha selects the 95% confidence band for price-path forecasts
const confidenceAlpha = 0.05

type inferenceService struct {
	sims       SimulationService
	registry   repositories.ModelRegistryRepository
	prices     repositories.PriceObservationRepository
	forecaster Forecaster
	modelsDir  string
	logger     *zap.Logger
}

// NewInferenceService creates the inference executor. Artifacts that do
// not resolve at their descriptor path are retried under modelsDir.
func NewInferenceService(
	sims SimulationService,
	registry repositories.ModelRegistryRepository,
	prices repositories.PriceObservationRepository,
	forecaster Forecaster,
	modelsDir string,
	logger *zap.Logger,
) InferenceService {
	return &inferenceService{
		sims:       sims,
		registry:   registry,
		prices:     prices,
		forecaster: forecaster,
		modelsDir:  modelsDir,
		logger:     logger,
	}
}

// Execute runs one job to a terminal outcome. Any production error is
// converted to a failed transition with no result row; only a failed
// write of the terminal state itself can leave the job running.
func (s *inferenceService) Execute(ctx context.Context, jobID string, modelType models.ModelType, assetID int) error {
	s.logger.Info("inference started",
		zap.String("job_id", jobID),
		zap.String("model_type", string(modelType)),
		zap.Int("asset_id", assetID))

	if err := s.sims.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("failed to mark job %s running: %w", jobID, err)
	}

	result, entry, err := s.produce(ctx, modelType, assetID)
	if err != nil {
		if failErr := s.sims.Fail(ctx, jobID, err); failErr != nil {
			// Even the failed state could not be recorded. The job stays
			// running until an operator intervenes.
			s.logger.Error("job stuck running: failed state could not be persisted",
				zap.String("job_id", jobID),
				zap.NamedError("cause", err),
				zap.Error(failErr))
			return fmt.Errorf("job %s failed and could not be marked failed: %w", jobID, failErr)
		}
		s.logger.Warn("inference failed", zap.String("job_id", jobID), zap.Error(err))
		return err
	}

	if err := s.sims.Complete(ctx, jobID, result, entry.ID); err != nil {
		// The forecast succeeded but the result write did not. The job is
		// left running as a detectable anomaly rather than marked failed.
		s.logger.Error("forecast produced but result write failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		return fmt.Errorf("failed to persist result for job %s: %w", jobID, err)
	}

	s.logger.Info("inference completed", zap.String("job_id", jobID))
	return nil
}

// produce resolves the registry entry and artifact, runs the forecaster
// and returns the tagged result. The entry is read once; a concurrent
// reconciliation does not retroactively invalidate this snapshot.
func (s *inferenceService) produce(ctx context.Context, modelType models.ModelType, assetID int) (models.ForecastResult, *models.ModelRegistryEntry, error) {
	entry, err := s.registry.GetByAssetAndType(ctx, assetID, modelType)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, &apperrors.ErrNotRegistered{AssetID: assetID, ModelType: string(modelType)}
	}

	artifactPath, err := s.resolveArtifact(entry)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.forecaster.Load(ctx, artifactPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load artifact %s: %w", artifactPath, err)
	}

	switch modelType {
	case models.ModelTypeGARCH:
		volatility, err := s.forecaster.ForecastVolatility(ctx, handle, ForecastHorizon)
		if err != nil {
			return nil, nil, fmt.Errorf("volatility forecast failed: %w", err)
		}

		lastPrice := 0.0
		latest, err := s.prices.Latest(ctx, assetID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read latest price: %w", err)
		}
		if latest != nil {
			lastPrice, _ = latest.PriceUSD.Float64()
		}
		return &models.GarchResult{Volatility: volatility, LastPrice: lastPrice}, entry, nil

	case models.ModelTypeARIMA:
		mean, upper, lower, err := s.forecaster.ForecastPriceWithInterval(ctx, handle, ForecastHorizon, confidenceAlpha)
		if err != nil {
			return nil, nil, fmt.Errorf("price forecast failed: %w", err)
		}
		return &models.ArimaResult{Prices: mean, Upper: upper, Lower: lower}, entry, nil

	default:
		return nil, nil, &apperrors.ErrUnsupportedModelType{ModelType: string(modelType)}
	}
}

// resolveArtifact tries the descriptor path verbatim, then the models
// directory with only the filename.
func (s *inferenceService) resolveArtifact(entry *models.ModelRegistryEntry) (string, error) {
	stored := entry.ArtifactPath()
	if stored == "" {
		return "", &apperrors.ErrArtifactMissing{Path: "(descriptor has no path)"}
	}

	if _, err := os.Stat(stored); err == nil {
		return stored, nil
	}

	fallback := filepath.Join(s.modelsDir, filepath.Base(stored))
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}

	return "", &apperrors.ErrArtifactMissing{Path: fallback}
}
