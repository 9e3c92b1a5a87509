package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptovol/backend/internal/db"
	"github.com/cryptovol/backend/internal/models"
)

type priceObservationRepository struct {
	db *db.DB
}

// NewPriceObservationRepository creates a new price observation repository
func NewPriceObservationRepository(database *db.DB) PriceObservationRepository {
	return &priceObservationRepository{db: database}
}

// CreateBatch appends a batch of observations in a single database
// transaction. New rows become visible to readers only after commit.
func (r *priceObservationRepository) CreateBatch(ctx context.Context, observations []*models.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}
	for _, obs := range observations {
		if obs.ID == "" {
			obs.ID = uuid.NewString()
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, obs := range observations {
			if err := tx.Create(obs).Error; err != nil {
				return fmt.Errorf("failed to create observation for asset %d at %s: %w",
					obs.AssetID, obs.Timestamp.Format("2006-01-02"), err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append observation batch: %w", err)
	}
	return nil
}

func (r *priceObservationRepository) Latest(ctx context.Context, assetID int) (*models.PriceObservation, error) {
	var obs models.PriceObservation
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("timestamp DESC").
		First(&obs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest observation for asset %d: %w", assetID, err)
	}
	return &obs, nil
}

func (r *priceObservationRepository) LatestTimestamp(ctx context.Context, assetID int) (*time.Time, error) {
	obs, err := r.Latest(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, nil
	}
	ts := obs.Timestamp
	return &ts, nil
}

func (r *priceObservationRepository) ListRange(ctx context.Context, assetID int, from, to time.Time) ([]*models.PriceObservation, error) {
	var observations []*models.PriceObservation
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND timestamp >= ? AND timestamp <= ?", assetID, from, to).
		Order("timestamp ASC").
		Find(&observations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list observations for asset %d: %w", assetID, err)
	}
	return observations, nil
}

func (r *priceObservationRepository) Count(ctx context.Context, assetID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PriceObservation{}).
		Where("asset_id = ?", assetID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count observations for asset %d: %w", assetID, err)
	}
	return count, nil
}
