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

type modelRegistryRepository struct {
	db *db.DB
}

// NewModelRegistryRepository creates a new model registry repository
func NewModelRegistryRepository(database *db.DB) ModelRegistryRepository {
	return &modelRegistryRepository{db: database}
}

func (r *modelRegistryRepository) Create(ctx context.Context, entry *models.ModelRegistryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create registry entry for asset %d type %s: %w",
			entry.AssetID, entry.ModelType, err)
	}
	return nil
}

func (r *modelRegistryRepository) Update(ctx context.Context, entry *models.ModelRegistryEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("failed to update registry entry %s: %w", entry.ID, err)
	}
	return nil
}

func (r *modelRegistryRepository) GetByAssetAndType(ctx context.Context, assetID int, modelType models.ModelType) (*models.ModelRegistryEntry, error) {
	var entry models.ModelRegistryEntry
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND model_type = ?", assetID, modelType).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registry entry for asset %d type %s: %w", assetID, modelType, err)
	}
	return &entry, nil
}

func (r *modelRegistryRepository) List(ctx context.Context) ([]*models.ModelRegistryEntry, error) {
	var entries []*models.ModelRegistryEntry
	if err := r.db.WithContext(ctx).Order("model_type, asset_id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list registry entries: %w", err)
	}
	return entries, nil
}
