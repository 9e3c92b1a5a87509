package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
)

// manifestFilename is the metadata file the training pipeline drops
// alongside the model artifacts.
const manifestFilename = "models_metadata.json"

type registryService struct {
	assets    repositories.AssetRepository
	registry  repositories.ModelRegistryRepository
	modelsDir string
	now       func() time.Time
	logger    *zap.Logger
}

// NewRegistryService creates a new model registry reconciler reading
// manifests from modelsDir.
func NewRegistryService(
	assets repositories.AssetRepository,
	registry repositories.ModelRegistryRepository,
	modelsDir string,
	logger *zap.Logger,
) RegistryService {
	return &registryService{
		assets:    assets,
		registry:  registry,
		modelsDir: modelsDir,
		now:       time.Now,
		logger:    logger,
	}
}

// Reconcile merges the manifest into the persisted registry. Each entry
// applies independently: unknown symbols are skipped, and one bad entry
// does not block the rest. Returns the number of entries applied.
func (s *registryService) Reconcile(ctx context.Context) (int, error) {
	manifestPath := filepath.Join(s.modelsDir, manifestFilename)

	raw, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		s.logger.Warn("no models manifest found, skipping reconciliation",
			zap.String("path", manifestPath))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
	}

	var manifest []models.ManifestEntry
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return 0, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}

	assets, err := s.assets.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list assets: %w", err)
	}
	assetBySymbol := make(map[string]*models.Asset, len(assets))
	for _, asset := range assets {
		assetBySymbol[asset.Symbol] = asset
	}

	applied := 0
	for _, entry := range manifest {
		asset, ok := assetBySymbol[entry.Symbol]
		if !ok {
			s.logger.Info("manifest lists unknown symbol, skipping",
				zap.String("symbol", entry.Symbol),
				zap.String("model_type", string(entry.ModelType)))
			continue
		}

		if err := s.applyEntry(ctx, asset, entry); err != nil {
			s.logger.Error("failed to apply manifest entry",
				zap.String("symbol", entry.Symbol),
				zap.String("model_type", string(entry.ModelType)),
				zap.Error(err))
			continue
		}
		applied++
	}

	s.logger.Info("model registry reconciled",
		zap.Int("applied", applied),
		zap.Int("manifest_entries", len(manifest)))
	return applied, nil
}

// applyEntry creates the registry entry at version 1 or replaces the
// descriptor and bumps the version. The resolved artifact path is folded
// into the descriptor.
func (s *registryService) applyEntry(ctx context.Context, asset *models.Asset, entry models.ManifestEntry) error {
	params := make(map[string]interface{}, len(entry.Parameters)+1)
	for k, v := range entry.Parameters {
		params[k] = v
	}
	params["path"] = filepath.Join(s.modelsDir, entry.Filename)

	descriptor, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	existing, err := s.registry.GetByAssetAndType(ctx, asset.ID, entry.ModelType)
	if err != nil {
		return err
	}

	if existing == nil {
		return s.registry.Create(ctx, &models.ModelRegistryEntry{
			AssetID:    asset.ID,
			ModelType:  entry.ModelType,
			Parameters: descriptor,
			Version:    1,
			TrainedAt:  s.now().UTC(),
		})
	}

	existing.Parameters = descriptor
	existing.TrainedAt = s.now().UTC()
	existing.Version++
	return s.registry.Update(ctx, existing)
}

// ListActiveModels returns every registry entry joined with its asset symbol
func (s *registryService) ListActiveModels(ctx context.Context) ([]*ActiveModel, error) {
	entries, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, err
	}
	symbolByID := make(map[int]string, len(assets))
	for _, asset := range assets {
		symbolByID[asset.ID] = asset.Symbol
	}

	active := make([]*ActiveModel, 0, len(entries))
	for _, entry := range entries {
		params, err := entry.Descriptor()
		if err != nil {
			s.logger.Warn("registry entry has malformed descriptor",
				zap.String("id", entry.ID), zap.Error(err))
			params = nil
		}
		active = append(active, &ActiveModel{
			ID:         entry.ID,
			Symbol:     symbolByID[entry.AssetID],
			Type:       entry.ModelType,
			Version:    entry.Version,
			TrainedAt:  entry.TrainedAt,
			Parameters: params,
		})
	}
	return active, nil
}
