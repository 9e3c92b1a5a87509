package repositories

import (
	"context"
	"time"

	"github.com/cryptovol/backend/internal/models"
)

// AssetRepository defines the interface for asset data operations
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id int) (*models.Asset, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error)
	List(ctx context.Context) ([]*models.Asset, error)
	ListSymbols(ctx context.Context) ([]string, error)
}

// PriceObservationRepository defines the interface for price history operations.
// Observations are append-only; writes happen in batches, one transaction per batch.
type PriceObservationRepository interface {
	CreateBatch(ctx context.Context, observations []*models.PriceObservation) error
	Latest(ctx context.Context, assetID int) (*models.PriceObservation, error)
	LatestTimestamp(ctx context.Context, assetID int) (*time.Time, error)
	ListRange(ctx context.Context, assetID int, from, to time.Time) ([]*models.PriceObservation, error)
	Count(ctx context.Context, assetID int) (int64, error)
}

// ModelRegistryRepository defines the interface for the trained-model registry
type ModelRegistryRepository interface {
	Create(ctx context.Context, entry *models.ModelRegistryEntry) error
	Update(ctx context.Context, entry *models.ModelRegistryEntry) error
	GetByAssetAndType(ctx context.Context, assetID int, modelType models.ModelType) (*models.ModelRegistryEntry, error)
	List(ctx context.Context) ([]*models.ModelRegistryEntry, error)
}

// SimulationRepository defines the interface for job and result persistence.
// CompleteJob persists the status flip and the result row in one unit of
// work so a reader can never observe one without the other.
type SimulationRepository interface {
	CreateJob(ctx context.Context, job *models.SimulationJob) error
	GetJob(ctx context.Context, id string) (*models.SimulationJob, error)
	ListJobsByUser(ctx context.Context, userID string) ([]*models.SimulationJob, error)
	UpdateJob(ctx context.Context, job *models.SimulationJob) error
	CompleteJob(ctx context.Context, job *models.SimulationJob, result *models.SimulationResult) error
	GetResult(ctx context.Context, jobID string) (*models.SimulationResult, error)
}

// PortfolioRepository defines the interface for portfolio persistence
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *models.Portfolio) error
	GetByID(ctx context.Context, id, userID string) (*models.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error)
}
