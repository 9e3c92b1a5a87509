package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptovol/backend/internal/models"
)

// DailyPrice is one observation returned by the external price feed
type DailyPrice struct {
	Timestamp time.Time
	Close     decimal.Decimal
}

// PriceFeed defines the interface for external daily price providers.
// Implementations may return an empty slice and should surface network
// problems as plain errors; the synchronizer classifies them as
// transient.
type PriceFeed interface {
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]DailyPrice, error)
}

// ModelHandle is an opaque reference to a loaded model artifact
type ModelHandle string

// Forecaster is the external numeric-execution boundary. The core never
// looks inside an artifact; it only orchestrates these calls.
type Forecaster interface {
	Load(ctx context.Context, artifactPath string) (ModelHandle, error)
	ForecastVolatility(ctx context.Context, handle ModelHandle, horizon int) ([]float64, error)
	ForecastPriceWithInterval(ctx context.Context, handle ModelHandle, horizon int, alpha float64) (mean, upper, lower []float64, err error)
}

// MarketSyncService defines the interface for market data synchronization
type MarketSyncService interface {
	SeedAssets(ctx context.Context) (int, error)
	SyncAll(ctx context.Context) error
	SyncOne(ctx context.Context, asset *models.Asset) (int, error)
}

// ActiveModel is a registry entry joined with its asset symbol
type ActiveModel struct {
	ID         string                 `json:"id"`
	Symbol     string                 `json:"symbol"`
	Type       models.ModelType       `json:"type"`
	Version    int                    `json:"version"`
	TrainedAt  time.Time              `json:"trained_at"`
	Parameters map[string]interface{} `json:"parameters"`
}

// RegistryService defines the interface for trained-model reconciliation
type RegistryService interface {
	Reconcile(ctx context.Context) (int, error)
	ListActiveModels(ctx context.Context) ([]*ActiveModel, error)
}

// JobWithResult pairs a job with its result payload when one exists
type JobWithResult struct {
	Job    *models.SimulationJob   `json:"job"`
	Result *models.ForecastPayload `json:"result,omitempty"`
}

// SimulationService owns the job lifecycle: creation, scheduling and
// status transitions. Only the executor mutates a job between running
// and its terminal state.
type SimulationService interface {
	CreateJob(ctx context.Context, userID string, modelType models.ModelType, assetID *int, portfolioID *string) (*models.SimulationJob, error)
	Schedule(job *models.SimulationJob) error
	MarkRunning(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, result models.ForecastResult, modelID string) error
	Fail(ctx context.Context, jobID string, cause error) error
	GetJob(ctx context.Context, id string) (*models.SimulationJob, error)
	GetJobWithResult(ctx context.Context, id string) (*JobWithResult, error)
	ListJobs(ctx context.Context, userID string) ([]*models.SimulationJob, error)
}

// InferenceService defines the interface for out-of-band job execution
type InferenceService interface {
	Execute(ctx context.Context, jobID string, modelType models.ModelType, assetID int) error
}

// PortfolioService defines the interface for portfolio operations
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	GetPortfolio(ctx context.Context, id, userID string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
}

// AssetLister exposes read access to the tracked asset set. The asset
// repository satisfies it directly.
type AssetLister interface {
	List(ctx context.Context) ([]*models.Asset, error)
}
