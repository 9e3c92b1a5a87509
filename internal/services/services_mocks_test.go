package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
)

// ---- Mocks for repositories and collaborators used in unit tests ----

type mockAssetRepo struct {
	assets  []*models.Asset
	nextID  int
	listErr error
}

func (m *mockAssetRepo) Create(ctx context.Context, asset *models.Asset) error {
	for _, a := range m.assets {
		if a.Symbol == asset.Symbol {
			return errors.New("duplicate symbol")
		}
	}
	m.nextID++
	asset.ID = m.nextID
	m.assets = append(m.assets, asset)
	return nil
}

func (m *mockAssetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	for _, a := range m.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAssetRepo) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	for _, a := range m.assets {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAssetRepo) List(ctx context.Context) ([]*models.Asset, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.assets, nil
}

func (m *mockAssetRepo) ListSymbols(ctx context.Context) ([]string, error) {
	symbols := make([]string, 0, len(m.assets))
	for _, a := range m.assets {
		symbols = append(symbols, a.Symbol)
	}
	return symbols, nil
}

type mockPriceRepo struct {
	observations map[int][]*models.PriceObservation
	batchErr     error
}

func newMockPriceRepo() *mockPriceRepo {
	return &mockPriceRepo{observations: make(map[int][]*models.PriceObservation)}
}

func (m *mockPriceRepo) CreateBatch(ctx context.Context, obs []*models.PriceObservation) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, o := range obs {
		for _, existing := range m.observations[o.AssetID] {
			if existing.Timestamp.Equal(o.Timestamp) {
				return errors.New("duplicate (asset, timestamp)")
			}
		}
		m.observations[o.AssetID] = append(m.observations[o.AssetID], o)
	}
	return nil
}

func (m *mockPriceRepo) Latest(ctx context.Context, assetID int) (*models.PriceObservation, error) {
	obs := m.observations[assetID]
	if len(obs) == 0 {
		return nil, nil
	}
	sorted := append([]*models.PriceObservation{}, obs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	return sorted[len(sorted)-1], nil
}

func (m *mockPriceRepo) LatestTimestamp(ctx context.Context, assetID int) (*time.Time, error) {
	latest, err := m.Latest(ctx, assetID)
	if err != nil || latest == nil {
		return nil, err
	}
	ts := latest.Timestamp
	return &ts, nil
}

func (m *mockPriceRepo) ListRange(ctx context.Context, assetID int, from, to time.Time) ([]*models.PriceObservation, error) {
	var out []*models.PriceObservation
	for _, o := range m.observations[assetID] {
		if !o.Timestamp.Before(from) && !o.Timestamp.After(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *mockPriceRepo) Count(ctx context.Context, assetID int) (int64, error) {
	return int64(len(m.observations[assetID])), nil
}

type mockRegistryRepo struct {
	entries   []*models.ModelRegistryEntry
	createErr error
}

func (m *mockRegistryRepo) Create(ctx context.Context, entry *models.ModelRegistryEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	if entry.ID == "" {
		entry.ID = "entry_mock_" + string(entry.ModelType)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockRegistryRepo) Update(ctx context.Context, entry *models.ModelRegistryEntry) error {
	for i, e := range m.entries {
		if e.ID == entry.ID {
			m.entries[i] = entry
			return nil
		}
	}
	return errors.New("entry not found")
}

func (m *mockRegistryRepo) GetByAssetAndType(ctx context.Context, assetID int, modelType models.ModelType) (*models.ModelRegistryEntry, error) {
	for _, e := range m.entries {
		if e.AssetID == assetID && e.ModelType == modelType {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockRegistryRepo) List(ctx context.Context) ([]*models.ModelRegistryEntry, error) {
	return m.entries, nil
}

type mockSimulationRepo struct {
	jobs        map[string]*models.SimulationJob
	results     map[string]*models.SimulationResult
	updateErr   error
	completeErr error
	created     int
}

func newMockSimulationRepo() *mockSimulationRepo {
	return &mockSimulationRepo{
		jobs:    make(map[string]*models.SimulationJob),
		results: make(map[string]*models.SimulationResult),
	}
}

func (m *mockSimulationRepo) CreateJob(ctx context.Context, job *models.SimulationJob) error {
	m.created++
	if job.ID == "" {
		job.ID = "job_mock"
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	job.CreatedAt = time.Now()
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockSimulationRepo) GetJob(ctx context.Context, id string) (*models.SimulationJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	clone := *job
	return &clone, nil
}

func (m *mockSimulationRepo) ListJobsByUser(ctx context.Context, userID string) ([]*models.SimulationJob, error) {
	var out []*models.SimulationJob
	for _, job := range m.jobs {
		if job.UserID == userID {
			clone := *job
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSimulationRepo) UpdateJob(ctx context.Context, job *models.SimulationJob) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockSimulationRepo) CompleteJob(ctx context.Context, job *models.SimulationJob, result *models.SimulationResult) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	jobClone := *job
	resultClone := *result
	m.jobs[job.ID] = &jobClone
	m.results[result.JobID] = &resultClone
	return nil
}

func (m *mockSimulationRepo) GetResult(ctx context.Context, jobID string) (*models.SimulationResult, error) {
	result, ok := m.results[jobID]
	if !ok {
		return nil, nil
	}
	clone := *result
	return &clone, nil
}

type feedRequest struct {
	symbol   string
	from, to time.Time
}

type mockFeed struct {
	prices   map[string][]DailyPrice
	err      error
	requests []feedRequest
}

func (m *mockFeed) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]DailyPrice, error) {
	m.requests = append(m.requests, feedRequest{symbol: symbol, from: from, to: to})
	if m.err != nil {
		return nil, m.err
	}
	var out []DailyPrice
	for _, p := range m.prices[symbol] {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockForecaster struct {
	volatility []float64
	mean       []float64
	upper      []float64
	lower      []float64
	loadErr    error
	callErr    error
	loaded     []string
}

func (m *mockForecaster) Load(ctx context.Context, artifactPath string) (ModelHandle, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	m.loaded = append(m.loaded, artifactPath)
	return ModelHandle(artifactPath), nil
}

func (m *mockForecaster) ForecastVolatility(ctx context.Context, handle ModelHandle, horizon int) ([]float64, error) {
	if m.callErr != nil {
		return nil, m.callErr
	}
	return m.volatility, nil
}

func (m *mockForecaster) ForecastPriceWithInterval(ctx context.Context, handle ModelHandle, horizon int, alpha float64) ([]float64, []float64, []float64, error) {
	if m.callErr != nil {
		return nil, nil, nil, m.callErr
	}
	return m.mean, m.upper, m.lower, nil
}

// compile-time checks that mocks satisfy interfaces
var _ repositories.AssetRepository = (*mockAssetRepo)(nil)
var _ repositories.PriceObservationRepository = (*mockPriceRepo)(nil)
var _ repositories.ModelRegistryRepository = (*mockRegistryRepo)(nil)
var _ repositories.SimulationRepository = (*mockSimulationRepo)(nil)
var _ PriceFeed = (*mockFeed)(nil)
var _ Forecaster = (*mockForecaster)(nil)
