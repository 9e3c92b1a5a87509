package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/services"
)

type stubRegistryService struct {
	active       []*services.ActiveModel
	applied      int
	reconcileErr error
	reconciled   int
}

func (s *stubRegistryService) Reconcile(ctx context.Context) (int, error) {
	s.reconciled++
	return s.applied, s.reconcileErr
}

func (s *stubRegistryService) ListActiveModels(ctx context.Context) ([]*services.ActiveModel, error) {
	return s.active, nil
}

type stubSyncService struct {
	synced chan struct{}
}

func (s *stubSyncService) SeedAssets(ctx context.Context) (int, error) { return 0, nil }

func (s *stubSyncService) SyncAll(ctx context.Context) error {
	if s.synced != nil {
		s.synced <- struct{}{}
	}
	return nil
}

func (s *stubSyncService) SyncOne(ctx context.Context, asset *models.Asset) (int, error) {
	return 0, nil
}

type stubAssetLister struct {
	assets []*models.Asset
}

func (s *stubAssetLister) List(ctx context.Context) ([]*models.Asset, error) {
	return s.assets, nil
}

func newMarketHandler(sync services.MarketSyncService, registry services.RegistryService, assets services.AssetLister) *MarketHandler {
	return NewMarketHandler(sync, registry, assets, zap.NewNop())
}

func TestHandleSyncDataRunsInBackground(t *testing.T) {
	sync := &stubSyncService{synced: make(chan struct{}, 1)}
	h := newMarketHandler(sync, &stubRegistryService{}, &stubAssetLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/sync-data", nil)
	rec := httptest.NewRecorder()
	h.HandleSyncData(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	select {
	case <-sync.synced:
	case <-time.After(2 * time.Second):
		t.Fatal("sync never started")
	}
}

func TestHandleCryptos(t *testing.T) {
	lister := &stubAssetLister{assets: []*models.Asset{
		{ID: 1, Symbol: "BTC", Name: "Bitcoin"},
		{ID: 2, Symbol: "ETH", Name: "Ethereum"},
	}}
	h := newMarketHandler(&stubSyncService{}, &stubRegistryService{}, lister)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/cryptos", nil)
	rec := httptest.NewRecorder()
	h.HandleCryptos(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var assets []*models.Asset
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&assets))
	require.Len(t, assets, 2)
	assert.Equal(t, "BTC", assets[0].Symbol)
}

func TestHandleActiveModels(t *testing.T) {
	registry := &stubRegistryService{active: []*services.ActiveModel{
		{ID: "entry-1", Symbol: "BTC", Type: models.ModelTypeGARCH, Version: 2, TrainedAt: time.Now()},
	}}
	h := newMarketHandler(&stubSyncService{}, registry, &stubAssetLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/active-models", nil)
	rec := httptest.NewRecorder()
	h.HandleActiveModels(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var active []*services.ActiveModel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&active))
	require.Len(t, active, 1)
	assert.Equal(t, models.ModelTypeGARCH, active[0].Type)
	assert.Equal(t, 2, active[0].Version)
}

func TestHandleReloadModels(t *testing.T) {
	registry := &stubRegistryService{applied: 3}
	h := newMarketHandler(&stubSyncService{}, registry, &stubAssetLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/reload-models", nil)
	rec := httptest.NewRecorder()
	h.HandleReloadModels(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, registry.reconciled)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, float64(3), out["applied"])
}

func TestHandleReloadModelsRejectsGet(t *testing.T) {
	h := newMarketHandler(&stubSyncService{}, &stubRegistryService{}, &stubAssetLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/reload-models", nil)
	rec := httptest.NewRecorder()
	h.HandleReloadModels(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
