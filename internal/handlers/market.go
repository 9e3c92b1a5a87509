package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/services"
)

// MarketHandler exposes asset listing, sync and registry operations
type MarketHandler struct {
	sync     services.MarketSyncService
	registry services.RegistryService
	assets   services.AssetLister
	logger   *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(sync services.MarketSyncService, registry services.RegistryService, assets services.AssetLister, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{sync: sync, registry: registry, assets: assets, logger: logger}
}

// HandleSyncData kicks off a market data sync without blocking the
// request. POST /api/dashboard/sync-data
func (h *MarketHandler) HandleSyncData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	go func() {
		if err := h.sync.SyncAll(context.Background()); err != nil {
			h.logger.Error("background market sync failed", zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "Sync started",
		"message": "Market data update is running in background",
	})
}

// HandleCryptos lists the tracked assets. GET /api/dashboard/cryptos
func (h *MarketHandler) HandleCryptos(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	assets, err := h.assets.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(assets)
}

// HandleActiveModels lists the registry entries with their asset symbols.
// GET /api/dashboard/active-models
func (h *MarketHandler) HandleActiveModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	active, err := h.registry.ListActiveModels(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(active)
}

// HandleReloadModels reconciles the on-disk manifest into the registry.
// POST /api/dashboard/reload-models
func (h *MarketHandler) HandleReloadModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	applied, err := h.registry.Reconcile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"applied": applied,
	})
}
