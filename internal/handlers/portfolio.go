package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/services"
)

// PortfolioHandler exposes portfolio CRUD for the dashboard
type PortfolioHandler struct {
	portfolios services.PortfolioService
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolios services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios}
}

type portfolioCreateRequest struct {
	Name   string `json:"name"`
	Assets []struct {
		AssetID int             `json:"asset_id"`
		Amount  decimal.Decimal `json:"amount"`
	} `json:"assets"`
}

// HandlePortfolios lists or creates portfolios.
// GET|POST /api/dashboard/portfolios
func (h *PortfolioHandler) HandlePortfolios(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := requesterID(r)
	if userID == "" {
		http.Error(w, "X-User-ID header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		portfolios, err := h.portfolios.ListPortfolios(r.Context(), userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if portfolios == nil {
			portfolios = []*models.Portfolio{}
		}
		json.NewEncoder(w).Encode(portfolios)

	case http.MethodPost:
		var req portfolioCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		portfolio := &models.Portfolio{
			UserID: userID,
			Name:   req.Name,
		}
		for _, a := range req.Assets {
			portfolio.Assets = append(portfolio.Assets, models.PortfolioAsset{
				AssetID: a.AssetID,
				Amount:  a.Amount,
			})
		}
		if err := h.portfolios.CreatePortfolio(r.Context(), portfolio); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(portfolio)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePortfolio returns one portfolio with its positions.
// GET /api/dashboard/portfolios/{id}
func (h *PortfolioHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := requesterID(r)
	if userID == "" {
		http.Error(w, "X-User-ID header is required", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	portfolio, err := h.portfolios.GetPortfolio(r.Context(), id, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if portfolio == nil {
		http.Error(w, "portfolio not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(portfolio)
}
