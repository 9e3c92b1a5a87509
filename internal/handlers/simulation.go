package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/cryptovol/backend/internal/errors"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/services"
	"github.com/cryptovol/backend/internal/worker"
)

// SimulationHandler exposes job submission and status queries. Request
// identity arrives pre-authenticated in the X-User-ID header; session
// handling lives outside this service.
type SimulationHandler struct {
	sims services.SimulationService
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(sims services.SimulationService) *SimulationHandler {
	return &SimulationHandler{sims: sims}
}

type predictRequest struct {
	ModelType   models.ModelType `json:"model_type"`
	AssetID     *int             `json:"asset_id,omitempty"`
	PortfolioID *string          `json:"portfolio_id,omitempty"`
}

// HandlePredict creates a job in pending and schedules it for
// out-of-band execution. The response returns before the job runs.
// POST /api/dashboard/predict
func (h *SimulationHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := requesterID(r)
	if userID == "" {
		http.Error(w, "X-User-ID header is required", http.StatusBadRequest)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	job, err := h.sims.CreateJob(r.Context(), userID, req.ModelType, req.AssetID, req.PortfolioID)
	if err != nil {
		var vErr *apperrors.ErrValidation
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.sims.Schedule(job); err != nil {
		var vErr *apperrors.ErrValidation
		switch {
		case errors.Is(err, worker.ErrQueueFull):
			http.Error(w, "execution queue is full, retry later", http.StatusServiceUnavailable)
		case errors.Is(err, worker.ErrDuplicateJob):
			http.Error(w, "job already scheduled", http.StatusConflict)
		case errors.As(err, &vErr):
			http.Error(w, vErr.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job)
}

// HandleSimulations lists the requester's jobs newest-first.
// GET /api/dashboard/simulations
func (h *SimulationHandler) HandleSimulations(w http.ResponseWriter, r *http.Request) {
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

	jobs, err := h.sims.ListJobs(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*models.SimulationJob{}
	}
	json.NewEncoder(w).Encode(jobs)
}

// HandleSimulation returns one job with its result payload when completed.
// GET /api/dashboard/simulations/{id}
func (h *SimulationHandler) HandleSimulation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := mux.Vars(r)["id"]
	out, err := h.sims.GetJobWithResult(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if out == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(out)
}

func requesterID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
