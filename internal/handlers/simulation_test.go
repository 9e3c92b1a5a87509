package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cryptovol/backend/internal/errors"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/services"
	"github.com/cryptovol/backend/internal/worker"
)

type stubSimulationService struct {
	created     *models.SimulationJob
	createErr   error
	scheduleErr error
	jobs        []*models.SimulationJob
	withResult  *services.JobWithResult
	scheduled   []string
}

func (s *stubSimulationService) CreateJob(ctx context.Context, userID string, modelType models.ModelType, assetID *int, portfolioID *string) (*models.SimulationJob, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	job := &models.SimulationJob{
		ID:        "job-1",
		UserID:    userID,
		ModelType: modelType,
		AssetID:   assetID,
		Status:    models.JobStatusPending,
	}
	s.created = job
	return job, nil
}

func (s *stubSimulationService) Schedule(job *models.SimulationJob) error {
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.scheduled = append(s.scheduled, job.ID)
	return nil
}

func (s *stubSimulationService) MarkRunning(ctx context.Context, jobID string) error { return nil }

func (s *stubSimulationService) Complete(ctx context.Context, jobID string, result models.ForecastResult, modelID string) error {
	return nil
}

func (s *stubSimulationService) Fail(ctx context.Context, jobID string, cause error) error {
	return nil
}

func (s *stubSimulationService) GetJob(ctx context.Context, id string) (*models.SimulationJob, error) {
	return nil, nil
}

func (s *stubSimulationService) GetJobWithResult(ctx context.Context, id string) (*services.JobWithResult, error) {
	if s.withResult != nil && s.withResult.Job.ID == id {
		return s.withResult, nil
	}
	return nil, nil
}

func (s *stubSimulationService) ListJobs(ctx context.Context, userID string) ([]*models.SimulationJob, error) {
	return s.jobs, nil
}

var _ services.SimulationService = (*stubSimulationService)(nil)

func predictBody(t *testing.T, modelType string, assetID int) *bytes.Buffer {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"model_type": modelType,
		"asset_id":   assetID,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(raw)
}

func TestHandlePredictAccepted(t *testing.T) {
	stub := &stubSimulationService{}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", predictBody(t, "GARCH", 1))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{"job-1"}, stub.scheduled)

	var job models.SimulationJob
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&job))
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, "user-1", job.UserID)
}

func TestHandlePredictRequiresUserHeader(t *testing.T) {
	h := NewSimulationHandler(&stubSimulationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", predictBody(t, "GARCH", 1))
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePredictValidationError(t *testing.T) {
	stub := &stubSimulationService{
		createErr: &apperrors.ErrValidation{Field: "model_type", Message: "must be GARCH or ARIMA"},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", predictBody(t, "LSTM", 1))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "model_type")
}

func TestHandlePredictQueueFull(t *testing.T) {
	stub := &stubSimulationService{scheduleErr: worker.ErrQueueFull}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", predictBody(t, "GARCH", 1))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePredictPortfolioJobWithoutAsset(t *testing.T) {
	// A portfolio-scoped job passes creation but cannot be scheduled
	// without a concrete asset. The client error must surface as 400.
	stub := &stubSimulationService{
		scheduleErr: &apperrors.ErrValidation{Field: "asset_id", Message: "is required for execution"},
	}
	h := NewSimulationHandler(stub)

	raw, err := json.Marshal(map[string]interface{}{
		"model_type":   "GARCH",
		"portfolio_id": "portfolio-1",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", bytes.NewBuffer(raw))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "asset_id")
}

func TestHandlePredictDuplicate(t *testing.T) {
	stub := &stubSimulationService{scheduleErr: worker.ErrDuplicateJob}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/predict", predictBody(t, "GARCH", 1))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandlePredict(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleSimulationsEmptyListIsJSONArray(t *testing.T) {
	h := NewSimulationHandler(&stubSimulationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/simulations", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.HandleSimulations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleSimulationNotFound(t *testing.T) {
	h := NewSimulationHandler(&stubSimulationService{})

	router := mux.NewRouter()
	router.HandleFunc("/api/dashboard/simulations/{id}", h.HandleSimulation)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/simulations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSimulationReturnsResult(t *testing.T) {
	price := 50000.0
	stub := &stubSimulationService{
		withResult: &services.JobWithResult{
			Job: &models.SimulationJob{ID: "job-1", UserID: "user-1", Status: models.JobStatusCompleted},
			Result: &models.ForecastPayload{
				Type:    models.ModelTypeGARCH,
				Dates:   []string{"+1d"},
				Prices:  []float64{price},
				Metrics: models.ForecastMetrics{CurrentPrice: &price},
			},
		},
	}
	h := NewSimulationHandler(stub)

	router := mux.NewRouter()
	router.HandleFunc("/api/dashboard/simulations/{id}", h.HandleSimulation)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/simulations/job-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out services.JobWithResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.NotNil(t, out.Result)
	assert.Equal(t, models.ModelTypeGARCH, out.Result.Type)
	require.NotNil(t, out.Result.Metrics.CurrentPrice)
	assert.Equal(t, price, *out.Result.Metrics.CurrentPrice)
}
