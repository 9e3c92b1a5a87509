package models

import (
	"fmt"
	"math"
	"time"
)

// JobStatus is the lifecycle state of a simulation job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether the edge s -> next is legal.
// Legal edges: pending -> running, running -> completed, running -> failed.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// SimulationJob represents one asynchronous forecast request. Jobs are
// created pending by the request path and mutated only by the executor.
type SimulationJob struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID      string     `json:"user_id" gorm:"column:user_id;type:varchar(36);not null;index"`
	PortfolioID *string    `json:"portfolio_id,omitempty" gorm:"column:portfolio_id;type:varchar(36)"`
	AssetID     *int       `json:"asset_id,omitempty" gorm:"column:asset_id"`
	ModelType   ModelType  `json:"model_type" gorm:"column:model_type;type:varchar(20);not null"`
	Status      JobStatus  `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	Error       *string    `json:"error,omitempty" gorm:"column:error;type:text"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
}

// TableName returns the table name for the SimulationJob model
func (SimulationJob) TableName() string {
	return "simulation_jobs"
}

// SimulationResult holds the normalized forecast payload of a completed
// job. Exactly one row exists per completed job and none otherwise.
type SimulationResult struct {
	JobID   string `json:"job_id" gorm:"primaryKey;column:job_id;type:varchar(36)"`
	Results []byte `json:"results" gorm:"column:results;type:jsonb;not null"`
	ModelID string `json:"model_id" gorm:"column:model_id;type:varchar(36);not null"`
}

// TableName returns the table name for the SimulationResult model
func (SimulationResult) TableName() string {
	return "simulation_results"
}

// ConfidenceInterval is a paired upper/lower band around a price path
type ConfidenceInterval struct {
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// ForecastMetrics is the typed summary block of a forecast payload.
// Field presence depends on the model type; JSON keys match the stored
// payload format.
type ForecastMetrics struct {
	AvgVolatility *float64 `json:"Avg_Volatility,omitempty"`
	CurrentPrice  *float64 `json:"Current_Price,omitempty"`
	TargetPrice   *float64 `json:"Target_Price,omitempty"`
	Trend         string   `json:"Trend,omitempty"`
}

// ForecastPayload is the normalized result shape persisted for every
// completed job regardless of model type.
type ForecastPayload struct {
	Type               ModelType           `json:"type"`
	Dates              []string            `json:"dates"`
	Prices             []float64           `json:"prices"`
	Volatility         []float64           `json:"volatility"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval"`
	Metrics            ForecastMetrics     `json:"metrics"`
}

// ForecastResult is a tagged per-model-type result that normalizes
// itself into the common payload shape.
type ForecastResult interface {
	ModelType() ModelType
	Payload() *ForecastPayload
}

// GarchResult is the volatility-shaped forecast of a GARCH artifact:
// a volatility path plus the last known price for context.
type GarchResult struct {
	Volatility []float64
	LastPrice  float64
}

// ModelType returns the tag of the GARCH variant
func (r *GarchResult) ModelType() ModelType { return ModelTypeGARCH }

// Payload normalizes the GARCH result: a flat price series at the last
// known price, the volatility path, and no confidence interval.
func (r *GarchResult) Payload() *ForecastPayload {
	horizon := len(r.Volatility)
	prices := make([]float64, horizon)
	sum := 0.0
	for i, v := range r.Volatility {
		prices[i] = r.LastPrice
		sum += v
	}
	avg := 0.0
	if horizon > 0 {
		avg = sum / float64(horizon)
	}
	return &ForecastPayload{
		Type:       ModelTypeGARCH,
		Dates:      forecastDates(horizon),
		Prices:     prices,
		Volatility: r.Volatility,
		Metrics: ForecastMetrics{
			AvgVolatility: round2(avg),
			CurrentPrice:  round2(r.LastPrice),
		},
	}
}

// ArimaResult is the price-path-shaped forecast of an ARIMA artifact:
// a predicted mean path with a matching confidence band.
type ArimaResult struct {
	Prices []float64
	Upper  []float64
	Lower  []float64
}

// ModelType returns the tag of the ARIMA variant
func (r *ArimaResult) ModelType() ModelType { return ModelTypeARIMA }

// Payload normalizes the ARIMA result: the predicted path with its
// band, an all-zero volatility series, and a trend label derived from
// the first and final predicted prices.
func (r *ArimaResult) Payload() *ForecastPayload {
	horizon := len(r.Prices)
	trend := "Bearish"
	var target float64
	if horizon > 0 {
		target = r.Prices[horizon-1]
		if target > r.Prices[0] {
			trend = "Bullish"
		}
	}
	return &ForecastPayload{
		Type:       ModelTypeARIMA,
		Dates:      forecastDates(horizon),
		Prices:     r.Prices,
		Volatility: make([]float64, horizon),
		ConfidenceInterval: &ConfidenceInterval{
			Upper: r.Upper,
			Lower: r.Lower,
		},
		Metrics: ForecastMetrics{
			TargetPrice: round2(target),
			Trend:       trend,
		},
	}
}

func forecastDates(horizon int) []string {
	dates := make([]string, horizon)
	for i := range dates {
		dates[i] = fmt.Sprintf("+%dd", i+1)
	}
	return dates
}

func round2(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}
