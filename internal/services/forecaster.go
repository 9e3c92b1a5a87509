package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPForecaster talks to the model-runner sidecar that owns the
// statistical libraries. The core ships artifact paths across and gets
// plain number sequences back; it never interprets the artifacts.
type HTTPForecaster struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPForecaster creates a forecaster client for the runner at baseURL
func NewHTTPForecaster(baseURL string) Forecaster {
	return &HTTPForecaster{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Load registers the artifact with the runner and returns its handle
func (f *HTTPForecaster) Load(ctx context.Context, artifactPath string) (ModelHandle, error) {
	var out struct {
		Handle string `json:"handle"`
	}
	err := f.post(ctx, "/models/load", map[string]interface{}{
		"artifact": artifactPath,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Handle == "" {
		return "", fmt.Errorf("runner returned empty handle for %s", artifactPath)
	}
	return ModelHandle(out.Handle), nil
}

// ForecastVolatility returns a horizon-length volatility sequence
func (f *HTTPForecaster) ForecastVolatility(ctx context.Context, handle ModelHandle, horizon int) ([]float64, error) {
	var out struct {
		Volatility []float64 `json:"volatility"`
	}
	err := f.post(ctx, "/forecast/volatility", map[string]interface{}{
		"handle":  string(handle),
		"horizon": horizon,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Volatility) != horizon {
		return nil, fmt.Errorf("runner returned %d volatility points, want %d", len(out.Volatility), horizon)
	}
	return out.Volatility, nil
}

// ForecastPriceWithInterval returns a predicted price path with its
// confidence band at level 1-alpha.
func (f *HTTPForecaster) ForecastPriceWithInterval(ctx context.Context, handle ModelHandle, horizon int, alpha float64) ([]float64, []float64, []float64, error) {
	var out struct {
		Mean  []float64 `json:"mean"`
		Upper []float64 `json:"upper"`
		Lower []float64 `json:"lower"`
	}
	err := f.post(ctx, "/forecast/price", map[string]interface{}{
		"handle":  string(handle),
		"horizon": horizon,
		"alpha":   alpha,
	}, &out)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(out.Mean) != horizon || len(out.Upper) != horizon || len(out.Lower) != horizon {
		return nil, nil, nil, fmt.Errorf("runner returned mismatched forecast lengths (%d/%d/%d), want %d",
			len(out.Mean), len(out.Upper), len(out.Lower), horizon)
	}
	return out.Mean, out.Upper, out.Lower, nil
}

func (f *HTTPForecaster) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model runner status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
