package models

import (
	"encoding/json"
	"time"
)

// ModelType identifies the statistical method behind a trained artifact
type ModelType string

const (
	ModelTypeGARCH ModelType = "GARCH"
	ModelTypeARIMA ModelType = "ARIMA"
)

// Valid reports whether the model type is one the executor understands
func (t ModelType) Valid() bool {
	return t == ModelTypeGARCH || t == ModelTypeARIMA
}

// ModelRegistryEntry tracks one trained artifact per (asset, model type)
// pair. Entries are mutated only by the reconciler: the descriptor is
// replaced and the version bumped each time the manifest re-lists the
// pair. Prior descriptors are not retained.
type ModelRegistryEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	AssetID    int       `json:"asset_id" gorm:"column:asset_id;not null;uniqueIndex:idx_registry_asset_type"`
	ModelType  ModelType `json:"model_type" gorm:"column:model_type;type:varchar(20);not null;uniqueIndex:idx_registry_asset_type"`
	Parameters []byte    `json:"parameters" gorm:"column:parameters;type:jsonb"`
	Version    int       `json:"version" gorm:"column:version;not null"`
	TrainedAt  time.Time `json:"trained_at" gorm:"column:trained_at;not null"`
}

// TableName returns the table name for the ModelRegistryEntry model
func (ModelRegistryEntry) TableName() string {
	return "model_registry"
}

// Descriptor decodes the entry's parameter descriptor. The descriptor is
// opaque to the core beyond the resolvable artifact path.
func (e *ModelRegistryEntry) Descriptor() (map[string]interface{}, error) {
	var params map[string]interface{}
	if err := json.Unmarshal(e.Parameters, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// ArtifactPath returns the stored artifact location, or "" when the
// descriptor carries none.
func (e *ModelRegistryEntry) ArtifactPath() string {
	params, err := e.Descriptor()
	if err != nil {
		return ""
	}
	if p, ok := params["path"].(string); ok {
		return p
	}
	return ""
}

// ManifestEntry is one record of the trained-model manifest produced by
// the offline training pipeline.
type ManifestEntry struct {
	Symbol     string                 `json:"symbol"`
	ModelType  ModelType              `json:"model_type"`
	Parameters map[string]interface{} `json:"parameters"`
	Filename   string                 `json:"filename"`
}
