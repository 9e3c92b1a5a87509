package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset represents a tracked tradable symbol (e.g. BTC, ETH)
type Asset struct {
	ID          int       `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	Symbol      string    `json:"symbol" gorm:"column:symbol;type:varchar(16);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"column:name;type:varchar(100);not null"`
	Description string    `json:"description" gorm:"column:description;type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

// SeedAsset is one entry of the static bootstrap list of tracked symbols
type SeedAsset struct {
	Symbol      string
	Name        string
	Description string
}

// PriceObservation is a single daily close for an asset. Rows are
// append-only; a given (asset, timestamp) pair is written at most once.
type PriceObservation struct {
	ID          string          `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	AssetID     int             `json:"asset_id" gorm:"column:asset_id;not null;uniqueIndex:idx_observation_asset_ts"`
	Timestamp   time.Time       `json:"timestamp" gorm:"column:timestamp;not null;uniqueIndex:idx_observation_asset_ts"`
	PriceUSD    decimal.Decimal `json:"price_usd" gorm:"column:price_usd;type:decimal(18,8);not null"`
	DailyReturn float64         `json:"daily_return" gorm:"column:daily_return"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the PriceObservation model
func (PriceObservation) TableName() string {
	return "price_observations"
}
