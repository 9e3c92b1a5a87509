package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a named basket of asset positions owned by a user
type Portfolio struct {
	ID        string           `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID    string           `json:"user_id" gorm:"column:user_id;type:varchar(36);not null;index"`
	Name      string           `json:"name" gorm:"column:name;type:varchar(255);not null"`
	CreatedAt time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	Assets    []PortfolioAsset `json:"assets" gorm:"foreignKey:PortfolioID"`
}

// TableName returns the table name for the Portfolio model
func (Portfolio) TableName() string {
	return "portfolios"
}

// Validate validates the portfolio data
func (p *Portfolio) Validate() error {
	if p.UserID == "" {
		return errors.New("user_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	for _, a := range p.Assets {
		if a.AssetID == 0 {
			return errors.New("asset_id is required for each position")
		}
		if a.Amount.IsNegative() {
			return errors.New("position amount cannot be negative")
		}
	}
	return nil
}

// PortfolioAsset is a single position inside a portfolio
type PortfolioAsset struct {
	ID          string          `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	PortfolioID string          `json:"portfolio_id" gorm:"column:portfolio_id;type:varchar(36);not null;index"`
	AssetID     int             `json:"asset_id" gorm:"column:asset_id;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(24,12);not null"`
}

// TableName returns the table name for the PortfolioAsset model
func (PortfolioAsset) TableName() string {
	return "portfolio_assets"
}
