package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptovol/backend/internal/db"
	"github.com/cryptovol/backend/internal/models"
)

type portfolioRepository struct {
	db *db.DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(database *db.DB) PortfolioRepository {
	return &portfolioRepository{db: database}
}

// Create persists a portfolio and its positions in one transaction
func (r *portfolioRepository) Create(ctx context.Context, portfolio *models.Portfolio) error {
	if err := portfolio.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if portfolio.ID == "" {
		portfolio.ID = uuid.NewString()
	}
	for i := range portfolio.Assets {
		if portfolio.Assets[i].ID == "" {
			portfolio.Assets[i].ID = uuid.NewString()
		}
		portfolio.Assets[i].PortfolioID = portfolio.ID
	}
	if err := r.db.WithContext(ctx).Create(portfolio).Error; err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

func (r *portfolioRepository) GetByID(ctx context.Context, id, userID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Where("id = ? AND user_id = ?", id, userID).
		First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio %s: %w", id, err)
	}
	return &portfolio, nil
}

func (r *portfolioRepository) ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	var portfolios []*models.Portfolio
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&portfolios).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios for user %s: %w", userID, err)
	}
	return portfolios, nil
}
