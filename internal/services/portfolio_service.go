package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
)

type portfolioService struct {
	portfolios repositories.PortfolioRepository
	logger     *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(portfolios repositories.PortfolioRepository, logger *zap.Logger) PortfolioService {
	return &portfolioService{portfolios: portfolios, logger: logger}
}

func (s *portfolioService) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	if err := s.portfolios.Create(ctx, portfolio); err != nil {
		return err
	}
	s.logger.Info("portfolio created",
		zap.String("portfolio_id", portfolio.ID),
		zap.String("user_id", portfolio.UserID),
		zap.Int("positions", len(portfolio.Assets)))
	return nil
}

func (s *portfolioService) GetPortfolio(ctx context.Context, id, userID string) (*models.Portfolio, error) {
	return s.portfolios.GetByID(ctx, id, userID)
}

func (s *portfolioService) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	return s.portfolios.ListByUser(ctx, userID)
}
