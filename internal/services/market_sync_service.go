package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/cryptovol/backend/internal/errors"
	"github.com/cryptovol/backend/internal/models"
	"github.com/cryptovol/backend/internal/repositories"
)

// defaultSeedAssets is the static bootstrap list of tracked symbols
var defaultSeedAssets = []models.SeedAsset{
	{Symbol: "BTC", Name: "Bitcoin", Description: "Market Leader"},
	{Symbol: "ETH", Name: "Ethereum", Description: "Smart Contracts"},
	{Symbol: "SOL", Name: "Solana", Description: "High Performance L1"},
	{Symbol: "BNB", Name: "Binance Coin", Description: "Exchange Token"},
	{Symbol: "XRP", Name: "XRP", Description: "Payments"},
	{Symbol: "ADA", Name: "Cardano", Description: "Scientific Blockchain"},
	{Symbol: "DOGE", Name: "Dogecoin", Description: "Meme Coin"},
	{Symbol: "TON", Name: "Toncoin", Description: "The Open Network"},
	{Symbol: "AVAX", Name: "Avalanche", Description: "DApp Platform"},
	{Symbol: "LINK", Name: "Chainlink", Description: "Oracle"},
	{Symbol: "DOT", Name: "Polkadot", Description: "Interoperability"},
	{Symbol: "MATIC", Name: "Polygon", Description: "ETH Scaling"},
	{Symbol: "LTC", Name: "Litecoin", Description: "Payments"},
	{Symbol: "UNI", Name: "Uniswap", Description: "DeFi"},
	{Symbol: "ATOM", Name: "Cosmos", Description: "Internet of Blockchains"},
}

// syncEpoch is the earliest date fetched for an asset with no history
var syncEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type marketSyncService struct {
	assets repositories.AssetRepository
	prices repositories.PriceObservationRepository
	feed   PriceFeed
	seeds  []models.SeedAsset
	now    func() time.Time
	logger *zap.Logger
}

// NewMarketSyncService creates a new market data synchronizer
func NewMarketSyncService(
	assets repositories.AssetRepository,
	prices repositories.PriceObservationRepository,
	feed PriceFeed,
	logger *zap.Logger,
) MarketSyncService {
	return &marketSyncService{
		assets: assets,
		prices: prices,
		feed:   feed,
		seeds:  defaultSeedAssets,
		now:    time.Now,
		logger: logger,
	}
}

// SeedAssets registers the static seed list, skipping any symbol already
// present. Repeated seeding is a no-op. Returns the number of assets added.
func (s *marketSyncService) SeedAssets(ctx context.Context) (int, error) {
	symbols, err := s.assets.ListSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing symbols: %w", err)
	}
	existing := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		existing[sym] = struct{}{}
	}

	added := 0
	for _, seed := range s.seeds {
		if _, ok := existing[seed.Symbol]; ok {
			continue
		}
		asset := &models.Asset{
			Symbol:      seed.Symbol,
			Name:        seed.Name,
			Description: seed.Description,
		}
		if err := s.assets.Create(ctx, asset); err != nil {
			return added, fmt.Errorf("failed to seed asset %s: %w", seed.Symbol, err)
		}
		added++
	}

	if added > 0 {
		s.logger.Info("registered new assets", zap.Int("count", added))
	}
	return added, nil
}

// SyncAll seeds the asset list and synchronizes every asset in turn.
// A single asset's failure never aborts the batch: feed errors are
// logged and absorbed, and already-committed assets stay committed.
func (s *marketSyncService) SyncAll(ctx context.Context) error {
	s.logger.Info("starting market data sync")

	if _, err := s.SeedAssets(ctx); err != nil {
		return fmt.Errorf("asset seeding failed: %w", err)
	}

	assets, err := s.assets.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}
	if len(assets) == 0 {
		s.logger.Warn("no assets registered after seeding")
		return nil
	}

	for _, asset := range assets {
		count, err := s.SyncOne(ctx, asset)
		if err != nil {
			s.logger.Warn("asset sync failed, continuing",
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			continue
		}
		if count > 0 {
			s.logger.Info("saved new observations",
				zap.String("symbol", asset.Symbol),
				zap.Int("count", count))
		}
	}

	s.logger.Info("market data sync completed")
	return nil
}

// SyncOne fetches observations since the asset's last stored timestamp
// and appends them in one transaction. Returns the number of rows written.
func (s *marketSyncService) SyncOne(ctx context.Context, asset *models.Asset) (int, error) {
	lastTS, err := s.prices.LatestTimestamp(ctx, asset.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest timestamp for %s: %w", asset.Symbol, err)
	}

	startDate := syncEpoch
	if lastTS != nil {
		startDate = lastTS.UTC().Add(24 * time.Hour)
	}

	now := s.now().UTC()
	if !startDate.Before(now) {
		s.logger.Debug("asset is up to date", zap.String("symbol", asset.Symbol))
		return 0, nil
	}

	daily, err := s.feed.FetchDaily(ctx, asset.Symbol, startDate, now)
	if err != nil {
		return 0, &apperrors.ErrTransientFeed{Symbol: asset.Symbol, Err: err}
	}
	if len(daily) == 0 {
		s.logger.Debug("no new data from feed", zap.String("symbol", asset.Symbol))
		return 0, nil
	}

	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Timestamp.Before(daily[j].Timestamp)
	})

	observations := make([]*models.PriceObservation, 0, len(daily))
	prev := decimal.Zero
	for i, point := range daily {
		ts := point.Timestamp.UTC()
		// Guard against feeds replaying points at or before the stored head
		if lastTS != nil && !ts.After(lastTS.UTC()) {
			continue
		}

		dailyReturn := 0.0
		if i > 0 && prev.IsPositive() {
			ret, _ := point.Close.Div(prev).Sub(decimal.NewFromInt(1)).Float64()
			dailyReturn = ret
		}
		prev = point.Close

		observations = append(observations, &models.PriceObservation{
			AssetID:     asset.ID,
			Timestamp:   ts,
			PriceUSD:    point.Close,
			DailyReturn: dailyReturn,
		})
	}
	if len(observations) == 0 {
		return 0, nil
	}

	if err := s.prices.CreateBatch(ctx, observations); err != nil {
		return 0, &apperrors.ErrPersistence{Op: "append observations", Err: err}
	}
	return len(observations), nil
}
