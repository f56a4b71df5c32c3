package rates

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/relocore/relocore/internal/pricing"
)

// Service exposes the rate table to the pricing engine and to the
// administration endpoints. Reads go through the versioned Redis cache;
// concurrent lookups for the same scope are collapsed with singleflight.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs the rates service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ActiveBands returns the active bands scoped to a destination and move
// type, in ascending volume order.
func (s *Service) ActiveBands(ctx context.Context, destinationCity string, moveTypeID int64) ([]RateBand, error) {
	key, err := s.cache.BuildKey(ctx, keyBands(destinationCity, moveTypeID))
	if err != nil {
		return nil, err
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var bands []RateBand
		err := s.cache.FetchJSON(ctx, key, &bands, func(ctx context.Context) (interface{}, error) {
			return s.repo.ListActive(ctx, destinationCity, moveTypeID)
		})
		return bands, err
	})
	if err != nil {
		return nil, err
	}
	bands, _ := value.([]RateBand)
	return bands, nil
}

// FetchBands implements pricing.BandSource over the active rate table.
func (s *Service) FetchBands(ctx context.Context, destinationCity string, moveTypeID int64) ([]pricing.Band, error) {
	bands, err := s.ActiveBands(ctx, destinationCity, moveTypeID)
	if err != nil {
		return nil, err
	}
	out := make([]pricing.Band, 0, len(bands))
	for _, b := range bands {
		out = append(out, b.Band())
	}
	return out, nil
}

// Get returns one band.
func (s *Service) Get(ctx context.Context, id int64) (*RateBand, error) {
	return s.repo.Get(ctx, id)
}

// List returns bands matching the filter plus the unpaginated total.
func (s *Service) List(ctx context.Context, req ListBandsRequest) ([]RateBand, int, error) {
	return s.repo.List(ctx, req)
}

// ActivePairs lists the distinct scoped rate tables currently active.
func (s *Service) ActivePairs(ctx context.Context) ([]Pair, error) {
	return s.repo.ActivePairs(ctx)
}

// Create inserts a band and invalidates cached lookups.
func (s *Service) Create(ctx context.Context, req CreateBandRequest) (*RateBand, error) {
	band := RateBand{
		DestinationCity: req.DestinationCity,
		MoveTypeID:      req.MoveTypeID,
		MinVolume:       req.MinVolume,
		MaxVolume:       req.MaxVolume,
		Rate:            req.Rate,
		RateType:        req.RateType,
		Currency:        req.Currency,
		IsActive:        true,
	}
	id, err := s.repo.Create(ctx, band)
	if err != nil {
		return nil, fmt.Errorf("create rate band: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update applies a partial band update and invalidates cached lookups.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBandRequest) (*RateBand, error) {
	updates := make(map[string]interface{})
	if req.MinVolume != nil {
		updates["min_volume"] = *req.MinVolume
	}
	if req.MaxVolume != nil {
		updates["max_volume"] = *req.MaxVolume
	}
	if req.Rate != nil {
		updates["rate"] = *req.Rate
	}
	if req.RateType != nil {
		updates["rate_type"] = *req.RateType
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a band and invalidates cached lookups.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("bump rates cache version", slog.Any("error", err))
	}
}
