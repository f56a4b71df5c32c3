package charges

import (
	"context"
	"fmt"

	"github.com/relocore/relocore/internal/pricing"
)

// Service merges survey selections with the price list and serves the
// price-list administration endpoints.
type Service struct {
	repo Repository
}

// NewService constructs the charges service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveInputs joins the selected services against the active price list
// and produces engine inputs. Selections without a price list entry are
// skipped; the backend cannot price a service it has no rate for, and the
// survey keeps the selection so it reappears once a price is published.
func (s *Service) ResolveInputs(ctx context.Context, selections []Selection) ([]pricing.ChargeInput, error) {
	if len(selections) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(selections))
	quantities := make(map[int64]int, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ServiceID)
		quantities[sel.ServiceID] = sel.Quantity
	}

	entries, err := s.repo.ListByServiceIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load price list: %w", err)
	}

	inputs := make([]pricing.ChargeInput, 0, len(entries))
	for _, entry := range entries {
		inputs = append(inputs, entry.Input(quantities[entry.ServiceID]))
	}
	return inputs, nil
}

// Get returns one price list entry.
func (s *Service) Get(ctx context.Context, id int64) (*PriceListEntry, error) {
	return s.repo.Get(ctx, id)
}

// ListActive returns the active price list.
func (s *Service) ListActive(ctx context.Context) ([]PriceListEntry, error) {
	return s.repo.ListActive(ctx)
}

// ListByServiceIDs returns active entries for the given services.
func (s *Service) ListByServiceIDs(ctx context.Context, serviceIDs []int64) ([]PriceListEntry, error) {
	return s.repo.ListByServiceIDs(ctx, serviceIDs)
}

// Create inserts a price list entry.
func (s *Service) Create(ctx context.Context, req CreatePriceRequest) (*PriceListEntry, error) {
	entry := PriceListEntry{
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		PricePerUnit:    req.PricePerUnit,
		PerUnitQuantity: req.PerUnitQuantity,
		RateType:        req.RateType,
		CurrencyName:    req.CurrencyName,
		IsActive:        true,
	}
	id, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create price list entry: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial price list update.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePriceRequest) (*PriceListEntry, error) {
	updates := make(map[string]interface{})
	if req.ServiceName != nil {
		updates["service_name"] = *req.ServiceName
	}
	if req.PricePerUnit != nil {
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.PerUnitQuantity != nil {
		updates["per_unit_quantity"] = *req.PerUnitQuantity
	}
	if req.RateType != nil {
		updates["rate_type"] = *req.RateType
	}
	if req.CurrencyName != nil {
		updates["currency_name"] = *req.CurrencyName
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a price list entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
