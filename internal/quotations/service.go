package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/relocore/relocore/internal/charges"
	"github.com/relocore/relocore/internal/observability"
	"github.com/relocore/relocore/internal/pricing"
	"github.com/relocore/relocore/internal/shared"
	"github.com/relocore/relocore/internal/surveys"
)

// SurveySource loads the survey a quotation prices.
type SurveySource interface {
	Get(ctx context.Context, id int64) (*surveys.Survey, error)
}

// ChargeResolver joins service selections against the price list.
type ChargeResolver interface {
	ResolveInputs(ctx context.Context, selections []charges.Selection) ([]pricing.ChargeInput, error)
}

// Service computes and persists quotations. Every save recomputes the
// financial snapshot through the pricing engine; a quotation is never
// stored with figures the engine did not produce.
type Service struct {
	repo     Repository
	surveys  SurveySource
	charges  ChargeResolver
	bands    pricing.BandSource
	recalc   *pricing.RecalculatorGroup
	idem     *shared.IdempotencyStore
	metrics  *observability.Metrics
	logger   *slog.Logger
	currency string
}

// NewService constructs the quotations service. defaultCurrency is used
// when a request carries none.
func NewService(
	repo Repository,
	surveySource SurveySource,
	chargeResolver ChargeResolver,
	bands pricing.BandSource,
	idem *shared.IdempotencyStore,
	metrics *observability.Metrics,
	logger *slog.Logger,
	defaultCurrency string,
) *Service {
	return &Service{
		repo:     repo,
		surveys:  surveySource,
		charges:  chargeResolver,
		bands:    bands,
		recalc:   pricing.NewRecalculatorGroup(bands),
		idem:     idem,
		metrics:  metrics,
		logger:   logger,
		currency: defaultCurrency,
	}
}

// Get returns a quotation with its charge breakdown and service selections.
func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

// List returns quotations matching the filter plus the unpaginated total.
func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// Create prices the survey and persists the quotation atomically. A missing
// rate band blocks the save: the returned error is the *pricing.NoBandError
// naming destination and volume. idempotencyKey deduplicates retried
// requests; a replay returns shared.ErrIdempotencyConflict.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, idempotencyKey string) (*Quotation, error) {
	if s.idem != nil && idempotencyKey != "" {
		if err := s.idem.CheckAndInsert(ctx, idempotencyKey, "quotations:create"); err != nil {
			return nil, err
		}
	}

	q, err := s.create(ctx, req)
	if err != nil && s.idem != nil && idempotencyKey != "" {
		// A failed create must not poison the key for the retry.
		if delErr := s.idem.Delete(ctx, idempotencyKey); delErr != nil {
			s.logger.Warn("release idempotency key", slog.String("key", idempotencyKey), slog.Any("error", delErr))
		}
	}
	return q, err
}

func (s *Service) create(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	survey, err := s.surveys.Get(ctx, req.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %d: %w", req.SurveyID, err)
	}

	result, err := s.evaluate(ctx, survey, float64(req.Discount), float64(req.Advance), req.IncludedServices, req.ExcludedServices)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	q := Quotation{
		SurveyID:           survey.ID,
		Status:             StatusDraft,
		Currency:           currency,
		DestinationCity:    survey.DestinationCity,
		MoveTypeID:         survey.MoveTypeID,
		Volume:             result.Inputs.Volume,
		Notes:              req.Notes,
		IncludedServiceIDs: req.IncludedServices,
		ExcludedServiceIDs: req.ExcludedServices,
	}
	q.applyFinancials(result.Financials)

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		docNumber, err := tx.GenerateNumber(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("generate doc number: %w", err)
		}
		q.DocNumber = docNumber

		id, err := tx.Create(ctx, q)
		if err != nil {
			return err
		}
		q.ID = id

		if err := tx.ReplaceLines(ctx, id, chargeLines(id, result.ChargeLines)); err != nil {
			return err
		}
		return tx.ReplaceServices(ctx, id, req.IncludedServices, req.ExcludedServices)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation created",
		slog.String("doc_number", q.DocNumber),
		slog.Int64("survey_id", q.SurveyID),
		slog.Float64("final_amount", q.FinalAmount))
	return s.repo.Get(ctx, q.ID)
}

// Update recomputes the snapshot with the changed inputs and replaces the
// stored figures and breakdown atomically. A no-band condition blocks the
// save, leaving the previous snapshot untouched.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	survey, err := s.surveys.Get(ctx, existing.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %d: %w", existing.SurveyID, err)
	}

	discount := existing.Discount
	if req.Discount != nil {
		discount = float64(*req.Discount)
	}
	advance := existing.Advance
	if req.Advance != nil {
		advance = float64(*req.Advance)
	}
	included := existing.IncludedServiceIDs
	if req.IncludedServices != nil {
		included = *req.IncludedServices
	}
	excluded := existing.ExcludedServiceIDs
	if req.ExcludedServices != nil {
		excluded = *req.ExcludedServices
	}

	result, err := s.evaluate(ctx, survey, discount, advance, included, excluded)
	if err != nil {
		return nil, err
	}

	rounded := result.Financials.Rounded()
	updates := map[string]interface{}{
		"destination_city":         survey.DestinationCity,
		"move_type_id":             survey.MoveTypeID,
		"volume":                   result.Inputs.Volume,
		"base_amount":              rounded.BaseAmount,
		"additional_charges_total": rounded.AdditionalTotal,
		"amount":                   rounded.Amount,
		"discount":                 rounded.Discount,
		"final_amount":             rounded.FinalAmount,
		"advance":                  rounded.Advance,
		"balance":                  rounded.Balance,
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.Update(ctx, id, updates); err != nil {
			return err
		}
		if err := tx.ReplaceLines(ctx, id, chargeLines(id, result.ChargeLines)); err != nil {
			return err
		}
		return tx.ReplaceServices(ctx, id, included, excluded)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Issue transitions a draft to ISSUED. Issuing twice conflicts.
func (s *Service) Issue(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == StatusIssued {
		return nil, fmt.Errorf("quotation %s already issued: %w", q.DocNumber, shared.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusIssued); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Preview runs the recalculation pipeline without persisting. Rapid
// consecutive previews for the same survey race on the band fetch; a
// superseded run returns pricing.ErrSuperseded and only the newest result is
// reported. Previews for different surveys run independently.
func (s *Service) Preview(ctx context.Context, req PreviewQuotationRequest) (*PreviewResponse, error) {
	survey, err := s.surveys.Get(ctx, req.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %d: %w", req.SurveyID, err)
	}

	inputs, err := s.engineInputs(ctx, survey, float64(req.Discount), float64(req.Advance), req.IncludedServices, req.ExcludedServices)
	if err != nil {
		return nil, err
	}

	result, err := s.recalc.For(req.SurveyID).Recalculate(ctx, inputs)
	if err != nil {
		if err == pricing.ErrSuperseded && s.metrics != nil {
			s.metrics.ObserveStaleRecalc()
		}
		return nil, err
	}
	if result.Blocked() {
		s.observeNoBand(result.Err)
		return nil, result.Err
	}

	rounded := result.Financials.Rounded()
	return &PreviewResponse{
		DestinationCity: inputs.DestinationCity,
		MoveTypeID:      inputs.MoveTypeID,
		Volume:          inputs.Volume,
		ChargeLines:     result.ChargeLines,
		Financials:      rounded,
		TotalDisplay:    pricing.FormatMoney(rounded.FinalAmount, s.currency),
	}, nil
}

// evaluate runs a synchronous recomputation for a save path. Saves must not
// be discarded as stale, so they bypass the generation-tagged recalculator.
func (s *Service) evaluate(ctx context.Context, survey *surveys.Survey, discount, advance float64, included, excluded []int64) (pricing.Result, error) {
	inputs, err := s.engineInputs(ctx, survey, discount, advance, included, excluded)
	if err != nil {
		return pricing.Result{}, err
	}

	bands, fetchErr := s.bands.FetchBands(ctx, inputs.DestinationCity, inputs.MoveTypeID)
	result := pricing.Evaluate(inputs, bands, fetchErr)
	if result.Blocked() {
		s.observeNoBand(result.Err)
		return pricing.Result{}, result.Err
	}
	return result, nil
}

func (s *Service) engineInputs(ctx context.Context, survey *surveys.Survey, discount, advance float64, included, excluded []int64) (pricing.Inputs, error) {
	chargeInputs, err := s.charges.ResolveInputs(ctx, selectServices(survey, included, excluded))
	if err != nil {
		return pricing.Inputs{}, err
	}
	return pricing.Inputs{
		DestinationCity: survey.DestinationCity,
		MoveTypeID:      survey.MoveTypeID,
		Volume:          survey.TotalVolume(),
		Charges:         chargeInputs,
		Discount:        discount,
		Advance:         advance,
	}, nil
}

func (s *Service) observeNoBand(err *pricing.NoBandError) {
	if s.metrics != nil {
		s.metrics.ObserveNoBand(err.DestinationCity)
	}
	s.logger.Warn("no rate band for quotation",
		slog.String("destination", err.DestinationCity),
		slog.Int64("move_type_id", err.MoveTypeID),
		slog.Float64("volume", err.Volume))
}

// selectServices merges the survey's selections with the quotation's
// include and exclude lists. Includes without a surveyed quantity default
// to zero so the price list's per-unit quantity takes over.
func selectServices(survey *surveys.Survey, included, excluded []int64) []charges.Selection {
	quantities := make(map[int64]int)
	for _, svc := range survey.SelectedServices {
		quantities[svc.ServiceID] = svc.Quantity
	}
	for _, id := range included {
		if _, ok := quantities[id]; !ok {
			quantities[id] = 0
		}
	}
	for _, id := range excluded {
		delete(quantities, id)
	}

	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	selections := make([]charges.Selection, 0, len(ids))
	for _, id := range ids {
		selections = append(selections, charges.Selection{ServiceID: id, Quantity: quantities[id]})
	}
	return selections
}

func chargeLines(quotationID int64, lines []pricing.ChargeLine) []ChargeLine {
	out := make([]ChargeLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, ChargeLine{
			QuotationID: quotationID,
			ServiceID:   line.ServiceID,
			ServiceName: line.ServiceName,
			Quantity:    line.Quantity,
			Total:       pricing.Round2(line.Subtotal),
		})
	}
	return out
}
