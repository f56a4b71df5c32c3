package quotations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relocore/relocore/internal/charges"
	"github.com/relocore/relocore/internal/pricing"
	"github.com/relocore/relocore/internal/shared"
	"github.com/relocore/relocore/internal/surveys"
)

type fakeRepo struct {
	seq         int64
	nextID      int64
	quotations  map[int64]*Quotation
	lines       map[int64][]ChargeLine
	included    map[int64][]int64
	excluded    map[int64][]int64
	createCalls int
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotations: make(map[int64]*Quotation),
		lines:      make(map[int64][]ChargeLine),
		included:   make(map[int64][]int64),
		excluded:   make(map[int64][]int64),
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Quotation, error) {
	q, ok := f.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *q
	copied.ChargeLines = f.lines[id]
	copied.IncludedServiceIDs = f.included[id]
	copied.ExcludedServiceIDs = f.excluded[id]
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListQuotationsRequest) ([]Quotation, int, error) {
	out := make([]Quotation, 0, len(f.quotations))
	for _, q := range f.quotations {
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Create(_ context.Context, q Quotation) (int64, error) {
	f.createCalls++
	f.nextID++
	q.ID = f.nextID
	f.quotations[q.ID] = &q
	return q.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	f.updateCalls++
	q, ok := f.quotations[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["volume"]; ok {
		q.Volume = v.(float64)
	}
	if v, ok := updates["base_amount"]; ok {
		q.BaseAmount = v.(float64)
	}
	if v, ok := updates["additional_charges_total"]; ok {
		q.AdditionalChargesTotal = v.(float64)
	}
	if v, ok := updates["amount"]; ok {
		q.Amount = v.(float64)
	}
	if v, ok := updates["discount"]; ok {
		q.Discount = v.(float64)
	}
	if v, ok := updates["final_amount"]; ok {
		q.FinalAmount = v.(float64)
	}
	if v, ok := updates["advance"]; ok {
		q.Advance = v.(float64)
	}
	if v, ok := updates["balance"]; ok {
		q.Balance = v.(float64)
	}
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status QuotationStatus) error {
	q, ok := f.quotations[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = status
	return nil
}

func (f *fakeRepo) ReplaceLines(_ context.Context, id int64, lines []ChargeLine) error {
	f.lines[id] = lines
	return nil
}

func (f *fakeRepo) ReplaceServices(_ context.Context, id int64, included, excluded []int64) error {
	f.included[id] = included
	f.excluded[id] = excluded
	return nil
}

func (f *fakeRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	f.seq++
	return fmt.Sprintf("QTN-%s-%04d", date.Format("0601"), f.seq), nil
}

type fakeSurveys struct {
	byID map[int64]*surveys.Survey
}

func (f *fakeSurveys) Get(_ context.Context, id int64) (*surveys.Survey, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, surveys.ErrNotFound
	}
	return s, nil
}

type fakeCharges struct {
	priceList map[int64]pricing.ChargeInput
}

func (f *fakeCharges) ResolveInputs(_ context.Context, selections []charges.Selection) ([]pricing.ChargeInput, error) {
	var inputs []pricing.ChargeInput
	for _, sel := range selections {
		entry, ok := f.priceList[sel.ServiceID]
		if !ok {
			continue
		}
		entry.Quantity = sel.Quantity
		inputs = append(inputs, entry)
	}
	return inputs, nil
}

type fakeBands struct {
	mu      sync.Mutex
	bands   map[string][]pricing.Band
	gates   map[string]chan struct{}
	entered map[string]chan struct{}
}

// gate makes the next fetch for destinationCity block until release closes;
// entered closes once that fetch is in flight.
func (f *fakeBands) gate(destinationCity string) (release, entered chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[string]chan struct{})
		f.entered = make(map[string]chan struct{})
	}
	release = make(chan struct{})
	entered = make(chan struct{})
	f.gates[destinationCity] = release
	f.entered[destinationCity] = entered
	return release, entered
}

func (f *fakeBands) FetchBands(_ context.Context, destinationCity string, moveTypeID int64) ([]pricing.Band, error) {
	f.mu.Lock()
	gate := f.gates[destinationCity]
	entered := f.entered[destinationCity]
	bands := f.bands[fmt.Sprintf("%s/%d", destinationCity, moveTypeID)]
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}
	return bands, nil
}

func testService(repo Repository) (*Service, *fakeSurveys, *fakeBands) {
	notes := "ground floor"
	surveySrc := &fakeSurveys{byID: map[int64]*surveys.Survey{
		42: {
			ID:              42,
			CustomerName:    "R. Haddad",
			DestinationCity: "Auckland",
			MoveTypeID:      2,
			Notes:           &notes,
			Articles: []surveys.Article{
				{Name: "sofa", Volume: 6.2, Quantity: 2},
			},
			SelectedServices: []surveys.SelectedService{
				{ServiceID: 7, Quantity: 3},
			},
		},
	}}
	chargeSrc := &fakeCharges{priceList: map[int64]pricing.ChargeInput{
		7: {ServiceID: 7, ServiceName: "Packing", PricePerUnit: 210, RateType: pricing.RatePerUnit},
		9: {ServiceID: 9, ServiceName: "Storage", PricePerUnit: 500, RateType: pricing.RateFixed},
	}}
	bands := &fakeBands{bands: map[string][]pricing.Band{
		"Auckland/2": {
			{MinVolume: 0, MaxVolume: 10, Rate: 30, RateType: pricing.RatePerUnit},
			{MinVolume: 10, MaxVolume: 15, Rate: 25, RateType: pricing.RatePerUnit},
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, surveySrc, chargeSrc, bands, nil, nil, logger, "AED"), surveySrc, bands
}

func TestCreatePersistsEngineSnapshot(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := testService(repo)

	q, err := svc.Create(context.Background(), CreateQuotationRequest{
		SurveyID: 42,
		Discount: 100,
		Advance:  200,
	}, "")
	require.NoError(t, err)

	// volume 12.4 lands in the 10-15 band at 25/cbm; packing is 210 x 3.
	require.Equal(t, 12.4, q.Volume)
	require.Equal(t, 310.0, q.BaseAmount)
	require.Equal(t, 630.0, q.AdditionalChargesTotal)
	require.Equal(t, 940.0, q.Amount)
	require.Equal(t, 840.0, q.FinalAmount)
	require.Equal(t, 640.0, q.Balance)
	require.Equal(t, StatusDraft, q.Status)
	require.Equal(t, "AED", q.Currency)
	require.Contains(t, q.DocNumber, "QTN-")
	require.Len(t, q.ChargeLines, 1)
	require.Equal(t, 630.0, q.ChargeLines[0].Total)
}

func TestCreateBlockedWithoutRateBand(t *testing.T) {
	repo := newFakeRepo()
	svc, surveySrc, _ := testService(repo)
	surveySrc.byID[42].DestinationCity = "Reykjavik"

	_, err := svc.Create(context.Background(), CreateQuotationRequest{SurveyID: 42}, "")

	var noBand *pricing.NoBandError
	require.ErrorAs(t, err, &noBand)
	require.Equal(t, "Reykjavik", noBand.DestinationCity)
	require.Equal(t, 12.4, noBand.Volume)
	require.Zero(t, repo.createCalls, "blocked quotation must not be persisted")
}

func TestCreateIncludesAndExcludesServices(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := testService(repo)

	q, err := svc.Create(context.Background(), CreateQuotationRequest{
		SurveyID:         42,
		IncludedServices: []int64{9},
		ExcludedServices: []int64{7},
	}, "")
	require.NoError(t, err)

	// packing excluded, fixed storage included at full price.
	require.Equal(t, 500.0, q.AdditionalChargesTotal)
	require.Len(t, q.ChargeLines, 1)
	require.Equal(t, int64(9), q.ChargeLines[0].ServiceID)
}

func TestUpdateRecomputesSnapshot(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := testService(repo)

	q, err := svc.Create(context.Background(), CreateQuotationRequest{SurveyID: 42}, "")
	require.NoError(t, err)
	require.Equal(t, 940.0, q.FinalAmount)

	discount := Amount(40)
	updated, err := svc.Update(context.Background(), q.ID, UpdateQuotationRequest{Discount: &discount})
	require.NoError(t, err)
	require.Equal(t, 900.0, updated.FinalAmount)
	require.Equal(t, 900.0, updated.Balance)
}

func TestUpdateBlockedLeavesSnapshotUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc, surveySrc, _ := testService(repo)

	q, err := svc.Create(context.Background(), CreateQuotationRequest{SurveyID: 42}, "")
	require.NoError(t, err)

	surveySrc.byID[42].DestinationCity = "Reykjavik"
	discount := Amount(40)
	_, err = svc.Update(context.Background(), q.ID, UpdateQuotationRequest{Discount: &discount})

	var noBand *pricing.NoBandError
	require.ErrorAs(t, err, &noBand)
	require.Zero(t, repo.updateCalls)

	kept, err := repo.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, 940.0, kept.FinalAmount)
}

func TestIssueTransitionsOnce(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := testService(repo)

	q, err := svc.Create(context.Background(), CreateQuotationRequest{SurveyID: 42}, "")
	require.NoError(t, err)

	issued, err := svc.Issue(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusIssued, issued.Status)

	_, err = svc.Issue(context.Background(), q.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestConcurrentPreviewsForDifferentSurveysBothSucceed(t *testing.T) {
	repo := newFakeRepo()
	svc, surveySrc, bands := testService(repo)
	surveySrc.byID[43] = &surveys.Survey{
		ID:              43,
		CustomerName:    "T. Okafor",
		DestinationCity: "London",
		MoveTypeID:      2,
		Articles: []surveys.Article{
			{Name: "boxes", Volume: 1.0, Quantity: 5},
		},
	}
	bands.bands["London/2"] = []pricing.Band{
		{MinVolume: 0, MaxVolume: 10, Rate: 40, RateType: pricing.RatePerUnit},
	}
	release, entered := bands.gate("Auckland")

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Preview(context.Background(), PreviewQuotationRequest{SurveyID: 42})
		firstErr <- err
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first preview's band fetch never started")
	}

	// A preview for another survey completes while the first is in flight.
	preview, err := svc.Preview(context.Background(), PreviewQuotationRequest{SurveyID: 43})
	require.NoError(t, err)
	require.Equal(t, 200.0, preview.Financials.BaseAmount)

	close(release)
	require.NoError(t, <-firstErr, "preview for an unrelated survey must not be discarded as stale")
}

func TestPreviewDoesNotPersist(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := testService(repo)

	preview, err := svc.Preview(context.Background(), PreviewQuotationRequest{
		SurveyID: 42,
		Discount: 100,
		Advance:  200,
	})
	require.NoError(t, err)
	require.Equal(t, 940.0, preview.Financials.Amount)
	require.Equal(t, 640.0, preview.Financials.Balance)
	require.Equal(t, "840.00 AED", preview.TotalDisplay)
	require.Zero(t, repo.createCalls)
	require.Zero(t, repo.updateCalls)
}
