package pricing

import (
	"context"
	"errors"
	"sync"
)

// BandSource fetches the active rate bands for a destination and move type.
// Implementations may block for an arbitrary duration; the Recalculator
// guards against out-of-order completion.
type BandSource interface {
	FetchBands(ctx context.Context, destinationCity string, moveTypeID int64) ([]Band, error)
}

// Inputs is the complete set of values a recomputation depends on.
type Inputs struct {
	DestinationCity string
	MoveTypeID      int64
	Volume          float64
	Charges         []ChargeInput
	Discount        float64
	Advance         float64
}

// Result is the terminal state of one recomputation: either a populated
// quote or a blocking no-band error. While Err is set, any save action
// downstream must stay disabled.
type Result struct {
	Inputs      Inputs
	Band        Band
	ChargeLines []ChargeLine
	Financials  Financials
	Err         *NoBandError
}

// Blocked reports whether the result forbids persisting a quotation.
func (r Result) Blocked() bool {
	return r.Err != nil
}

// ErrSuperseded is returned when a newer recalculation was started before
// this one's band fetch completed; the stale outcome is discarded.
var ErrSuperseded = errors.New("pricing: recalculation superseded by newer inputs")

// Recalculator runs the dependency chain destination -> bands -> base amount
// -> financials. Each call tags its band fetch with a generation; a response
// arriving after a newer call has started is dropped so the applied state
// always reflects the most recent selection.
type Recalculator struct {
	source BandSource

	mu     sync.Mutex
	gen    uint64
	latest Result
	seeded bool
}

// NewRecalculator constructs a Recalculator over the given band source.
func NewRecalculator(source BandSource) *Recalculator {
	return &Recalculator{source: source}
}

// Recalculate fetches bands for the inputs' destination and move type, then
// computes the financial snapshot. It returns ErrSuperseded when a newer
// call started while the fetch was outstanding. A fetch failure degenerates
// to the blocking no-band state, indistinguishable from missing coverage.
func (r *Recalculator) Recalculate(ctx context.Context, in Inputs) (Result, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	bands, fetchErr := r.source.FetchBands(ctx, in.DestinationCity, in.MoveTypeID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return Result{}, ErrSuperseded
	}

	result := Evaluate(in, bands, fetchErr)
	r.latest = result
	r.seeded = true
	return result, nil
}

// Latest returns the most recently applied result.
func (r *Recalculator) Latest() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.seeded
}

// RecalculatorGroup hands out one Recalculator per editing session, keyed by
// the survey being priced. Supersession is meaningful only within a session:
// a newer preview discards an in-flight one for the same survey, while
// previews for different surveys never interfere.
type RecalculatorGroup struct {
	source BandSource

	mu    sync.Mutex
	byKey map[int64]*Recalculator
}

// NewRecalculatorGroup constructs a group over the given band source.
func NewRecalculatorGroup(source BandSource) *RecalculatorGroup {
	return &RecalculatorGroup{source: source, byKey: make(map[int64]*Recalculator)}
}

// For returns the session's Recalculator, creating it on first use.
func (g *RecalculatorGroup) For(key int64) *Recalculator {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.byKey[key]
	if !ok {
		r = NewRecalculator(g.source)
		g.byKey[key] = r
	}
	return r
}

// Evaluate computes one recomputation over already-fetched bands. fetchErr
// marks the band fetch as failed, which yields the same blocking state as an
// empty table.
func Evaluate(in Inputs, bands []Band, fetchErr error) Result {
	result := Result{Inputs: in}

	if fetchErr != nil {
		result.Err = &NoBandError{DestinationCity: in.DestinationCity, MoveTypeID: in.MoveTypeID, Volume: in.Volume}
		return result
	}

	band, ok := ResolveBand(bands, in.Volume)
	if !ok {
		result.Err = &NoBandError{DestinationCity: in.DestinationCity, MoveTypeID: in.MoveTypeID, Volume: in.Volume}
		return result
	}

	lines, additionalTotal := AggregateCharges(in.Charges)
	base := BaseAmount(band, in.Volume)

	result.Band = band
	result.ChargeLines = lines
	result.Financials = ComputeFinancials(base, additionalTotal, in.Discount, in.Advance)
	return result
}
