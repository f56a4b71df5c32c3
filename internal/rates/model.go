package rates

import (
	"time"

	"github.com/relocore/relocore/internal/pricing"
)

// RateBand is a volume band of the rate table for a destination city and
// move type. Bounds are inclusive cubic meters. Bands for one pair should be
// non-overlapping and contiguous; the audit job reports violations but
// nothing enforces them at write time.
type RateBand struct {
	ID              int64     `json:"id" db:"id"`
	DestinationCity string    `json:"destination_city" db:"destination_city"`
	MoveTypeID      int64     `json:"move_type_id" db:"move_type_id"`
	MinVolume       float64   `json:"min_volume" db:"min_volume"`
	MaxVolume       float64   `json:"max_volume" db:"max_volume"`
	Rate            float64   `json:"rate" db:"rate"`
	RateType        string    `json:"rate_type" db:"rate_type"`
	Currency        string    `json:"currency" db:"currency"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Band converts the stored band, normalising the legacy rate-type vocabulary.
func (b RateBand) Band() pricing.Band {
	return pricing.Band{
		MinVolume: b.MinVolume,
		MaxVolume: b.MaxVolume,
		Rate:      b.Rate,
		RateType:  pricing.ParseRateType(b.RateType),
	}
}

// Pair identifies a scoped rate table.
type Pair struct {
	DestinationCity string `json:"destination_city"`
	MoveTypeID      int64  `json:"move_type_id"`
}
