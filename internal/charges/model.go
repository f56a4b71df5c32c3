package charges

import (
	"time"

	"github.com/relocore/relocore/internal/pricing"
)

// PriceListEntry is the published price of an ancillary service (storage,
// piano handling, packing crew and the like).
type PriceListEntry struct {
	ID              int64     `json:"id" db:"id"`
	ServiceID       int64     `json:"service_id" db:"service_id"`
	ServiceName     string    `json:"service_name" db:"service_name"`
	PricePerUnit    float64   `json:"price_per_unit" db:"price_per_unit"`
	PerUnitQuantity float64   `json:"per_unit_quantity" db:"per_unit_quantity"`
	RateType        string    `json:"rate_type" db:"rate_type"`
	CurrencyName    string    `json:"currency_name" db:"currency_name"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Selection is a service chosen on a survey, with the quantity the surveyor
// recorded. Zero quantity defers to the price list.
type Selection struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

// Input builds the engine input for this entry with the surveyed quantity.
func (e PriceListEntry) Input(quantity int) pricing.ChargeInput {
	return pricing.ChargeInput{
		ServiceID:       e.ServiceID,
		ServiceName:     e.ServiceName,
		PricePerUnit:    e.PricePerUnit,
		PerUnitQuantity: e.PerUnitQuantity,
		Quantity:        quantity,
		RateType:        pricing.ParseRateType(e.RateType),
	}
}
