// Package quotations persists priced quotations derived from surveys. The
// financial snapshot is computed server-side by internal/pricing on every
// create and update; the stored figures are authoritative for reads until
// the quotation is edited again.
package quotations

import (
	"time"

	"github.com/relocore/relocore/internal/pricing"
)

// QuotationStatus is the lifecycle state of a quotation.
type QuotationStatus string

const (
	StatusDraft  QuotationStatus = "DRAFT"
	StatusIssued QuotationStatus = "ISSUED"
)

// Quotation is a priced offer for a surveyed move. Financial fields are a
// snapshot of the engine output at the last save, rounded to two decimals.
type Quotation struct {
	ID        int64           `json:"id" db:"id"`
	DocNumber string          `json:"doc_number" db:"doc_number"`
	SurveyID  int64           `json:"survey_id" db:"survey_id"`
	Status    QuotationStatus `json:"status" db:"status"`
	Currency  string          `json:"currency" db:"currency"`

	DestinationCity string  `json:"destination_city" db:"destination_city"`
	MoveTypeID      int64   `json:"move_type_id" db:"move_type_id"`
	Volume          float64 `json:"volume" db:"volume"`

	BaseAmount             float64 `json:"base_amount" db:"base_amount"`
	AdditionalChargesTotal float64 `json:"additional_charges_total" db:"additional_charges_total"`
	Amount                 float64 `json:"amount" db:"amount"`
	Discount               float64 `json:"discount" db:"discount"`
	FinalAmount            float64 `json:"final_amount" db:"final_amount"`
	Advance                float64 `json:"advance" db:"advance"`
	Balance                float64 `json:"balance" db:"balance"`

	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	ChargeLines        []ChargeLine `json:"charge_lines,omitempty" db:"-"`
	IncludedServiceIDs []int64      `json:"included_service_ids,omitempty" db:"-"`
	ExcludedServiceIDs []int64      `json:"excluded_service_ids,omitempty" db:"-"`
}

// ChargeLine is one persisted row of the additional-charge breakdown.
type ChargeLine struct {
	ID          int64   `json:"id" db:"id"`
	QuotationID int64   `json:"quotation_id" db:"quotation_id"`
	ServiceID   int64   `json:"service_id" db:"service_id"`
	ServiceName string  `json:"service_name" db:"service_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Total       float64 `json:"total" db:"total"`
}

// Financials reconstructs the engine snapshot from the stored columns.
func (q *Quotation) Financials() pricing.Financials {
	return pricing.Financials{
		BaseAmount:      q.BaseAmount,
		AdditionalTotal: q.AdditionalChargesTotal,
		Amount:          q.Amount,
		Discount:        q.Discount,
		FinalAmount:     q.FinalAmount,
		Advance:         q.Advance,
		Balance:         q.Balance,
	}
}

func (q *Quotation) applyFinancials(f pricing.Financials) {
	rounded := f.Rounded()
	q.BaseAmount = rounded.BaseAmount
	q.AdditionalChargesTotal = rounded.AdditionalTotal
	q.Amount = rounded.Amount
	q.Discount = rounded.Discount
	q.FinalAmount = rounded.FinalAmount
	q.Advance = rounded.Advance
	q.Balance = rounded.Balance
}
