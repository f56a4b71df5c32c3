package quotations

import (
	"encoding/json"

	"github.com/relocore/relocore/internal/pricing"
)

// Amount decodes a money field that may arrive as a JSON number or a
// user-entered string. Malformed strings degrade to zero rather than
// rejecting the request.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Amount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Amount(pricing.ParseAmount(s))
	return nil
}

// CreateQuotationRequest prices a survey and persists the result.
type CreateQuotationRequest struct {
	SurveyID         int64   `json:"survey_id" validate:"required,gt=0"`
	Discount         Amount  `json:"discount" validate:"gte=0"`
	Advance          Amount  `json:"advance" validate:"gte=0"`
	Currency         string  `json:"currency" validate:"omitempty,len=3"`
	IncludedServices []int64 `json:"included_services,omitempty"`
	ExcludedServices []int64 `json:"excluded_services,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// UpdateQuotationRequest recomputes the snapshot with changed inputs. Nil
// fields keep the stored value; service lists replace wholesale when set.
type UpdateQuotationRequest struct {
	Discount         *Amount  `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Advance          *Amount  `json:"advance,omitempty" validate:"omitempty,gte=0"`
	Currency         *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	IncludedServices *[]int64 `json:"included_services,omitempty"`
	ExcludedServices *[]int64 `json:"excluded_services,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// PreviewQuotationRequest runs the pricing pipeline without persisting.
type PreviewQuotationRequest struct {
	SurveyID         int64   `json:"survey_id" validate:"required,gt=0"`
	Discount         Amount  `json:"discount" validate:"gte=0"`
	Advance          Amount  `json:"advance" validate:"gte=0"`
	IncludedServices []int64 `json:"included_services,omitempty"`
	ExcludedServices []int64 `json:"excluded_services,omitempty"`
}

// PreviewResponse is the non-persisted engine outcome for a screen.
type PreviewResponse struct {
	DestinationCity string               `json:"destination_city"`
	MoveTypeID      int64                `json:"move_type_id"`
	Volume          float64              `json:"volume"`
	ChargeLines     []pricing.ChargeLine `json:"charge_lines"`
	Financials      pricing.Financials   `json:"financials"`
	TotalDisplay    string               `json:"total_display"`
}

// ListQuotationsRequest filters the quotation listing.
type ListQuotationsRequest struct {
	SurveyID *int64           `json:"survey_id,omitempty"`
	Status   *QuotationStatus `json:"status,omitempty"`
	Limit    int              `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int              `json:"offset" validate:"gte=0"`
}
