package charges

// CreatePriceRequest describes a new price list entry.
type CreatePriceRequest struct {
	ServiceID       int64   `json:"service_id" validate:"required,gt=0"`
	ServiceName     string  `json:"service_name" validate:"required,max=120"`
	PricePerUnit    float64 `json:"price_per_unit" validate:"required,gte=0"`
	PerUnitQuantity float64 `json:"per_unit_quantity" validate:"gte=0"`
	RateType        string  `json:"rate_type" validate:"required"`
	CurrencyName    string  `json:"currency_name" validate:"required,len=3"`
}

// UpdatePriceRequest carries a partial price list update.
type UpdatePriceRequest struct {
	ServiceName     *string  `json:"service_name,omitempty" validate:"omitempty,max=120"`
	PricePerUnit    *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
	PerUnitQuantity *float64 `json:"per_unit_quantity,omitempty" validate:"omitempty,gte=0"`
	RateType        *string  `json:"rate_type,omitempty"`
	CurrencyName    *string  `json:"currency_name,omitempty" validate:"omitempty,len=3"`
	IsActive        *bool    `json:"is_active,omitempty"`
}
