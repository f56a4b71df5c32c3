package rates

// CreateBandRequest describes a new rate band.
type CreateBandRequest struct {
	DestinationCity string  `json:"destination_city" validate:"required,max=120"`
	MoveTypeID      int64   `json:"move_type_id" validate:"required,gt=0"`
	MinVolume       float64 `json:"min_volume" validate:"gte=0"`
	MaxVolume       float64 `json:"max_volume" validate:"required,gtefield=MinVolume"`
	Rate            float64 `json:"rate" validate:"required,gte=0"`
	RateType        string  `json:"rate_type" validate:"required,oneof=flat variable fixed per_unit"`
	Currency        string  `json:"currency" validate:"required,len=3"`
}

// UpdateBandRequest carries a partial band update.
type UpdateBandRequest struct {
	MinVolume *float64 `json:"min_volume,omitempty" validate:"omitempty,gte=0"`
	MaxVolume *float64 `json:"max_volume,omitempty" validate:"omitempty,gte=0"`
	Rate      *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
	RateType  *string  `json:"rate_type,omitempty" validate:"omitempty,oneof=flat variable fixed per_unit"`
	Currency  *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// ListBandsRequest filters the band listing.
type ListBandsRequest struct {
	DestinationCity *string `json:"destination_city,omitempty"`
	MoveTypeID      *int64  `json:"move_type_id,omitempty"`
	ActiveOnly      bool    `json:"active_only"`
	Limit           int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset          int     `json:"offset" validate:"gte=0"`
}
