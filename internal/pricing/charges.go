package pricing

// ChargeInput is a selected ancillary service with its price-list metadata
// and the quantity recorded on the survey.
type ChargeInput struct {
	ServiceID       int64    `json:"service_id"`
	ServiceName     string   `json:"service_name"`
	PricePerUnit    float64  `json:"price_per_unit"`
	PerUnitQuantity float64  `json:"per_unit_quantity"`
	Quantity        int      `json:"quantity"`
	RateType        RateType `json:"rate_type"`
}

// ChargeLine is a priced charge ready for display and persistence.
type ChargeLine struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"total"`
}

// EffectiveQuantity applies the quantity precedence: the survey's recorded
// quantity when present, the price list's per-unit quantity otherwise, 1 as
// the last resort.
func (c ChargeInput) EffectiveQuantity() float64 {
	if c.Quantity > 0 {
		return float64(c.Quantity)
	}
	if c.PerUnitQuantity > 0 {
		return c.PerUnitQuantity
	}
	return 1
}

// AggregateCharges prices each selected service and totals them. Fixed
// charges bill the full price once; per-unit charges normalise the price to a
// single unit before scaling by the required quantity. The total is left
// unrounded; rounding happens once at display or persistence.
func AggregateCharges(charges []ChargeInput) ([]ChargeLine, float64) {
	lines := make([]ChargeLine, 0, len(charges))
	var total float64
	for _, c := range charges {
		subtotal := lineSubtotal(c)
		lines = append(lines, ChargeLine{
			ServiceID:   c.ServiceID,
			ServiceName: c.ServiceName,
			Quantity:    c.Quantity,
			Subtotal:    subtotal,
		})
		total += subtotal
	}
	return lines, total
}

func lineSubtotal(c ChargeInput) float64 {
	if c.RateType == RateFixed {
		return c.PricePerUnit
	}
	perUnit := c.PerUnitQuantity
	if perUnit <= 0 {
		perUnit = 1
	}
	return (c.PricePerUnit / perUnit) * c.EffectiveQuantity()
}
