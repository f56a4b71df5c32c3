package pricing

import (
	"math"
	"strconv"
	"strings"
)

// Financials is the derived financial snapshot of a quotation.
type Financials struct {
	BaseAmount      float64 `json:"base_amount"`
	AdditionalTotal float64 `json:"additional_charges_total"`
	Amount          float64 `json:"amount"`
	Discount        float64 `json:"discount"`
	FinalAmount     float64 `json:"final_amount"`
	Advance         float64 `json:"advance"`
	Balance         float64 `json:"balance"`
}

// ComputeFinancials combines the base amount with the additional-charge total
// and derives the discounted and advance-adjusted figures. Discount and
// advance floor their results at zero rather than erroring; the function is
// pure and idempotent.
func ComputeFinancials(base, additionalTotal, discount, advance float64) Financials {
	amount := base + additionalTotal
	final := math.Max(0, amount-discount)
	balance := math.Max(0, final-advance)
	return Financials{
		BaseAmount:      base,
		AdditionalTotal: additionalTotal,
		Amount:          amount,
		Discount:        discount,
		FinalAmount:     final,
		Advance:         advance,
		Balance:         balance,
	}
}

// Rounded returns a copy with every amount rounded to two decimals, the
// precision used for display and persistence.
func (f Financials) Rounded() Financials {
	return Financials{
		BaseAmount:      Round2(f.BaseAmount),
		AdditionalTotal: Round2(f.AdditionalTotal),
		Amount:          Round2(f.Amount),
		Discount:        Round2(f.Discount),
		FinalAmount:     Round2(f.FinalAmount),
		Advance:         Round2(f.Advance),
		Balance:         Round2(f.Balance),
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAmount coerces a user-entered amount string to a decimal. Empty or
// non-numeric input degrades to zero; only the absence of a rate band is a
// blocking error in this engine.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
