// Package pricing implements the quotation pricing engine: rate band
// resolution, additional-charge aggregation, financial derivation and the
// guarded recalculation pipeline. All computation is pure; I/O is limited to
// the BandSource supplied by the caller.
package pricing

import "strings"

// RateType distinguishes a fixed price from a quantity-scaled one.
type RateType string

const (
	// RateFixed charges the full rate once, regardless of volume or quantity.
	RateFixed RateType = "fixed"
	// RatePerUnit scales the rate by volume (bands) or quantity (charges).
	RatePerUnit RateType = "per_unit"
)

// ParseRateType maps the legacy rate-type vocabulary onto the unified enum.
// Rate bands historically used "flat"/"variable" while the charge price list
// used "FIX"; both collapse to the same two semantic categories.
func ParseRateType(s string) RateType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FLAT", "FIX", "FIXED":
		return RateFixed
	default:
		return RatePerUnit
	}
}
