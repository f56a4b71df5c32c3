package pricing

import "fmt"

// Band is a volume band of the rate table, already scoped to a destination
// and move type by the caller. Bounds are inclusive, in cubic meters.
type Band struct {
	MinVolume float64  `json:"min_volume"`
	MaxVolume float64  `json:"max_volume"`
	Rate      float64  `json:"rate"`
	RateType  RateType `json:"rate_type"`
}

// NoBandError reports that no rate band covers the queried volume. It is the
// only blocking condition the engine produces; callers must surface it and
// disable persistence until the selection changes.
type NoBandError struct {
	DestinationCity string
	MoveTypeID      int64
	Volume          float64
}

func (e *NoBandError) Error() string {
	return fmt.Sprintf("no rate band covers %.2f cbm for destination %q (move type %d)", e.Volume, e.DestinationCity, e.MoveTypeID)
}

// ResolveBand returns the first band whose inclusive bounds contain volume.
// First-match is the defined tie-break for malformed overlapping data; for
// well-formed non-overlapping bands order does not matter. The second return
// is false when no band matches; the caller must not substitute a default.
func ResolveBand(bands []Band, volume float64) (Band, bool) {
	for _, b := range bands {
		if volume >= b.MinVolume && volume <= b.MaxVolume {
			return b, true
		}
	}
	return Band{}, false
}

// BaseAmount derives the base move price from a resolved band.
func BaseAmount(b Band, volume float64) float64 {
	if b.RateType == RateFixed {
		return b.Rate
	}
	return b.Rate * volume
}
