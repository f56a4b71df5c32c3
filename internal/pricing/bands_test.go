package pricing

import (
	"strings"
	"testing"
)

func TestResolveBandReturnsCoveringBand(t *testing.T) {
	bands := []Band{
		{MinVolume: 0, MaxVolume: 10, Rate: 500, RateType: RateFixed},
		{MinVolume: 10.01, MaxVolume: 25, Rate: 25, RateType: RatePerUnit},
		{MinVolume: 25.01, MaxVolume: 100, Rate: 20, RateType: RatePerUnit},
	}

	band, ok := ResolveBand(bands, 12.4)
	if !ok {
		t.Fatal("expected a band for 12.4 cbm")
	}
	if band.Rate != 25 {
		t.Fatalf("expected the 10.01-25 band, got rate %v", band.Rate)
	}

	band, ok = ResolveBand(bands, 10)
	if !ok || band.Rate != 500 {
		t.Fatalf("expected the inclusive upper bound to match the first band, got %v ok=%v", band.Rate, ok)
	}
}

func TestResolveBandNotFound(t *testing.T) {
	bands := []Band{
		{MinVolume: 0, MaxVolume: 10, Rate: 500, RateType: RateFixed},
		{MinVolume: 20, MaxVolume: 30, Rate: 25, RateType: RatePerUnit},
	}

	if _, ok := ResolveBand(bands, 15); ok {
		t.Fatal("expected no band in the 10-20 coverage gap")
	}
	if _, ok := ResolveBand(nil, 5); ok {
		t.Fatal("expected no band for an empty table")
	}
}

func TestResolveBandFirstMatchTieBreak(t *testing.T) {
	// Overlapping bands are malformed upstream data; first match wins.
	bands := []Band{
		{MinVolume: 0, MaxVolume: 20, Rate: 900, RateType: RateFixed},
		{MinVolume: 10, MaxVolume: 30, Rate: 1200, RateType: RateFixed},
	}

	band, ok := ResolveBand(bands, 15)
	if !ok || band.Rate != 900 {
		t.Fatalf("expected first-match tie-break, got rate %v ok=%v", band.Rate, ok)
	}
}

func TestBaseAmountFixedIgnoresVolume(t *testing.T) {
	band := Band{MinVolume: 0, MaxVolume: 50, Rate: 950, RateType: RateFixed}
	for _, volume := range []float64{0.5, 12.4, 49.99} {
		if got := BaseAmount(band, volume); got != 950 {
			t.Fatalf("volume %v: expected 950, got %v", volume, got)
		}
	}
}

func TestBaseAmountPerUnitScalesByVolume(t *testing.T) {
	band := Band{MinVolume: 10, MaxVolume: 25, Rate: 25, RateType: RatePerUnit}
	if got := Round2(BaseAmount(band, 12.4)); got != 310 {
		t.Fatalf("expected 310.00, got %v", got)
	}
}

func TestNoBandErrorNamesDestinationAndVolume(t *testing.T) {
	err := &NoBandError{DestinationCity: "Auckland", MoveTypeID: 2, Volume: 12.4}
	msg := err.Error()
	for _, want := range []string{"Auckland", "12.40"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error %q to mention %q", msg, want)
		}
	}
}
