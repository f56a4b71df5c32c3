package pricing

import "testing"

func TestAggregateChargesPerUnit(t *testing.T) {
	lines, total := AggregateCharges([]ChargeInput{
		{ServiceID: 1, ServiceName: "Storage", PricePerUnit: 210, PerUnitQuantity: 1, Quantity: 3, RateType: RatePerUnit},
	})
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Subtotal != 630 {
		t.Fatalf("expected subtotal 630.00, got %v", lines[0].Subtotal)
	}
	if total != 630 {
		t.Fatalf("expected total 630.00, got %v", total)
	}
}

func TestAggregateChargesFixedIgnoresQuantity(t *testing.T) {
	_, total := AggregateCharges([]ChargeInput{
		{ServiceID: 1, ServiceName: "Piano handling", PricePerUnit: 210, PerUnitQuantity: 1, Quantity: 3, RateType: RateFixed},
	})
	if total != 210 {
		t.Fatalf("expected fixed charge 210.00 regardless of quantity, got %v", total)
	}
}

func TestAggregateChargesNormalisesPerUnitPrice(t *testing.T) {
	// 300 per 5 units, 2 required: 300/5*2 = 120.
	_, total := AggregateCharges([]ChargeInput{
		{PricePerUnit: 300, PerUnitQuantity: 5, Quantity: 2, RateType: RatePerUnit},
	})
	if total != 120 {
		t.Fatalf("expected 120.00, got %v", total)
	}
}

func TestAggregateChargesZeroPerUnitQuantityGuard(t *testing.T) {
	_, total := AggregateCharges([]ChargeInput{
		{PricePerUnit: 50, PerUnitQuantity: 0, Quantity: 4, RateType: RatePerUnit},
	})
	if total != 200 {
		t.Fatalf("expected per-unit quantity to default to 1, got total %v", total)
	}
}

func TestAggregateChargesTotalAcrossLines(t *testing.T) {
	lines, total := AggregateCharges([]ChargeInput{
		{ServiceID: 1, PricePerUnit: 210, PerUnitQuantity: 1, Quantity: 3, RateType: RatePerUnit},
		{ServiceID: 2, PricePerUnit: 475, RateType: RateFixed},
	})
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if total != 1105 {
		t.Fatalf("expected 1105.00, got %v", total)
	}
}

func TestEffectiveQuantityPrecedence(t *testing.T) {
	cases := []struct {
		name string
		in   ChargeInput
		want float64
	}{
		{"survey quantity wins", ChargeInput{Quantity: 3, PerUnitQuantity: 5}, 3},
		{"price list fallback", ChargeInput{PerUnitQuantity: 5}, 5},
		{"last resort", ChargeInput{}, 1},
	}
	for _, tc := range cases {
		if got := tc.in.EffectiveQuantity(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestAggregateChargesEmpty(t *testing.T) {
	lines, total := AggregateCharges(nil)
	if len(lines) != 0 || total != 0 {
		t.Fatalf("expected empty aggregation, got %d lines total %v", len(lines), total)
	}
}
