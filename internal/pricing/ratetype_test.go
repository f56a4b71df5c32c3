package pricing

import "testing"

func TestParseRateType(t *testing.T) {
	cases := []struct {
		in   string
		want RateType
	}{
		{"flat", RateFixed},
		{"FLAT", RateFixed},
		{"FIX", RateFixed},
		{" fixed ", RateFixed},
		{"variable", RatePerUnit},
		{"", RatePerUnit},
		{"anything-else", RatePerUnit},
	}
	for _, tc := range cases {
		if got := ParseRateType(tc.in); got != tc.want {
			t.Fatalf("ParseRateType(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(1425, "aed"); got != "1,425.00 AED" {
		t.Fatalf("expected \"1,425.00 AED\", got %q", got)
	}
	if got := FormatMoney(310.004, "USD"); got != "310.00 USD" {
		t.Fatalf("expected \"310.00 USD\", got %q", got)
	}
}
