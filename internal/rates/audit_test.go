package rates

import "testing"

func band(city string, moveType int64, min, max float64) RateBand {
	return RateBand{
		DestinationCity: city,
		MoveTypeID:      moveType,
		MinVolume:       min,
		MaxVolume:       max,
		Rate:            100,
		RateType:        "variable",
		IsActive:        true,
	}
}

func TestAuditCoverageCleanTable(t *testing.T) {
	bands := []RateBand{
		band("Dubai", 1, 0, 10),
		band("Dubai", 1, 10.01, 25),
		band("Dubai", 1, 25.01, 100),
	}
	if issues := AuditCoverage(bands); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestAuditCoverageDetectsGap(t *testing.T) {
	bands := []RateBand{
		band("Dubai", 1, 0, 10),
		band("Dubai", 1, 20, 30),
	}
	issues := AuditCoverage(bands)
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %v", issues)
	}
	if issues[0].Kind != IssueGap {
		t.Fatalf("expected a gap, got %+v", issues[0])
	}
	if issues[0].FromVolume != 10 || issues[0].ToVolume != 20 {
		t.Fatalf("expected gap 10-20, got %+v", issues[0])
	}
}

func TestAuditCoverageDetectsOverlap(t *testing.T) {
	bands := []RateBand{
		band("Dubai", 1, 0, 20),
		band("Dubai", 1, 10, 30),
	}
	issues := AuditCoverage(bands)
	if len(issues) != 1 || issues[0].Kind != IssueOverlap {
		t.Fatalf("expected one overlap, got %v", issues)
	}
}

func TestAuditCoverageScopesIssuesPerPair(t *testing.T) {
	// The hole between Dubai's bands must not be confused with Auckland's table.
	bands := []RateBand{
		band("Auckland", 1, 0, 10),
		band("Dubai", 1, 0, 10),
		band("Auckland", 1, 10.01, 50),
		band("Dubai", 2, 0, 50),
	}
	if issues := AuditCoverage(bands); len(issues) != 0 {
		t.Fatalf("expected no cross-pair issues, got %v", issues)
	}
}

func TestAuditCoverageIgnoresInactiveBands(t *testing.T) {
	inactive := band("Dubai", 1, 10, 30)
	inactive.IsActive = false
	bands := []RateBand{
		band("Dubai", 1, 0, 20),
		inactive,
	}
	if issues := AuditCoverage(bands); len(issues) != 0 {
		t.Fatalf("expected inactive bands to be skipped, got %v", issues)
	}
}
