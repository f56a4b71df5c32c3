package observability

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestPricingAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "pricing.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	if len(spec.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var pricingGroup *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "pricing" {
			pricingGroup = &spec.Groups[i]
			break
		}
	}
	if pricingGroup == nil {
		t.Fatal("pricing alert group missing")
	}

	expected := map[string]string{
		"HighErrorRate":     "critical",
		"HighLatency":       "warning",
		"NoRateBandSpike":   "warning",
		"RateAuditFailures": "warning",
	}

	found := map[string]bool{}
	for _, rule := range pricingGroup.Rules {
		severity, ok := expected[rule.Alert]
		if !ok {
			continue
		}
		found[rule.Alert] = true
		if rule.Labels["severity"] != severity {
			t.Fatalf("alert %s: expected severity %s got %s", rule.Alert, severity, rule.Labels["severity"])
		}
		if rule.Expr == "" {
			t.Fatalf("alert %s: missing expr", rule.Alert)
		}
		if rule.Annotations["runbook"] == "" {
			t.Fatalf("alert %s: missing runbook annotation", rule.Alert)
		}
	}
	for name := range expected {
		if !found[name] {
			t.Fatalf("alert %s missing from pricing group", name)
		}
	}
}
