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

func TestAuthzAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "authz.yml")
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

	wanted := map[string]bool{
		"AuthzDenialSpike":         false,
		"AuthzForbiddenScopeBurst": false,
		"ReminderJobFailures":      false,
	}
	for _, group := range spec.Groups {
		for _, rule := range group.Rules {
			if _, ok := wanted[rule.Alert]; ok {
				wanted[rule.Alert] = true
			}
			if rule.Expr == "" {
				t.Errorf("alert %s has an empty expression", rule.Alert)
			}
			if rule.Labels["severity"] == "" {
				t.Errorf("alert %s is missing a severity label", rule.Alert)
			}
		}
	}
	for name, found := range wanted {
		if !found {
			t.Errorf("expected alert rule %s to be defined", name)
		}
	}
}
