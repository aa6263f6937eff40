package optimization

import "testing"

func TestParseObjective(t *testing.T) {
	tests := []struct {
		tag      string
		expected Objective
		pull     PullKind
	}{
		{"minimize_cost", ObjectiveMinimizeCost, PullConserve},
		{"Minimize-Cost", ObjectiveMinimizeCost, PullConserve},
		{" minimize_waste ", ObjectiveMinimizeWaste, PullConserve},
		{"maximize_readiness", ObjectiveMaximizeReadiness, PullReadiness},
		{"maximize_availability", ObjectiveMaximizeAvailability, PullReadiness},
		{"minimize_risk", ObjectiveMinimizeRisk, PullReadiness},
		{"maximize_morale", ObjectiveUnknown, PullNeutral},
		{"", ObjectiveUnknown, PullNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := ParseObjective(tt.tag)
			if got != tt.expected {
				t.Errorf("ParseObjective(%q) = %v, expected %v", tt.tag, got, tt.expected)
			}
			if got.Pull() != tt.pull {
				t.Errorf("ParseObjective(%q).Pull() = %v, expected %v", tt.tag, got.Pull(), tt.pull)
			}
		})
	}
}

func TestObjectiveString(t *testing.T) {
	if got := ObjectiveMaximizeReadiness.String(); got != "maximize_readiness" {
		t.Errorf("String() = %q, expected maximize_readiness", got)
	}
	if got := ObjectiveUnknown.String(); got != "unknown" {
		t.Errorf("String() = %q, expected unknown", got)
	}
	if ObjectiveUnknown.Known() {
		t.Error("expected unknown objective not to be known")
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		value     string
		expected  Priority
		expectErr bool
	}{
		{"low", PriorityLow, false},
		{"MEDIUM", PriorityMedium, false},
		{" high ", PriorityHigh, false},
		{"", PriorityMedium, false},
		{"urgent", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.value)
		if (err != nil) != tt.expectErr {
			t.Errorf("ParsePriority(%q) error = %v, expectErr %v", tt.value, err, tt.expectErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParsePriority(%q) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}
