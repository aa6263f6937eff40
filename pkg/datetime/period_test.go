package datetime

import (
	"testing"
)

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateLayout, "invalid-date")
}

func TestOffsetPeriod(t *testing.T) {
	start := MustParseTime(DateLayout, "2025-01-31")

	tests := []struct {
		name     string
		unit     string
		n        int
		expected string
		wantErr  bool
	}{
		{"One day", UnitDay, 1, "2025-02-01", false},
		{"Two weeks", UnitWeek, 2, "2025-02-14", false},
		{"Month normalizes overflow", UnitMonth, 1, "2025-03-03", false},
		{"Cross year boundary", UnitMonth, 12, "2026-01-31", false},
		{"Unsupported unit", "fortnight", 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetPeriod(start, tt.unit, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetPeriod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Format(DateLayout) != tt.expected {
				t.Errorf("OffsetPeriod() = %s, expected %s", got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestLabeler(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		start    string
		step     int
		expected string
		wantErr  bool
	}{
		{"Index default", "", "", 3, "period_3", false},
		{"Index explicit", UnitIndex, "2025-01-01", 1, "period_1", false},
		{"Daily", UnitDay, "2025-01-01", 1, "2025-01-02", false},
		{"Weekly", UnitWeek, "2025-01-01", 2, "2025-01-15", false},
		{"Monthly", "Month", "2025-01-15", 3, "2025-04-15", false},
		{"Calendar unit without start", UnitDay, "", 1, "", true},
		{"Bad start date", UnitDay, "01/01/2025", 1, "", true},
		{"Unknown unit", "hour", "2025-01-01", 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labeler, err := NewLabeler(tt.unit, tt.start)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLabeler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := labeler.Label(tt.step); got != tt.expected {
				t.Errorf("Label(%d) = %s, expected %s", tt.step, got, tt.expected)
			}
		})
	}
}

func TestNilLabeler(t *testing.T) {
	var labeler *Labeler
	if got := labeler.Label(5); got != "period_5" {
		t.Errorf("Label() = %s, expected period_5", got)
	}
}
