package query

import "testing"

func TestExtractDaysAhead(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"next 3 days", 3},
		{"next 1 day", 1},
		{"events in the next week", 7},
		{"this week please", 7},
		{"over 10 days", 10},
		{"next 5 events in 20 days", 20},
		{"next 0 days", 7},
		{"next 99999999999999999999 days", 7},
		{"upcoming", 7},
		{"", 7},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractDaysAhead(tt.text, 7); got != tt.expected {
				t.Errorf("ExtractDaysAhead(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractMaxResults(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"show me 75 events", 50},
		{"show me 10 events", 10},
		{"show 3 meetings", 3},
		{"first 1 appointment", 1},
		{"next 5 events", 5},
		{"Show Me 20 Appointments", 20},
		{"show me 0 events", 10},
		{"show me events", 10},
		{"10 events", 10},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractMaxResults(tt.text, 10); got != tt.expected {
				t.Errorf("ExtractMaxResults(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}
