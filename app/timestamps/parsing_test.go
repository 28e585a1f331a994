package timestamps

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		ok       bool
		expected time.Time
	}{
		{"2024-03-05", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 10:30:00", true, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"2024-03-05T10:30:00Z", true, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"05/03/2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"5 Mar 2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"Mar 5, 2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05/03/2024 3:04PM", true, time.Date(2024, 3, 5, 15, 4, 0, 0, time.UTC)},
		{"12345", false, time.Time{}},
		{"Item 10", false, time.Time{}},
		{"", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input, time.UTC)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetLocationForTZ(t *testing.T) {
	if GetLocationForTZ("UTC") != time.UTC {
		t.Error("expected UTC")
	}
	if GetLocationForTZ("") != time.Local {
		t.Error("expected Local for empty name")
	}
	if GetLocationForTZ("Not/AZone") != time.Local {
		t.Error("expected Local fallback")
	}
}
