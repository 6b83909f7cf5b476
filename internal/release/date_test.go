package release

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{"two digit day and month", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"single digit day and month", "5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"surrounding whitespace", "  01/12/2025\n", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"month first", "03/15/2024", time.Time{}, false},
		{"impossible day", "31/02/2024", time.Time{}, false},
		{"two digit year", "15/03/24", time.Time{}, false},
		{"free text", "Mars 2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(tt.expected), "ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
		})
	}
}

func TestRecord_ICSDates(t *testing.T) {
	tests := []struct {
		date      string
		wantStart string
		wantEnd   string
	}{
		{"15/03/2024", "20240315", "20240316"},
		{"31/12/2024", "20241231", "20250101"},
		{"28/02/2024", "20240228", "20240229"},
		{"28/02/2023", "20230228", "20230301"},
		{"bientôt", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			rec := &Record{Title: "Frieren", ReleaseDate: tt.date}
			assert.Equal(t, tt.wantStart, rec.ICSDate())
			assert.Equal(t, tt.wantEnd, rec.ICSEndDate())
			assert.Equal(t, tt.wantStart != "", rec.HasDate())
		})
	}
}

func TestRecord_HumanDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", (&Record{ReleaseDate: "5/3/2024"}).HumanDate())
	assert.Equal(t, "Mars 2024", (&Record{ReleaseDate: "Mars 2024"}).HumanDate())
}
