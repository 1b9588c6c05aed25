package normalize

import (
	"testing"
	"time"
)

func TestParsePostedDate(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		raw      string
		want     time.Time
		inferred bool
	}{
		{"iso date", "2026-08-20", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), false},
		{"today", "Today", now, false},
		{"just posted", "Just posted", now, false},
		{"yesterday", "Yesterday", now.AddDate(0, 0, -1), false},
		{"days ago", "3 days ago", now.AddDate(0, 0, -3), false},
		{"posted prefix", "Posted 3 days ago", now.AddDate(0, 0, -3), false},
		{"thirty plus days", "30+ days ago", now.AddDate(0, 0, -30), false},
		{"weeks ago", "2 weeks ago", now.AddDate(0, 0, -14), false},
		{"months ago", "1 month ago", now.AddDate(0, -1, 0), false},
		{"slash format", "20/08/2026", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), false},
		{"textual format", "20 Aug 2026", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), false},
		{"empty defaults to now flagged", "", now, true},
		{"garbage defaults to now flagged", "whenever", now, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, inferred := ParsePostedDate(tc.raw, now)
			if !got.Equal(tc.want) {
				t.Errorf("posted = %v, want %v", got, tc.want)
			}
			if inferred != tc.inferred {
				t.Errorf("inferred = %v, want %v", inferred, tc.inferred)
			}
		})
	}
}
