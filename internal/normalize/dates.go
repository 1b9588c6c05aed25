package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeAgoRegex = regexp.MustCompile(`(\d+)\+?\s*(minute|hour|day|week|month)s?\s*ago`)

// absoluteLayouts are tried in order against absolute date strings.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParsePostedDate parses the heterogeneous date formats boards publish:
// ISO timestamps, local formats, and relative phrases like "3 days ago".
// Unparseable input degrades to now with inferred=true rather than failing
// the record; partial data is still useful for the catalog.
func ParsePostedDate(raw string, now time.Time) (posted time.Time, inferred bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = strings.TrimPrefix(text, "posted")
	text = strings.TrimSpace(text)

	if text == "" {
		return now, true
	}

	switch {
	case strings.Contains(text, "just posted") || strings.Contains(text, "today"):
		return now, false
	case strings.Contains(text, "yesterday"):
		return now.AddDate(0, 0, -1), false
	}

	if m := relativeAgoRegex.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute), false
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), false
		case "day":
			return now.AddDate(0, 0, -n), false
		case "week":
			return now.AddDate(0, 0, -7*n), false
		case "month":
			return now.AddDate(0, -n, 0), false
		}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, false
		}
	}

	return now, true
}
