package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	salaryRangeRegex  = regexp.MustCompile(`(\d[\d,.]*)\s*[kK]?\s*(?:-|–|—|to|~)\s*(\d[\d,.]*)\s*([kK])?`)
	salaryNumberRegex = regexp.MustCompile(`(\d[\d,.]*)\s*([kK])?`)
	// Vietnamese "triệu" shorthand ("15tr", "15 trieu"): the unit is ambiguous
	// without more context, so the value is dropped and flagged.
	salaryShorthandRegex = regexp.MustCompile(`(?i)\d[\d,.]*\s*(tr|trieu|triệu)\b`)
)

// negotiableMarkers are phrases meaning "no number published".
var negotiableMarkers = []string{
	"negotiable", "thỏa thuận", "thoa thuan", "competitive", "cạnh tranh",
}

// ParseSalary extracts (min, max, currency) from free-form salary text.
// No recoverable numeric value leaves all three absent. Ambiguous shorthand
// also leaves them absent but sets uncertain, so the record carries a
// low-confidence marker instead of a fabricated number.
func ParseSalary(raw string) (min, max *float64, currency string, uncertain bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil, "", false
	}

	lower := strings.ToLower(text)
	for _, marker := range negotiableMarkers {
		if strings.Contains(lower, marker) {
			return nil, nil, "", false
		}
	}

	if salaryShorthandRegex.MatchString(text) {
		return nil, nil, "", true
	}

	currency = detectCurrency(text)

	if m := salaryRangeRegex.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1], m[3] != "")
		hi, okHi := parseAmount(m[2], m[3] != "")
		if okLo && okHi {
			if lo > hi {
				lo, hi = hi, lo
			}
			return &lo, &hi, currency, false
		}
	}

	if m := salaryNumberRegex.FindStringSubmatch(text); m != nil {
		v, ok := parseAmount(m[1], m[2] != "")
		if ok {
			return &v, &v, currency, false
		}
	}

	return nil, nil, "", false
}

// parseAmount parses a grouped decimal like "8,000,000" or "50" with an
// optional thousands suffix.
func parseAmount(s string, thousands bool) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	return v, true
}

func detectCurrency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "vnd") || strings.Contains(text, "₫") || strings.Contains(lower, " đ"):
		return "VND"
	case strings.Contains(lower, "usd") || strings.Contains(text, "$"):
		return "USD"
	case strings.Contains(lower, "gbp") || strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(lower, "eur") || strings.Contains(text, "€"):
		return "EUR"
	}
	return ""
}
