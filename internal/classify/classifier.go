package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/khanhvu/jobradar/internal/domain"
)

// Year-of-experience patterns. These are the most specific signal and
// outrank every keyword rule.
var (
	yearRangeRegex  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*-\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?|năm)\b`)
	yearSingleRegex = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?|năm)\b`)
)

// keywordRule maps a token pattern to an experience bucket. Rules are
// evaluated in order; the first match wins.
type keywordRule struct {
	level domain.ExperienceLevel
	re    *regexp.Regexp
}

var keywordRules = []keywordRule{
	{domain.ExperienceSenior, regexp.MustCompile(`(?i)\b(senior|sr\.?|lead|manager|principal|staff|head of|director)\b`)},
	{domain.ExperienceMid, regexp.MustCompile(`(?i)\b(mid[\s-]?level|intermediate)\b`)},
	{domain.ExperienceJunior, regexp.MustCompile(`(?i)\b(junior|jr\.?)\b`)},
	{domain.ExperienceEntry, regexp.MustCompile(`(?i)\b(entry[\s-]?level|fresh\s+graduate|fresher|intern(ship)?|trainee|graduate|no experience)\b`)},
}

// Classifier derives experience level and topical relevance from listing
// text. Pure and deterministic: no side effects, same input same output.
type Classifier struct {
	relevanceTerms []string
}

// New creates a Classifier with the configured subject term set.
// Terms are matched by case-insensitive containment against title plus
// description; the set is supplied by configuration, not hardcoded to an
// industry.
func New(relevanceTerms []string) *Classifier {
	terms := make([]string, 0, len(relevanceTerms))
	for _, term := range relevanceTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return &Classifier{relevanceTerms: terms}
}

// ExperienceLevel returns the seniority bucket for the given text.
// Explicit year ranges win over keyword hits; unmatched text is unknown.
func (c *Classifier) ExperienceLevel(title, description string) domain.ExperienceLevel {
	text := title + " " + description

	if m := yearRangeRegex.FindStringSubmatch(text); m != nil {
		low, _ := strconv.Atoi(m[1])
		return levelFromYears(low)
	}
	if m := yearSingleRegex.FindStringSubmatch(text); m != nil {
		years, _ := strconv.Atoi(m[1])
		return levelFromYears(years)
	}

	for _, rule := range keywordRules {
		if rule.re.MatchString(text) {
			return rule.level
		}
	}

	return domain.ExperienceUnknown
}

// IsRelevant reports whether the text matches the configured subject terms.
// An empty term set means no topical filter is configured and everything is
// relevant.
func (c *Classifier) IsRelevant(title, description string) bool {
	if len(c.relevanceTerms) == 0 {
		return true
	}
	text := strings.ToLower(title + " " + description)
	for _, term := range c.relevanceTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Apply classifies a listing in place.
func (c *Classifier) Apply(l *domain.Listing) {
	l.ExperienceLevel = c.ExperienceLevel(l.Title, l.Description)
	l.IsRelevant = c.IsRelevant(l.Title, l.Description)
}

func levelFromYears(years int) domain.ExperienceLevel {
	switch {
	case years >= 5:
		return domain.ExperienceSenior
	case years >= 3:
		return domain.ExperienceMid
	case years >= 1:
		return domain.ExperienceJunior
	default:
		return domain.ExperienceEntry
	}
}
