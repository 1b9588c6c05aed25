package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanhvu/jobradar/internal/domain"
	"github.com/khanhvu/jobradar/internal/source"
)

// NormalizationError marks a raw record as unusable: a required field is
// missing. The single listing is skipped and counted; the run continues.
type NormalizationError struct {
	Field string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: required field %q is empty", e.Field)
}

// CompanyResolver resolves or creates a company by normalized-name lookup.
// Implemented by the repository layer.
type CompanyResolver interface {
	FindOrCreateByName(ctx context.Context, name string) (*domain.Company, error)
}

// Normalizer maps adapter output into the canonical listing shape.
// Aside from company resolution everything here is a pure transformation.
type Normalizer struct {
	companies CompanyResolver
	now       func() time.Time
}

// New creates a Normalizer backed by the given company resolver.
func New(companies CompanyResolver) *Normalizer {
	return &Normalizer{
		companies: companies,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Test use only.
func (n *Normalizer) SetClock(now func() time.Time) {
	n.now = now
}

// Normalize converts a RawListing into a canonical Listing.
// Fails only when title, url, or source is empty; every other field degrades
// to absent/unknown because partial data still serves the aggregate catalog.
func (n *Normalizer) Normalize(ctx context.Context, raw source.RawListing) (*domain.Listing, error) {
	title := CollapseWhitespace(raw.Title)
	rawURL := strings.TrimSpace(raw.URL)
	src := strings.TrimSpace(raw.Source)

	switch {
	case title == "":
		return nil, &NormalizationError{Field: "title"}
	case rawURL == "":
		return nil, &NormalizationError{Field: "url"}
	case src == "":
		return nil, &NormalizationError{Field: "source"}
	}

	listing := &domain.Listing{
		Source:          src,
		ExternalID:      strings.TrimSpace(raw.ExternalID),
		Title:           title,
		Description:     CollapseWhitespace(raw.Description),
		Location:        CollapseWhitespace(raw.Location),
		URL:             domain.CanonicalURL(rawURL),
		JobType:         parseJobType(raw.JobTypeRaw),
		ExperienceLevel: domain.ExperienceUnknown,
		IsActive:        true,
	}

	posted, inferred := ParsePostedDate(raw.PostedDateRaw, n.now())
	listing.PostedDate = &posted
	listing.PostedInferred = inferred

	min, max, currency, uncertain := ParseSalary(raw.SalaryRaw)
	listing.SalaryMin = min
	listing.SalaryMax = max
	listing.SalaryCurrency = currency
	listing.SalaryUncertain = uncertain

	if name := CollapseWhitespace(raw.CompanyName); name != "" {
		company, err := n.companies.FindOrCreateByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve company %q: %w", name, err)
		}
		listing.CompanyID = company.ID
		listing.Company = company
	}

	return listing, nil
}

// CollapseWhitespace trims a string and collapses internal runs of
// whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseJobType(raw string) domain.JobType {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "intern"):
		return domain.JobTypeInternship
	case strings.Contains(text, "part"):
		return domain.JobTypePartTime
	case strings.Contains(text, "contract") || strings.Contains(text, "freelance"):
		return domain.JobTypeContract
	case strings.Contains(text, "full"):
		return domain.JobTypeFullTime
	}
	return domain.JobTypeUnknown
}
