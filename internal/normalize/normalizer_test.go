package normalize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khanhvu/jobradar/internal/domain"
	"github.com/khanhvu/jobradar/internal/source"
)

type fakeResolver struct {
	calls []string
}

func (f *fakeResolver) FindOrCreateByName(_ context.Context, name string) (*domain.Company, error) {
	f.calls = append(f.calls, name)
	return &domain.Company{
		ID:             "company-" + domain.NormalizeCompanyName(name),
		Name:           name,
		NormalizedName: domain.NormalizeCompanyName(name),
	}, nil
}

func newTestNormalizer(resolver CompanyResolver) *Normalizer {
	n := New(resolver)
	n.SetClock(func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	})
	return n
}

func TestNormalizeFull(t *testing.T) {
	resolver := &fakeResolver{}
	n := newTestNormalizer(resolver)

	raw := source.RawListing{
		Source:        "indeed",
		ExternalID:    "abc123",
		Title:         "  Marketing   Executive  ",
		CompanyName:   " Acme   Corp ",
		Location:      "Ho Chi Minh   City",
		Description:   "Run   campaigns.",
		URL:           "https://vn.indeed.com/viewjob?jk=abc123&utm_source=feed",
		PostedDateRaw: "3 days ago",
		SalaryRaw:     "8,000,000 - 12,000,000 VND",
		JobTypeRaw:    "Full-time",
	}

	listing, err := n.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if listing.Title != "Marketing Executive" {
		t.Errorf("Title = %q, want whitespace collapsed", listing.Title)
	}
	if listing.URL != "https://vn.indeed.com/viewjob?jk=abc123" {
		t.Errorf("URL = %q, want canonical", listing.URL)
	}
	if listing.JobType != domain.JobTypeFullTime {
		t.Errorf("JobType = %q", listing.JobType)
	}
	if listing.SalaryMin == nil || *listing.SalaryMin != 8_000_000 {
		t.Errorf("SalaryMin = %v", listing.SalaryMin)
	}
	if listing.SalaryMax == nil || *listing.SalaryMax != 12_000_000 {
		t.Errorf("SalaryMax = %v", listing.SalaryMax)
	}
	if listing.SalaryCurrency != "VND" {
		t.Errorf("SalaryCurrency = %q", listing.SalaryCurrency)
	}
	if listing.PostedDate == nil || !listing.PostedDate.Equal(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedDate = %v", listing.PostedDate)
	}
	if listing.PostedInferred {
		t.Error("PostedInferred should be false for a parseable date")
	}
	if listing.CompanyID == "" {
		t.Error("CompanyID not set")
	}
	if len(resolver.calls) != 1 || resolver.calls[0] != "Acme Corp" {
		t.Errorf("resolver calls = %v, want collapsed name", resolver.calls)
	}
	if !listing.IsActive {
		t.Error("new listings must start active")
	}
	if listing.ExperienceLevel != domain.ExperienceUnknown {
		t.Errorf("ExperienceLevel = %q before classification", listing.ExperienceLevel)
	}
}

func TestNormalizeFailsFastOnRequiredFields(t *testing.T) {
	n := newTestNormalizer(&fakeResolver{})

	base := source.RawListing{
		Source: "indeed",
		Title:  "T",
		URL:    "https://example.com/j/1",
	}

	testCases := []struct {
		name   string
		mutate func(*source.RawListing)
		field  string
	}{
		{"empty title", func(r *source.RawListing) { r.Title = "   " }, "title"},
		{"empty url", func(r *source.RawListing) { r.URL = "" }, "url"},
		{"empty source", func(r *source.RawListing) { r.Source = "" }, "source"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := base
			tc.mutate(&raw)
			_, err := n.Normalize(context.Background(), raw)
			var nerr *NormalizationError
			if !errors.As(err, &nerr) {
				t.Fatalf("expected NormalizationError, got %v", err)
			}
			if nerr.Field != tc.field {
				t.Errorf("Field = %q, want %q", nerr.Field, tc.field)
			}
		})
	}
}

func TestNormalizeDegradesOptionalFields(t *testing.T) {
	n := newTestNormalizer(&fakeResolver{})

	raw := source.RawListing{
		Source: "linkedin",
		Title:  "Content Intern",
		URL:    "https://linkedin.com/jobs/view/1",
	}

	listing, err := n.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if listing.SalaryMin != nil || listing.SalaryMax != nil || listing.SalaryCurrency != "" {
		t.Error("absent salary should stay absent")
	}
	if !listing.PostedInferred {
		t.Error("missing date must be flagged as inferred")
	}
	if listing.CompanyID != "" {
		t.Error("missing company should not be resolved")
	}
	if listing.JobType != domain.JobTypeUnknown {
		t.Errorf("JobType = %q, want unknown", listing.JobType)
	}
}
