package classify

import (
	"testing"

	"github.com/khanhvu/jobradar/internal/domain"
)

func TestExperienceLevel(t *testing.T) {
	c := New(nil)

	testCases := []struct {
		name        string
		title, desc string
		want        domain.ExperienceLevel
	}{
		{"senior keyword", "Senior Marketing Manager", "", domain.ExperienceSenior},
		{"lead keyword", "Team Lead, Growth", "", domain.ExperienceSenior},
		{"junior keyword", "Junior Marketing Executive", "", domain.ExperienceJunior},
		{"entry keywords", "Marketing Intern", "fresh graduate welcome", domain.ExperienceEntry},
		{"trainee", "Brand Trainee", "", domain.ExperienceEntry},
		{"mid keyword", "Mid-level Designer", "", domain.ExperienceMid},
		{"no signal", "Marketing Executive", "run campaigns", domain.ExperienceUnknown},
		{"year range entry", "Marketing Executive", "0-2 years of experience", domain.ExperienceEntry},
		{"year range mid", "Marketing Executive", "3-5 years experience", domain.ExperienceMid},
		{"year single senior", "Marketing Executive", "requires 5+ years", domain.ExperienceSenior},
		{"year single junior", "Marketing Executive", "2 years experience", domain.ExperienceJunior},
		{"vietnamese years", "Marketing Executive", "kinh nghiệm 3 năm", domain.ExperienceMid},
		{"range outranks senior keyword", "Senior sounding role", "0-1 years experience", domain.ExperienceEntry},
		{"range outranks junior keyword", "Junior title", "6-8 years required", domain.ExperienceSenior},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ExperienceLevel(tc.title, tc.desc); got != tc.want {
				t.Errorf("ExperienceLevel(%q, %q) = %q, want %q", tc.title, tc.desc, got, tc.want)
			}
		})
	}
}

func TestExperienceLevelDeterministic(t *testing.T) {
	c := New(nil)
	title, desc := "Junior Marketing Executive", "0-2 years, some senior stakeholders"
	first := c.ExperienceLevel(title, desc)
	for i := 0; i < 10; i++ {
		if got := c.ExperienceLevel(title, desc); got != first {
			t.Fatalf("classifier not deterministic: %q then %q", first, got)
		}
	}
}

func TestIsRelevant(t *testing.T) {
	c := New([]string{"marketing", "Social Media"})

	testCases := []struct {
		name        string
		title, desc string
		want        bool
	}{
		{"term in title", "Digital Marketing Specialist", "", true},
		{"term in description", "Growth role", "plan social media campaigns", true},
		{"case insensitive", "MARKETING assistant", "", true},
		{"no term", "Backend Engineer", "write Go services", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.IsRelevant(tc.title, tc.desc); got != tc.want {
				t.Errorf("IsRelevant(%q, %q) = %v, want %v", tc.title, tc.desc, got, tc.want)
			}
		})
	}
}

func TestIsRelevantEmptyTermSet(t *testing.T) {
	c := New(nil)
	if !c.IsRelevant("anything", "at all") {
		t.Error("empty term set should mark everything relevant")
	}
}

func TestApply(t *testing.T) {
	c := New([]string{"marketing"})
	l := &domain.Listing{Title: "Junior Marketing Executive", Description: "campaigns"}
	c.Apply(l)
	if l.ExperienceLevel != domain.ExperienceJunior {
		t.Errorf("ExperienceLevel = %q", l.ExperienceLevel)
	}
	if !l.IsRelevant {
		t.Error("listing should be relevant")
	}
}
