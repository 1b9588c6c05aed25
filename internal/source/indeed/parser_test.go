package indeed

import "testing"

const samplePage = `
<html><body>
<div id="mosaic-provider-jobcards">
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-jk="abc123def456" href="/viewjob?jk=abc123def456"><span>Marketing   Executive</span></a></h2>
    <span class="companyName">Acme Vietnam</span>
    <div class="companyLocation">Ho Chi Minh City</div>
    <div class="salary-snippet-container">8,000,000 - 12,000,000 VND</div>
    <div class="job-snippet">Plan and run digital campaigns for consumer brands.</div>
    <span class="date">Posted 3 days ago</span>
  </div>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-jk="fedcba987654" href="/viewjob?jk=fedcba987654"><span>Senior Brand Manager</span></a></h2>
    <span class="companyName">Globex</span>
    <div class="companyLocation">Hanoi</div>
    <span class="date">Today</span>
  </div>
  <div class="job_seen_beacon">
    <p>Sponsored placement without a title link</p>
  </div>
</div>
</body></html>`

func TestParseSearchPage(t *testing.T) {
	listings, err := parseSearchPage(samplePage, defaultBaseURL)
	if err != nil {
		t.Fatalf("parseSearchPage returned error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.ExternalID != "abc123def456" {
		t.Errorf("ExternalID = %q, want abc123def456", first.ExternalID)
	}
	if first.Title != "Marketing Executive" {
		t.Errorf("Title = %q, want collapsed whitespace", first.Title)
	}
	if first.CompanyName != "Acme Vietnam" {
		t.Errorf("CompanyName = %q", first.CompanyName)
	}
	if first.URL != "https://vn.indeed.com/viewjob?jk=abc123def456" {
		t.Errorf("URL = %q, want absolute", first.URL)
	}
	if first.SalaryRaw != "8,000,000 - 12,000,000 VND" {
		t.Errorf("SalaryRaw = %q", first.SalaryRaw)
	}
	if first.Source != SourceName {
		t.Errorf("Source = %q, want %q", first.Source, SourceName)
	}

	second := listings[1]
	if second.SalaryRaw != "" {
		t.Errorf("missing salary should stay empty, got %q", second.SalaryRaw)
	}
	if second.PostedDateRaw != "Today" {
		t.Errorf("PostedDateRaw = %q", second.PostedDateRaw)
	}
}

func TestParseSearchPageEmptyResults(t *testing.T) {
	listings, err := parseSearchPage(`<html><body><div id="resultsCol"></div></body></html>`, defaultBaseURL)
	if err != nil {
		t.Fatalf("empty results page should not error: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestParseSearchPageShapeChange(t *testing.T) {
	_, err := parseSearchPage(`<html><body><div class="totally-new-layout"></div></body></html>`, defaultBaseURL)
	if err == nil {
		t.Fatal("expected ParseError for unknown page shape")
	}
}

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"/viewjob?jk=1", "https://vn.indeed.com/viewjob?jk=1"},
		{"//vn.indeed.com/viewjob?jk=1", "https://vn.indeed.com/viewjob?jk=1"},
		{"https://vn.indeed.com/viewjob?jk=1", "https://vn.indeed.com/viewjob?jk=1"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := normalizeURL(tc.in, defaultBaseURL); got != tc.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
