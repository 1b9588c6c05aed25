package linkedin

import "testing"

const samplePage = `
<html><body>
<ul class="jobs-search__results-list">
  <li data-entity-urn="urn:li:jobPosting:3791234567">
    <div class="base-search-card">
      <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/digital-marketing-3791234567?refId=abc"></a>
      <h3 class="base-search-card__title"> Digital Marketing Specialist </h3>
      <h4 class="base-search-card__subtitle">Initech Vietnam</h4>
      <span class="job-search-card__location">Da Nang, Vietnam</span>
      <time class="job-search-card__listdate" datetime="2026-08-20">1 week ago</time>
    </div>
  </li>
  <li data-entity-urn="urn:li:jobPosting:3799999999">
    <div class="base-search-card">
      <a class="base-card__full-link" href="/jobs/view/content-intern-3799999999"></a>
      <h3 class="base-search-card__title">Content Marketing Intern</h3>
      <h4 class="base-search-card__subtitle">Hooli</h4>
      <span class="job-search-card__location">Remote</span>
      <time>2 days ago</time>
    </div>
  </li>
</ul>
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
	if first.ExternalID != "3791234567" {
		t.Errorf("ExternalID = %q, want urn tail", first.ExternalID)
	}
	if first.Title != "Digital Marketing Specialist" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.PostedDateRaw != "2026-08-20" {
		t.Errorf("PostedDateRaw = %q, want datetime attribute", first.PostedDateRaw)
	}

	second := listings[1]
	if second.URL != "https://www.linkedin.com/jobs/view/content-intern-3799999999" {
		t.Errorf("URL = %q, want absolute", second.URL)
	}
	if second.PostedDateRaw != "2 days ago" {
		t.Errorf("PostedDateRaw = %q, want text fallback", second.PostedDateRaw)
	}
}

func TestParseSearchPageShapeChange(t *testing.T) {
	_, err := parseSearchPage(`<html><body><main>nothing here</main></body></html>`, defaultBaseURL)
	if err == nil {
		t.Fatal("expected ParseError for unknown page shape")
	}
}

func TestIsAuthWall(t *testing.T) {
	if !isAuthWall(`<html><body class="authwall">Sign in</body></html>`) {
		t.Error("authwall page not detected")
	}
	if isAuthWall(samplePage) {
		t.Error("results page misdetected as auth wall")
	}
}
