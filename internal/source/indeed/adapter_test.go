package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khanhvu/jobradar/internal/source"
)

// fullResultPage renders a page carrying exactly pageSize job cards, the
// shape that normally advances the cursor.
func fullResultPage(start string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mosaic-provider-jobcards">`)
	for i := 0; i < pageSize; i++ {
		fmt.Fprintf(&b,
			`<div class="job_seen_beacon"><h2 class="jobTitle"><a data-jk="jk%s%02d" href="/viewjob?jk=jk%s%02d"><span>Growth Marketer %d</span></a></h2><span class="companyName">Initech</span></div>`,
			start, i, start, i, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func TestFetchPageStopsAtPageBudget(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, fullResultPage(r.URL.Query().Get("start")))
	}))
	defer srv.Close()

	a := NewAdapter(source.NopThrottle{}, 5*time.Second)
	a.SetBaseURL(srv.URL)

	query := source.SearchQuery{Keywords: []string{"marketing"}, MaxPages: 2}

	listings, next, err := a.FetchPage(context.Background(), query, "")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(listings) != pageSize {
		t.Fatalf("got %d listings, want %d", len(listings), pageSize)
	}
	if next == "" {
		t.Fatal("first page should advance the cursor with budget remaining")
	}

	// Last budgeted page: full, but the cursor must end here.
	listings, next, err = a.FetchPage(context.Background(), query, next)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(listings) != pageSize {
		t.Fatalf("got %d listings, want %d", len(listings), pageSize)
	}
	if next != "" {
		t.Errorf("cursor = %q, want empty once the page budget is spent", next)
	}
	if hits != 2 {
		t.Errorf("server saw %d requests, want exactly the budgeted 2", hits)
	}
}
