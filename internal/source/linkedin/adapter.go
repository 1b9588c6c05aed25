package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/khanhvu/jobradar/internal/source"
)

const (
	SourceName = "linkedin"

	defaultBaseURL = "https://www.linkedin.com"
	pageSize       = 25 // LinkedIn guest search pages carry 25 cards
)

// Adapter implements the Source interface for LinkedIn's guest job search.
// Only the unauthenticated surface is used; anything behind the auth wall is
// reported as a block, not fetched.
type Adapter struct {
	client   *resty.Client
	throttle source.Throttle
	baseURL  string
}

// NewAdapter creates a LinkedIn adapter.
func NewAdapter(throttle source.Throttle, timeout time.Duration) *Adapter {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &Adapter{
		client:   client,
		throttle: throttle,
		baseURL:  defaultBaseURL,
	}
}

// SetBaseURL overrides the board URL. Test use only.
func (a *Adapter) SetBaseURL(u string) {
	a.baseURL = strings.TrimSuffix(u, "/")
}

// Name returns the stable source identifier.
func (a *Adapter) Name() string {
	return SourceName
}

// FetchPage fetches one guest search page. The cursor is the numeric start
// offset; empty means the first page.
func (a *Adapter) FetchPage(ctx context.Context, query source.SearchQuery, cursor string) ([]source.RawListing, string, error) {
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", &source.ParseError{Source: SourceName, Reason: fmt.Sprintf("invalid cursor %q", cursor), Err: err}
		}
	}

	if query.MaxPages > 0 && start/pageSize >= query.MaxPages {
		return nil, "", nil
	}

	if err := a.throttle.Wait(ctx); err != nil {
		return nil, "", err
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(query.Keywords, " "))
	params.Set("location", query.Location)
	params.Set("start", strconv.Itoa(start))
	params.Set("sortBy", "DD")
	searchURL := a.baseURL + "/jobs/search?" + params.Encode()

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", source.RandomUserAgent()).
		Get(searchURL)
	if err != nil {
		return nil, "", &source.FetchError{Source: SourceName, URL: searchURL, Err: err}
	}

	body := resp.String()
	switch {
	case resp.StatusCode() == 403 || resp.StatusCode() == 429:
		return nil, "", &source.BlockedError{Source: SourceName, Status: resp.StatusCode(), Reason: "anti-bot response"}
	case isAuthWall(body):
		return nil, "", &source.BlockedError{Source: SourceName, Status: resp.StatusCode(), Reason: "auth wall"}
	case resp.StatusCode() >= 400:
		return nil, "", &source.FetchError{Source: SourceName, URL: searchURL, Status: resp.StatusCode()}
	}

	listings, err := parseSearchPage(body, a.baseURL)
	if err != nil {
		return nil, "", err
	}

	// The cursor never points past the page budget; a budget-exhausted source
	// ends here instead of burning one more call on an empty page.
	nextCursor := ""
	if len(listings) >= pageSize {
		next := start + pageSize
		if query.MaxPages <= 0 || next/pageSize < query.MaxPages {
			nextCursor = strconv.Itoa(next)
		}
	}

	return listings, nextCursor, nil
}

// isAuthWall detects the login redirect page LinkedIn serves once it decides
// a client is scraping.
func isAuthWall(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "authwall") ||
		strings.Contains(lower, "join linkedin") && !strings.Contains(lower, "base-search-card")
}
