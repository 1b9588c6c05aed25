package indeed

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
	SourceName = "indeed"

	defaultBaseURL = "https://vn.indeed.com"
	pageSize       = 10 // Indeed paginates by start offset in steps of 10
)

// Adapter implements the Source interface for Indeed.
type Adapter struct {
	client   *resty.Client
	throttle source.Throttle
	baseURL  string
}

// NewAdapter creates an Indeed adapter.
// Parameters:
//   - throttle: per-source request gate; consulted before every HTTP call.
//   - timeout: per-request HTTP timeout.
// Returns:
//   - *Adapter: adapter ready for FetchPage calls.
func NewAdapter(throttle source.Throttle, timeout time.Duration) *Adapter {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

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

// FetchPage fetches one search result page. The cursor is the numeric start
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
	params.Set("q", strings.Join(query.Keywords, " "))
	params.Set("l", query.Location)
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", "date")
	searchURL := a.baseURL + "/jobs?" + params.Encode()

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
	case looksLikeCaptcha(body):
		return nil, "", &source.BlockedError{Source: SourceName, Status: resp.StatusCode(), Reason: "captcha wall"}
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

// looksLikeCaptcha detects CAPTCHA and challenge markers in a response body.
func looksLikeCaptcha(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range []string{"captcha", "verify you are a human", "cf-challenge", "hcaptcha"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
