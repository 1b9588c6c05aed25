package source

import "context"

// RawListing is an adapter's provisional record: unvalidated strings straight
// from the board, consumed immediately by the normalizer.
type RawListing struct {
	Source        string // Source name (e.g. "indeed")
	ExternalID    string // Board-assigned listing ID, if exposed
	Title         string
	CompanyName   string
	Location      string
	Description   string
	URL           string
	PostedDateRaw string // Raw date text (e.g. "3 days ago")
	SalaryRaw     string // Raw salary text (e.g. "8,000,000 - 12,000,000 VND")
	JobTypeRaw    string // Raw employment type text, if exposed
}

// SearchQuery describes one search an adapter executes against its board.
type SearchQuery struct {
	Keywords []string
	Location string
	MaxPages int
}

// Source defines the interface for job-board adapters.
// New boards are added by implementing this interface and registering the
// adapter under its name; there is no base-scraper hierarchy.
type Source interface {
	// Name returns the stable source identifier (e.g. "indeed").
	Name() string

	// FetchPage fetches one page of listings for the query.
	// Parameters:
	//   - ctx: context for cancellation and per-request deadlines.
	//   - query: search configuration for this run.
	//   - cursor: pagination cursor, empty for the first page.
	// Returns:
	//   - listings: raw listings parsed from the page.
	//   - nextCursor: cursor for the next page, empty when exhausted.
	//   - err: *FetchError on transport failure, *BlockedError when the board
	//     is actively rejecting us, *ParseError when the page shape changed.
	FetchPage(ctx context.Context, query SearchQuery, cursor string) (listings []RawListing, nextCursor string, err error)
}
