package indeed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khanhvu/jobradar/internal/source"
)

var jobKeyRegex = regexp.MustCompile(`jk=([a-f0-9]+)`)

// parseSearchPage extracts listings from an Indeed search result page.
// Indeed has shipped several card layouts over time, so the selectors accept
// any of the known variants.
func parseSearchPage(html, baseURL string) ([]source.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &source.ParseError{Source: SourceName, Reason: "invalid HTML document", Err: err}
	}

	cards := doc.Find("div.job_seen_beacon, div.jobsearch-SerpJobCard, td.resultContent")
	if cards.Length() == 0 {
		// A page with zero cards is legitimate past the last result; only a
		// page that no longer carries the results container is a shape change.
		if doc.Find("#mosaic-provider-jobcards, #resultsCol, ul.jobsearch-ResultsList").Length() == 0 {
			return nil, &source.ParseError{Source: SourceName, Reason: "results container not found"}
		}
		return nil, nil
	}

	var listings []source.RawListing
	cards.Each(func(_ int, card *goquery.Selection) {
		raw, ok := parseCard(card, baseURL)
		if ok {
			listings = append(listings, raw)
		}
	})

	return listings, nil
}

// parseCard extracts one listing from a job card. Cards missing a title link
// are promos or ads and are skipped.
func parseCard(card *goquery.Selection, baseURL string) (source.RawListing, bool) {
	titleLink := card.Find("a[data-jk]").First()
	if titleLink.Length() == 0 {
		titleLink = card.Find("h2.jobTitle a").First()
	}
	if titleLink.Length() == 0 {
		return source.RawListing{}, false
	}

	title := cleanText(titleLink.Find("span").First().Text())
	if title == "" {
		title = cleanText(titleLink.Text())
	}

	jobURL := normalizeURL(titleLink.AttrOr("href", ""), baseURL)

	externalID := titleLink.AttrOr("data-jk", "")
	if externalID == "" {
		if m := jobKeyRegex.FindStringSubmatch(jobURL); m != nil {
			externalID = m[1]
		}
	}

	company := cleanText(card.Find("span.companyName, [data-testid='company-name']").First().Text())
	location := cleanText(card.Find("div.companyLocation, [data-testid='text-location']").First().Text())
	salary := cleanText(card.Find("div.salary-snippet-container, span.salaryText, [data-testid='attribute_snippet_testid']").First().Text())
	snippet := cleanText(card.Find("div.job-snippet, div.summary, [data-testid='belowJobSnippet']").First().Text())
	postedRaw := cleanText(card.Find("span.date, [data-testid='myJobsStateDate']").First().Text())

	return source.RawListing{
		Source:        SourceName,
		ExternalID:    externalID,
		Title:         title,
		CompanyName:   company,
		Location:      location,
		Description:   snippet,
		URL:           jobURL,
		PostedDateRaw: postedRaw,
		SalaryRaw:     salary,
	}, true
}

// normalizeURL resolves relative and protocol-relative links against the board.
func normalizeURL(href, baseURL string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	case !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://"):
		return baseURL + "/" + href
	}
	return href
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
