package linkedin

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khanhvu/jobradar/internal/source"
)

var urnIDRegex = regexp.MustCompile(`:(\d+)$`)

// parseSearchPage extracts listings from a LinkedIn guest search page.
func parseSearchPage(html, baseURL string) ([]source.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &source.ParseError{Source: SourceName, Reason: "invalid HTML document", Err: err}
	}

	cards := doc.Find("div.base-search-card, div.job-search-card, li [data-entity-urn]")
	if cards.Length() == 0 {
		if doc.Find("ul.jobs-search__results-list, section.two-pane-serp-page__results-list").Length() == 0 {
			return nil, &source.ParseError{Source: SourceName, Reason: "results list not found"}
		}
		return nil, nil
	}

	var listings []source.RawListing
	seen := map[string]bool{}
	cards.Each(func(_ int, card *goquery.Selection) {
		raw, ok := parseCard(card, baseURL)
		if !ok {
			return
		}
		// The selector union can match a card twice under nested layouts.
		key := raw.ExternalID + raw.URL
		if seen[key] {
			return
		}
		seen[key] = true
		listings = append(listings, raw)
	})

	return listings, nil
}

func parseCard(card *goquery.Selection, baseURL string) (source.RawListing, bool) {
	title := cleanText(card.Find("h3.base-search-card__title, a.job-search-card__title-link").First().Text())
	if title == "" {
		return source.RawListing{}, false
	}

	link := card.Find("a.base-card__full-link, a.job-search-card__title-link").First()
	jobURL := normalizeURL(link.AttrOr("href", ""), baseURL)

	externalID := ""
	urn := card.AttrOr("data-entity-urn", "")
	if urn == "" {
		urn = card.Closest("[data-entity-urn]").AttrOr("data-entity-urn", "")
	}
	if m := urnIDRegex.FindStringSubmatch(urn); m != nil {
		externalID = m[1]
	}

	company := cleanText(card.Find("h4.base-search-card__subtitle, a.job-search-card__subtitle-link, span.job-search-card__company-name").First().Text())
	location := cleanText(card.Find("span.job-search-card__location").First().Text())
	snippet := cleanText(card.Find("p.job-search-card__snippet").First().Text())
	salary := cleanText(card.Find("span.job-search-card__salary-info").First().Text())

	timeEl := card.Find("time.job-search-card__listdate, time").First()
	postedRaw := timeEl.AttrOr("datetime", "")
	if postedRaw == "" {
		postedRaw = cleanText(timeEl.Text())
	}

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

func normalizeURL(href, baseURL string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	}
	return href
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
