package motoscout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

// Numeric category segments baked into the portal's URL paths.
const (
	bikeSegment = 45
	carSegment  = 10
)

// detailPathRe matches detail-page links: /de/detail/{segment}/{id}.
var detailPathRe = regexp.MustCompile(`/de/detail/(\d+)/(\d+)`)

// Phrases the portal renders on an empty result page.
var noResultMarkers = []string{
	"0 Fahrzeuge",
	"Keine Fahrzeuge gefunden",
}

// CategorySegment maps a vehicle category to its portal path segment.
func CategorySegment(category string) (int, error) {
	switch category {
	case models.CategoryBike:
		return bikeSegment, nil
	case models.CategoryCar:
		return carSegment, nil
	default:
		return 0, fmt.Errorf("crawl: unknown category %q", category)
	}
}

// Crawler walks the paginated search pages of one category and collects
// unique detail-page references.
type Crawler struct {
	fetcher   *Fetcher
	logger    *utils.Logger
	maxPages  int
	pageDelay time.Duration
}

// NewCrawler creates a Crawler. maxPages is a hard safety cap applied even if
// the portal keeps returning results.
func NewCrawler(fetcher *Fetcher, logger *utils.Logger, maxPages, pageDelayMs int) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		logger:    logger.WithComponent("crawl"),
		maxPages:  maxPages,
		pageDelay: time.Duration(pageDelayMs) * time.Millisecond,
	}
}

// CrawlCategory iterates listing pages starting at 0 and stops at the first
// empty page, a "no results" marker, or the page cap. Ids are deduplicated
// across pages; the first occurrence wins. A listing-page fetch failure aborts
// the whole crawl with an error: a partial ref set must never reach the
// replace-sync, where it would overwrite the previous generation.
func (c *Crawler) CrawlCategory(category string) ([]models.ListingRef, error) {
	segment, err := CategorySegment(category)
	if err != nil {
		return nil, err
	}

	seen := utils.NewIDSet()
	var refs []models.ListingRef

	for page := 0; page < c.maxPages; page++ {
		url := fmt.Sprintf("%s/de/suche/%d?page=%d", c.fetcher.BaseURL(), segment, page)
		c.logger.Debug("GET %s", url)

		body, err := c.fetcher.Fetch(url)
		if err != nil {
			return nil, fmt.Errorf("crawl: %s page %d: %w", category, page, err)
		}

		if hasNoResultsMarker(body) {
			c.logger.Info("%s page %d reports no results, done", category, page)
			break
		}

		links := c.extractDetailLinks(body, segment)
		if len(links) == 0 {
			c.logger.Info("%s page %d contains no detail links, done", category, page)
			break
		}

		added := 0
		for _, ref := range links {
			if seen.Add(ref.ID) {
				refs = append(refs, ref)
				added++
			}
		}
		c.logger.Info("%s page %d: %d links, %d new (total %d)",
			category, page, len(links), added, len(refs))

		time.Sleep(c.pageDelay)
	}

	return refs, nil
}

// extractDetailLinks pulls detail-page references out of one listing page.
// Anchor hrefs are read via goquery; a raw regex scan over the body acts as
// fallback for markup goquery cannot parse into anchors.
func (c *Crawler) extractDetailLinks(body string, segment int) []models.ListingRef {
	var refs []models.ListingRef
	local := utils.NewIDSet()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if ref, ok := c.refFromPath(href, segment); ok && local.Add(ref.ID) {
				refs = append(refs, ref)
			}
		})
	}

	for _, m := range detailPathRe.FindAllString(body, -1) {
		if ref, ok := c.refFromPath(m, segment); ok && local.Add(ref.ID) {
			refs = append(refs, ref)
		}
	}

	return refs
}

func (c *Crawler) refFromPath(href string, segment int) (models.ListingRef, bool) {
	m := detailPathRe.FindStringSubmatch(href)
	if m == nil {
		return models.ListingRef{}, false
	}
	if m[1] != fmt.Sprintf("%d", segment) {
		return models.ListingRef{}, false
	}
	return models.ListingRef{
		ID:        m[2],
		DetailURL: fmt.Sprintf("%s/de/detail/%s/%s", c.fetcher.BaseURL(), m[1], m[2]),
	}, true
}

func hasNoResultsMarker(body string) bool {
	for _, marker := range noResultMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
