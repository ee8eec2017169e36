package motoscout

import (
	"sync"

	"vehicle-scraper/config"
	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

// Scraper drives one category through crawl and detail-page extraction.
// Listing pages are walked sequentially; detail pages go through a bounded
// worker pool that shares the fetcher's token bucket, so the overall request
// rate stays capped.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	fetcher   *Fetcher
	crawler   *Crawler
	extractor *Extractor
	pool      *utils.WorkerPool
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	fetcher := NewFetcher(cfg.SourceBaseURL, cfg.RequestRPS)
	return &Scraper{
		cfg:       cfg,
		logger:    logger.WithComponent("scrape"),
		fetcher:   fetcher,
		crawler:   NewCrawler(fetcher, logger, cfg.MaxPages, cfg.PageDelayMs),
		extractor: NewExtractor(),
		pool:      utils.NewWorkerPool(cfg.MaxConcurrency, cfg.DetailDelayMs),
	}
}

// ScrapeCategory crawls the category's listing pages and extracts every
// reachable detail page. A failed detail fetch is logged and skipped; the
// rest of the run continues.
func (s *Scraper) ScrapeCategory(category string) ([]models.DetailResult, error) {
	refs, err := s.crawler.CrawlCategory(category)
	if err != nil {
		return nil, err
	}
	s.logger.Info("%s: %d unique listings found", category, len(refs))

	results := make([]*models.RawExtraction, len(refs))
	var mu sync.Mutex

	for i, ref := range refs {
		i, ref := i, ref
		s.pool.Submit(func() {
			body, err := s.fetcher.Fetch(ref.DetailURL)
			if err != nil {
				s.logger.Warn("detail %s failed: %v — skipping", ref.DetailURL, err)
				return
			}
			raw := s.extractor.Extract(body)
			mu.Lock()
			results[i] = raw
			mu.Unlock()
		})
	}
	s.pool.Wait()

	var out []models.DetailResult
	for i, raw := range results {
		if raw == nil {
			continue
		}
		out = append(out, models.DetailResult{Ref: refs[i], Raw: raw})
	}

	s.logger.Info("%s: extracted %d of %d detail pages", category, len(out), len(refs))
	return out, nil
}
