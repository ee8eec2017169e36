package motoscout

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

func listingServer(t *testing.T, pages map[string]string, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		page := r.URL.Query().Get("page")
		body, ok := pages[page]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestCrawlCategoryDeduplicatesAcrossPages(t *testing.T) {
	var hits int64
	pages := map[string]string{
		"0": `<html><body>
			<a href="/de/detail/45/111">Yamaha MT-07</a>
			<a href="/de/detail/45/222">Honda CB500F</a>
			<a href="/de/detail/45/111">Yamaha MT-07 (again)</a>
			<a href="/de/detail/10/999">A car, wrong category</a>
		</body></html>`,
		"1": `<html><body>
			<a href="/de/detail/45/222">Honda CB500F</a>
			<a href="/de/detail/45/333">KTM Duke 390</a>
		</body></html>`,
		"2": `<html><body><p>0 Fahrzeuge</p></body></html>`,
	}
	srv := listingServer(t, pages, &hits)
	defer srv.Close()

	fetcher := NewFetcher(srv.URL, 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 10, 0)

	refs, err := crawler.CrawlCategory(models.CategoryBike)
	if err != nil {
		t.Fatalf("CrawlCategory: %v", err)
	}

	wantIDs := []string{"111", "222", "333"}
	if len(refs) != len(wantIDs) {
		t.Fatalf("refs: got %d, want %d (%+v)", len(refs), len(wantIDs), refs)
	}
	for i, want := range wantIDs {
		if refs[i].ID != want {
			t.Errorf("refs[%d].ID: got %q, want %q", i, refs[i].ID, want)
		}
		wantURL := fmt.Sprintf("%s/de/detail/45/%s", srv.URL, want)
		if refs[i].DetailURL != wantURL {
			t.Errorf("refs[%d].DetailURL: got %q, want %q", i, refs[i].DetailURL, wantURL)
		}
	}

	// The "0 Fahrzeuge" page terminates the crawl; no further fetches.
	if hits != 3 {
		t.Errorf("listing fetches: got %d, want 3", hits)
	}
}

func TestCrawlCategoryStopsOnPageWithoutLinks(t *testing.T) {
	var hits int64
	pages := map[string]string{
		"0": `<html><body><a href="/de/detail/45/111">Yamaha</a></body></html>`,
		"1": `<html><body><p>Nur Werbung hier</p></body></html>`,
		"2": `<html><body><a href="/de/detail/45/999">never reached</a></body></html>`,
	}
	srv := listingServer(t, pages, &hits)
	defer srv.Close()

	fetcher := NewFetcher(srv.URL, 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 10, 0)

	refs, err := crawler.CrawlCategory(models.CategoryBike)
	if err != nil {
		t.Fatalf("CrawlCategory: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "111" {
		t.Errorf("refs: got %+v, want just 111", refs)
	}
	if hits != 2 {
		t.Errorf("listing fetches: got %d, want 2", hits)
	}
}

func TestCrawlCategoryHonorsPageCap(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&hits, 1)
		// Every page links a fresh id, so only the cap can stop the crawl.
		fmt.Fprintf(w, `<html><body><a href="/de/detail/45/%d">bike</a></body></html>`, n)
	}))
	defer srv.Close()

	fetcher := NewFetcher(srv.URL, 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 3, 0)

	refs, err := crawler.CrawlCategory(models.CategoryBike)
	if err != nil {
		t.Fatalf("CrawlCategory: %v", err)
	}
	if hits != 3 {
		t.Errorf("listing fetches: got %d, want cap of 3", hits)
	}
	if len(refs) != 3 {
		t.Errorf("refs: got %d, want 3", len(refs))
	}
}

func TestCrawlCategoryUnknownCategory(t *testing.T) {
	fetcher := NewFetcher("http://localhost:0", 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 3, 0)

	if _, err := crawler.CrawlCategory("boat"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCrawlCategoryFailsOnListingFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	fetcher := NewFetcher(srv.URL, 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 10, 0)

	// A failing listing page must surface as an error, not as an empty ref
	// set; an empty set would let the replace-sync delete the previous
	// generation of the category.
	refs, err := crawler.CrawlCategory(models.CategoryBike)
	if err == nil {
		t.Fatal("expected error when the first listing page fails")
	}
	if refs != nil {
		t.Errorf("refs must be nil on failure, got %+v", refs)
	}
}

func TestCrawlCategoryFailsMidPagination(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) > 1 {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `<html><body><a href="/de/detail/45/111">Yamaha</a></body></html>`)
	}))
	defer srv.Close()

	fetcher := NewFetcher(srv.URL, 1000)
	crawler := NewCrawler(fetcher, utils.NewLogger(false), 10, 0)

	refs, err := crawler.CrawlCategory(models.CategoryBike)
	if err == nil {
		t.Fatal("expected error when a later listing page fails")
	}
	if refs != nil {
		t.Errorf("partial ref set must not be returned, got %+v", refs)
	}
}
