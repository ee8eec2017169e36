package motoscout

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const (
	fetchTimeout = 12 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// throttledTransport wraps a RoundTripper with a token bucket so the overall
// request rate stays bounded no matter how many workers share the client.
type throttledTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// Fetcher issues rate-limited GET requests with browser-like headers and
// transparently decompresses the response body. It applies no retry policy;
// that belongs to the caller.
type Fetcher struct {
	client  *http.Client
	baseURL string
}

// NewFetcher creates a Fetcher for the given portal root. requestsPerSecond
// bounds the combined rate of listing-page and detail-page fetches.
func NewFetcher(baseURL string, requestsPerSecond float64) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
			Transport: &throttledTransport{
				transport: http.DefaultTransport,
				limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the portal root the Fetcher was created for.
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// Fetch GETs the URL and returns the decompressed body as text.
// Any transport failure or non-2xx status is returned as an error.
func (f *Fetcher) Fetch(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request %q: %w", url, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,fr;q=0.8,en;q=0.7")
	// Setting Accept-Encoding by hand disables net/http's automatic gzip
	// handling, so all three encodings are decoded below.
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Referer", f.baseURL+"/")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: %s returned status %d", url, resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return "", err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("fetch: read body of %s: %w", url, err)
	}

	return string(body), nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch: gzip reader: %w", err)
		}
		return gz, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}
