package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Fetcher downloads page markup, optionally through a render proxy that
// handles anti-bot protection on the far side.
type Fetcher struct {
	httpClient *http.Client
	proxyURL   string
	proxyKey   string
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, proxyURL string, proxyKey string, userAgent string, timeoutSeconds int) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		proxyURL:   proxyURL,
		proxyKey:   proxyKey,
		userAgent:  userAgent,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
	}
}

func (f *Fetcher) Run(ctx context.Context, pageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	requestURL := pageURL
	if f.proxyURL != "" {
		requestURL = fmt.Sprintf("%s?api_key=%s&url=%s", f.proxyURL, f.proxyKey, url.QueryEscape(pageURL))
	}

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
