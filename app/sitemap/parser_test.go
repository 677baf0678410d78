package sitemap

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeFetcher struct {
	documents map[string]string
}

func (f *fakeFetcher) Run(_ context.Context, url string) ([]byte, error) {
	doc, ok := f.documents[url]
	if !ok {
		return nil, fmt.Errorf("no document for %s", url)
	}
	return []byte(doc), nil
}

const urlsetDoc = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/fresh</loc><lastmod>2026-08-20</lastmod></url>
  <url><loc>https://example.com/stale</loc><lastmod>2026-01-05</lastmod></url>
  <url><loc>https://example.com/undated</loc></url>
</urlset>`

func TestParserFiltersByLastMod(t *testing.T) {
	fetcher := &fakeFetcher{documents: map[string]string{
		"https://example.com/sitemap.xml": urlsetDoc,
	}}
	parser := NewParser(fetcher)

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	urls, err := parser.Run(context.Background(), "https://example.com/sitemap.xml", cutoff, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://example.com/fresh" {
		t.Errorf("unexpected first url: %q", urls[0])
	}
	// Entries without a lastmod are included by default
	if urls[1] != "https://example.com/undated" {
		t.Errorf("expected undated url to be included, got %q", urls[1])
	}
}

func TestParserZeroCutoffIncludesAll(t *testing.T) {
	fetcher := &fakeFetcher{documents: map[string]string{
		"https://example.com/sitemap.xml": urlsetDoc,
	}}
	parser := NewParser(fetcher)

	urls, err := parser.Run(context.Background(), "https://example.com/sitemap.xml", time.Time{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 3 {
		t.Errorf("expected all 3 urls, got %d", len(urls))
	}
}

func TestParserCapsAtMaxPages(t *testing.T) {
	fetcher := &fakeFetcher{documents: map[string]string{
		"https://example.com/sitemap.xml": urlsetDoc,
	}}
	parser := NewParser(fetcher)

	urls, err := parser.Run(context.Background(), "https://example.com/sitemap.xml", time.Time{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("expected cap at 2 urls, got %d", len(urls))
	}
}

func TestParserRecursesIntoIndex(t *testing.T) {
	indexDoc := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-pages.xml</loc></sitemap>
  <sitemap><loc>https://example.com/sitemap-broken.xml</loc></sitemap>
</sitemapindex>`

	fetcher := &fakeFetcher{documents: map[string]string{
		"https://example.com/sitemap.xml":       indexDoc,
		"https://example.com/sitemap-pages.xml": urlsetDoc,
	}}
	parser := NewParser(fetcher)

	urls, err := parser.Run(context.Background(), "https://example.com/sitemap.xml", time.Time{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The broken child is skipped, the readable one contributes its urls
	if len(urls) != 3 {
		t.Errorf("expected 3 urls from the readable child, got %d", len(urls))
	}
}

func TestParseDocumentRejectsOtherXML(t *testing.T) {
	if _, _, err := ParseDocument([]byte(`<rss version="2.0"></rss>`)); err == nil {
		t.Error("expected error for non-sitemap document")
	}
}

func TestIncludeEntryMissingLastMod(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !IncludeEntry(Entry{Loc: "https://example.com"}, cutoff) {
		t.Error("expected entry without lastmod to be included")
	}
}

func TestParseLastModFormats(t *testing.T) {
	if parseLastMod("2026-08-20") == nil {
		t.Error("expected date-only lastmod to parse")
	}
	if parseLastMod("2026-08-20T10:30:00Z") == nil {
		t.Error("expected RFC3339 lastmod to parse")
	}
	if parseLastMod("not a date") != nil {
		t.Error("expected garbage lastmod to be treated as absent")
	}
}
