package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Entry is a single URL from a sitemap. LastMod is nil when the sitemap
// does not declare one.
type Entry struct {
	Loc     string
	LastMod *time.Time
}

// Fetcher is the slice of the page fetcher the parser needs
type Fetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// Parser discovers page URLs from a sitemap, recursing into sitemap index
// documents and filtering by last modification date.
type Parser struct {
	fetcher Fetcher
}

func NewParser(fetcher Fetcher) *Parser {
	return &Parser{fetcher: fetcher}
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []rawURL `xml:"url"`
}

type rawURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

// Run fetches the sitemap and returns up to maxPages URLs modified after
// the cutoff. URLs without a lastmod are included. A zero cutoff disables
// the date filter; maxPages <= 0 disables the cap.
func (p *Parser) Run(ctx context.Context, sitemapURL string, cutoff time.Time, maxPages int) ([]string, error) {
	entries, err := p.collect(ctx, sitemapURL, 0)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, entry := range entries {
		if !IncludeEntry(entry, cutoff) {
			continue
		}
		urls = append(urls, entry.Loc)
		if maxPages > 0 && len(urls) >= maxPages {
			break
		}
	}

	slog.Info("Sitemap parsed",
		"sitemap", sitemapURL,
		"total", len(entries),
		"selected", len(urls))

	return urls, nil
}

// collect walks the sitemap tree depth-first. Recursion is capped to guard
// against self-referencing indexes.
func (p *Parser) collect(ctx context.Context, sitemapURL string, depth int) ([]Entry, error) {
	if depth > 3 {
		return nil, fmt.Errorf("sitemap index nesting too deep at %s", sitemapURL)
	}

	data, err := p.fetcher.Run(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}

	entries, children, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", sitemapURL, err)
	}

	for _, child := range children {
		childEntries, err := p.collect(ctx, child, depth+1)
		if err != nil {
			slog.Warn("Skipping unreadable child sitemap", "sitemap", child, "error", err)
			continue
		}
		entries = append(entries, childEntries...)
	}

	return entries, nil
}

// ParseDocument parses a single sitemap document, returning its URL entries
// and any child sitemap locations.
func ParseDocument(data []byte) ([]Entry, []string, error) {
	var set urlSet
	if err := xml.Unmarshal(data, &set); err == nil && set.XMLName.Local == "urlset" {
		var entries []Entry
		for _, raw := range set.URLs {
			loc := strings.TrimSpace(raw.Loc)
			if loc == "" {
				continue
			}
			entries = append(entries, Entry{Loc: loc, LastMod: parseLastMod(raw.LastMod)})
		}
		return entries, nil, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err == nil && index.XMLName.Local == "sitemapindex" {
		var children []string
		for _, ref := range index.Sitemaps {
			loc := strings.TrimSpace(ref.Loc)
			if loc != "" {
				children = append(children, loc)
			}
		}
		return nil, children, nil
	}

	return nil, nil, fmt.Errorf("document is neither a urlset nor a sitemapindex")
}

// IncludeEntry applies the lastmod cutoff. Entries without a lastmod are
// always included.
func IncludeEntry(entry Entry, cutoff time.Time) bool {
	if cutoff.IsZero() || entry.LastMod == nil {
		return true
	}
	return !entry.LastMod.Before(cutoff)
}

var lastModFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02",
}

func parseLastMod(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, format := range lastModFormats {
		if t, err := time.Parse(format, value); err == nil {
			return &t
		}
	}
	slog.Debug("Unparseable sitemap lastmod, treating as absent", "lastmod", value)
	return nil
}
