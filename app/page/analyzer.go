package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Analyzer extracts audit facts from raw page markup
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Run(data []byte, pageURL string) (*ParsedPage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &ParsedPage{
		URL:         pageURL,
		RawHTML:     string(data),
		SchemaTypes: make(map[string]bool),
	}

	p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	p.MetaDescription = strings.TrimSpace(metaContent(doc, "meta[name='description']"))
	p.RobotsContent = metaContent(doc, "meta[name='robots']")
	p.HasViewport = doc.Find("meta[name='viewport']").Length() > 0
	p.CanonicalHref, _ = doc.Find("link[rel='canonical']").First().Attr("href")

	p.OGTitle = metaContent(doc, "meta[property='og:title']")
	p.OGDescription = metaContent(doc, "meta[property='og:description']")
	p.OGImage = metaContent(doc, "meta[property='og:image']")
	p.TwitterCard = metaContent(doc, "meta[name='twitter:card']")

	p.GeoRegion = metaContent(doc, "meta[name='geo.region']")
	p.GeoPlacename = metaContent(doc, "meta[name='geo.placename']")
	p.GeoPosition = metaContent(doc, "meta[name='geo.position']")

	p.HasAuthorMeta = metaContent(doc, "meta[name='author']") != ""

	a.extractHeadings(doc, p)
	a.extractStructuredData(doc, p)
	a.extractImages(doc, p)
	a.extractLinks(doc, p, pageURL)
	a.extractContent(doc, p)

	if p.HasSchemaKey("author") {
		p.HasAuthorMeta = true
	}

	slog.Debug("Page analyzed",
		"url", pageURL,
		"title", p.Title,
		"words", p.WordCount,
		"schema_blocks", len(p.SchemaBlocks))

	return p, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

func (a *Analyzer) extractHeadings(doc *goquery.Document, p *ParsedPage) {
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		p.HeadingLevels = append(p.HeadingLevels, level)

		text := strings.TrimSpace(s.Text())
		if level == 1 {
			p.H1Texts = append(p.H1Texts, text)
		}
		if strings.HasSuffix(text, "?") {
			p.QuestionHeadingCount++
		}
	})
}

// extractStructuredData collects JSON-LD blocks, flattening top-level arrays
// and @graph containers. Blocks that fail to parse are skipped.
func (a *Analyzer) extractStructuredData(doc *goquery.Document, p *ParsedPage) {
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			slog.Debug("Skipping invalid JSON-LD block", "url", p.URL, "error", err)
			return
		}

		for _, block := range flattenSchemaBlocks(parsed) {
			p.SchemaBlocks = append(p.SchemaBlocks, block)
			collectSchemaTypes(block, p.SchemaTypes)
		}
	})

	p.HasMicrodata = doc.Find("[itemscope]").Length() > 0
}

func flattenSchemaBlocks(parsed any) []map[string]any {
	var blocks []map[string]any

	switch v := parsed.(type) {
	case map[string]any:
		blocks = append(blocks, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, entry := range graph {
				if block, ok := entry.(map[string]any); ok {
					blocks = append(blocks, block)
				}
			}
		}
	case []any:
		for _, entry := range v {
			if block, ok := entry.(map[string]any); ok {
				blocks = append(blocks, block)
			}
		}
	}

	return blocks
}

func collectSchemaTypes(value any, types map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			types[t] = true
		case []any:
			for _, entry := range t {
				if name, ok := entry.(string); ok {
					types[name] = true
				}
			}
		}
		for _, nested := range v {
			collectSchemaTypes(nested, types)
		}
	case []any:
		for _, nested := range v {
			collectSchemaTypes(nested, types)
		}
	}
}

func (a *Analyzer) extractImages(doc *goquery.Document, p *ParsedPage) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		p.ImageCount++

		alt, exists := s.Attr("alt")
		if exists && strings.TrimSpace(alt) != "" {
			return
		}

		src, _ := s.Attr("src")
		p.ImagesMissingAlt = append(p.ImagesMissingAlt, imageShortName(src))
	})
}

// imageShortName derives a short identifier for an image from its src
func imageShortName(src string) string {
	if src == "" {
		return "unknown"
	}
	name := path.Base(src)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" || name == "." || name == "/" {
		return "unknown"
	}
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

func (a *Analyzer) extractLinks(doc *goquery.Document, p *ParsedPage, pageURL string) {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}

		target, err := url.Parse(href)
		if err != nil {
			return
		}

		if base != nil {
			target = base.ResolveReference(target)
		}

		if base != nil && target.Host == base.Host {
			p.InternalLinkCount++
		} else {
			p.ExternalLinkCount++
		}
	})
}

// extractContent measures the visible text after stripping non-content
// elements. Runs last so the earlier extractors see the full document.
func (a *Analyzer) extractContent(doc *goquery.Document, p *ParsedPage) {
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			p.Paragraphs = append(p.Paragraphs, text)
		}
	})

	p.ListCount = doc.Find("ul, ol").Length()
	p.TableCount = doc.Find("table").Length()
	p.TableHeaderCount = doc.Find("th").Length()

	doc.Find("script, style, noscript, nav, footer, header").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	p.VisibleText = norm.NFC.String(text)
	p.WordCount = len(strings.Fields(p.VisibleText))
}
