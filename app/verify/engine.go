package verify

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
)

// Item is an open board task to re-check
type Item struct {
	ID        string
	Name      string
	URL       string
	IssueType string
}

// Result is the outcome of verifying a single item. The engine is
// conservative: anything it cannot positively confirm stays not fixed.
type Result struct {
	ItemID    string
	URL       string
	IssueType string
	Fixed     bool
	Details   string
}

// Check inspects fresh page facts and reports whether the issue is resolved
type Check func(p *page.ParsedPage, item Item) (bool, string)

// PageFetcher is the slice of the fetcher the engine needs
type PageFetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// Engine re-fetches pages and verifies whether previously reported issues
// have been fixed.
type Engine struct {
	fetcher  PageFetcher
	analyzer *page.Analyzer
	checks   map[string]Check
}

func NewEngine(fetcher PageFetcher, analyzer *page.Analyzer) *Engine {
	return &Engine{
		fetcher:  fetcher,
		analyzer: analyzer,
		checks:   Checks(),
	}
}

// Run verifies a single item against a fresh fetch of its page
func (e *Engine) Run(ctx context.Context, item Item) Result {
	result := Result{ItemID: item.ID, URL: item.URL, IssueType: item.IssueType}

	check, ok := e.checks[item.IssueType]
	if !ok {
		result.Details = fmt.Sprintf("no verification method registered for %q", item.IssueType)
		return result
	}

	if item.URL == "" {
		result.Details = "item has no URL to verify against"
		return result
	}

	data, err := e.fetcher.Run(ctx, item.URL)
	if err != nil {
		result.Details = fmt.Sprintf("fetch failed, leaving unverified: %v", err)
		slog.Warn("Verification fetch failed", "url", item.URL, "error", err)
		return result
	}

	p, err := e.analyzer.Run(data, item.URL)
	if err != nil {
		result.Details = fmt.Sprintf("analysis failed, leaving unverified: %v", err)
		return result
	}

	if p.IsChallenge() {
		result.Details = "bot challenge page served, cannot verify"
		return result
	}

	result.Fixed, result.Details = check(p, item)
	return result
}

// Checks returns the registry of verification methods keyed by issue type
func Checks() map[string]Check {
	return map[string]Check{
		audit.TypeMissingTitle: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.Title != "" {
				return true, fmt.Sprintf("title present (%d characters)", len(p.Title))
			}
			return false, "title still missing"
		},
		audit.TypeTitleTooShort: titleLengthCheck,
		audit.TypeTitleTooLong:  titleLengthCheck,
		audit.TypeMissingMetaDescription: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.MetaDescription != "" {
				return true, fmt.Sprintf("meta description present (%d characters)", len(p.MetaDescription))
			}
			return false, "meta description still missing"
		},
		audit.TypeMetaDescriptionTooShort: metaDescriptionLengthCheck,
		audit.TypeMetaDescriptionTooLong:  metaDescriptionLengthCheck,
		audit.TypeMissingH1:               singleH1Check,
		audit.TypeMultipleH1:              singleH1Check,
		audit.TypeHeadingHierarchySkip: func(p *page.ParsedPage, _ Item) (bool, string) {
			prev := 0
			for _, level := range p.HeadingLevels {
				if prev > 0 && level > prev+1 {
					return false, fmt.Sprintf("heading levels still skip from H%d to H%d", prev, level)
				}
				prev = level
			}
			return true, "heading levels are sequential"
		},
		audit.TypeImagesMissingAlt: func(p *page.ParsedPage, _ Item) (bool, string) {
			if len(p.ImagesMissingAlt) == 0 {
				return true, "all images have alt text"
			}
			return false, fmt.Sprintf("%d images still missing alt text", len(p.ImagesMissingAlt))
		},
		audit.TypeMissingCanonical: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.CanonicalHref != "" {
				return true, "canonical tag present"
			}
			return false, "canonical tag still missing"
		},
		audit.TypeNoindexPage: func(p *page.ParsedPage, _ Item) (bool, string) {
			if !p.HasRobotsNoindex() {
				return true, "noindex directive removed"
			}
			return false, "page still set to noindex"
		},
		audit.TypeMissingViewport: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.HasViewport {
				return true, "viewport meta tag present"
			}
			return false, "viewport meta tag still missing"
		},
		audit.TypeMissingOpenGraph: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.OGTitle != "" && p.OGDescription != "" && p.OGImage != "" {
				return true, "open graph tags present"
			}
			return false, "open graph tags still incomplete"
		},
		audit.TypeMissingTwitterCard: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.TwitterCard != "" {
				return true, "twitter card present"
			}
			return false, "twitter card still missing"
		},
		audit.TypeThinContent: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.WordCount >= audit.MinWordCount {
				return true, fmt.Sprintf("content expanded to %d words", p.WordCount)
			}
			return false, fmt.Sprintf("content still thin (%d words)", p.WordCount)
		},
		audit.TypeURLTooLong: func(p *page.ParsedPage, item Item) (bool, string) {
			if len(item.URL) <= audit.MaxURLLength {
				return true, "URL within length limit"
			}
			return false, fmt.Sprintf("URL still %d characters long", len(item.URL))
		},
		audit.TypeFewInternalLinks: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.InternalLinkCount >= audit.MinInternalLinks {
				return true, fmt.Sprintf("%d internal links present", p.InternalLinkCount)
			}
			return false, fmt.Sprintf("still only %d internal links", p.InternalLinkCount)
		},
		audit.TypeMissingGeoMeta: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.GeoRegion != "" || p.GeoPlacename != "" || p.GeoPosition != "" {
				return true, "geo meta tags present"
			}
			return false, "geo meta tags still missing"
		},
		audit.TypeMissingSchema: func(p *page.ParsedPage, _ Item) (bool, string) {
			if len(p.SchemaBlocks) > 0 || p.HasMicrodata {
				return true, "structured data present"
			}
			return false, "structured data still missing"
		},
		audit.TypeMissingWebPageSchema:  schemaTypeCheck("WebPage", "WebSite"),
		audit.TypeMissingOrgSchema:      schemaTypeCheck("Organization", "LocalBusiness", "Hotel", "Resort", "LodgingBusiness"),
		audit.TypeMissingHotelSchema:    schemaTypeCheck("Hotel", "Resort", "LodgingBusiness"),
		audit.TypeMissingBreadcrumb:     schemaTypeCheck("BreadcrumbList"),
		audit.TypeMissingFAQSchema:      schemaTypeCheck("FAQPage"),
		audit.TypeMissingHowToSchema:    schemaTypeCheck("HowTo"),
		audit.TypeMissingSpeakable: func(p *page.ParsedPage, _ Item) (bool, string) {
			if p.HasSchemaKey("speakable") {
				return true, "speakable specification present"
			}
			return false, "speakable specification still missing"
		},
	}
}

func titleLengthCheck(p *page.ParsedPage, _ Item) (bool, string) {
	length := utf8.RuneCountInString(p.Title)
	if length >= audit.TitleMinLength && length <= audit.TitleMaxLength {
		return true, fmt.Sprintf("title within range (%d characters)", length)
	}
	return false, fmt.Sprintf("title still out of range (%d characters)", length)
}

func metaDescriptionLengthCheck(p *page.ParsedPage, _ Item) (bool, string) {
	length := utf8.RuneCountInString(p.MetaDescription)
	if length >= audit.MetaDescMinLength && length <= audit.MetaDescMaxLength {
		return true, fmt.Sprintf("meta description within range (%d characters)", length)
	}
	return false, fmt.Sprintf("meta description still out of range (%d characters)", length)
}

func singleH1Check(p *page.ParsedPage, _ Item) (bool, string) {
	if len(p.H1Texts) == 1 {
		return true, "exactly one H1 present"
	}
	return false, fmt.Sprintf("page has %d H1 tags", len(p.H1Texts))
}

func schemaTypeCheck(types ...string) Check {
	return func(p *page.ParsedPage, _ Item) (bool, string) {
		if p.HasAnySchemaType(types...) {
			return true, fmt.Sprintf("%s schema present", types[0])
		}
		return false, fmt.Sprintf("%s schema still missing", types[0])
	}
}
