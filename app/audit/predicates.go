package audit

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

// Evaluation thresholds
const (
	TitleMinLength    = 30
	TitleMaxLength    = 60
	MetaDescMinLength = 120
	MetaDescMaxLength = 160
	MinWordCount      = 300
	MaxURLLength      = 75
	MinInternalLinks  = 3
)

// Predicate inspects extracted page facts and reports zero or more issues
type Predicate func(p *page.ParsedPage, r rules.Rule) []Issue

// Predicates returns the registry of known predicate keys. Rules whose key
// is not present here are skipped at evaluation time.
func Predicates() map[string]Predicate {
	return map[string]Predicate{
		"title":               checkTitle,
		"meta_description":    checkMetaDescription,
		"h1":                  checkH1,
		"heading_hierarchy":   checkHeadingHierarchy,
		"images_alt":          checkImagesAlt,
		"canonical":           checkCanonical,
		"robots_noindex":      checkRobotsNoindex,
		"viewport":            checkViewport,
		"open_graph":          checkOpenGraph,
		"twitter_card":        checkTwitterCard,
		"thin_content":        checkThinContent,
		"url_structure":       checkURLStructure,
		"internal_links":      checkInternalLinks,
		"geo_meta":            checkGeoMeta,
		"schema":              checkSchema,
		"webpage_schema":      checkWebPageSchema,
		"organization_schema": checkOrganizationSchema,
		"hotel_schema":        checkHotelSchema,
		"breadcrumb_schema":   checkBreadcrumbSchema,
		"faq_schema":          checkFAQSchema,
		"howto_schema":        checkHowToSchema,
		"speakable":           checkSpeakable,
	}
}

func newIssue(p *page.ParsedPage, r rules.Rule, issueType, title, description, recommendation, current, expected string) Issue {
	if r.Recommendation != "" {
		recommendation = r.Recommendation
	}
	return Issue{
		URL:            p.URL,
		RuleID:         r.ID,
		RuleName:       r.Name,
		Category:       r.Category,
		Severity:       r.Severity,
		IssueType:      issueType,
		Title:          title,
		Description:    description,
		Recommendation: recommendation,
		CurrentValue:   current,
		ExpectedValue:  expected,
	}
}

func checkTitle(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.Title == "" {
		return []Issue{newIssue(p, r, TypeMissingTitle,
			"Missing Title Tag",
			"The page has no title tag.",
			"Add a descriptive title tag between 30 and 60 characters.",
			"(none)",
			fmt.Sprintf("%d-%d characters", TitleMinLength, TitleMaxLength))}
	}

	length := utf8.RuneCountInString(p.Title)
	if length < TitleMinLength {
		return []Issue{newIssue(p, r, TypeTitleTooShort,
			"Title Too Short",
			fmt.Sprintf("The title tag is %d characters long.", length),
			"Expand the title to at least 30 characters with descriptive keywords.",
			fmt.Sprintf("%d characters", length),
			fmt.Sprintf("at least %d characters", TitleMinLength))}
	}
	if length > TitleMaxLength {
		return []Issue{newIssue(p, r, TypeTitleTooLong,
			"Title Too Long",
			fmt.Sprintf("The title tag is %d characters long and may be truncated in search results.", length),
			"Shorten the title to 60 characters or fewer.",
			fmt.Sprintf("%d characters", length),
			fmt.Sprintf("at most %d characters", TitleMaxLength))}
	}

	return nil
}

func checkMetaDescription(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.MetaDescription == "" {
		return []Issue{newIssue(p, r, TypeMissingMetaDescription,
			"Missing Meta Description",
			"The page has no meta description.",
			"Add a meta description between 120 and 160 characters.",
			"(none)",
			fmt.Sprintf("%d-%d characters", MetaDescMinLength, MetaDescMaxLength))}
	}

	length := utf8.RuneCountInString(p.MetaDescription)
	if length < MetaDescMinLength {
		return []Issue{newIssue(p, r, TypeMetaDescriptionTooShort,
			"Meta Description Too Short",
			fmt.Sprintf("The meta description is %d characters long.", length),
			"Expand the meta description to at least 120 characters.",
			fmt.Sprintf("%d characters", length),
			fmt.Sprintf("at least %d characters", MetaDescMinLength))}
	}
	if length > MetaDescMaxLength {
		return []Issue{newIssue(p, r, TypeMetaDescriptionTooLong,
			"Meta Description Too Long",
			fmt.Sprintf("The meta description is %d characters long and may be truncated.", length),
			"Shorten the meta description to 160 characters or fewer.",
			fmt.Sprintf("%d characters", length),
			fmt.Sprintf("at most %d characters", MetaDescMaxLength))}
	}

	return nil
}

func checkH1(p *page.ParsedPage, r rules.Rule) []Issue {
	count := len(p.H1Texts)
	if count == 0 {
		return []Issue{newIssue(p, r, TypeMissingH1,
			"Missing H1 Tag",
			"The page has no H1 heading.",
			"Add exactly one H1 heading describing the page content.",
			"0 H1 tags",
			"exactly 1 H1 tag")}
	}
	if count > 1 {
		return []Issue{newIssue(p, r, TypeMultipleH1,
			"Multiple H1 Tags",
			fmt.Sprintf("The page has %d H1 headings.", count),
			"Keep a single H1 heading and demote the rest.",
			fmt.Sprintf("%d H1 tags", count),
			"exactly 1 H1 tag")}
	}
	return nil
}

func checkHeadingHierarchy(p *page.ParsedPage, r rules.Rule) []Issue {
	prev := 0
	for _, level := range p.HeadingLevels {
		if prev > 0 && level > prev+1 {
			return []Issue{newIssue(p, r, TypeHeadingHierarchySkip,
				"Heading Hierarchy Skip",
				fmt.Sprintf("Heading levels jump from H%d to H%d.", prev, level),
				"Keep heading levels sequential without skipping.",
				fmt.Sprintf("H%d followed by H%d", prev, level),
				"sequential heading levels")}
		}
		prev = level
	}
	return nil
}

func checkImagesAlt(p *page.ParsedPage, r rules.Rule) []Issue {
	count := len(p.ImagesMissingAlt)
	if count == 0 {
		return nil
	}

	names := p.ImagesMissingAlt
	if len(names) > 5 {
		names = names[:5]
	}

	return []Issue{newIssue(p, r, TypeImagesMissingAlt,
		"Images Missing Alt Text",
		fmt.Sprintf("%d of %d images have no alt text.", count, p.ImageCount),
		"Add descriptive alt text to every meaningful image.",
		strings.Join(names, ", "),
		"alt text on all images")}
}

func checkCanonical(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.CanonicalHref == "" {
		return []Issue{newIssue(p, r, TypeMissingCanonical,
			"Missing Canonical Tag",
			"The page has no canonical link tag.",
			"Add a canonical link tag pointing at the preferred URL.",
			"(none)",
			"canonical link tag present")}
	}
	return nil
}

func checkRobotsNoindex(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.HasRobotsNoindex() {
		return []Issue{newIssue(p, r, TypeNoindexPage,
			"Page Set to NoIndex",
			"The robots meta tag blocks this page from search indexing.",
			"Remove the noindex directive if the page should rank.",
			p.RobotsContent,
			"indexable page")}
	}
	return nil
}

func checkViewport(p *page.ParsedPage, r rules.Rule) []Issue {
	if !p.HasViewport {
		return []Issue{newIssue(p, r, TypeMissingViewport,
			"Missing Viewport Meta Tag",
			"The page has no viewport meta tag, hurting mobile rendering.",
			"Add a viewport meta tag with width=device-width.",
			"(none)",
			"viewport meta tag present")}
	}
	return nil
}

func checkOpenGraph(p *page.ParsedPage, r rules.Rule) []Issue {
	var missing []string
	if p.OGTitle == "" {
		missing = append(missing, "og:title")
	}
	if p.OGDescription == "" {
		missing = append(missing, "og:description")
	}
	if p.OGImage == "" {
		missing = append(missing, "og:image")
	}
	if len(missing) == 0 {
		return nil
	}

	return []Issue{newIssue(p, r, TypeMissingOpenGraph,
		"Missing Open Graph Tags",
		fmt.Sprintf("The page is missing Open Graph tags: %s.", strings.Join(missing, ", ")),
		"Add og:title, og:description and og:image meta tags.",
		strings.Join(missing, ", ")+" missing",
		"og:title, og:description, og:image present")}
}

func checkTwitterCard(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.TwitterCard == "" {
		return []Issue{newIssue(p, r, TypeMissingTwitterCard,
			"Missing Twitter Card",
			"The page has no twitter:card meta tag.",
			"Add a twitter:card meta tag (summary_large_image recommended).",
			"(none)",
			"twitter:card meta tag present")}
	}
	return nil
}

func checkThinContent(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.WordCount < MinWordCount {
		return []Issue{newIssue(p, r, TypeThinContent,
			"Thin Content",
			fmt.Sprintf("The page has only %d words of visible content.", p.WordCount),
			"Expand the page to at least 300 words of substantive content.",
			fmt.Sprintf("%d words", p.WordCount),
			fmt.Sprintf("at least %d words", MinWordCount))}
	}
	return nil
}

func checkURLStructure(p *page.ParsedPage, r rules.Rule) []Issue {
	var issues []Issue

	if len(p.URL) > MaxURLLength {
		issues = append(issues, newIssue(p, r, TypeURLTooLong,
			"URL Too Long",
			fmt.Sprintf("The URL is %d characters long.", len(p.URL)),
			"Keep URLs at 75 characters or fewer.",
			fmt.Sprintf("%d characters", len(p.URL)),
			fmt.Sprintf("at most %d characters", MaxURLLength)))
	}

	parsed, err := url.Parse(p.URL)
	if err != nil {
		return issues
	}

	if strings.Contains(parsed.Path, "_") {
		issues = append(issues, newIssue(p, r, TypeURLUnderscores,
			"URL Contains Underscores",
			"The URL path uses underscores instead of hyphens.",
			"Use hyphens as word separators in URLs.",
			parsed.Path,
			"hyphen-separated path"))
	}

	if parsed.Path != strings.ToLower(parsed.Path) {
		issues = append(issues, newIssue(p, r, TypeURLUppercase,
			"URL Contains Uppercase",
			"The URL path contains uppercase characters.",
			"Use lowercase characters throughout the URL path.",
			parsed.Path,
			"lowercase path"))
	}

	return issues
}

func checkInternalLinks(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.InternalLinkCount < MinInternalLinks {
		return []Issue{newIssue(p, r, TypeFewInternalLinks,
			"Too Few Internal Links",
			fmt.Sprintf("The page has only %d internal links.", p.InternalLinkCount),
			"Link to at least 3 related pages on the same site.",
			fmt.Sprintf("%d internal links", p.InternalLinkCount),
			fmt.Sprintf("at least %d internal links", MinInternalLinks))}
	}
	return nil
}

func checkGeoMeta(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.GeoRegion == "" && p.GeoPlacename == "" && p.GeoPosition == "" {
		return []Issue{newIssue(p, r, TypeMissingGeoMeta,
			"Missing Geo Meta Tags",
			"The page has no geo.region, geo.placename or geo.position meta tags.",
			"Add geo meta tags identifying the property location.",
			"(none)",
			"geo meta tags present")}
	}
	return nil
}

func checkSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	if len(p.SchemaBlocks) == 0 && !p.HasMicrodata {
		return []Issue{newIssue(p, r, TypeMissingSchema,
			"Missing Structured Data",
			"The page has no JSON-LD or microdata structured data.",
			"Add JSON-LD structured data describing the page.",
			"(none)",
			"structured data present")}
	}
	return nil
}

func checkWebPageSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	if !p.HasAnySchemaType("WebPage", "WebSite") {
		return []Issue{newIssue(p, r, TypeMissingWebPageSchema,
			"Missing WebPage Schema",
			"The page declares no WebPage or WebSite structured data.",
			"Add a WebPage JSON-LD block.",
			"(none)",
			"WebPage schema present")}
	}
	return nil
}

func checkOrganizationSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	if !p.HasAnySchemaType("Organization", "LocalBusiness", "Hotel", "Resort", "LodgingBusiness") {
		return []Issue{newIssue(p, r, TypeMissingOrgSchema,
			"Missing Organization Schema",
			"The page declares no Organization or business structured data.",
			"Add an Organization or LodgingBusiness JSON-LD block.",
			"(none)",
			"Organization schema present")}
	}
	return nil
}

// checkHotelSchema only applies to pages whose path marks them as property
// pages; other pages are not expected to carry lodging schema.
func checkHotelSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	parsed, err := url.Parse(p.URL)
	if err != nil {
		return nil
	}
	path := strings.ToLower(parsed.Path)
	if !strings.Contains(path, "hotel") && !strings.Contains(path, "resort") {
		return nil
	}

	if !p.HasAnySchemaType("Hotel", "Resort", "LodgingBusiness") {
		return []Issue{newIssue(p, r, TypeMissingHotelSchema,
			"Missing Hotel Schema",
			"This property page declares no Hotel or LodgingBusiness structured data.",
			"Add a Hotel JSON-LD block with address, telephone and amenities.",
			"(none)",
			"Hotel schema present")}
	}
	return nil
}

func checkBreadcrumbSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	if !p.HasSchemaType("BreadcrumbList") {
		return []Issue{newIssue(p, r, TypeMissingBreadcrumb,
			"Missing Breadcrumb Schema",
			"The page declares no BreadcrumbList structured data.",
			"Add a BreadcrumbList JSON-LD block reflecting the site hierarchy.",
			"(none)",
			"BreadcrumbList schema present")}
	}
	return nil
}

// checkFAQSchema only fires when the page visibly carries FAQ-style content
// that is not marked up.
func checkFAQSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	if p.QuestionHeadingCount < 2 {
		return nil
	}
	if !p.HasSchemaType("FAQPage") {
		return []Issue{newIssue(p, r, TypeMissingFAQSchema,
			"Missing FAQ Schema",
			fmt.Sprintf("The page has %d question headings but no FAQPage structured data.", p.QuestionHeadingCount),
			"Mark the question and answer content up as FAQPage JSON-LD.",
			fmt.Sprintf("%d question headings, no FAQPage schema", p.QuestionHeadingCount),
			"FAQPage schema present")}
	}
	return nil
}

// checkHowToSchema only fires on pages whose title or H1 reads as a how-to
func checkHowToSchema(p *page.ParsedPage, r rules.Rule) []Issue {
	isHowTo := strings.Contains(strings.ToLower(p.Title), "how to")
	for _, h1 := range p.H1Texts {
		if strings.Contains(strings.ToLower(h1), "how to") {
			isHowTo = true
		}
	}
	if !isHowTo {
		return nil
	}

	if !p.HasSchemaType("HowTo") {
		return []Issue{newIssue(p, r, TypeMissingHowToSchema,
			"Missing HowTo Schema",
			"This instructional page declares no HowTo structured data.",
			"Add a HowTo JSON-LD block with the steps.",
			"(none)",
			"HowTo schema present")}
	}
	return nil
}

func checkSpeakable(p *page.ParsedPage, r rules.Rule) []Issue {
	if !p.HasSchemaKey("speakable") {
		return []Issue{newIssue(p, r, TypeMissingSpeakable,
			"Missing Speakable Schema",
			"The page declares no speakable specification for voice assistants.",
			"Add a speakable property to the page's structured data.",
			"(none)",
			"speakable specification present")}
	}
	return nil
}
