package audit

import (
	"time"
)

// Issue type identifiers. The verification engine dispatches on these.
const (
	TypeMissingTitle            = "missing_title"
	TypeTitleTooShort           = "title_too_short"
	TypeTitleTooLong            = "title_too_long"
	TypeMissingMetaDescription  = "missing_meta_description"
	TypeMetaDescriptionTooShort = "meta_description_too_short"
	TypeMetaDescriptionTooLong  = "meta_description_too_long"
	TypeMissingH1               = "missing_h1"
	TypeMultipleH1              = "multiple_h1"
	TypeHeadingHierarchySkip    = "heading_hierarchy_skip"
	TypeImagesMissingAlt        = "images_missing_alt"
	TypeMissingCanonical        = "missing_canonical"
	TypeNoindexPage             = "noindex_page"
	TypeMissingViewport         = "missing_viewport"
	TypeMissingOpenGraph        = "missing_open_graph"
	TypeMissingTwitterCard      = "missing_twitter_card"
	TypeThinContent             = "thin_content"
	TypeURLTooLong              = "url_too_long"
	TypeURLUnderscores          = "url_underscores"
	TypeURLUppercase            = "url_uppercase"
	TypeFewInternalLinks        = "insufficient_internal_links"
	TypeMissingGeoMeta          = "missing_geo_meta"
	TypeMissingSchema           = "missing_schema"
	TypeMissingWebPageSchema    = "missing_webpage_schema"
	TypeMissingOrgSchema        = "missing_organization_schema"
	TypeMissingHotelSchema      = "missing_hotel_schema"
	TypeMissingBreadcrumb       = "missing_breadcrumb_schema"
	TypeMissingFAQSchema        = "missing_faq_schema"
	TypeMissingHowToSchema      = "missing_howto_schema"
	TypeMissingSpeakable        = "missing_speakable_schema"
	TypeLLMFinding              = "llm_finding"
)

// Issue is a single finding on a single page
type Issue struct {
	URL            string
	RuleID         string
	RuleName       string
	Category       string
	Severity       string
	IssueType      string
	Title          string
	Description    string
	Recommendation string
	CurrentValue   string
	ExpectedValue  string
}

// IdentityKey is the canonical deduplication key for an issue. Every
// consumer (publisher, board lookup, verification) derives the key through
// this one function.
func IdentityKey(title, url string) string {
	return title + " | " + url
}

// Key returns the issue's deduplication key
func (i Issue) Key() string {
	return IdentityKey(i.Title, i.URL)
}

// Score is the AI-readiness score for a single page
type Score struct {
	StructuredData int // out of 30
	Content        int // out of 30
	Technical      int // out of 25
	VoiceSearch    int // out of 15
	Total          int // clamped to [1, 100]
	Grade          string
}

// RunSummary accumulates the outcome of a full audit run
type RunSummary struct {
	RunID             string
	SiteID            string
	StartedAt         time.Time
	FinishedAt        time.Time
	PagesChecked      int
	SEOIssues         int
	VoiceIssues       int
	BrandIssues       int
	TasksCreated      int
	DuplicatesSkipped int
	TasksFailed       int
	IssuesVerified    int
	IssuesFixed       int
	Errors            []string
}

// CountIssue increments the per-category issue counter
func (s *RunSummary) CountIssue(category string) {
	switch category {
	case "voice":
		s.VoiceIssues++
	case "brand":
		s.BrandIssues++
	default:
		s.SEOIssues++
	}
}

// AddError records a non-fatal error without aborting the run
func (s *RunSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
