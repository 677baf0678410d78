package page

import "strings"

// challengeTitleMarker appears in the interstitial page served by bot
// protection layers instead of the real content.
const challengeTitleMarker = "Just a moment"

// ParsedPage holds the facts extracted from a fetched page. Evaluators and
// the verification engine work off these facts, never the raw markup.
type ParsedPage struct {
	URL     string
	RawHTML string

	Title           string
	MetaDescription string
	H1Texts         []string
	HeadingLevels   []int
	CanonicalHref   string
	RobotsContent   string
	HasViewport     bool

	OGTitle       string
	OGDescription string
	OGImage       string
	TwitterCard   string

	GeoRegion    string
	GeoPlacename string
	GeoPosition  string

	SchemaBlocks []map[string]any
	SchemaTypes  map[string]bool
	HasMicrodata bool

	ImagesMissingAlt []string
	ImageCount       int

	InternalLinkCount int
	ExternalLinkCount int

	WordCount            int
	Paragraphs           []string
	ListCount            int
	TableCount           int
	TableHeaderCount     int
	QuestionHeadingCount int

	VisibleText  string
	ReadableText string

	HasAuthorMeta bool
}

// IsChallenge reports whether the page is a bot-protection interstitial
// rather than real content.
func (p *ParsedPage) IsChallenge() bool {
	return strings.Contains(p.Title, challengeTitleMarker)
}

// HasRobotsNoindex reports whether the robots meta tag blocks indexing
func (p *ParsedPage) HasRobotsNoindex() bool {
	return strings.Contains(strings.ToLower(p.RobotsContent), "noindex")
}

// HasSchemaType reports whether any structured data block declares the type
func (p *ParsedPage) HasSchemaType(schemaType string) bool {
	return p.SchemaTypes[schemaType]
}

// HasAnySchemaType reports whether any of the given types is declared
func (p *ParsedPage) HasAnySchemaType(schemaTypes ...string) bool {
	for _, t := range schemaTypes {
		if p.SchemaTypes[t] {
			return true
		}
	}
	return false
}

// HasSchemaKey reports whether the given key appears anywhere in the
// structured data blocks, at any nesting depth.
func (p *ParsedPage) HasSchemaKey(key string) bool {
	for _, block := range p.SchemaBlocks {
		if containsKey(block, key) {
			return true
		}
	}
	return false
}

func containsKey(value any, key string) bool {
	switch v := value.(type) {
	case map[string]any:
		if _, ok := v[key]; ok {
			return true
		}
		for _, nested := range v {
			if containsKey(nested, key) {
				return true
			}
		}
	case []any:
		for _, nested := range v {
			if containsKey(nested, key) {
				return true
			}
		}
	}
	return false
}
