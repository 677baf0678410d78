package audit

import (
	"strings"
	"unicode/utf8"

	"github.com/INHQInc/outrigger-seo-bot/app/page"
)

// Scorer computes the AI-readiness score for a page. Pure function over
// extracted facts, no IO.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Run(p *page.ParsedPage) Score {
	score := Score{
		StructuredData: s.scoreStructuredData(p),
		Content:        s.scoreContent(p),
		Technical:      s.scoreTechnical(p),
		VoiceSearch:    s.scoreVoiceSearch(p),
	}

	total := score.StructuredData + score.Content + score.Technical + score.VoiceSearch
	if total < 1 {
		total = 1
	}
	if total > 100 {
		total = 100
	}
	score.Total = total
	score.Grade = gradeFor(total)

	return score
}

func gradeFor(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

// scoreStructuredData awards up to 30 points for schema coverage
func (s *Scorer) scoreStructuredData(p *page.ParsedPage) int {
	points := 0
	if len(p.SchemaBlocks) > 0 {
		points += 8
	}
	if p.HasAnySchemaType("WebPage", "WebSite") {
		points += 4
	}
	if p.HasAnySchemaType("Organization", "LocalBusiness") {
		points += 5
	}
	if p.HasAnySchemaType("Hotel", "Resort", "LodgingBusiness") {
		points += 5
	}
	if p.HasSchemaType("BreadcrumbList") {
		points += 3
	}
	if p.HasSchemaType("FAQPage") {
		points += 3
	}
	if p.HasSchemaKey("speakable") {
		points += 2
	}
	return points
}

// scoreContent awards up to 30 points for content substance
func (s *Scorer) scoreContent(p *page.ParsedPage) int {
	points := 0

	switch {
	case p.WordCount >= 1200:
		points += 12
	case p.WordCount >= 600:
		points += 9
	case p.WordCount >= MinWordCount:
		points += 6
	case p.WordCount >= 100:
		points += 3
	}

	if len(p.Paragraphs) > 0 {
		chars := 0
		for _, para := range p.Paragraphs {
			chars += len(para)
		}
		if chars/len(p.Paragraphs) <= 500 {
			points += 4
		}
	}

	if p.ListCount >= 2 {
		points += 4
	}
	if p.TableHeaderCount > 0 {
		points += 2
	}
	if p.HasSchemaType("FAQPage") || p.QuestionHeadingCount >= 2 {
		points += 4
	}
	if p.ReadableText != "" {
		points += 4
	}

	return points
}

// scoreTechnical awards up to 25 points for technical SEO hygiene
func (s *Scorer) scoreTechnical(p *page.ParsedPage) int {
	points := 0

	if p.Title != "" {
		points += 4
		titleLen := utf8.RuneCountInString(p.Title)
		if titleLen >= TitleMinLength && titleLen <= TitleMaxLength {
			points += 2
		}
	}
	if p.MetaDescription != "" {
		points += 4
		metaLen := utf8.RuneCountInString(p.MetaDescription)
		if metaLen >= MetaDescMinLength && metaLen <= MetaDescMaxLength {
			points += 2
		}
	}
	if len(p.H1Texts) == 1 {
		points += 3
	}
	if p.CanonicalHref != "" {
		points += 3
	}
	if p.HasViewport {
		points += 3
	}
	if !p.HasRobotsNoindex() {
		points += 2
	}
	if strings.HasPrefix(p.URL, "https://") {
		points += 2
	}

	return points
}

// scoreVoiceSearch awards up to 15 points for voice assistant readiness
func (s *Scorer) scoreVoiceSearch(p *page.ParsedPage) int {
	points := 0

	if p.OGTitle != "" && p.OGDescription != "" && p.OGImage != "" {
		points += 4
	}
	if p.GeoRegion != "" || p.GeoPlacename != "" || p.GeoPosition != "" {
		points += 3
	}
	if p.HasSchemaKey("speakable") {
		points += 3
	}
	if p.HasAuthorMeta {
		points += 2
	}
	if p.HasSchemaKey("telephone") {
		points += 3
	}

	return points
}
