package audit

import (
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/page"
)

func TestScorerClampsFloor(t *testing.T) {
	scorer := NewScorer()

	// A page scoring zero everywhere still reports at least 1
	p := &page.ParsedPage{
		URL:           "http://example.com",
		RobotsContent: "noindex",
	}

	score := scorer.Run(p)
	if score.Total != 1 {
		t.Errorf("expected floor of 1, got %d", score.Total)
	}
	if score.Grade != "F" {
		t.Errorf("expected grade F, got %q", score.Grade)
	}
}

func TestScorerFullMarks(t *testing.T) {
	scorer := NewScorer()

	p := &page.ParsedPage{
		URL:             "https://example.com/resorts/waikiki",
		Title:           "Oceanfront Resort in Waikiki | Example",
		MetaDescription: "Stay steps from the beach at our oceanfront resort with stunning views of Diamond Head and easy access to Waikiki shopping and dining.",
		H1Texts:         []string{"Oceanfront Resort"},
		CanonicalHref:   "https://example.com/resorts/waikiki",
		HasViewport:     true,
		OGTitle:         "Oceanfront Resort",
		OGDescription:   "Steps from the beach",
		OGImage:         "https://example.com/hero.jpg",
		GeoRegion:       "US-HI",
		HasAuthorMeta:   true,
		SchemaBlocks: []map[string]any{
			{"@type": "Hotel", "telephone": "+1-808-555-0100", "speakable": map[string]any{}},
		},
		SchemaTypes: map[string]bool{
			"Hotel": true, "WebPage": true, "Organization": true,
			"BreadcrumbList": true, "FAQPage": true,
		},
		WordCount:            1500,
		Paragraphs:           []string{"A reasonable paragraph.", "Another one."},
		ListCount:            2,
		TableHeaderCount:     2,
		QuestionHeadingCount: 3,
		ReadableText:         "main content",
	}

	score := scorer.Run(p)
	if score.StructuredData != 30 {
		t.Errorf("expected structured data 30, got %d", score.StructuredData)
	}
	if score.Content != 30 {
		t.Errorf("expected content 30, got %d", score.Content)
	}
	if score.Technical != 25 {
		t.Errorf("expected technical 25, got %d", score.Technical)
	}
	if score.VoiceSearch != 15 {
		t.Errorf("expected voice search 15, got %d", score.VoiceSearch)
	}
	if score.Total != 100 {
		t.Errorf("expected total 100, got %d", score.Total)
	}
	if score.Grade != "A" {
		t.Errorf("expected grade A, got %q", score.Grade)
	}
}

func TestGradeBoundaries(t *testing.T) {
	if got := gradeFor(90); got != "A" {
		t.Errorf("expected 90 to grade A, got %q", got)
	}
	if got := gradeFor(89); got != "B" {
		t.Errorf("expected 89 to grade B, got %q", got)
	}
	if got := gradeFor(80); got != "B" {
		t.Errorf("expected 80 to grade B, got %q", got)
	}
	if got := gradeFor(70); got != "C" {
		t.Errorf("expected 70 to grade C, got %q", got)
	}
	if got := gradeFor(60); got != "D" {
		t.Errorf("expected 60 to grade D, got %q", got)
	}
	if got := gradeFor(59); got != "F" {
		t.Errorf("expected 59 to grade F, got %q", got)
	}
}
