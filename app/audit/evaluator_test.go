package audit

import (
	"reflect"
	"strings"
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

func procRule(id, key string) rules.Rule {
	return rules.Rule{
		ID:           id,
		Name:         id,
		Category:     rules.CategorySEO,
		PredicateKey: key,
		Severity:     rules.SeverityHigh,
		Enabled:      true,
	}
}

func TestEvaluatorMissingTitle(t *testing.T) {
	evaluator := NewEvaluator()
	p := &page.ParsedPage{URL: "https://example.com/page"}

	issues := evaluator.Run(p, []rules.Rule{procRule("title-rule", "title")})
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}

	issue := issues[0]
	if issue.IssueType != TypeMissingTitle {
		t.Errorf("expected issue type %q, got %q", TypeMissingTitle, issue.IssueType)
	}
	if issue.Title != "Missing Title Tag" {
		t.Errorf("unexpected issue title: %q", issue.Title)
	}
	if issue.Key() != "Missing Title Tag | https://example.com/page" {
		t.Errorf("unexpected identity key: %q", issue.Key())
	}
}

func TestEvaluatorTitleLengthBounds(t *testing.T) {
	evaluator := NewEvaluator()
	ruleSet := []rules.Rule{procRule("title-rule", "title")}

	short := &page.ParsedPage{URL: "https://example.com", Title: "Too short"}
	issues := evaluator.Run(short, ruleSet)
	if len(issues) != 1 || issues[0].IssueType != TypeTitleTooShort {
		t.Errorf("expected title_too_short, got %v", issues)
	}

	good := &page.ParsedPage{URL: "https://example.com", Title: "A perfectly sized title for search results"}
	if issues := evaluator.Run(good, ruleSet); len(issues) != 0 {
		t.Errorf("expected no issues for in-range title, got %v", issues)
	}

	// 40 characters but 80 bytes; length is measured in characters
	multibyte := &page.ParsedPage{URL: "https://example.com", Title: strings.Repeat("ō", 40)}
	if issues := evaluator.Run(multibyte, ruleSet); len(issues) != 0 {
		t.Errorf("expected no issues for in-range multibyte title, got %v", issues)
	}
}

func TestEvaluatorDeterministic(t *testing.T) {
	evaluator := NewEvaluator()
	p := &page.ParsedPage{URL: "https://example.com/page", WordCount: 50}
	ruleSet := []rules.Rule{
		procRule("title-rule", "title"),
		procRule("h1-rule", "h1"),
		procRule("content-rule", "thin_content"),
	}

	first := evaluator.Run(p, ruleSet)
	second := evaluator.Run(p, ruleSet)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical input")
	}
	if len(first) != 3 {
		t.Errorf("expected 3 issues in catalogue order, got %d", len(first))
	}
	if first[0].IssueType != TypeMissingTitle || first[2].IssueType != TypeThinContent {
		t.Errorf("unexpected issue ordering: %v", first)
	}
}

func TestEvaluatorChallengePage(t *testing.T) {
	evaluator := NewEvaluator()
	p := &page.ParsedPage{URL: "https://example.com", Title: "Just a moment..."}

	issues := evaluator.Run(p, []rules.Rule{procRule("title-rule", "title")})
	if len(issues) != 0 {
		t.Errorf("expected no issues for a challenge page, got %d", len(issues))
	}
}

func TestEvaluatorUnknownPredicateSkipped(t *testing.T) {
	evaluator := NewEvaluator()
	p := &page.ParsedPage{URL: "https://example.com"}

	issues := evaluator.Run(p, []rules.Rule{procRule("mystery-rule", "no_such_check")})
	if len(issues) != 0 {
		t.Errorf("expected unknown predicate key to be skipped, got %v", issues)
	}
}

func TestEvaluatorIgnoresInterpretiveRules(t *testing.T) {
	evaluator := NewEvaluator()
	p := &page.ParsedPage{URL: "https://example.com"}

	ruleSet := []rules.Rule{{
		ID:          "voice-rule",
		Name:        "Voice Tone",
		Category:    rules.CategoryVoice,
		Instruction: "Check the page tone",
		Enabled:     true,
	}}

	if issues := evaluator.Run(p, ruleSet); len(issues) != 0 {
		t.Errorf("expected interpretive rules to be ignored, got %v", issues)
	}
}

func TestCheckHotelSchemaGatedByPath(t *testing.T) {
	rule := procRule("hotel-rule", "hotel_schema")

	plain := &page.ParsedPage{URL: "https://example.com/blog/post"}
	if issues := checkHotelSchema(plain, rule); len(issues) != 0 {
		t.Errorf("expected no hotel schema issue on non-property page, got %v", issues)
	}

	property := &page.ParsedPage{URL: "https://example.com/resorts/waikiki"}
	issues := checkHotelSchema(property, rule)
	if len(issues) != 1 || issues[0].IssueType != TypeMissingHotelSchema {
		t.Errorf("expected missing hotel schema issue on property page, got %v", issues)
	}
}

func TestCheckHeadingHierarchySkip(t *testing.T) {
	rule := procRule("heading-rule", "heading_hierarchy")

	skipped := &page.ParsedPage{URL: "https://example.com", HeadingLevels: []int{1, 3}}
	issues := checkHeadingHierarchy(skipped, rule)
	if len(issues) != 1 || issues[0].IssueType != TypeHeadingHierarchySkip {
		t.Errorf("expected heading hierarchy issue, got %v", issues)
	}

	sequential := &page.ParsedPage{URL: "https://example.com", HeadingLevels: []int{1, 2, 3, 2}}
	if issues := checkHeadingHierarchy(sequential, rule); len(issues) != 0 {
		t.Errorf("expected no issue for sequential headings, got %v", issues)
	}
}

func TestCheckURLStructure(t *testing.T) {
	rule := procRule("url-rule", "url_structure")

	p := &page.ParsedPage{URL: "https://example.com/Some_Path"}
	issues := checkURLStructure(p, rule)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].IssueType != TypeURLUnderscores || issues[1].IssueType != TypeURLUppercase {
		t.Errorf("unexpected issue types: %v", issues)
	}
}
