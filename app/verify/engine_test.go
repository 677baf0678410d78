package verify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
)

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Run(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.html), nil
}

func TestEngineFetchFailureStaysUnfixed(t *testing.T) {
	engine := NewEngine(&fakeFetcher{err: fmt.Errorf("connection refused")}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeMissingTitle,
	})

	if result.Fixed {
		t.Error("expected fetch failure to leave the issue unfixed")
	}
	if !strings.Contains(result.Details, "fetch failed") {
		t.Errorf("expected fetch failure details, got %q", result.Details)
	}
}

func TestEngineUnknownIssueType(t *testing.T) {
	engine := NewEngine(&fakeFetcher{html: "<html></html>"}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: "llm_finding",
	})

	if result.Fixed {
		t.Error("expected unknown issue type to stay unfixed")
	}
	if !strings.Contains(result.Details, "no verification method registered") {
		t.Errorf("expected explicit unknown-type details, got %q", result.Details)
	}
}

func TestEngineMetaDescriptionFixedTransition(t *testing.T) {
	description := strings.Repeat("An expanded meta description. ", 5)
	html := fmt.Sprintf(`<html><head><title>x</title><meta name="description" content=%q></head><body></body></html>`, description)
	engine := NewEngine(&fakeFetcher{html: html}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeMetaDescriptionTooShort,
	})

	if !result.Fixed {
		t.Errorf("expected in-range meta description to verify as fixed, got %q", result.Details)
	}
}

func TestEngineMultibyteTitleLength(t *testing.T) {
	// 40 characters but 80 bytes; the range check counts characters
	html := fmt.Sprintf(`<html><head><title>%s</title></head><body></body></html>`, strings.Repeat("ō", 40))
	engine := NewEngine(&fakeFetcher{html: html}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeTitleTooShort,
	})

	if !result.Fixed {
		t.Errorf("expected multibyte in-range title to verify as fixed, got %q", result.Details)
	}
}

func TestEngineMetaDescriptionStillShort(t *testing.T) {
	html := `<html><head><meta name="description" content="still short"></head><body></body></html>`
	engine := NewEngine(&fakeFetcher{html: html}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeMetaDescriptionTooShort,
	})

	if result.Fixed {
		t.Error("expected short meta description to stay unfixed")
	}
}

func TestEngineChallengePageBlocksVerification(t *testing.T) {
	html := `<html><head><title>Just a moment...</title></head><body></body></html>`
	engine := NewEngine(&fakeFetcher{html: html}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeMissingTitle,
	})

	if result.Fixed {
		t.Error("expected challenge page to block verification")
	}
	if !strings.Contains(result.Details, "challenge") {
		t.Errorf("expected challenge details, got %q", result.Details)
	}
}

func TestEngineMissingTitleFixed(t *testing.T) {
	html := `<html><head><title>A descriptive title for this page</title></head><body></body></html>`
	engine := NewEngine(&fakeFetcher{html: html}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		URL:       "https://example.com/page",
		IssueType: audit.TypeMissingTitle,
	})

	if !result.Fixed {
		t.Errorf("expected present title to verify as fixed, got %q", result.Details)
	}
}

func TestEngineItemWithoutURL(t *testing.T) {
	engine := NewEngine(&fakeFetcher{html: "<html></html>"}, page.NewAnalyzer())

	result := engine.Run(context.Background(), Item{
		ID:        "item-1",
		IssueType: audit.TypeMissingTitle,
	})

	if result.Fixed {
		t.Error("expected item without URL to stay unfixed")
	}
}
