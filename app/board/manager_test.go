package board

import (
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
)

func TestResolveColumnExactMatchWins(t *testing.T) {
	columns := []Column{
		{ID: "col1", Title: "Issue Type Notes"},
		{ID: "col2", Title: "Issue Type"},
	}

	got := resolveColumn(columns, []string{"issue type", "type"})
	if got != "col2" {
		t.Errorf("expected exact title match col2, got %q", got)
	}
}

func TestResolveColumnSubstringFallback(t *testing.T) {
	columns := []Column{
		{ID: "col1", Title: "Page URL (canonical)"},
	}

	got := resolveColumn(columns, []string{"page url", "url"})
	if got != "col1" {
		t.Errorf("expected substring match col1, got %q", got)
	}
}

func TestResolveColumnCaseInsensitive(t *testing.T) {
	columns := []Column{
		{ID: "col1", Title: "SEVERITY"},
	}

	got := resolveColumn(columns, []string{"severity"})
	if got != "col1" {
		t.Errorf("expected case-insensitive match col1, got %q", got)
	}
}

func TestResolveColumnNoMatch(t *testing.T) {
	columns := []Column{
		{ID: "col1", Title: "Owner"},
	}

	if got := resolveColumn(columns, []string{"severity"}); got != "" {
		t.Errorf("expected no match, got %q", got)
	}
}

func TestTaskNameTruncatesURL(t *testing.T) {
	issue := audit.Issue{
		Severity: "High",
		Title:    "Missing Title Tag",
		URL:      "https://example.com/a-very-long-path-that-keeps-going-and-going-and-going",
	}

	name := taskName(issue)
	want := "[High] Missing Title Tag - https://example.com/a-very-long-path-that-keeps-go"
	if name != want {
		t.Errorf("unexpected task name:\n got %q\nwant %q", name, want)
	}
}

func TestTitleFromItemNameRoundTrip(t *testing.T) {
	issue := audit.Issue{
		Severity: "High",
		Title:    "Missing Title Tag",
		URL:      "https://example.com/page",
	}

	got := titleFromItemName(taskName(issue))
	if got != "Missing Title Tag" {
		t.Errorf("expected title recovered from item name, got %q", got)
	}
}

func TestTitleFromItemNamePlain(t *testing.T) {
	if got := titleFromItemName("Some manually created task"); got != "Some manually created task" {
		t.Errorf("expected plain name unchanged, got %q", got)
	}
}
