package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
)

func newPageTask(client *http.Client) *AuditRunTask {
	return &AuditRunTask{
		RunID:     "run-test",
		SiteID:    "site-test",
		fetcher:   page.NewFetcher(client, "", "", "test-agent", 5),
		analyzer:  page.NewAnalyzer(),
		extractor: page.NewContentExtractor(),
		evaluator: audit.NewEvaluator(),
		scorer:    audit.NewScorer(),
	}
}

func TestAuditPageCountsFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	task := newPageTask(server.Client())
	publisher := audit.NewPublisher(nil, nil)
	summary := &audit.RunSummary{RunID: "run-test", SiteID: "site-test"}

	task.auditPage(context.Background(), server.URL, nil, false, publisher, summary)

	if summary.PagesChecked != 1 {
		t.Errorf("expected unfetchable URL to count as checked, got %d", summary.PagesChecked)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", summary.Errors)
	}
}

func TestAuditPageCountsAnalyzeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	task := newPageTask(server.Client())
	publisher := audit.NewPublisher(nil, nil)
	summary := &audit.RunSummary{RunID: "run-test", SiteID: "site-test"}

	task.auditPage(context.Background(), server.URL, nil, false, publisher, summary)

	if summary.PagesChecked != 1 {
		t.Errorf("expected unparseable page to count as checked, got %d", summary.PagesChecked)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", summary.Errors)
	}
}

func TestAuditPageCountsAuditedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head><title>A page</title></head><body><p>Hello</p></body></html>`))
	}))
	defer server.Close()

	task := newPageTask(server.Client())
	publisher := audit.NewPublisher(nil, nil)
	summary := &audit.RunSummary{RunID: "run-test", SiteID: "site-test"}

	task.auditPage(context.Background(), server.URL, nil, false, publisher, summary)

	if summary.PagesChecked != 1 {
		t.Errorf("expected audited page to count as checked, got %d", summary.PagesChecked)
	}
	if len(summary.Errors) != 0 {
		t.Errorf("expected no errors, got %v", summary.Errors)
	}
}
